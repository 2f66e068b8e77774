package models

import "time"

// Page is the screen a session is currently showing.
type Page string

const (
	PageLogin  Page = "login"
	PageSignUp Page = "signup"
	PageHome   Page = "home"
	PageChat   Page = "chat"
	PageImage  Page = "image"
	PageRisk   Page = "risk"
)

// IsAppPage reports whether p is only reachable after login.
func (p Page) IsAppPage() bool {
	switch p {
	case PageHome, PageChat, PageImage, PageRisk:
		return true
	default:
		return false
	}
}

// GateState is the auth gate state derived from a session.
type GateState string

const (
	GateLogin         GateState = "login"
	GateSignUp        GateState = "signup"
	GateAuthenticated GateState = "authenticated"
)

// Role identifies the author of a chat entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Session is the per-visit state. It is never shared between visits.
type Session struct {
	ID            string        `json:"id"`
	Authenticated bool          `json:"authenticated"`
	Username      string        `json:"username,omitempty"`
	Page          Page          `json:"page"`
	ChatLog       []ChatMessage `json:"chat_log"`
	ChatLanguage  Language      `json:"chat_language"`
	ImageResult   string        `json:"image_result,omitempty"`
	ImageLanguage Language      `json:"image_language"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewSession returns a fresh, unauthenticated session on the login page.
func NewSession(id string, now time.Time) Session {
	now = now.UTC()
	return Session{
		ID:            id,
		Page:          PageLogin,
		ChatLog:       []ChatMessage{},
		ChatLanguage:  LanguageEnglish,
		ImageLanguage: LanguageEnglish,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Gate derives the auth gate state.
func (s Session) Gate() GateState {
	switch {
	case s.Authenticated:
		return GateAuthenticated
	case s.Page == PageSignUp:
		return GateSignUp
	default:
		return GateLogin
	}
}

// LastReply returns the last chat entry if it was written by the assistant.
func (s Session) LastReply() (ChatMessage, bool) {
	if len(s.ChatLog) == 0 {
		return ChatMessage{}, false
	}
	last := s.ChatLog[len(s.ChatLog)-1]
	if last.Role != RoleAssistant {
		return ChatMessage{}, false
	}
	return last, true
}

// Reset clears everything except identity and creation time.
func (s *Session) Reset(now time.Time) {
	*s = NewSession(s.ID, s.CreatedAt)
	s.UpdatedAt = now.UTC()
}
