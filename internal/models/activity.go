package models

import "time"

// Activity types recorded in the audit log.
const (
	ActivitySession   = "SESSION"
	ActivitySignUp    = "SIGN_UP"
	ActivitySignIn    = "SIGN_IN"
	ActivitySignOut   = "SIGN_OUT"
	ActivityChat      = "CHAT"
	ActivityImage     = "IMAGE"
	ActivityTranslate = "TRANSLATE"
	ActivitySpeak     = "SPEAK"
	ActivityRisk      = "RISK"
	ActivityError     = "ERROR"
)

// Activity is a single audit log entry.
type Activity struct {
	ID          string    `json:"id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	SessionID   string    `json:"session_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
