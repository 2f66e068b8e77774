package service

import (
	"context"
	"time"

	"mediscan/internal/llm"
	"mediscan/internal/logger"
	"mediscan/internal/models"
	"mediscan/internal/repository"
	"mediscan/internal/speech"
)

// Authorization covers sessions, tokens and the login/signup gate.
type Authorization interface {
	NewSession(ctx context.Context) (string, models.Session, error)
	ParseToken(accessToken string) (string, error)
	Session(ctx context.Context, sessionID string) (models.Session, error)
	ShowSignUp(ctx context.Context, sessionID string) (models.Session, error)
	ShowLogin(ctx context.Context, sessionID string) (models.Session, error)
	SignUp(ctx context.Context, sessionID string, in SignUpInput) (models.Session, error)
	SignIn(ctx context.Context, sessionID, username, password string) (models.Session, error)
	Logout(ctx context.Context, sessionID string) (models.Session, error)
	Navigate(ctx context.Context, sessionID string, page models.Page) (models.Session, error)
}

// Assistant exposes the chat and image analysis panels.
type Assistant interface {
	Chat(ctx context.Context, sessionID, message string, lang models.Language) (models.Session, error)
	ClearChat(ctx context.Context, sessionID string) (models.Session, error)
	TranslateChat(ctx context.Context, sessionID string, lang models.Language) (models.Session, error)
	SpeakChat(ctx context.Context, sessionID string) ([]byte, error)
	Transcript(ctx context.Context, sessionID string) (string, error)

	AnalyzeImage(ctx context.Context, sessionID string, data []byte, lang models.Language) (models.Session, error)
	ClearImage(ctx context.Context, sessionID string) (models.Session, error)
	TranslateImage(ctx context.Context, sessionID string, lang models.Language) (models.Session, error)
	SpeakImage(ctx context.Context, sessionID string) ([]byte, error)
	ImageResult(ctx context.Context, sessionID string) (string, error)
}

// Risk exposes the diabetes risk panel.
type Risk interface {
	Predict(ctx context.Context, sessionID string, age, glucose int) (models.RiskAssessment, error)
}

// ActivityLog exposes the audit trail with filtering.
type ActivityLog interface {
	List(ctx context.Context, f LogFilter) ([]models.Activity, error)
}

// Janitor runs the background loop that expires idle sessions.
// Stop via context cancellation for graceful shutdown.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

// LogFilter selects activity by time range, type and user.
type LogFilter struct {
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Type     string
	Username string
}

// Collaborators are the external services the assistant depends on.
type Collaborators struct {
	Generator  llm.ContentGenerator
	Translator llm.Translator
	Speech     speech.Synthesizer
}

// Options are the tuning knobs taken from config.
type Options struct {
	SigningKey      string
	SessionTTL      time.Duration
	GenerateTimeout time.Duration
	SpeechTimeout   time.Duration
	MaxUploadBytes  int64
}

type Service struct {
	Authorization
	Assistant
	Risk
	ActivityLog
	Janitor
}

// NewService wires the repository layer and collaborators into services.
func NewService(repos *repository.Repository, c Collaborators, opts Options, log *logger.Logger) *Service {
	sessions := newSessionStore(repos.Sessions)
	activity := NewActivityService(repos.Activity, log)
	if c.Translator == nil && c.Generator != nil {
		c.Translator = llm.NewTranslator(c.Generator)
	}

	return &Service{
		Authorization: NewAuthService(sessions, repos.Credentials, activity, opts.SigningKey, opts.SessionTTL),
		Assistant:     NewAssistantService(sessions, c, activity, opts),
		Risk:          NewRiskService(sessions, activity),
		ActivityLog:   activity,
		Janitor:       NewJanitorService(repos.Sessions, opts.SessionTTL, log),
	}
}
