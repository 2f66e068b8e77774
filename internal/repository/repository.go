package repository

import (
	"context"
	"database/sql"
	"time"

	"mediscan/internal/models"
)

// Credentials is the username/password-digest/email store.
type Credentials interface {
	EnsureInitialized() error
	Register(username, password, email string) (bool, error)
	Verify(username, password string) bool
}

type SessionRepo interface {
	Save(ctx context.Context, s models.Session) error
	// Load returns a zero Session (empty ID) when id is unknown.
	Load(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteIdle(ctx context.Context, before time.Time) (int64, error)
}

type ActivityRepo interface {
	Append(ctx context.Context, a models.Activity) error
	List(ctx context.Context, f ActivityQuery) ([]models.Activity, error)
}

// ActivityQuery filters the activity log; zero fields mean "any".
type ActivityQuery struct {
	From     time.Time
	To       time.Time
	Type     string
	Username string
}

type Repository struct {
	Sessions    SessionRepo
	Activity    ActivityRepo
	Credentials Credentials
}

func NewRepository(db *sql.DB, creds Credentials) *Repository {
	return &Repository{
		Sessions:    NewSessionSQLite(db),
		Activity:    NewActivitySQLite(db),
		Credentials: creds,
	}
}
