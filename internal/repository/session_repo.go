package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mediscan/internal/models"
)

type SessionSQLite struct {
	db *sql.DB
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db}
}

const (
	upsertSessionSQL = `
		INSERT INTO sessions (id, authenticated, username, page, chat_log, chat_language, image_result, image_language, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			authenticated=excluded.authenticated,
			username=excluded.username,
			page=excluded.page,
			chat_log=excluded.chat_log,
			chat_language=excluded.chat_language,
			image_result=excluded.image_result,
			image_language=excluded.image_language,
			updated_at=excluded.updated_at
	`

	selectSessionSQL = `
		SELECT id, authenticated, username, page, chat_log, chat_language, image_result, image_language, created_at, updated_at
		FROM sessions WHERE id=?
	`

	deleteSessionSQL     = `DELETE FROM sessions WHERE id=?`
	deleteIdleSessionSQL = `DELETE FROM sessions WHERE updated_at < ?`
)

func marshalChatLog(log []models.ChatMessage) (string, error) {
	if log == nil {
		log = []models.ChatMessage{}
	}
	b, err := json.Marshal(log)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalChatLog(s string) ([]models.ChatMessage, error) {
	out := []models.ChatMessage{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save inserts or replaces the session row. UpdatedAt is set when zero.
func (r *SessionSQLite) Save(ctx context.Context, s models.Session) error {
	chatJSON, err := marshalChatLog(s.ChatLog)
	if err != nil {
		return fmt.Errorf("encode chat log: %w", err)
	}

	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	created := s.CreatedAt
	if created.IsZero() {
		created = updated
	}

	_, err = r.db.ExecContext(ctx, upsertSessionSQL,
		s.ID,
		s.Authenticated,
		s.Username,
		string(s.Page),
		chatJSON,
		string(s.ChatLanguage),
		s.ImageResult,
		string(s.ImageLanguage),
		created.UTC(),
		updated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (r *SessionSQLite) Load(ctx context.Context, id string) (models.Session, error) {
	row := r.db.QueryRowContext(ctx, selectSessionSQL, id)

	var (
		s                         models.Session
		page, chatLang, imageLang string
		chatJSON                  string
	)
	if err := row.Scan(
		&s.ID,
		&s.Authenticated,
		&s.Username,
		&page,
		&chatJSON,
		&chatLang,
		&s.ImageResult,
		&imageLang,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, nil
		}
		return models.Session{}, fmt.Errorf("load session %s: %w", id, err)
	}

	log, err := unmarshalChatLog(chatJSON)
	if err != nil {
		return models.Session{}, fmt.Errorf("decode chat log of session %s: %w", id, err)
	}
	s.ChatLog = log
	s.Page = models.Page(page)
	s.ChatLanguage = models.Language(chatLang)
	s.ImageLanguage = models.Language(imageLang)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func (r *SessionSQLite) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteSessionSQL, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// DeleteIdle removes sessions untouched since before and returns how many.
func (r *SessionSQLite) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteIdleSessionSQL, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted sessions: %w", err)
	}
	return n, nil
}
