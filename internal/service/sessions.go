package service

import (
	"context"
	"time"

	"mediscan/internal/models"
	"mediscan/internal/repository"
)

// sessionStore runs one action per session at a time. A mutation is saved
// only when its callback succeeds, so failed actions leave no trace.
type sessionStore struct {
	repo  repository.SessionRepo
	locks *keyedMutex
	now   func() time.Time
}

func newSessionStore(repo repository.SessionRepo) *sessionStore {
	return &sessionStore{repo: repo, locks: newKeyedMutex(), now: time.Now}
}

func (s *sessionStore) load(ctx context.Context, id string) (models.Session, error) {
	sess, err := s.repo.Load(ctx, id)
	if err != nil {
		return models.Session{}, err
	}
	if sess.ID == "" {
		return models.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// get reads the last saved snapshot without waiting on an in-flight action.
func (s *sessionStore) get(ctx context.Context, id string) (models.Session, error) {
	return s.load(ctx, id)
}

// update applies fn to a copy of the session and persists it on success.
func (s *sessionStore) update(ctx context.Context, id string, fn func(*models.Session) error) (models.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return models.Session{}, err
	}
	work := sess
	work.ChatLog = append([]models.ChatMessage(nil), sess.ChatLog...)
	if err := fn(&work); err != nil {
		return sess, err
	}
	work.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, work); err != nil {
		return sess, err
	}
	return work, nil
}

// view runs fn against the current session under the session lock.
func (s *sessionStore) view(ctx context.Context, id string, fn func(models.Session) error) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return fn(sess)
}

func requireAuth(s models.Session) error {
	if !s.Authenticated {
		return ErrNotAuthenticated
	}
	return nil
}
