package service

import (
	"context"
	"strings"
	"time"

	"mediscan/internal/logger"
	"mediscan/internal/models"
	"mediscan/internal/repository"
)

// recorder appends audit entries without failing the caller.
type recorder interface {
	Record(ctx context.Context, a models.Activity)
}

type ActivityService struct {
	repo repository.ActivityRepo
	log  *logger.Logger
}

func NewActivityService(repo repository.ActivityRepo, log *logger.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log}
}

var errInvalidTimeRange = &ValidationError{Field: "from", Message: "must not be after to"}

// Record stores a, logging instead of returning failures.
func (s *ActivityService) Record(ctx context.Context, a models.Activity) {
	if err := s.repo.Append(ctx, a); err != nil && s.log != nil {
		s.log.Warnw("activity_append_failed", "type", a.Type, "session_id", a.SessionID, "err", err)
	}
}

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func (s *ActivityService) List(ctx context.Context, f LogFilter) ([]models.Activity, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.repo.List(ctx, repository.ActivityQuery{
		From:     from,
		To:       to,
		Type:     strings.ToUpper(strings.TrimSpace(f.Type)),
		Username: f.Username,
	})
}
