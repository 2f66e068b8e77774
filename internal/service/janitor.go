package service

import (
	"context"
	"time"

	"mediscan/internal/logger"
	"mediscan/internal/repository"
)

// JanitorService expires sessions that have been idle for longer than ttl.
type JanitorService struct {
	repo repository.SessionRepo
	ttl  time.Duration
	log  *logger.Logger
}

func NewJanitorService(repo repository.SessionRepo, ttl time.Duration, log *logger.Logger) *JanitorService {
	return &JanitorService{repo: repo, ttl: ttl, log: log}
}

// Run sweeps every tick until ctx is canceled.
func (s *JanitorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(ctx, now)
		}
	}
}

func (s *JanitorService) sweep(ctx context.Context, now time.Time) int64 {
	n, err := s.repo.DeleteIdle(ctx, now.Add(-s.ttl))
	if err != nil {
		if s.log != nil && ctx.Err() == nil {
			s.log.Warnw("session_sweep_failed", "err", err)
		}
		return 0
	}
	if n > 0 && s.log != nil {
		s.log.Infow("sessions_expired", "count", n)
	}
	return n
}
