package service

import (
	"context"
	"testing"
	"time"

	"mediscan/internal/models"

	"go.uber.org/goleak"
)

func TestJanitor_SweepRemovesIdleSessions(t *testing.T) {
	ctx := context.Background()
	repo := newMemSessions()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	stale := models.NewSession("stale", now.Add(-2*time.Hour))
	fresh := models.NewSession("fresh", now.Add(-10*time.Minute))
	_ = repo.Save(ctx, stale)
	_ = repo.Save(ctx, fresh)

	j := NewJanitorService(repo, time.Hour, nil)
	if n := j.sweep(ctx, now); n != 1 {
		t.Fatalf("swept %d sessions, want 1", n)
	}
	if s, _ := repo.Load(ctx, "stale"); s.ID != "" {
		t.Fatal("stale session still present")
	}
	if s, _ := repo.Load(ctx, "fresh"); s.ID != "fresh" {
		t.Fatal("fresh session was removed")
	}
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	j := NewJanitorService(newMemSessions(), time.Hour, nil)

	done := make(chan struct{})
	go func() {
		j.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
