package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthService_TokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	token, sess, err := f.svc.NewSession(ctx)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	id, err := f.svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if id != sess.ID {
		t.Fatalf("sid = %q, want %q", id, sess.ID)
	}
}

func TestAuthService_ParseToken_Invalid(t *testing.T) {
	f := newFixture()

	hs := func(key string, exp time.Time, sid string) string {
		claims := &Claims{SessionID: sid}
		if !exp.IsZero() {
			claims.ExpiresAt = jwt.NewNumericDate(exp)
		}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa key: %v", err)
	}
	rs, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		SessionID:        "s1",
	}).SignedString(rsaKey)
	if err != nil {
		t.Fatalf("rsa sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong key", hs("other-key", time.Now().Add(time.Hour), "s1")},
		{"expired", hs("test-signing-key", time.Now().Add(-time.Minute), "s1")},
		{"no expiry", hs("test-signing-key", time.Time{}, "s1")},
		{"no session id", hs("test-signing-key", time.Now().Add(time.Hour), "")},
		{"rsa", rs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.ParseToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestAuthService_UnknownSession(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Session(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAuthService_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.loggedIn(ctx)

	_, other, err := f.svc.NewSession(ctx)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if other.Authenticated {
		t.Fatal("second session must not inherit the first session's login")
	}
	if _, err := f.svc.Chat(ctx, id, "hi", ""); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	got, err := f.svc.Session(ctx, other.ID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if len(got.ChatLog) != 0 {
		t.Fatalf("chat leaked between sessions: %+v", got.ChatLog)
	}
}
