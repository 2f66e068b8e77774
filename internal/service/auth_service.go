package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediscan/internal/models"
	"mediscan/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService owns sessions, their tokens and the auth gate.
type AuthService struct {
	sessions   *sessionStore
	gate       *Gate
	activity   recorder
	signingKey []byte
	tokenTTL   time.Duration
}

func NewAuthService(sessions *sessionStore, creds repository.Credentials, activity recorder, signingKey string, ttl time.Duration) *AuthService {
	return &AuthService{
		sessions:   sessions,
		gate:       NewGate(creds),
		activity:   activity,
		signingKey: []byte(signingKey),
		tokenTTL:   ttl,
	}
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// NewSession stores a fresh session on the login screen and returns its token.
func (s *AuthService) NewSession(ctx context.Context) (string, models.Session, error) {
	sess := models.NewSession(uuid.NewString(), s.sessions.now())
	if err := s.sessions.repo.Save(ctx, sess); err != nil {
		return "", models.Session{}, err
	}
	token, err := s.issueToken(sess.ID)
	if err != nil {
		return "", models.Session{}, err
	}
	s.activity.Record(ctx, models.Activity{
		Type:        models.ActivitySession,
		SessionID:   sess.ID,
		Description: "session started",
	})
	return token, sess, nil
}

// ParseToken parses JWT and returns the session ID.
func (s *AuthService) ParseToken(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

func (s *AuthService) Session(ctx context.Context, sessionID string) (models.Session, error) {
	return s.sessions.get(ctx, sessionID)
}

func (s *AuthService) ShowSignUp(ctx context.Context, sessionID string) (models.Session, error) {
	return s.sessions.update(ctx, sessionID, s.gate.RequestSignUp)
}

func (s *AuthService) ShowLogin(ctx context.Context, sessionID string) (models.Session, error) {
	return s.sessions.update(ctx, sessionID, s.gate.RequestLogin)
}

func (s *AuthService) SignUp(ctx context.Context, sessionID string, in SignUpInput) (models.Session, error) {
	sess, err := s.sessions.update(ctx, sessionID, func(sess *models.Session) error {
		return s.gate.SubmitSignUp(sess, in)
	})
	if err != nil {
		return sess, err
	}
	s.activity.Record(ctx, models.Activity{
		Type:        models.ActivitySignUp,
		SessionID:   sessionID,
		Username:    strings.TrimSpace(in.Username),
		Description: "user registered",
	})
	return sess, nil
}

func (s *AuthService) SignIn(ctx context.Context, sessionID, username, password string) (models.Session, error) {
	sess, err := s.sessions.update(ctx, sessionID, func(sess *models.Session) error {
		return s.gate.SubmitLogin(sess, username, password)
	})
	if err != nil {
		return sess, err
	}
	s.activity.Record(ctx, models.Activity{
		Type:        models.ActivitySignIn,
		SessionID:   sessionID,
		Username:    sess.Username,
		Description: "user signed in",
	})
	return sess, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) (models.Session, error) {
	var username string
	sess, err := s.sessions.update(ctx, sessionID, func(sess *models.Session) error {
		username = sess.Username
		s.gate.Logout(sess, s.sessions.now())
		return nil
	})
	if err != nil {
		return sess, err
	}
	if username != "" {
		s.activity.Record(ctx, models.Activity{
			Type:        models.ActivitySignOut,
			SessionID:   sessionID,
			Username:    username,
			Description: "user signed out",
		})
	}
	return sess, nil
}

// Navigate switches between the screens behind the login.
func (s *AuthService) Navigate(ctx context.Context, sessionID string, page models.Page) (models.Session, error) {
	return s.sessions.update(ctx, sessionID, func(sess *models.Session) error {
		if err := requireAuth(*sess); err != nil {
			return err
		}
		if !page.IsAppPage() {
			return &ValidationError{Field: "page", Message: fmt.Sprintf("unknown page %q", page)}
		}
		sess.Page = page
		return nil
	})
}

func (s *AuthService) issueToken(sessionID string) (string, error) {
	if len(s.signingKey) == 0 {
		return "", errors.New("signing key is not configured")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   sessionID,
		},
		SessionID: sessionID,
	})
	return token.SignedString(s.signingKey)
}
