package service

import (
	"fmt"
	"strings"
	"time"

	"mediscan/internal/models"
	"mediscan/internal/repository"
)

// SignUpInput is the signup form.
type SignUpInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Gate is the login/signup state machine. It mutates the session it is
// given only when a transition succeeds.
//
//	login  --RequestSignUp-->  signup
//	signup --RequestLogin-->   login
//	signup --SubmitSignUp-->   login          (user registered)
//	login  --SubmitLogin-->    authenticated  (page home)
//	any    --Logout-->         login          (session cleared)
type Gate struct {
	creds repository.Credentials
}

func NewGate(creds repository.Credentials) *Gate {
	return &Gate{creds: creds}
}

func (g *Gate) RequestSignUp(s *models.Session) error {
	if s.Gate() != models.GateLogin {
		return ErrInvalidTransition
	}
	s.Page = models.PageSignUp
	return nil
}

func (g *Gate) RequestLogin(s *models.Session) error {
	if s.Gate() != models.GateSignUp {
		return ErrInvalidTransition
	}
	s.Page = models.PageLogin
	return nil
}

// SubmitSignUp validates the form, registers the user and returns to login.
func (g *Gate) SubmitSignUp(s *models.Session, in SignUpInput) error {
	if s.Gate() != models.GateSignUp {
		return ErrInvalidTransition
	}

	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		return required("username")
	case in.Password == "":
		return required("password")
	case in.Password != in.ConfirmPassword:
		return ErrPasswordMismatch
	}

	ok, err := g.creds.Register(username, in.Password, strings.TrimSpace(in.Email))
	if err != nil {
		return fmt.Errorf("register %q: %w", username, err)
	}
	if !ok {
		return ErrUsernameTaken
	}
	s.Page = models.PageLogin
	return nil
}

// SubmitLogin admits the user. Unknown users and wrong passwords are
// reported identically.
func (g *Gate) SubmitLogin(s *models.Session, username, password string) error {
	if s.Gate() != models.GateLogin {
		return ErrInvalidTransition
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return required("username")
	}
	if password == "" {
		return required("password")
	}
	if !g.creds.Verify(username, password) {
		return ErrInvalidCredentials
	}

	s.Authenticated = true
	s.Username = username
	s.Page = models.PageHome
	return nil
}

// Logout returns to the login screen and drops everything the visit built up.
func (g *Gate) Logout(s *models.Session, now time.Time) {
	s.Reset(now)
}
