package service

import (
	"context"
	"errors"
	"fmt"
)

// ValidationError is reported next to the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

// Domain errors.
var (
	ErrPasswordMismatch = &ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	ErrUsernameTaken    = &ValidationError{Field: "username", Message: "username already exists"}

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidTransition  = errors.New("action not available on the current screen")
	ErrNotAuthenticated   = errors.New("login required")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidToken       = errors.New("invalid token")

	ErrNothingToTranslate = errors.New("no reply to translate")
	ErrNothingToSpeak     = errors.New("no reply to speak")
	ErrUnsupportedMedia   = errors.New("only PNG and JPEG images are supported")

	ErrCollaborator        = errors.New("external service failed")
	ErrCollaboratorTimeout = errors.New("external service timed out")
)

// collaboratorError tags err so callers can tell timeouts from failures
// while keeping the cause reachable through errors.Is.
func collaboratorError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrCollaboratorTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrCollaborator, op, err)
}
