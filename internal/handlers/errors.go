package handlers

import (
	"errors"
	"net/http"

	"mediscan/internal/llm"
	"mediscan/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidBodyPref = "invalid body: "
	errInternal        = "internal error"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNothingToTranslate),
		errors.Is(err, service.ErrNothingToSpeak):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, service.ErrCollaboratorTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, service.ErrCollaborator):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userMessage keeps internal details out of the response body.
func userMessage(code int, err error) string {
	switch code {
	case http.StatusInternalServerError:
		return errInternal
	case http.StatusBadGateway:
		if errors.Is(err, llm.ErrEmptyReply) {
			return "the assistant returned no answer, try rephrasing"
		}
		return service.ErrCollaborator.Error()
	case http.StatusGatewayTimeout:
		return service.ErrCollaboratorTimeout.Error()
	default:
		return err.Error()
	}
}

// writeError logs err under logKey and writes the mapped JSON error.
func (h *Handler) writeError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code := statusFor(err)
	if h.log != nil {
		fields := append([]interface{}{"err", err, "session_id", sessionID(c)}, kv...)
		if code >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}

	body := gin.H{"error": userMessage(code, err)}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
		body["error"] = verr.Message
	}
	c.AbortWithStatusJSON(code, body)
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}
