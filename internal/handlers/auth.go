package handlers

import (
	"net/http"

	"mediscan/internal/models"
	"mediscan/internal/service"

	"github.com/gin-gonic/gin"
)

const statusOK = "ok"

// SessionResponse is the session snapshot returned by most endpoints.
type SessionResponse struct {
	Gate    models.GateState `json:"gate" example:"authenticated"`
	Session models.Session   `json:"session"`
}

// CreateSessionResponse carries the token for a new visit.
type CreateSessionResponse struct {
	Token string `json:"token"`
	SessionResponse
}

// GateNavigateRequest switches between the login and signup forms.
type GateNavigateRequest struct {
	Page models.Page `json:"page" example:"signup"`
}

// SignUpRequest is the signup form payload.
type SignUpRequest struct {
	Username        string `json:"username" example:"alice"`
	Email           string `json:"email" example:"alice@example.com"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// SignInRequest is the login form payload.
type SignInRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password"`
}

func sessionResponse(s models.Session) SessionResponse {
	return SessionResponse{Gate: s.Gate(), Session: s}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start a session
// @Description  Creates an unauthenticated session on the login screen and returns its bearer token.
// @Tags         auth
// @Produce      json
// @Success      201  {object}  CreateSessionResponse
// @Failure      500  {object}  map[string]string
// @Router       /auth/session [post]
func (h *Handler) createSession(c *gin.Context) {
	token, sess, err := h.services.NewSession(c.Request.Context())
	if err != nil {
		h.writeError(c, "session_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, CreateSessionResponse{Token: token, SessionResponse: sessionResponse(sess)})
}

// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	sess, err := h.services.Session(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, "session_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// @Summary      Switch gate form
// @Description  page=signup from the login form, page=login from the signup form.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      GateNavigateRequest  true  "Target form"
// @Success      200   {object}  SessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/navigate [post]
// @Security     BearerAuth
func (h *Handler) navigateGate(c *gin.Context) {
	var req GateNavigateRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var (
		sess models.Session
		err  error
	)
	switch req.Page {
	case models.PageSignUp:
		sess, err = h.services.ShowSignUp(ctx, sessionID(c))
	case models.PageLogin:
		sess, err = h.services.ShowLogin(ctx, sessionID(c))
	default:
		err = &service.ValidationError{Field: "page", Message: "must be login or signup"}
	}
	if err != nil {
		h.writeError(c, "gate_navigate_failed", err, "page", req.Page)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// @Summary      Sign up
// @Description  Registers a user and returns to the login form.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SignUpRequest  true  "Signup form"
// @Success      200   {object}  SessionResponse
// @Failure      400   {object}  map[string]string  "error, field"
// @Failure      409   {object}  map[string]string
// @Router       /auth/sign-up [post]
// @Security     BearerAuth
func (h *Handler) signUp(c *gin.Context) {
	var req SignUpRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}

	sess, err := h.services.SignUp(c.Request.Context(), sessionID(c), service.SignUpInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.writeError(c, "auth_sign_up_failed", err, "username", req.Username)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SignInRequest  true  "Login form"
// @Success      200   {object}  SessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/sign-in [post]
// @Security     BearerAuth
func (h *Handler) signIn(c *gin.Context) {
	var req SignInRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}

	sess, err := h.services.SignIn(c.Request.Context(), sessionID(c), req.Username, req.Password)
	if err != nil {
		h.writeError(c, "auth_sign_in_failed", err, "username", req.Username)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// @Summary      Log out
// @Description  Clears the session and returns to the login form.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
// @Security     BearerAuth
func (h *Handler) logout(c *gin.Context) {
	sess, err := h.services.Logout(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, "auth_logout_failed", err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}
