package handlers

import (
	"net/http"

	"mediscan/internal/models"

	"github.com/gin-gonic/gin"
)

// NavigateRequest selects one of the screens behind the login.
type NavigateRequest struct {
	// Allowed: home, chat, image, risk
	Page models.Page `json:"page" example:"chat"`
}

// @Summary      Switch screen
// @Tags         navigation
// @Accept       json
// @Produce      json
// @Param        body  body      NavigateRequest  true  "Target screen"
// @Success      200   {object}  SessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/v1/navigate [post]
// @Security     BearerAuth
func (h *Handler) navigate(c *gin.Context) {
	var req NavigateRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	sess, err := h.services.Navigate(c.Request.Context(), sessionID(c), req.Page)
	if err != nil {
		h.writeError(c, "navigate_failed", err, "page", req.Page)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}
