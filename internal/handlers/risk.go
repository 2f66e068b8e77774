package handlers

import (
	"net/http"

	"mediscan/internal/service"

	"github.com/gin-gonic/gin"
)

// RiskRequest is the diabetes risk form.
type RiskRequest struct {
	Age     *int `json:"age" example:"50"`
	Glucose *int `json:"glucose" example:"160"` // mg/dL
}

// @Summary      Predict diabetes risk
// @Description  Normal below 140 mg/dL, Prediabetic from 140, Diabetic from 200.
// @Tags         risk
// @Accept       json
// @Produce      json
// @Param        body  body      RiskRequest  true  "Age and glucose"
// @Success      200   {object}  models.RiskAssessment
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/v1/risk [post]
// @Security     BearerAuth
func (h *Handler) predictRisk(c *gin.Context) {
	var req RiskRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	switch {
	case req.Age == nil:
		h.writeError(c, "risk_predict_failed", &service.ValidationError{Field: "age", Message: "is required"})
		return
	case req.Glucose == nil:
		h.writeError(c, "risk_predict_failed", &service.ValidationError{Field: "glucose", Message: "is required"})
		return
	}

	res, err := h.services.Predict(c.Request.Context(), sessionID(c), *req.Age, *req.Glucose)
	if err != nil {
		h.writeError(c, "risk_predict_failed", err, "age", *req.Age, "glucose", *req.Glucose)
		return
	}
	c.JSON(http.StatusOK, res)
}
