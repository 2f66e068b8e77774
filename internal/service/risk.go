package service

import (
	"context"
	"fmt"

	"mediscan/internal/models"
)

// Glucose thresholds in mg/dL; each is the inclusive lower bound of its tier.
const (
	prediabeticGlucose = 140
	diabeticGlucose    = 200
	ageRiskAbove       = 45

	minAge = 1
	maxAge = 120
)

const (
	adviceNormal      = "Your glucose level is in the normal range. Keep up a balanced diet and regular physical activity."
	advicePrediabetic = "Your glucose level suggests prediabetes. Cut down on sugar and refined carbs, exercise regularly and recheck your levels."
	adviceDiabetic    = "Your glucose level is in the diabetic range. Please consult a doctor for proper evaluation and treatment."
	adviceAgeRisk     = " Being over 45 adds to your risk, so schedule regular check-ups."
)

// Classify maps a glucose reading (and age) to a risk category. It is pure.
func Classify(age, glucose int) models.RiskAssessment {
	out := models.RiskAssessment{Age: age, Glucose: glucose}
	switch {
	case glucose < prediabeticGlucose:
		out.Category, out.Advisory = models.RiskNormal, adviceNormal
	case glucose < diabeticGlucose:
		out.Category, out.Advisory = models.RiskPrediabetic, advicePrediabetic
	default:
		out.Category, out.Advisory = models.RiskDiabetic, adviceDiabetic
	}
	if out.Category != models.RiskNormal && age > ageRiskAbove {
		out.AgeRisk = true
		out.Advisory += adviceAgeRisk
	}
	return out
}

// ValidateRiskInput checks the ranges accepted by the risk panel.
func ValidateRiskInput(age, glucose int) error {
	if age < minAge || age > maxAge {
		return &ValidationError{Field: "age", Message: fmt.Sprintf("must be between %d and %d", minAge, maxAge)}
	}
	if glucose < 0 {
		return &ValidationError{Field: "glucose", Message: "must not be negative"}
	}
	return nil
}

type RiskService struct {
	sessions *sessionStore
	activity recorder
}

func NewRiskService(sessions *sessionStore, activity recorder) *RiskService {
	return &RiskService{sessions: sessions, activity: activity}
}

// Predict validates input for a logged-in session and classifies it.
func (s *RiskService) Predict(ctx context.Context, sessionID string, age, glucose int) (models.RiskAssessment, error) {
	var username string
	err := s.sessions.view(ctx, sessionID, func(sess models.Session) error {
		username = sess.Username
		return requireAuth(sess)
	})
	if err != nil {
		return models.RiskAssessment{}, err
	}
	if err := ValidateRiskInput(age, glucose); err != nil {
		return models.RiskAssessment{}, err
	}

	res := Classify(age, glucose)
	s.activity.Record(ctx, models.Activity{
		Type:        models.ActivityRisk,
		SessionID:   sessionID,
		Username:    username,
		Description: "diabetes risk predicted",
		Metadata:    map[string]any{"category": res.Category, "age_risk": res.AgeRisk},
	})
	return res, nil
}
