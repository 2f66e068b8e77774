package models

type RiskCategory string

const (
	RiskNormal      RiskCategory = "Normal"
	RiskPrediabetic RiskCategory = "Prediabetic"
	RiskDiabetic    RiskCategory = "Diabetic"
)

// RiskAssessment is the result of a diabetes risk check.
type RiskAssessment struct {
	Age      int          `json:"age"`
	Glucose  int          `json:"glucose_mg_dl"`
	Category RiskCategory `json:"category"`
	Advisory string       `json:"advisory"`
	AgeRisk  bool         `json:"age_risk"`
}
