package logging

import "time"

// #region assessment-entry
// AssessmentEntry is a single row in the assessment_log table. Factors hold
// category descriptions only, never message text.
type AssessmentEntry struct {
	AssessmentID string    `json:"assessmentId"`
	UserID       string    `json:"userId"`
	RiskLevel    string    `json:"riskLevel"`
	Score        int       `json:"score"`
	Urgent       bool      `json:"urgent"`
	Factors      []string  `json:"factors"`
	WindowSize   int       `json:"windowSize"`
	CreatedAt    time.Time `json:"createdAt"`
}
// #endregion assessment-entry
