// Package logging records crisis assessments for later audit.
package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/medichat-ai/insights-engine/internal/crisis"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

// #region entry
// NewEntry builds an audit entry from an assessment over windowSize messages.
func NewEntry(userID string, a crisis.Assessment, windowSize int) AssessmentEntry {
	return AssessmentEntry{
		AssessmentID: uuid.New().String(),
		UserID:       userID,
		RiskLevel:    string(a.RiskLevel),
		Score:        a.Score,
		Urgent:       a.Urgent,
		Factors:      append([]string{}, a.Factors...),
		WindowSize:   windowSize,
	}
}
// #endregion entry

// #region log-assessment
// LogAssessment writes an entry to the assessment_log table.
func LogAssessment(db *sql.DB, entry AssessmentEntry) error {
	if entry.AssessmentID == "" {
		entry.AssessmentID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var factors interface{}
	if len(entry.Factors) > 0 {
		b, err := json.Marshal(entry.Factors)
		if err != nil {
			return fmt.Errorf("marshal factors: %w", err)
		}
		factors = string(b)
	}

	_, err := db.Exec(
		`INSERT INTO assessment_log (assessment_id, user_id, risk_level, score, urgent, factors_json, window_size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.AssessmentID,
		entry.UserID,
		entry.RiskLevel,
		entry.Score,
		boolToInt(entry.Urgent),
		factors,
		entry.WindowSize,
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("log assessment: %w", err)
	}
	return nil
}
// #endregion log-assessment

// #region list-assessments
// ListAssessments returns up to limit entries, newest first.
func ListAssessments(db *sql.DB, limit int) ([]AssessmentEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(
		`SELECT assessment_id, user_id, risk_level, score, urgent, factors_json, window_size, created_at
		 FROM assessment_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var entries []AssessmentEntry
	for rows.Next() {
		var e AssessmentEntry
		var urgent int
		var factors sql.NullString
		var created string
		if err := rows.Scan(&e.AssessmentID, &e.UserID, &e.RiskLevel, &e.Score, &urgent, &factors, &e.WindowSize, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Urgent = urgent != 0
		e.Factors = []string{}
		if factors.Valid {
			if err := json.Unmarshal([]byte(factors.String), &e.Factors); err != nil {
				return nil, fmt.Errorf("unmarshal factors: %w", err)
			}
		}
		ts, err := time.Parse(timeLayout, created)
		if err != nil {
			log.Printf("[AUDIT] skipping assessment %s: bad created_at %q", e.AssessmentID, created)
			continue
		}
		e.CreatedAt = ts
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion list-assessments

// #region helpers
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
// #endregion helpers
