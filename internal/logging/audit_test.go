package logging

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/medichat-ai/insights-engine/internal/crisis"
	"github.com/medichat-ai/insights-engine/internal/store"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.DB()
}

// #endregion helpers

func TestLogAssessment_RoundTrip(t *testing.T) {
	db := setupDB(t)

	a := crisis.Assessment{
		RiskLevel: crisis.RiskCritical,
		Score:     40,
		Factors:   []string{"Language associated with suicidal ideation"},
		Urgent:    true,
	}
	entry := NewEntry("u1", a, 3)
	entry.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := LogAssessment(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ListAssessments(db, 10)
	if err != nil {
		t.Fatalf("ListAssessments: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	e := got[0]
	if e.AssessmentID != entry.AssessmentID || e.UserID != "u1" || e.RiskLevel != "critical" || e.Score != 40 || !e.Urgent || e.WindowSize != 3 {
		t.Errorf("row mismatch: %+v", e)
	}
	if len(e.Factors) != 1 || e.Factors[0] != a.Factors[0] {
		t.Errorf("factors: %v", e.Factors)
	}
	if !e.CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("created_at: got %v", e.CreatedAt)
	}
}

func TestLogAssessment_EmptyFactorsAndDefaults(t *testing.T) {
	db := setupDB(t)

	if err := LogAssessment(db, AssessmentEntry{UserID: "u1", RiskLevel: "low", Score: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ListAssessments(db, 0)
	if err != nil {
		t.Fatalf("ListAssessments: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].AssessmentID == "" {
		t.Error("expected generated assessment id")
	}
	if got[0].Factors == nil || len(got[0].Factors) != 0 {
		t.Errorf("factors should be empty non-nil: %v", got[0].Factors)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("expected default created_at")
	}
}

func TestListAssessments_NewestFirst(t *testing.T) {
	db := setupDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, level := range []string{"low", "medium", "high"} {
		err := LogAssessment(db, AssessmentEntry{UserID: "u1", RiskLevel: level, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		if err != nil {
			t.Fatalf("LogAssessment: %v", err)
		}
	}
	got, err := ListAssessments(db, 2)
	if err != nil {
		t.Fatalf("ListAssessments: %v", err)
	}
	if len(got) != 2 || got[0].RiskLevel != "high" || got[1].RiskLevel != "medium" {
		t.Errorf("got %+v", got)
	}
}

func TestLogAssessment_MissingTable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := LogAssessment(db, AssessmentEntry{UserID: "u1", RiskLevel: "low"}); err == nil {
		t.Error("expected error without assessment_log table")
	}
}

func TestNewEntry_CopiesFactors(t *testing.T) {
	a := crisis.Assessment{RiskLevel: crisis.RiskMedium, Factors: []string{"x"}}
	e := NewEntry("u1", a, 1)
	a.Factors[0] = "mutated"
	if e.Factors[0] != "x" {
		t.Error("entry aliases assessment factors")
	}
}

func TestListAssessments_SkipsCorruptTimestamp(t *testing.T) {
	db := setupDB(t)
	if err := LogAssessment(db, AssessmentEntry{UserID: "u1", RiskLevel: "low", Score: 10}); err != nil {
		t.Fatalf("LogAssessment: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO assessment_log (assessment_id, user_id, risk_level, score, urgent, factors_json, window_size, created_at)
		 VALUES ('bad', 'u1', 'high', 30, 0, NULL, 3, 'not a time')`,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := ListAssessments(db, 0)
	if err != nil {
		t.Fatalf("ListAssessments: %v", err)
	}
	if len(got) != 1 || got[0].AssessmentID == "bad" || got[0].CreatedAt.IsZero() {
		t.Errorf("got %+v", got)
	}
}
