package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/medichat-ai/insights-engine/internal/engine"
	"github.com/medichat-ai/insights-engine/internal/lexicon"
	"github.com/medichat-ai/insights-engine/internal/message"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(lexicon.Default(), engine.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e
}

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestBaselineFixture(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "baseline.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Cases) != 5 {
		t.Fatalf("expected 5 cases, got %d", len(f.Cases))
	}

	s := Run(context.Background(), newEngine(t), f)
	for _, r := range s.Results {
		if !r.Passed {
			t.Errorf("case %s: %s", r.ID, strings.Join(r.Mismatches, "; "))
		}
	}
	if s.Total != 5 || s.Passed != 5 || s.Failed != 0 {
		t.Errorf("summary: %+v", s)
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	path := writeFixture(t, `{
		"description": "wrong on purpose",
		"cases": [{
			"id": "wrong",
			"current": [{"timestamp": "2026-05-01T09:00:00Z", "text": "feeling happy"}],
			"expect": {
				"labels": ["sad"],
				"risk_level": "high",
				"first_strategy": "anxiety-breathing",
				"trends": {"Nonexistent": "improving"},
				"malformed": false
			}
		}, {
			"id": "not-malformed",
			"current": [{"timestamp": "2026-05-01T09:00:00Z", "text": "fine"}],
			"expect": {"malformed": true}
		}]
	}`)
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	s := Run(context.Background(), newEngine(t), f)
	if s.Failed != 2 || s.Passed != 0 {
		t.Fatalf("summary: %+v", s)
	}
	wrong := s.Results[0]
	if len(wrong.Mismatches) != 4 {
		t.Errorf("expected 4 mismatches, got %d: %v", len(wrong.Mismatches), wrong.Mismatches)
	}
	if !strings.Contains(s.Results[1].Mismatches[0], "malformed") {
		t.Errorf("mismatch: %v", s.Results[1].Mismatches)
	}
}

func TestLoadFixture_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{"cases": [`, "parse fixture"},
		{"unknown field", `{"cases": [], "extra": 1}`, "parse fixture"},
		{"missing id", `{"cases": [{"current": []}]}`, "has no id"},
		{"duplicate id", `{"cases": [{"id": "a"}, {"id": "a"}]}`, "duplicate case id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFixture(writeFixture(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}

	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRelabel(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	stored := []message.Labeled{
		{ID: "same", Timestamp: at, Text: "feeling happy", Emotion: lexicon.Happy, Confidence: 95},
		{ID: "moved", Timestamp: at, Text: "so worried", Emotion: lexicon.Sad, Confidence: 80},
		{ID: "conf", Timestamp: at, Text: "had lunch", Emotion: lexicon.Neutral, Confidence: 60},
	}

	s, err := Relabel(context.Background(), newEngine(t), stored)
	if err != nil {
		t.Fatalf("Relabel: %v", err)
	}
	if s.Total != 3 || s.Changed != 2 {
		t.Fatalf("summary: %+v", s)
	}
	if d := s.Drifts[0]; d.ID != "moved" || d.Current != lexicon.Anxious || d.Stored != lexicon.Sad {
		t.Errorf("drift: %+v", d)
	}
	if d := s.Drifts[1]; d.ID != "conf" || d.CurConf != 70 {
		t.Errorf("drift: %+v", d)
	}
}

func TestRelabel_InvalidStoredMessage(t *testing.T) {
	_, err := Relabel(context.Background(), newEngine(t), []message.Labeled{{ID: "bad", Text: "x"}})
	if err == nil || !strings.Contains(err.Error(), "relabel bad") {
		t.Errorf("got %v", err)
	}
}
