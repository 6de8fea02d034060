// Package replay runs recorded inputs back through the engine: fixture cases
// with expected outcomes, and stored messages checked for label drift.
package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/medichat-ai/insights-engine/internal/engine"
	"github.com/medichat-ai/insights-engine/internal/insight"
	"github.com/medichat-ai/insights-engine/internal/lexicon"
	"github.com/medichat-ai/insights-engine/internal/message"
)

// #region types

// CaseResult is the outcome of one fixture case.
type CaseResult struct {
	ID         string
	Passed     bool
	Mismatches []string
}

// Summary aggregates a fixture run.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Results []CaseResult
}

// Drift is one stored message whose label differs from the current classifier.
type Drift struct {
	ID                  string
	Stored, Current     lexicon.Category
	StoredConf, CurConf int
}

// DriftSummary aggregates a relabel run.
type DriftSummary struct {
	Total   int
	Changed int
	Drifts  []Drift
}

// #endregion types

// #region run

// Run executes every case in order. Cases are independent.
func Run(ctx context.Context, eng *engine.Engine, f *Fixture) Summary {
	s := Summary{Total: len(f.Cases)}
	for _, c := range f.Cases {
		r := runCase(ctx, eng, c)
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		s.Results = append(s.Results, r)
	}
	return s
}

func runCase(ctx context.Context, eng *engine.Engine, c FixtureCase) CaseResult {
	report, err := eng.Analyze(ctx, engine.Request{
		Current:       c.Current,
		Previous:      c.Previous,
		Recent:        c.Recent,
		Preferences:   c.Preferences,
		TimeframeDays: c.TimeframeDays,
	})

	var m []string
	mismatch := func(format string, args ...any) { m = append(m, fmt.Sprintf(format, args...)) }
	x := c.Expect

	if x.Malformed {
		if !errors.Is(err, message.ErrMalformedInput) {
			mismatch("expected malformed input error, got %v", err)
		}
		return CaseResult{ID: c.ID, Passed: len(m) == 0, Mismatches: m}
	}
	if err != nil {
		mismatch("analyze: %v", err)
		return CaseResult{ID: c.ID, Mismatches: m}
	}

	if len(x.Labels) > 0 {
		if len(x.Labels) != len(report.Labeled) {
			mismatch("labels: got %d messages, want %d", len(report.Labeled), len(x.Labels))
		} else {
			for i, want := range x.Labels {
				if got := string(report.Labeled[i].Emotion); got != want {
					mismatch("label[%d]: got %s, want %s", i, got, want)
				}
			}
		}
	}
	if x.MinConfidence > 0 {
		for i, l := range report.Labeled {
			if l.Confidence < x.MinConfidence {
				mismatch("confidence[%d]: got %d, want >= %d", i, l.Confidence, x.MinConfidence)
			}
		}
	}
	if x.Dominant != "" && string(report.Statistics.DominantCategory) != x.Dominant {
		mismatch("dominant: got %s, want %s", report.Statistics.DominantCategory, x.Dominant)
	}
	a := report.CrisisAssessment
	if x.RiskLevel != "" && string(a.RiskLevel) != x.RiskLevel {
		mismatch("risk: got %s, want %s", a.RiskLevel, x.RiskLevel)
	}
	if x.Urgent != nil && a.Urgent != *x.Urgent {
		mismatch("urgent: got %v, want %v", a.Urgent, *x.Urgent)
	}
	if x.MinScore != nil && a.Score < *x.MinScore {
		mismatch("score: got %d, want >= %d", a.Score, *x.MinScore)
	}
	for name, want := range x.Trends {
		found := false
		for _, metric := range report.ProgressMetrics {
			if metric.Name == name {
				found = true
				if string(metric.Trend) != want {
					mismatch("trend %s: got %s, want %s", name, metric.Trend, want)
				}
			}
		}
		if !found {
			mismatch("trend %s: metric missing", name)
		}
	}
	if x.FirstStrategy != "" && (len(report.CopingStrategies) == 0 || report.CopingStrategies[0].ID != x.FirstStrategy) {
		mismatch("first strategy: want %s, got %v", x.FirstStrategy, strategyIDs(report.CopingStrategies))
	}
	if len(report.Insights) < x.MinInsights {
		mismatch("insights: got %d, want >= %d", len(report.Insights), x.MinInsights)
	}

	return CaseResult{ID: c.ID, Passed: len(m) == 0, Mismatches: m}
}

func strategyIDs(s []insight.CopingStrategy) []string {
	ids := make([]string, len(s))
	for i, st := range s {
		ids[i] = st.ID
	}
	return ids
}

// #endregion run

// #region relabel

// Relabel re-classifies stored messages and reports where the persisted
// label or confidence no longer matches.
func Relabel(ctx context.Context, eng *engine.Engine, stored []message.Labeled) (DriftSummary, error) {
	s := DriftSummary{Total: len(stored)}
	for _, m := range stored {
		res, err := eng.Label(ctx, m.Raw(), nil)
		if err != nil {
			return DriftSummary{}, fmt.Errorf("relabel %s: %w", m.ID, err)
		}
		if res.Message.Emotion == m.Emotion && res.Message.Confidence == m.Confidence {
			continue
		}
		s.Changed++
		s.Drifts = append(s.Drifts, Drift{
			ID:         m.ID,
			Stored:     m.Emotion,
			Current:    res.Message.Emotion,
			StoredConf: m.Confidence,
			CurConf:    res.Message.Confidence,
		})
	}
	return s, nil
}

// #endregion relabel
