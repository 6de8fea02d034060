package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/medichat-ai/insights-engine/internal/insight"
	"github.com/medichat-ai/insights-engine/internal/message"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one engine request plus the outcome it must produce.
type FixtureCase struct {
	ID            string               `json:"id"`
	Current       []message.Raw        `json:"current"`
	Previous      []message.Raw        `json:"previous,omitempty"`
	Recent        []message.Raw        `json:"recent,omitempty"`
	Preferences   *insight.Preferences `json:"preferences,omitempty"`
	TimeframeDays int                  `json:"timeframe_days,omitempty"`
	Expect        Expectation          `json:"expect"`
}

// Expectation lists the checked fields. Zero values are not checked.
type Expectation struct {
	Malformed     bool              `json:"malformed,omitempty"`
	Labels        []string          `json:"labels,omitempty"`
	MinConfidence int               `json:"min_confidence,omitempty"`
	Dominant      string            `json:"dominant,omitempty"`
	RiskLevel     string            `json:"risk_level,omitempty"`
	Urgent        *bool             `json:"urgent,omitempty"`
	MinScore      *int              `json:"min_score,omitempty"`
	Trends        map[string]string `json:"trends,omitempty"`
	FirstStrategy string            `json:"first_strategy,omitempty"`
	MinInsights   int               `json:"min_insights,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and strictly parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	seen := make(map[string]bool, len(f.Cases))
	for i, c := range f.Cases {
		if c.ID == "" {
			return nil, fmt.Errorf("fixture %s: case %d has no id", path, i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("fixture %s: duplicate case id %q", path, c.ID)
		}
		seen[c.ID] = true
	}
	return &f, nil
}

// #endregion fixture-loader
