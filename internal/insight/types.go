package insight

import (
	"context"
	"time"

	"github.com/medichat-ai/insights-engine/internal/stats"
)

// #region insight

// InsightType classifies the tone of an insight.
type InsightType string

const (
	InsightPositive InsightType = "positive"
	InsightConcern  InsightType = "concern"
	InsightNeutral  InsightType = "neutral"
)

// Insight is a human-readable observation about a statistics window.
type Insight struct {
	Type           InsightType `json:"type" jsonschema:"enum=positive,enum=concern,enum=neutral"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Recommendation string      `json:"recommendation"`
	Confidence     int         `json:"confidence"`
}

// #endregion insight

// #region strategy

// StrategyCategory is the therapeutic family a coping strategy belongs to.
type StrategyCategory string

const (
	StrategyBreathing   StrategyCategory = "breathing"
	StrategyMindfulness StrategyCategory = "mindfulness"
	StrategyCognitive   StrategyCategory = "cognitive"
	StrategyBehavioral  StrategyCategory = "behavioral"
	StrategySocial      StrategyCategory = "social"
)

// Valid reports whether c is one of the known strategy families.
func (c StrategyCategory) Valid() bool {
	switch c {
	case StrategyBreathing, StrategyMindfulness, StrategyCognitive, StrategyBehavioral, StrategySocial:
		return true
	}
	return false
}

// CopingStrategy is one recommended exercise.
type CopingStrategy struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Category           StrategyCategory `json:"category" jsonschema:"enum=breathing,enum=mindfulness,enum=cognitive,enum=behavioral,enum=social"`
	Effectiveness      int              `json:"effectiveness"`
	PersonalizedReason string           `json:"personalizedReason"`
}

// #endregion strategy

// #region preferences

// Preferences is the read-only personalization input.
type Preferences struct {
	ResponseStyle string `json:"responseStyle"` // empathetic | clinical | casual | direct
	Notifications bool   `json:"notifications"`
	PrivacyMode   bool   `json:"privacyMode"` // withhold message samples from the narrator
}

// DefaultPreferences matches the defaults given to a new account.
func DefaultPreferences() Preferences {
	return Preferences{
		ResponseStyle: "empathetic",
		Notifications: true,
		PrivacyMode:   true,
	}
}

// #endregion preferences

// #region narrator

// Kind selects which payload a narrator is asked to produce.
type Kind string

const (
	KindInsights   Kind = "insights"
	KindStrategies Kind = "strategies"
)

// NarrativeRequest is the structured context handed to a narrator. Sample
// holds at most a few truncated message previews and is empty in privacy mode.
type NarrativeRequest struct {
	ID          string                  `json:"id"`
	Kind        Kind                    `json:"kind"`
	Statistics  stats.EmotionStatistics `json:"statistics"`
	Sample      []string                `json:"sample,omitempty"`
	Preferences *Preferences            `json:"preferences,omitempty"`
}

// Narrator produces a JSON document for a request: an InsightsPayload for
// KindInsights, a StrategiesPayload for KindStrategies. The output is
// untrusted and always passes through strict decoding.
type Narrator interface {
	Narrate(ctx context.Context, req NarrativeRequest) (string, error)
}

// InsightsPayload is the required narrator output shape for KindInsights.
type InsightsPayload struct {
	Insights []Insight `json:"insights"`
}

// StrategiesPayload is the required narrator output shape for KindStrategies.
type StrategiesPayload struct {
	Strategies []CopingStrategy `json:"strategies"`
}

// #endregion narrator

// #region config

// Config bounds the narrator call and holds the fallback thresholds.
type Config struct {
	Timeout       time.Duration // per narrator call; 0 = caller's deadline only
	SampleSize    int           // most recent previews sent with insight requests
	SampleChars   int           // runes per preview
	MaxInsights   int
	MaxStrategies int

	StableAbove   float64 // stability for a positive insight
	VariableBelow float64 // stability for a concern insight
	EngagedAbove  int     // message count for an engagement insight
	AwareAbove    float64 // average confidence for an awareness insight
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		Timeout:       8 * time.Second,
		SampleSize:    10,
		SampleChars:   100,
		MaxInsights:   5,
		MaxStrategies: 5,

		StableAbove:   70,
		VariableBelow: 40,
		EngagedAbove:  20,
		AwareAbove:    80,
	}
}

// #endregion config
