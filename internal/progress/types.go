package progress

// #region trend

// Trend is the direction of change between two periods.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// #endregion trend

// #region metric

// Metric compares one tracked dimension across two periods.
// ChangePercentage is a magnitude; Trend carries the direction.
type Metric struct {
	Name             string  `json:"name"`
	CurrentValue     float64 `json:"currentValue"`
	PreviousValue    float64 `json:"previousValue"`
	Trend            Trend   `json:"trend"`
	ChangePercentage float64 `json:"changePercentage"`
	Insight          string  `json:"insight"`
}

// Metric names.
const (
	MetricStability  = "Emotional Stability"
	MetricAwareness  = "Emotional Awareness"
	MetricEngagement = "Engagement Level"
	MetricRange      = "Emotional Range"
)

// #endregion metric

// #region config

// Config holds per-metric noise thresholds. A change must exceed the
// threshold in either direction to count as a trend.
type Config struct {
	StabilityThreshold   float64 // points
	AwarenessThreshold   float64 // points
	EngagementThreshold  int     // messages
	RangeThreshold       float64 // points
	EngagementSaturation int     // message count reported as 100%
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		StabilityThreshold:   5,
		AwarenessThreshold:   5,
		EngagementThreshold:  2,
		RangeThreshold:       5,
		EngagementSaturation: 30,
	}
}

// #endregion config
