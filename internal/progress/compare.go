// Package progress compares two statistics windows and classifies the
// direction of change per tracked dimension.
package progress

import (
	"math"

	"github.com/medichat-ai/insights-engine/internal/stats"
)

// #region comparator

// Comparator turns a (current, previous) statistics pair into metrics.
type Comparator struct {
	config        Config
	categoryCount int
}

// NewComparator creates a comparator. categoryCount is the size of the
// lexicon's category set and normalizes the emotional range metric.
func NewComparator(config Config, categoryCount int) *Comparator {
	return &Comparator{config: config, categoryCount: categoryCount}
}

// #endregion comparator

// #region compare

// Compare returns one metric per tracked dimension in a fixed order.
// An empty previous window is treated as zero engagement and zero range.
func (c *Comparator) Compare(current, previous stats.EmotionStatistics) []Metric {
	return []Metric{
		c.stability(current, previous),
		c.awareness(current, previous),
		c.engagement(current, previous),
		c.emotionalRange(current, previous),
	}
}

// #endregion compare

// #region metrics

func (c *Comparator) stability(cur, prev stats.EmotionStatistics) Metric {
	diff := cur.StabilityScore - prev.StabilityScore
	trend := classify(diff, c.config.StabilityThreshold)
	return Metric{
		Name:             MetricStability,
		CurrentValue:     cur.StabilityScore,
		PreviousValue:    prev.StabilityScore,
		Trend:            trend,
		ChangePercentage: magnitude(diff),
		Insight: pick(trend,
			"Your emotional stability has improved, showing better emotional regulation.",
			"Your emotional stability remains consistent.",
			"Your emotional stability has decreased. Consider focusing on stress management."),
	}
}

func (c *Comparator) awareness(cur, prev stats.EmotionStatistics) Metric {
	diff := cur.AverageConfidence - prev.AverageConfidence
	trend := classify(diff, c.config.AwarenessThreshold)
	return Metric{
		Name:             MetricAwareness,
		CurrentValue:     cur.AverageConfidence,
		PreviousValue:    prev.AverageConfidence,
		Trend:            trend,
		ChangePercentage: magnitude(diff),
		Insight: pick(trend,
			"Your emotional self-awareness has increased noticeably.",
			"Your emotional awareness remains steady.",
			"Your emotional clarity may need attention. Consider mindfulness practices."),
	}
}

func (c *Comparator) engagement(cur, prev stats.EmotionStatistics) Metric {
	curValue := normalize(float64(cur.TotalCount), float64(c.config.EngagementSaturation))
	prevValue := normalize(float64(prev.TotalCount), float64(c.config.EngagementSaturation))
	trend := classify(float64(cur.TotalCount-prev.TotalCount), float64(c.config.EngagementThreshold))
	return Metric{
		Name:             MetricEngagement,
		CurrentValue:     math.Round(curValue),
		PreviousValue:    math.Round(prevValue),
		Trend:            trend,
		ChangePercentage: magnitude(curValue - prevValue),
		Insight: pick(trend,
			"Increased engagement shows commitment to your mental health journey.",
			"You're maintaining consistent engagement with your mental health.",
			"Consider keeping regular check-ins for better mental health tracking."),
	}
}

func (c *Comparator) emotionalRange(cur, prev stats.EmotionStatistics) Metric {
	curValue := normalize(float64(cur.Diversity), float64(c.categoryCount))
	prevValue := normalize(float64(prev.Diversity), float64(c.categoryCount))
	diff := curValue - prevValue
	trend := classify(diff, c.config.RangeThreshold)
	return Metric{
		Name:             MetricRange,
		CurrentValue:     math.Round(curValue),
		PreviousValue:    math.Round(prevValue),
		Trend:            trend,
		ChangePercentage: magnitude(diff),
		Insight: pick(trend,
			"You're experiencing a wider range of emotions, which is healthy.",
			"Your emotional range remains consistent.",
			"Your emotional range has narrowed. This might indicate mood patterns to explore."),
	}
}

// #endregion metrics

// #region helpers

func classify(diff, threshold float64) Trend {
	switch {
	case diff > threshold:
		return TrendImproving
	case diff < -threshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// normalize maps v onto 0-100 against a saturation point.
func normalize(v, saturation float64) float64 {
	if saturation <= 0 {
		return 0
	}
	return math.Min(100, v/saturation*100)
}

func magnitude(diff float64) float64 {
	return math.Round(math.Abs(diff))
}

func pick(trend Trend, improving, stable, declining string) string {
	switch trend {
	case TrendImproving:
		return improving
	case TrendDeclining:
		return declining
	default:
		return stable
	}
}

// #endregion helpers
