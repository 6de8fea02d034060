// Package stats computes distributional statistics over a labeled message set.
package stats

import (
	"math"

	"github.com/medichat-ai/insights-engine/internal/lexicon"
	"github.com/medichat-ai/insights-engine/internal/message"
)

// #region types

// EmotionStatistics is a pure view over one message window.
type EmotionStatistics struct {
	TotalCount        int                      `json:"totalCount"`
	AverageConfidence float64                  `json:"averageConfidence"`
	CategoryCounts    map[lexicon.Category]int `json:"categoryCounts"`
	DominantCategory  lexicon.Category         `json:"dominantCategory"`
	StabilityScore    float64                  `json:"stabilityScore"`
	Diversity         int                      `json:"diversity"`
}

// EmptyStability is reported for a window with no messages.
const EmptyStability = 50

// Empty returns the zero-data default.
func Empty() EmotionStatistics {
	return EmotionStatistics{
		CategoryCounts:   map[lexicon.Category]int{},
		DominantCategory: lexicon.Neutral,
		StabilityScore:   EmptyStability,
	}
}

// #endregion types

// #region aggregator

// Aggregator reads category weights and ordering from a lexicon.
type Aggregator struct {
	lex *lexicon.Lexicon
}

// NewAggregator creates an Aggregator over lex.
func NewAggregator(lex *lexicon.Lexicon) *Aggregator {
	return &Aggregator{lex: lex}
}

// Aggregate requires the complete window: stability depends on every
// message. Labels outside the lexicon are counted as neutral.
func (a *Aggregator) Aggregate(msgs []message.Labeled) EmotionStatistics {
	if len(msgs) == 0 {
		return Empty()
	}

	counts := make(map[lexicon.Category]int)
	weights := make([]float64, len(msgs))
	var confSum float64
	for i, m := range msgs {
		cat := m.Emotion
		if a.lex.Rank(cat) == a.lex.Len() {
			cat = lexicon.Neutral
		}
		counts[cat]++
		weights[i] = a.lex.Weight(cat)
		confSum += float64(m.Confidence)
	}

	return EmotionStatistics{
		TotalCount:        len(msgs),
		AverageConfidence: roundTo(confSum/float64(len(msgs)), 1),
		CategoryCounts:    counts,
		DominantCategory:  a.dominant(counts),
		StabilityScore:    roundTo(math.Max(0, 100-math.Sqrt(variance(weights))), 1),
		Diversity:         len(counts),
	}
}

// #endregion aggregator

// #region helpers

// dominant picks the highest count; ties go to the earlier category.
func (a *Aggregator) dominant(counts map[lexicon.Category]int) lexicon.Category {
	best := lexicon.Neutral
	bestCount := 0
	for _, c := range a.lex.Categories() {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	return best
}

// variance computes the population variance of xs.
func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	mean := sum / float64(len(xs))
	var acc float64
	for _, v := range xs {
		d := v - mean
		acc += d * d
	}
	return acc / float64(len(xs))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// #endregion helpers
