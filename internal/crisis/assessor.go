// Package crisis scores a window of recent messages for crisis risk. It runs
// without any network or model dependency.
package crisis

import (
	"fmt"
	"strings"

	"github.com/medichat-ai/insights-engine/internal/lexicon"
	"github.com/medichat-ai/insights-engine/internal/message"
)

// #region assessor

// Assessor evaluates crisis risk over a bounded message window.
type Assessor struct {
	lex    *lexicon.Lexicon
	config Config
}

// NewAssessor creates an assessor with the given lexicon and thresholds.
func NewAssessor(lex *lexicon.Lexicon, config Config) *Assessor {
	return &Assessor{lex: lex, config: config}
}

// #endregion assessor

// #region assess

// Assess scores the most recent MaxWindow messages of window, which must be
// in chronological order. Matching is plain substring search over the joined
// text, so partial or ambiguous phrasing errs toward a higher tier.
func (a *Assessor) Assess(window []message.Labeled) Assessment {
	if len(window) == 0 {
		return Assessment{
			RiskLevel:       RiskLow,
			Score:           a.config.EmptyScore,
			Factors:         []string{},
			Recommendations: clone(a.config.EmptyRecommendations),
			Urgent:          false,
		}
	}
	if a.config.MaxWindow > 0 && len(window) > a.config.MaxWindow {
		window = window[len(window)-a.config.MaxWindow:]
	}

	parts := make([]string, len(window))
	for i, m := range window {
		parts[i] = lexicon.Normalize(m.Text)
	}
	content := strings.Join(parts, " ")

	score := 0
	factors := []string{}

	// --- High-severity phrases ---
	for _, group := range a.lex.CrisisGroups() {
		hits := 0
		for _, phrase := range group.Phrases {
			if strings.Contains(content, phrase) {
				hits++
			}
		}
		if hits > 0 {
			score += hits * a.config.CrisisPoints
			factors = append(factors, fmt.Sprintf("Language associated with %s", group.Name))
		}
	}

	// --- Moderate-concern phrases ---
	concernFactors := 0
	for _, phrase := range a.lex.ConcernPhrases() {
		if !strings.Contains(content, phrase) {
			continue
		}
		score += a.config.ConcernPoints
		if concernFactors < a.config.MaxConcernFactors {
			factors = append(factors, fmt.Sprintf("Expressions of %s", phrase))
			concernFactors++
		}
	}

	// --- Negative emotional share ---
	negative := 0
	for _, m := range window {
		if a.lex.Negative(m.Emotion) {
			negative++
		}
	}
	if float64(negative) > a.config.NegativeShareAbove*float64(len(window)) {
		score += a.config.NegativePoints
		factors = append(factors, "Predominantly negative emotional patterns")
	}

	level := a.tier(score)
	return Assessment{
		RiskLevel:       level,
		Score:           score,
		Factors:         factors,
		Recommendations: a.recommendations(level),
		Urgent:          level == RiskCritical,
	}
}

// #endregion assess

// #region tiering

// tier evaluates cut points highest-first.
func (a *Assessor) tier(score int) RiskLevel {
	switch {
	case score >= a.config.CriticalAt:
		return RiskCritical
	case score >= a.config.HighAt:
		return RiskHigh
	case score >= a.config.MediumAt:
		return RiskMedium
	default:
		return RiskLow
	}
}

func (a *Assessor) recommendations(level RiskLevel) []string {
	switch level {
	case RiskCritical:
		return clone(a.config.CriticalRecommendations)
	case RiskHigh:
		return clone(a.config.HighRecommendations)
	case RiskMedium:
		return clone(a.config.MediumRecommendations)
	default:
		return clone(a.config.LowRecommendations)
	}
}

func clone(in []string) []string {
	return append([]string{}, in...)
}

// #endregion tiering
