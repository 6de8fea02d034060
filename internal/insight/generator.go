// Package insight turns statistics into insights and coping strategies.
// A narrator may enrich the output; its reply is strictly decoded and any
// failure falls back to deterministic rules.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/medichat-ai/insights-engine/internal/message"
	"github.com/medichat-ai/insights-engine/internal/stats"
)

// #region generator

// Generator produces insights and strategies. A nil narrator means the
// deterministic path is always used.
type Generator struct {
	narrator Narrator
	config   Config
}

// NewGenerator creates a generator.
func NewGenerator(narrator Narrator, config Config) *Generator {
	return &Generator{narrator: narrator, config: config}
}

// #endregion generator

// #region insights

// Insights never returns an empty list. sample is the caller's most recent
// message texts; only truncated previews of the tail are forwarded.
func (g *Generator) Insights(ctx context.Context, s stats.EmotionStatistics, sample []string) []Insight {
	if s.TotalCount == 0 {
		return []Insight{gettingStarted()}
	}

	if g.narrator != nil {
		req := NarrativeRequest{
			ID:         uuid.New().String(),
			Kind:       KindInsights,
			Statistics: s,
			Sample:     g.previews(sample),
		}
		var payload InsightsPayload
		err := g.narrate(ctx, req, &payload)
		if err == nil {
			err = g.checkInsights(&payload)
		}
		if err == nil {
			log.Printf("[INSIGHT] narrated %d insights (req=%s)", len(payload.Insights), req.ID)
			return payload.Insights
		}
		log.Printf("[INSIGHT] insights fallback (req=%s): %v", req.ID, err)
	}

	return g.fallbackInsights(s)
}

func gettingStarted() Insight {
	return Insight{
		Type:           InsightNeutral,
		Title:          "Getting Started",
		Description:    "Start chatting with MediChat-AI to begin building your mental health insights.",
		Recommendation: "Share your thoughts and feelings to help us understand your emotional patterns.",
		Confidence:     100,
	}
}

func (g *Generator) fallbackInsights(s stats.EmotionStatistics) []Insight {
	var out []Insight

	switch {
	case s.StabilityScore > g.config.StableAbove:
		out = append(out, Insight{
			Type:           InsightPositive,
			Title:          "Strong Emotional Stability",
			Description:    fmt.Sprintf("Your emotional patterns show %s%% stability, indicating good emotional regulation.", num(s.StabilityScore)),
			Recommendation: "Continue your current coping strategies and maintain this positive trend.",
			Confidence:     85,
		})
	case s.StabilityScore < g.config.VariableBelow:
		out = append(out, Insight{
			Type:           InsightConcern,
			Title:          "Emotional Variability",
			Description:    fmt.Sprintf("Your emotions show high variability (%s%% stability). This might indicate stress.", num(s.StabilityScore)),
			Recommendation: "Consider practicing mindfulness or speaking with a mental health professional.",
			Confidence:     80,
		})
	}

	if s.TotalCount > g.config.EngagedAbove {
		out = append(out, Insight{
			Type:           InsightPositive,
			Title:          "Active Engagement",
			Description:    fmt.Sprintf("You've shared %d messages, showing commitment to your mental health journey.", s.TotalCount),
			Recommendation: "Keep up this excellent engagement with self-reflection and growth.",
			Confidence:     90,
		})
	}

	if s.AverageConfidence > g.config.AwareAbove {
		out = append(out, Insight{
			Type:           InsightPositive,
			Title:          "High Emotional Awareness",
			Description:    fmt.Sprintf("Your %s%% average confidence suggests strong emotional self-awareness.", num(s.AverageConfidence)),
			Recommendation: "Use this self-awareness to continue building emotional intelligence.",
			Confidence:     85,
		})
	}

	if len(out) == 0 {
		out = append(out, Insight{
			Type:           InsightNeutral,
			Title:          "Building Your Emotional Picture",
			Description:    fmt.Sprintf("Across %d messages your most frequent emotion has been %s.", s.TotalCount, s.DominantCategory),
			Recommendation: "Keep checking in regularly so patterns become clearer over time.",
			Confidence:     75,
		})
	}
	return out
}

// #endregion insights

// #region strategies

// Strategies never returns an empty list and returns at most MaxStrategies.
func (g *Generator) Strategies(ctx context.Context, s stats.EmotionStatistics, prefs Preferences) []CopingStrategy {
	if s.TotalCount == 0 {
		return g.assemble(nil, prefs.ResponseStyle)
	}

	if g.narrator != nil {
		req := NarrativeRequest{
			ID:          uuid.New().String(),
			Kind:        KindStrategies,
			Statistics:  s,
			Preferences: &prefs,
		}
		var payload StrategiesPayload
		err := g.narrate(ctx, req, &payload)
		if err == nil {
			err = g.checkStrategies(&payload)
		}
		if err == nil {
			log.Printf("[INSIGHT] narrated %d strategies (req=%s)", len(payload.Strategies), req.ID)
			return payload.Strategies
		}
		log.Printf("[INSIGHT] strategies fallback (req=%s): %v", req.ID, err)
	}

	var first []CopingStrategy
	if st, ok := catalog[s.DominantCategory]; ok {
		first = append(first, st)
	}
	return g.assemble(first, prefs.ResponseStyle)
}

// assemble appends the universal set, drops duplicate ids and caps the list.
func (g *Generator) assemble(first []CopingStrategy, style string) []CopingStrategy {
	seen := make(map[string]bool)
	var out []CopingStrategy
	for _, s := range append(first, universal...) {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, frame(s, style))
		if g.config.MaxStrategies > 0 && len(out) == g.config.MaxStrategies {
			break
		}
	}
	return out
}

// #endregion strategies

// #region narrate

// narrate calls the narrator under the configured timeout and strictly
// decodes the reply into out.
func (g *Generator) narrate(ctx context.Context, req NarrativeRequest, out any) error {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	raw, err := g.narrator.Narrate(ctx, req)
	if err != nil {
		return fmt.Errorf("narrate: %w", err)
	}
	if err := decodeStrict(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", req.Kind, err)
	}
	return nil
}

// decodeStrict accepts exactly one JSON object with no unknown fields.
func decodeStrict(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return io.ErrUnexpectedEOF
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON object")
	}
	return nil
}

func (g *Generator) checkInsights(p *InsightsPayload) error {
	if len(p.Insights) == 0 {
		return errors.New("no insights")
	}
	for i, in := range p.Insights {
		switch {
		case in.Type != InsightPositive && in.Type != InsightConcern && in.Type != InsightNeutral:
			return fmt.Errorf("insight %d: unknown type %q", i, in.Type)
		case strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "":
			return fmt.Errorf("insight %d: empty title or description", i)
		case in.Confidence < 0 || in.Confidence > 100:
			return fmt.Errorf("insight %d: confidence %d out of range", i, in.Confidence)
		}
	}
	if g.config.MaxInsights > 0 && len(p.Insights) > g.config.MaxInsights {
		p.Insights = p.Insights[:g.config.MaxInsights]
	}
	return nil
}

func (g *Generator) checkStrategies(p *StrategiesPayload) error {
	if len(p.Strategies) == 0 {
		return errors.New("no strategies")
	}
	seen := make(map[string]bool)
	for i, s := range p.Strategies {
		if err := checkStrategy(s); err != nil {
			return fmt.Errorf("strategy %d: %w", i, err)
		}
		if seen[s.ID] {
			return fmt.Errorf("strategy %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
	}
	if g.config.MaxStrategies > 0 && len(p.Strategies) > g.config.MaxStrategies {
		p.Strategies = p.Strategies[:g.config.MaxStrategies]
	}
	return nil
}

// #endregion narrate

// #region helpers

func (g *Generator) previews(sample []string) []string {
	if len(sample) == 0 || g.config.SampleSize <= 0 {
		return nil
	}
	if len(sample) > g.config.SampleSize {
		sample = sample[len(sample)-g.config.SampleSize:]
	}
	out := make([]string, len(sample))
	for i, text := range sample {
		out[i] = message.Preview(text, g.config.SampleChars)
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// #endregion helpers
