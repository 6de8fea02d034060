// Package engine wires the analytics components into a single request path:
// validate, classify in parallel, aggregate, then derive crisis risk,
// progress, insights and strategies from the aggregates.
package engine

import (
	"context"
	"fmt"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/medichat-ai/insights-engine/internal/classifier"
	"github.com/medichat-ai/insights-engine/internal/crisis"
	"github.com/medichat-ai/insights-engine/internal/insight"
	"github.com/medichat-ai/insights-engine/internal/lexicon"
	"github.com/medichat-ai/insights-engine/internal/message"
	"github.com/medichat-ai/insights-engine/internal/progress"
	"github.com/medichat-ai/insights-engine/internal/stats"
)

// #region engine-struct

// Engine holds no per-request state and is safe for concurrent use.
type Engine struct {
	config     Config
	classifier *classifier.Classifier
	aggregator *stats.Aggregator
	assessor   *crisis.Assessor
	comparator *progress.Comparator
	generator  *insight.Generator
}

// #endregion engine-struct

// #region constructor

// New validates lex against the strategy catalog and builds every component.
// narrator may be nil.
func New(lex *lexicon.Lexicon, config Config, narrator insight.Narrator) (*Engine, error) {
	if err := lex.Validate(); err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}
	if err := insight.CheckCatalog(lex.Categories()); err != nil {
		return nil, fmt.Errorf("strategy catalog: %w", err)
	}
	return &Engine{
		config:     config,
		classifier: classifier.New(lex, config.Classifier),
		aggregator: stats.NewAggregator(lex),
		assessor:   crisis.NewAssessor(lex, config.Crisis),
		comparator: progress.NewComparator(config.Progress, lex.Len()),
		generator:  insight.NewGenerator(narrator, config.Insight),
	}, nil
}

// #endregion constructor

// #region analyze

// Analyze returns an error only for malformed input or a cancelled ctx.
// Narrator failures degrade to fallback output.
func (e *Engine) Analyze(ctx context.Context, req Request) (Report, error) {
	windows := []struct {
		name string
		msgs []message.Raw
	}{
		{"current", req.Current},
		{"previous", req.Previous},
		{"recent", req.Recent},
	}
	for _, w := range windows {
		if err := message.Validate(w.msgs, req.Now); err != nil {
			return Report{}, fmt.Errorf("%s window: %w", w.name, err)
		}
	}

	current := e.bound(req.Current, e.config.MaxWindowMessages)
	previous := e.bound(req.Previous, e.config.MaxWindowMessages)
	recent := e.bound(req.Recent, e.config.Crisis.MaxWindow)

	// --- Classification fan-out ---
	var curLabeled, prevLabeled, recentLabeled []message.Labeled
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		curLabeled, err = e.classifier.ClassifyBatch(gctx, current)
		return err
	})
	g.Go(func() (err error) {
		prevLabeled, err = e.classifier.ClassifyBatch(gctx, previous)
		return err
	})
	g.Go(func() (err error) {
		recentLabeled, err = e.classifier.ClassifyBatch(gctx, recent)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("classify: %w", err)
	}
	if len(req.Recent) == 0 {
		recentLabeled = curLabeled
	}

	// --- Aggregation (needs complete windows) ---
	curStats := e.aggregator.Aggregate(curLabeled)
	prevStats := e.aggregator.Aggregate(prevLabeled)

	// --- Derived views ---
	assessment := e.assessor.Assess(recentLabeled)
	metrics := e.comparator.Compare(curStats, prevStats)

	prefs := insight.DefaultPreferences()
	if req.Preferences != nil {
		prefs = *req.Preferences
	}
	var sample []string
	if !prefs.PrivacyMode {
		sample = message.Texts(curLabeled)
	}
	var insights []insight.Insight
	var strategies []insight.CopingStrategy
	ng, nctx := errgroup.WithContext(ctx)
	ng.Go(func() error {
		insights = e.generator.Insights(nctx, curStats, sample)
		return nil
	})
	ng.Go(func() error {
		strategies = e.generator.Strategies(nctx, curStats, prefs)
		return nil
	})
	_ = ng.Wait()

	log.Printf("[ENGINE] analyze: current=%d previous=%d dominant=%s stability=%.1f risk=%s score=%d",
		curStats.TotalCount, prevStats.TotalCount, curStats.DominantCategory,
		curStats.StabilityScore, assessment.RiskLevel, assessment.Score)

	return Report{
		Statistics:             curStats,
		Insights:               insights,
		CrisisAssessment:       assessment,
		ProgressMetrics:        metrics,
		CopingStrategies:       strategies,
		TimeframeDays:          req.TimeframeDays,
		HasData:                curStats.TotalCount > 0,
		PreviousPeriodMessages: prevStats.TotalCount,
		EmotionData:            e.chart(curLabeled),
		Labeled:                curLabeled,
	}, nil
}

// #endregion analyze

// #region label

// Label classifies one incoming message and assesses crisis risk over
// recent plus the new message. The caller persists the label.
func (e *Engine) Label(ctx context.Context, raw message.Raw, recent []message.Raw) (LabelResult, error) {
	if err := message.Validate([]message.Raw{raw}, raw.Timestamp); err != nil {
		return LabelResult{}, fmt.Errorf("message: %w", err)
	}
	if err := message.Validate(recent, raw.Timestamp); err != nil {
		return LabelResult{}, fmt.Errorf("recent window: %w", err)
	}

	labeled := e.classifier.Label(raw)

	window := e.bound(recent, e.config.Crisis.MaxWindow-1)
	recentLabeled, err := e.classifier.ClassifyBatch(ctx, window)
	if err != nil {
		return LabelResult{}, fmt.Errorf("classify: %w", err)
	}
	assessment := e.assessor.Assess(append(recentLabeled, labeled))

	log.Printf("[ENGINE] label: emotion=%s confidence=%d risk=%s score=%d",
		labeled.Emotion, labeled.Confidence, assessment.RiskLevel, assessment.Score)

	return LabelResult{Message: labeled, Crisis: assessment}, nil
}

// #endregion label

// #region helpers

// bound returns a chronologically sorted copy holding at most the newest n
// messages. n <= 0 keeps everything.
func (e *Engine) bound(msgs []message.Raw, n int) []message.Raw {
	out := append([]message.Raw(nil), msgs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

func (e *Engine) chart(msgs []message.Labeled) []ChartPoint {
	if e.config.ChartPoints > 0 && len(msgs) > e.config.ChartPoints {
		msgs = msgs[len(msgs)-e.config.ChartPoints:]
	}
	points := make([]ChartPoint, len(msgs))
	for i, m := range msgs {
		points[i] = ChartPoint{
			Date:       m.Timestamp.UTC().Format("2006-01-02"),
			Emotion:    m.Emotion,
			Confidence: m.Confidence,
		}
	}
	return points
}

// #endregion helpers
