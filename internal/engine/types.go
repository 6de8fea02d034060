package engine

import (
	"time"

	"github.com/medichat-ai/insights-engine/internal/classifier"
	"github.com/medichat-ai/insights-engine/internal/crisis"
	"github.com/medichat-ai/insights-engine/internal/insight"
	"github.com/medichat-ai/insights-engine/internal/lexicon"
	"github.com/medichat-ai/insights-engine/internal/message"
	"github.com/medichat-ai/insights-engine/internal/progress"
	"github.com/medichat-ai/insights-engine/internal/stats"
)

// #region config

// Config groups every component's constants.
type Config struct {
	Classifier classifier.Config
	Crisis     crisis.Config
	Progress   progress.Config
	Insight    insight.Config

	MaxWindowMessages int // per analysis window, most recent kept
	ChartPoints       int // trailing points in Report.EmotionData
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Classifier:        classifier.DefaultConfig(),
		Crisis:            crisis.DefaultConfig(),
		Progress:          progress.DefaultConfig(),
		Insight:           insight.DefaultConfig(),
		MaxWindowMessages: 200,
		ChartPoints:       30,
	}
}

// #endregion config

// #region request

// Request is one analytics call. Current and Previous are equal-length
// periods; Recent is the crisis window and defaults to the tail of Current.
type Request struct {
	Current       []message.Raw
	Previous      []message.Raw
	Recent        []message.Raw
	Preferences   *insight.Preferences // nil means insight.DefaultPreferences()
	TimeframeDays int
	Now           time.Time // validation reference; zero skips the future check
}

// #endregion request

// #region report

// ChartPoint is one labeled message reduced for plotting.
type ChartPoint struct {
	Date       string           `json:"date"`
	Emotion    lexicon.Category `json:"emotion"`
	Confidence int              `json:"confidence"`
}

// Report is the complete analytics result.
type Report struct {
	Statistics             stats.EmotionStatistics  `json:"statistics"`
	Insights               []insight.Insight        `json:"insights"`
	CrisisAssessment       crisis.Assessment        `json:"crisisAssessment"`
	ProgressMetrics        []progress.Metric        `json:"progressMetrics"`
	CopingStrategies       []insight.CopingStrategy `json:"copingStrategies"`
	TimeframeDays          int                      `json:"timeframeDays"`
	HasData                bool                     `json:"hasData"`
	PreviousPeriodMessages int                      `json:"previousPeriodMessages"`
	EmotionData            []ChartPoint             `json:"emotionData"`

	// Labels for the current window, for callers that persist them.
	Labeled []message.Labeled `json:"-"`
}

// LabelResult is the chat-path output for one incoming message.
type LabelResult struct {
	Message message.Labeled   `json:"message"`
	Crisis  crisis.Assessment `json:"crisis"`
}

// #endregion report
