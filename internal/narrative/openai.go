// Package narrative implements insight.Narrator against external
// generation services.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/medichat-ai/insights-engine/internal/insight"
)

// #region errors

var (
	// ErrRateLimited is returned when the local limiter denies a call.
	ErrRateLimited = errors.New("narrative: rate limited")
	// ErrEmptyOutput is returned when the service replies with no text.
	ErrEmptyOutput = errors.New("narrative: empty output")
)

// #endregion errors

// #region openai

// OpenAIConfig configures the Responses API narrator.
type OpenAIConfig struct {
	APIKey          string
	Model           string
	BaseURL         string // optional override
	MaxOutputTokens int64
}

// OpenAINarrator requests strict JSON-schema output from the Responses API.
// It never retries: a failed call falls back immediately.
type OpenAINarrator struct {
	client    *openai.Client
	model     string
	maxTokens int64
}

// NewOpenAINarrator builds a client from cfg.
func NewOpenAINarrator(cfg OpenAIConfig) (*OpenAINarrator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai narrator: api key is empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai narrator: model is empty")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	client := openai.NewClient(opts...)
	return &OpenAINarrator{client: &client, model: cfg.Model, maxTokens: maxTokens}, nil
}

// Narrate sends the request context as JSON and returns the model's text.
func (n *OpenAINarrator) Narrate(ctx context.Context, req insight.NarrativeRequest) (string, error) {
	name, schema, instructions, err := shapeFor(req.Kind)
	if err != nil {
		return "", err
	}

	input, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	params := responses.ResponseNewParams{
		Model:           n.model,
		MaxOutputTokens: openai.Int(n.maxTokens),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(string(input), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   name,
					Schema: schema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		},
	}

	resp, err := n.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("responses: %w", err)
	}
	out := strings.TrimSpace(resp.OutputText())
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}

func shapeFor(kind insight.Kind) (string, map[string]any, string, error) {
	switch kind {
	case insight.KindInsights:
		return "MentalHealthInsights", insightsSchema, insightsInstructions, nil
	case insight.KindStrategies:
		return "CopingStrategies", strategiesSchema, strategiesInstructions, nil
	default:
		return "", nil, "", fmt.Errorf("unknown narrative kind %q", kind)
	}
}

// #endregion openai

// #region prompts

const insightsInstructions = `You analyze aggregate emotional statistics from a mental health journaling app.

The user message is JSON with "statistics" (totalCount, averageConfidence, categoryCounts, dominantCategory, stabilityScore 0-100, diversity) and optionally "sample", a few short recent message previews.

Return 3 to 5 insights. Each has a type (positive, concern or neutral), a title under 50 characters, a 100-200 character description grounded in the statistics, a 100-200 character actionable recommendation, and a confidence between 75 and 95.

Be specific and encouraging. Do not diagnose. Do not quote the sample back.`

const strategiesInstructions = `You recommend coping strategies for a user of a mental health journaling app.

The user message is JSON with "statistics" (dominantCategory, stabilityScore, totalCount, diversity, categoryCounts) and "preferences" (responseStyle: empathetic, clinical, casual or direct).

Return up to 5 strategies. Each has a short unique kebab-case id, a title under 40 characters, 150-250 characters of concrete steps, a category (breathing, mindfulness, cognitive, behavioral or social), an effectiveness between 70 and 95, and a personalizedReason of 100-200 characters written in the requested responseStyle.

Strategies must be practical and evidence-based.`

// #endregion prompts
