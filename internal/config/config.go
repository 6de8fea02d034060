// Package config reads process configuration from the environment and
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/medichat-ai/insights-engine/internal/engine"
	"github.com/medichat-ai/insights-engine/internal/lexicon"
	"github.com/medichat-ai/insights-engine/internal/narrative"
)

// #region config

// Config is the process-level configuration shared by the commands.
type Config struct {
	DBPath string
	UserID string

	Provider         string
	OpenAIKey        string
	OpenAIModel      string
	OpenAIBaseURL    string
	NarrativeAddr    string
	NarrativeTimeout time.Duration
	NarrativeRPS     float64
	NarrativeBurst   int

	LexiconPath   string
	TimeframeDays int
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		DBPath:           "insights.db",
		UserID:           "local",
		Provider:         narrative.ProviderNone,
		OpenAIModel:      "gpt-4o-mini",
		NarrativeAddr:    "localhost:50052",
		NarrativeTimeout: 8 * time.Second,
		NarrativeRPS:     0.5,
		NarrativeBurst:   2,
		TimeframeDays:    30,
	}
}

// #endregion config

// #region load

// Load reads .env files (unless disabled) and then the environment.
func Load() (Config, error) {
	if err := LoadDotEnv(".env.local", ".env"); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

// LoadDotEnv loads each existing file in order. Variables already set are
// never overwritten. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if dotEnvDisabled() {
		return nil
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
		log.Printf("[CONFIG] loaded env from %s", p)
	}
	return nil
}

func dotEnvDisabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("INSIGHTS_DOTENV"))) {
	case "0", "false", "off", "no":
		return true
	}
	return false
}

// FromEnv overlays environment variables on Default and validates the result.
func FromEnv() (Config, error) {
	c := Default()
	c.DBPath = envOr("INSIGHTS_DB", c.DBPath)
	c.UserID = envOr("INSIGHTS_USER", c.UserID)
	c.Provider = strings.ToLower(envOr("NARRATIVE_PROVIDER", c.Provider))
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIModel = envOr("OPENAI_MODEL", c.OpenAIModel)
	c.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	c.NarrativeAddr = envOr("NARRATIVE_ADDR", c.NarrativeAddr)
	c.LexiconPath = os.Getenv("LEXICON_PATH")

	var errs []error
	if v := os.Getenv("NARRATIVE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("NARRATIVE_TIMEOUT: %w", err))
		}
		c.NarrativeTimeout = d
	}
	if v := os.Getenv("NARRATIVE_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("NARRATIVE_RPS: %w", err))
		}
		c.NarrativeRPS = f
	}
	if v := os.Getenv("NARRATIVE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("NARRATIVE_BURST: %w", err))
		}
		c.NarrativeBurst = n
	}
	if v := os.Getenv("TIMEFRAME_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TIMEFRAME_DAYS: %w", err))
		}
		c.TimeframeDays = n
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return c, c.Validate()
}

// #endregion load

// #region validate

// Validate checks value ranges and provider requirements.
func (c Config) Validate() error {
	var errs []error
	switch c.Provider {
	case narrative.ProviderNone, narrative.ProviderGRPC:
	case narrative.ProviderOpenAI:
		if c.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NARRATIVE_PROVIDER %q", c.Provider))
	}
	if c.NarrativeTimeout < 0 {
		errs = append(errs, errors.New("NARRATIVE_TIMEOUT must not be negative"))
	}
	if c.NarrativeRPS < 0 {
		errs = append(errs, errors.New("NARRATIVE_RPS must not be negative"))
	}
	if c.NarrativeBurst < 0 {
		errs = append(errs, errors.New("NARRATIVE_BURST must not be negative"))
	}
	if c.TimeframeDays <= 0 {
		errs = append(errs, errors.New("TIMEFRAME_DAYS must be positive"))
	}
	return errors.Join(errs...)
}

// Narrative returns the narrator settings.
func (c Config) Narrative() narrative.Settings {
	return narrative.Settings{
		Provider: c.Provider,
		OpenAI: narrative.OpenAIConfig{
			APIKey:  c.OpenAIKey,
			Model:   c.OpenAIModel,
			BaseURL: c.OpenAIBaseURL,
		},
		Addr:  c.NarrativeAddr,
		RPS:   c.NarrativeRPS,
		Burst: c.NarrativeBurst,
	}
}

// Lexicon loads LexiconPath, or the built-in tables when it is empty.
func (c Config) Lexicon() (*lexicon.Lexicon, error) {
	if c.LexiconPath == "" {
		return lexicon.Default(), nil
	}
	return lexicon.LoadFile(c.LexiconPath)
}

// Engine returns engine defaults with the narrative timeout applied.
func (c Config) Engine() engine.Config {
	ec := engine.DefaultConfig()
	if c.NarrativeTimeout > 0 {
		ec.Insight.Timeout = c.NarrativeTimeout
	}
	return ec
}

// #endregion validate

// #region helpers
func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
