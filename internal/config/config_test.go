package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var keys = []string{
	"INSIGHTS_DB", "INSIGHTS_USER", "NARRATIVE_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL",
	"OPENAI_BASE_URL", "NARRATIVE_ADDR", "NARRATIVE_TIMEOUT", "NARRATIVE_RPS", "NARRATIVE_BURST",
	"LEXICON_PATH", "TIMEFRAME_DAYS", "INSIGHTS_DOTENV",
}

// clearEnv unsets every variable the package reads for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != Default() {
		t.Errorf("got %+v, want %+v", c, Default())
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("INSIGHTS_DB", "/tmp/x.db")
	t.Setenv("INSIGHTS_USER", "alice")
	t.Setenv("NARRATIVE_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("NARRATIVE_TIMEOUT", "3s")
	t.Setenv("NARRATIVE_RPS", "2.5")
	t.Setenv("NARRATIVE_BURST", "4")
	t.Setenv("TIMEFRAME_DAYS", "7")
	t.Setenv("LEXICON_PATH", "lex.json")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DBPath != "/tmp/x.db" || c.UserID != "alice" || c.Provider != "openai" {
		t.Errorf("strings: %+v", c)
	}
	if c.NarrativeTimeout != 3*time.Second || c.NarrativeRPS != 2.5 || c.NarrativeBurst != 4 || c.TimeframeDays != 7 {
		t.Errorf("numbers: %+v", c)
	}

	s := c.Narrative()
	if s.Provider != "openai" || s.OpenAI.APIKey != "sk-test" || s.OpenAI.Model != "gpt-4o-mini" || s.RPS != 2.5 {
		t.Errorf("narrative settings: %+v", s)
	}
}

func TestFromEnv_Rejects(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"NARRATIVE_TIMEOUT", "soon", "NARRATIVE_TIMEOUT"},
		{"NARRATIVE_RPS", "fast", "NARRATIVE_RPS"},
		{"NARRATIVE_BURST", "-1", "NARRATIVE_BURST"},
		{"TIMEFRAME_DAYS", "0", "TIMEFRAME_DAYS"},
		{"NARRATIVE_PROVIDER", "carrier-pigeon", "NARRATIVE_PROVIDER"},
		{"NARRATIVE_PROVIDER", "openai", "OPENAI_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("INSIGHTS_USER=fromfile\nINSIGHTS_DB=fromfile.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INSIGHTS_DB", "keep.db")

	if err := LoadDotEnv(filepath.Join(dir, ".env.local"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("INSIGHTS_USER"); got != "fromfile" {
		t.Errorf("INSIGHTS_USER: got %q", got)
	}
	if got := os.Getenv("INSIGHTS_DB"); got != "keep.db" {
		t.Errorf("existing variable overwritten: %q", got)
	}
}

func TestLoadDotEnv_Disabled(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("INSIGHTS_USER=fromfile\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INSIGHTS_DOTENV", "false")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if _, ok := os.LookupEnv("INSIGHTS_USER"); ok {
		t.Error("dotenv loaded while disabled")
	}
}

func TestLoadDotEnv_DirectoryIsError(t *testing.T) {
	clearEnv(t)
	if err := LoadDotEnv(t.TempDir()); err == nil {
		t.Error("expected error reading a directory")
	}
}

func TestEngineAndLexicon(t *testing.T) {
	c := Default()
	c.NarrativeTimeout = 3 * time.Second
	if got := c.Engine().Insight.Timeout; got != 3*time.Second {
		t.Errorf("insight timeout: got %v", got)
	}
	c.NarrativeTimeout = 0
	if got := c.Engine().Insight.Timeout; got != 8*time.Second {
		t.Errorf("zero timeout should keep the default, got %v", got)
	}

	lex, err := c.Lexicon()
	if err != nil || lex.Len() != 10 {
		t.Fatalf("default lexicon: %v", err)
	}
	c.LexiconPath = filepath.Join(t.TempDir(), "missing.json")
	if _, err := c.Lexicon(); err == nil {
		t.Error("expected error for missing lexicon file")
	}
}
