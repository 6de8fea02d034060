package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/medichat-ai/insights-engine/internal/config"
	"github.com/medichat-ai/insights-engine/internal/engine"
	"github.com/medichat-ai/insights-engine/internal/insight"
	"github.com/medichat-ai/insights-engine/internal/logging"
	"github.com/medichat-ai/insights-engine/internal/message"
	"github.com/medichat-ai/insights-engine/internal/narrative"
	"github.com/medichat-ai/insights-engine/internal/store"
)

// #region main
func main() {
	reportOnly := flag.Bool("report", false, "print one report for the configured timeframe and exit")
	style := flag.String("style", "empathetic", "coping strategy response style")
	share := flag.Bool("share-sample", false, "send message excerpts to the narrator")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lex, err := cfg.Lexicon()
	if err != nil {
		log.Fatalf("lexicon: %v", err)
	}
	narrator, closeNarrator, err := narrative.Build(cfg.Narrative())
	if err != nil {
		log.Fatalf("narrator: %v", err)
	}
	defer closeNarrator()

	eng, err := engine.New(lex, cfg.Engine(), narrator)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	prefs := insight.DefaultPreferences()
	prefs.ResponseStyle = *style
	prefs.PrivacyMode = !*share

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := &session{cfg: cfg, eng: eng, st: st, prefs: prefs, maxRecent: cfg.Engine().Crisis.MaxWindow}
	if *reportOnly {
		if err := s.report(ctx, cfg.TimeframeDays); err != nil {
			log.Fatalf("report: %v", err)
		}
		return
	}

	fmt.Println("Insights engine ready.")
	fmt.Printf("  DB: %s | User: %s | Narrator: %s\n", cfg.DBPath, cfg.UserID, cfg.Provider)
	fmt.Println("Type how you feel, '/report [days]' for analytics, or 'quit' to exit:")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		if strings.HasPrefix(line, "/report") {
			days := cfg.TimeframeDays
			if arg := strings.TrimSpace(strings.TrimPrefix(line, "/report")); arg != "" {
				n, err := strconv.Atoi(arg)
				if err != nil || n <= 0 {
					fmt.Println("usage: /report [days]")
					continue
				}
				days = n
			}
			if err := s.report(ctx, days); err != nil {
				log.Printf("report error: %v", err)
			}
			continue
		}

		if err := s.record(ctx, line); err != nil {
			log.Printf("record error: %v", err)
		}
	}
}
// #endregion main

// #region session

type session struct {
	cfg       config.Config
	eng       *engine.Engine
	st        *store.Store
	prefs     insight.Preferences
	maxRecent int
}

// record labels one message, persists it and logs the crisis assessment.
func (s *session) record(ctx context.Context, text string) error {
	recent, err := s.st.Recent(s.cfg.UserID, s.maxRecent-1)
	if err != nil {
		return fmt.Errorf("load recent: %w", err)
	}
	window := raws(recent)
	res, err := s.eng.Label(ctx, message.Raw{Timestamp: time.Now().UTC(), Text: text}, window)
	if err != nil {
		return err
	}
	saved, err := s.st.SaveMessage(s.cfg.UserID, res.Message)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	if err := logging.LogAssessment(s.st.DB(), logging.NewEntry(s.cfg.UserID, res.Crisis, len(window)+1)); err != nil {
		log.Printf("logging error: %v", err)
	}

	fmt.Printf("[%s] emotion=%s confidence=%d risk=%s score=%d\n",
		shortID(saved.ID), saved.Emotion, saved.Confidence, res.Crisis.RiskLevel, res.Crisis.Score)
	if res.Crisis.Urgent {
		fmt.Println("\nIf you are in danger, please reach out now:")
		for _, r := range res.Crisis.Recommendations {
			fmt.Printf("  - %s\n", r)
		}
		fmt.Println()
	}
	return nil
}

// report analyzes the last days against the period before it.
func (s *session) report(ctx context.Context, days int) error {
	now := time.Now().UTC()
	span := time.Duration(days) * 24 * time.Hour
	limit := s.cfg.Engine().MaxWindowMessages

	current, err := s.st.Window(s.cfg.UserID, now.Add(-span), now.Add(time.Second), limit)
	if err != nil {
		return fmt.Errorf("load current window: %w", err)
	}
	previous, err := s.st.Window(s.cfg.UserID, now.Add(-2*span), now.Add(-span), limit)
	if err != nil {
		return fmt.Errorf("load previous window: %w", err)
	}
	recent, err := s.st.Recent(s.cfg.UserID, s.maxRecent)
	if err != nil {
		return fmt.Errorf("load recent: %w", err)
	}

	report, err := s.eng.Analyze(ctx, engine.Request{
		Current:       raws(current),
		Previous:      raws(previous),
		Recent:        raws(recent),
		Preferences:   &s.prefs,
		TimeframeDays: days,
		Now:           now,
	})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion session

// #region helpers
func raws(msgs []message.Labeled) []message.Raw {
	out := make([]message.Raw, len(msgs))
	for i, m := range msgs {
		out[i] = m.Raw()
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
// #endregion helpers
