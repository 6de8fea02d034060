package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/medichat-ai/insights-engine/internal/config"
	"github.com/medichat-ai/insights-engine/internal/logging"
	"github.com/medichat-ai/insights-engine/internal/store"
)

// #region main

func main() {
	defaults := config.Default()
	dbPath := flag.String("db", envOr("INSIGHTS_DB", defaults.DBPath), "path to insights.db")
	user := flag.String("user", "", "filter messages to one user (default all)")
	last := flag.Int("last", 20, "show N most recent rows")
	assessments := flag.Bool("assessments", false, "show the crisis assessment log instead of messages")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *last <= 0 {
		fmt.Fprintln(os.Stderr, "usage: inspect [--db path/to/insights.db] [--user id] [--last N] [--assessments] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *assessments {
		err = runAssessmentMode(st, *last, *jsonOut)
	} else {
		err = runMessageMode(st, *user, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region message-mode

type messageRow struct {
	ID         string `json:"id"`
	Emotion    string `json:"emotion"`
	Confidence int    `json:"confidence"`
	Text       string `json:"text"`
	CreatedAt  string `json:"created_at"`
}

func runMessageMode(st *store.Store, user string, last int, jsonOut bool) error {
	msgs, err := st.ListMessages(user, last)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(os.Stderr, "no messages found")
		return nil
	}

	// Store returns newest first; print chronologically.
	rows := make([]messageRow, len(msgs))
	for i, m := range msgs {
		rows[len(msgs)-1-i] = messageRow{
			ID:         m.ID,
			Emotion:    string(m.Emotion),
			Confidence: m.Confidence,
			Text:       m.Text,
			CreatedAt:  m.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	counts := map[string]int{}
	fmt.Printf("%-10s  %-9s  %4s  %-20s  %s\n", "Message", "Emotion", "Conf", "Time", "Text")
	fmt.Printf("%-10s+-%-9s+-%4s+-%-20s+-%s\n", "----------", "---------", "----", "--------------------", "--------")
	for _, r := range rows {
		counts[r.Emotion]++
		fmt.Printf("%-10s  %-9s  %4d  %-20s  %s\n", shortID(r.ID), r.Emotion, r.Confidence, r.CreatedAt, clip(r.Text, 48))
	}

	fmt.Printf("\nEmotion counts:\n")
	for _, r := range rows {
		if n, ok := counts[r.Emotion]; ok {
			fmt.Printf("  %-10s %d\n", r.Emotion, n)
			delete(counts, r.Emotion)
		}
	}
	return nil
}

// #endregion message-mode

// #region assessment-mode

type assessmentRow struct {
	AssessmentID string   `json:"assessment_id"`
	UserID       string   `json:"user_id"`
	RiskLevel    string   `json:"risk_level"`
	Score        int      `json:"score"`
	Urgent       bool     `json:"urgent"`
	Factors      []string `json:"factors"`
	WindowSize   int      `json:"window_size"`
	CreatedAt    string   `json:"created_at"`
}

func runAssessmentMode(st *store.Store, last int, jsonOut bool) error {
	entries, err := logging.ListAssessments(st.DB(), last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no assessments found")
		return nil
	}

	rows := make([]assessmentRow, len(entries))
	for i, e := range entries {
		rows[len(entries)-1-i] = assessmentRow{
			AssessmentID: e.AssessmentID,
			UserID:       e.UserID,
			RiskLevel:    e.RiskLevel,
			Score:        e.Score,
			Urgent:       e.Urgent,
			Factors:      e.Factors,
			WindowSize:   e.WindowSize,
			CreatedAt:    e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-10s  %-8s  %5s  %-6s  %-20s  %s\n", "Assessment", "User", "Risk", "Score", "Urgent", "Time", "Factors")
	fmt.Printf("%-10s+-%-10s+-%-8s+-%5s+-%-6s+-%-20s+-%s\n",
		"----------", "----------", "--------", "-----", "------", "--------------------", "--------")
	for _, r := range rows {
		factors := "-"
		if len(r.Factors) > 0 {
			factors = strings.Join(r.Factors, "; ")
		}
		fmt.Printf("%-10s  %-10s  %-8s  %5d  %-6v  %-20s  %s\n",
			shortID(r.AssessmentID), clip(r.UserID, 10), r.RiskLevel, r.Score, r.Urgent, r.CreatedAt, factors)
	}
	return nil
}

// #endregion assessment-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion output
