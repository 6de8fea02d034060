package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/medichat-ai/insights-engine/internal/config"
	"github.com/medichat-ai/insights-engine/internal/engine"
	"github.com/medichat-ai/insights-engine/internal/replay"
	"github.com/medichat-ai/insights-engine/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to insights.db (relabel mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	user := flag.String("user", "", "restrict relabel mode to one user")
	limit := flag.Int("limit", 0, "relabel at most N most recent messages (0 = all)")
	lexiconPath := flag.String("lexicon", "", "lexicon JSON to replay against (default built-in)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--lexicon path]")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/insights.db [--user id] [--limit N] [--lexicon path]")
		os.Exit(2)
	}

	cfg := config.Default()
	cfg.LexiconPath = *lexiconPath
	lex, err := cfg.Lexicon()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load lexicon: %v\n", err)
		os.Exit(2)
	}
	// Replays never call a narrator so results are deterministic.
	eng, err := engine.New(lex, cfg.Engine(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(eng, *fixturePath)
	} else {
		exitCode = runDBMode(eng, *dbPath, *user, *limit)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(eng *engine.Engine, path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	s := replay.Run(context.Background(), eng, f)

	fmt.Printf("%-24s| %-6s| %s\n", "Case", "Result", "Mismatches")
	fmt.Printf("%-24s+%-7s+%s\n", "------------------------", "-------", "------------")
	for _, r := range s.Results {
		result := "OK"
		if !r.Passed {
			result = "DIFF"
		}
		fmt.Printf("%-24s| %-6s| %s\n", r.ID, result, strings.Join(r.Mismatches, "; "))
	}
	fmt.Printf("\nSummary: %d total, %d pass, %d fail\n", s.Total, s.Passed, s.Failed)

	if s.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion fixture-mode

// #region db-mode

func runDBMode(eng *engine.Engine, dbPath, user string, limit int) int {
	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	msgs, err := st.ListMessages(user, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list messages: %v\n", err)
		return 2
	}
	if len(msgs) == 0 {
		fmt.Fprintln(os.Stderr, "no stored messages found")
		return 2
	}

	d, err := replay.Relabel(context.Background(), eng, msgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "relabel: %v\n", err)
		return 2
	}

	fmt.Printf("%-12s| %-15s| %-15s\n", "Message", "Stored", "Replayed")
	fmt.Printf("%-12s+%-16s+%-16s\n", "------------", "----------------", "----------------")
	for _, x := range d.Drifts {
		fmt.Printf("%-12s| %-15s| %-15s\n", shortID(x.ID),
			fmt.Sprintf("%s/%d", x.Stored, x.StoredConf),
			fmt.Sprintf("%s/%d", x.Current, x.CurConf))
	}
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", d.Total, d.Total-d.Changed, d.Changed)

	if d.Changed > 0 {
		return 1
	}
	return 0
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion db-mode
