package narrative

import (
	"fmt"
	"log"

	"github.com/medichat-ai/insights-engine/internal/insight"
)

// #region build

// Provider names accepted by Build.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderGRPC   = "grpc"
)

// Settings selects and configures a narrator.
type Settings struct {
	Provider string
	OpenAI   OpenAIConfig
	Addr     string  // gRPC narrator address
	RPS      float64 // 0 disables rate limiting
	Burst    int
}

// Build returns the configured narrator and a close func. ProviderNone
// yields a nil narrator, which keeps the generator on its fallback rules.
func Build(s Settings) (insight.Narrator, func() error, error) {
	noop := func() error { return nil }

	var n insight.Narrator
	closer := noop
	switch s.Provider {
	case "", ProviderNone:
		log.Printf("[NARRATIVE] provider=none, using fallback rules only")
		return nil, noop, nil
	case ProviderOpenAI:
		o, err := NewOpenAINarrator(s.OpenAI)
		if err != nil {
			return nil, noop, err
		}
		n = o
	case ProviderGRPC:
		g, err := NewGRPCNarrator(s.Addr)
		if err != nil {
			return nil, noop, err
		}
		n, closer = g, g.Close
	default:
		return nil, noop, fmt.Errorf("unknown narrative provider %q", s.Provider)
	}

	if s.RPS > 0 {
		n = NewLimited(n, s.RPS, s.Burst)
	}
	log.Printf("[NARRATIVE] provider=%s rps=%.2f burst=%d", s.Provider, s.RPS, s.Burst)
	return n, closer, nil
}

// #endregion build
