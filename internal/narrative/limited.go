package narrative

import (
	"context"
	"log"

	"golang.org/x/time/rate"

	"github.com/medichat-ai/insights-engine/internal/insight"
)

// #region limited

// Limited caps the call rate to an inner narrator. A denied call fails
// immediately so the caller falls back instead of waiting for a token.
type Limited struct {
	inner   insight.Narrator
	limiter *rate.Limiter
}

// NewLimited wraps inner with a token bucket of rps and burst.
func NewLimited(inner insight.Narrator, rps float64, burst int) *Limited {
	return &Limited{inner: inner, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Narrate forwards to the inner narrator when a token is available.
func (l *Limited) Narrate(ctx context.Context, req insight.NarrativeRequest) (string, error) {
	if !l.limiter.Allow() {
		log.Printf("[NARRATIVE] rate limited (req=%s kind=%s)", req.ID, req.Kind)
		return "", ErrRateLimited
	}
	return l.inner.Narrate(ctx, req)
}

// #endregion limited
