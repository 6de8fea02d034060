package classifier

// #region imports
import (
	"context"
	"math"
	"regexp"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/medichat-ai/insights-engine/internal/lexicon"
	"github.com/medichat-ai/insights-engine/internal/message"
)

// #endregion

// #region classifier

type keywordPattern struct {
	re     *regexp.Regexp
	weight int
}

type categoryPatterns struct {
	category lexicon.Category
	keywords []keywordPattern
}

// Classifier scores text against a lexicon. It holds only compiled,
// read-only patterns and is safe for concurrent use.
type Classifier struct {
	config     Config
	categories []categoryPatterns
}

// New compiles the lexicon's keyword lists into word-boundary patterns.
func New(lex *lexicon.Lexicon, config Config) *Classifier {
	c := &Classifier{config: config}
	for _, cat := range lex.Categories() {
		cp := categoryPatterns{category: cat}
		for _, kw := range lex.Keywords(cat) {
			cp.keywords = append(cp.keywords, keywordPattern{
				re:     regexp.MustCompile(boundaryPattern(kw)),
				weight: c.keywordWeight(kw),
			})
		}
		c.categories = append(c.categories, cp)
	}
	return c
}

// #endregion

// #region classify

// Classify returns the winning category and a confidence in
// [FloorConfidence, MaxConfidence]. No model call.
func (c *Classifier) Classify(text string) (lexicon.Category, int) {
	lower := lexicon.Normalize(text)
	if lower == "" {
		return lexicon.Neutral, c.config.FloorConfidence
	}

	best := lexicon.Neutral
	var top, total int
	for _, cp := range c.categories {
		score := 0
		for _, kw := range cp.keywords {
			if kw.re.MatchString(lower) {
				score += kw.weight
			}
		}
		total += score
		// Strictly greater: earlier categories win ties.
		if score > top {
			top = score
			best = cp.category
		}
	}

	if top == 0 {
		return lexicon.Neutral, c.config.FloorConfidence
	}
	return best, c.confidence(top, total)
}

// Label classifies a raw message into an immutable labeled message.
func (c *Classifier) Label(raw message.Raw) message.Labeled {
	emotion, confidence := c.Classify(raw.Text)
	return message.Labeled{
		ID:         raw.ID,
		Timestamp:  raw.Timestamp,
		Text:       raw.Text,
		Emotion:    emotion,
		Confidence: confidence,
	}
}

// #endregion

// #region batch

// ClassifyBatch labels every message in parallel. Output order matches
// input order. Returns an error only when ctx is cancelled.
func (c *Classifier) ClassifyBatch(ctx context.Context, raws []message.Raw) ([]message.Labeled, error) {
	out := make([]message.Labeled, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	if c.config.Workers > 0 {
		g.SetLimit(c.config.Workers)
	}
	for i := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = c.Label(raws[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion

// #region helpers

func (c *Classifier) keywordWeight(kw string) int {
	if utf8.RuneCountInString(kw) > c.config.LongKeywordLen {
		return c.config.LongKeywordWeight
	}
	return 1
}

// confidence rewards a single dominant signal over mixed-emotion text.
func (c *Classifier) confidence(top, total int) int {
	ratio := 100 * float64(top) / float64(total)
	ratio = math.Max(float64(c.config.MinMatchConfidence), ratio)
	ratio = math.Min(float64(c.config.MaxConfidence), ratio)
	return int(math.Round(ratio))
}

// boundaryPattern anchors kw on word boundaries, skipping an anchor where kw
// itself starts or ends with punctuation.
func boundaryPattern(kw string) string {
	pattern := regexp.QuoteMeta(kw)
	first, _ := utf8.DecodeRuneInString(kw)
	last, _ := utf8.DecodeLastRuneInString(kw)
	if isWordRune(first) {
		pattern = `\b` + pattern
	}
	if isWordRune(last) {
		pattern = pattern + `\b`
	}
	return pattern
}

func isWordRune(r rune) bool {
	return r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// #endregion
