// Package lexicon holds the static emotion and crisis phrase tables shared by
// the classifier, the crisis assessor and the statistics aggregator.
package lexicon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// #region lexicon

// Lexicon is an immutable keyword table. Build one with Default or LoadFile
// and pass it explicitly to the components that need it.
type Lexicon struct {
	order    []Category
	keywords map[Category][]string
	weights  map[Category]float64
	negative map[Category]bool

	crisis  []PhraseGroup
	concern []string
}

// #endregion lexicon

// #region default-tables

var defaultKeywords = map[Category][]string{
	Happy:    {"happy", "joy", "excited", "great", "wonderful", "amazing", "fantastic", "good"},
	Sad:      {"sad", "depressed", "down", "low", "unhappy", "miserable", "heartbroken"},
	Anxious:  {"anxious", "worried", "nervous", "panic", "stress", "stressed", "overwhelmed", "scared"},
	Angry:    {"angry", "mad", "furious", "frustrated", "irritated", "annoyed"},
	Neutral:  {},
	Excited:  {"thrilled", "ecstatic", "pumped", "can't wait", "looking forward"},
	Lonely:   {"lonely", "alone", "isolated", "disconnected", "abandoned"},
	Confused: {"confused", "lost", "uncertain", "unclear", "mixed up"},
	Hopeful:  {"hopeful", "optimistic", "positive", "confident", "motivated"},
	Tired:    {"tired", "exhausted", "drained", "weary", "burnt out"},
}

// defaultWeights place each category on a 0-100 valence axis. The statistics
// aggregator measures spread on this axis, so categories far apart in affect
// are far apart numerically.
var defaultWeights = map[Category]float64{
	Excited:  95,
	Happy:    90,
	Hopeful:  75,
	Neutral:  50,
	Confused: 40,
	Tired:    35,
	Anxious:  25,
	Lonely:   20,
	Angry:    15,
	Sad:      10,
}

var defaultNegative = map[Category]bool{
	Sad: true, Anxious: true, Angry: true, Lonely: true,
}

var defaultCrisis = []PhraseGroup{
	{Name: "suicidal ideation", Phrases: []string{
		"suicide", "suicidal", "kill myself", "end my life", "want to die",
		"better off dead", "no point living", "no reason to live",
		"end it all", "want to end it", "take my own life", "don't want to be here",
	}},
	{Name: "self-harm", Phrases: []string{
		"self harm", "self-harm", "hurt myself", "cut myself", "harm myself",
	}},
	{Name: "hopelessness", Phrases: []string{
		"hopeless", "worthless", "can't go on", "give up", "no way out",
	}},
}

var defaultConcern = []string{
	"depressed", "overwhelmed", "can't cope", "breaking down", "falling apart",
	"lost", "alone", "isolated", "desperate",
}

// Default returns the built-in lexicon.
func Default() *Lexicon {
	lex := &Lexicon{
		order:    append([]Category(nil), AllCategories...),
		keywords: make(map[Category][]string, len(defaultKeywords)),
		weights:  make(map[Category]float64, len(defaultWeights)),
		negative: make(map[Category]bool, len(defaultNegative)),
		concern:  append([]string(nil), defaultConcern...),
	}
	for c, kws := range defaultKeywords {
		lex.keywords[c] = append([]string(nil), kws...)
	}
	for c, w := range defaultWeights {
		lex.weights[c] = w
	}
	for c, n := range defaultNegative {
		lex.negative[c] = n
	}
	for _, g := range defaultCrisis {
		lex.crisis = append(lex.crisis, PhraseGroup{Name: g.Name, Phrases: append([]string(nil), g.Phrases...)})
	}
	return lex
}

// #endregion default-tables

// #region load-file

// LoadFile reads a lexicon from a JSON file and validates it. Category order
// in the file becomes the tie-break order.
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var f fileLexicon
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	lex := &Lexicon{
		keywords: make(map[Category][]string, len(f.Categories)),
		weights:  make(map[Category]float64, len(f.Categories)),
		negative: make(map[Category]bool),
		crisis:   f.CrisisPhrases,
		concern:  normalizeAll(f.ConcernPhrases),
	}
	for _, fc := range f.Categories {
		if !fc.Name.Valid() {
			return nil, fmt.Errorf("lexicon %s: unknown category %q", path, fc.Name)
		}
		if _, dup := lex.weights[fc.Name]; dup {
			return nil, fmt.Errorf("lexicon %s: duplicate category %q", path, fc.Name)
		}
		lex.order = append(lex.order, fc.Name)
		lex.keywords[fc.Name] = normalizeAll(fc.Keywords)
		lex.weights[fc.Name] = fc.Weight
		if fc.Negative {
			lex.negative[fc.Name] = true
		}
	}
	for i := range lex.crisis {
		lex.crisis[i].Phrases = normalizeAll(lex.crisis[i].Phrases)
	}
	if err := lex.Validate(); err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = Normalize(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// #endregion load-file

// #region validate

// Validate checks the table exhaustively: every category of the closed
// enumeration appears exactly once with a weight in [0, 100], every
// non-neutral category has keywords, and the crisis sets are non-empty.
func (l *Lexicon) Validate() error {
	var errs []error
	seen := make(map[Category]bool, len(l.order))
	for _, c := range l.order {
		if seen[c] {
			errs = append(errs, fmt.Errorf("category %q listed twice", c))
		}
		seen[c] = true
	}
	for _, c := range AllCategories {
		if !seen[c] {
			errs = append(errs, fmt.Errorf("category %q missing", c))
			continue
		}
		w, ok := l.weights[c]
		if !ok || w < 0 || w > 100 {
			errs = append(errs, fmt.Errorf("category %q: weight %v outside [0, 100]", c, w))
		}
		if c != Neutral && len(l.keywords[c]) == 0 {
			errs = append(errs, fmt.Errorf("category %q has no keywords", c))
		}
	}
	if len(l.keywords[Neutral]) > 0 {
		errs = append(errs, errors.New("neutral must not carry keywords"))
	}
	if len(l.crisis) == 0 {
		errs = append(errs, errors.New("no crisis phrase groups"))
	}
	for _, g := range l.crisis {
		if strings.TrimSpace(g.Name) == "" || len(g.Phrases) == 0 {
			errs = append(errs, fmt.Errorf("crisis group %q is empty", g.Name))
		}
	}
	return errors.Join(errs...)
}

// #endregion validate

// #region accessors

// Categories returns the tie-break ordering.
func (l *Lexicon) Categories() []Category {
	return append([]Category(nil), l.order...)
}

// Len returns the number of categories.
func (l *Lexicon) Len() int { return len(l.order) }

// Keywords returns the keyword list for c.
func (l *Lexicon) Keywords(c Category) []string {
	return append([]string(nil), l.keywords[c]...)
}

// Weight returns the valence weight for c.
func (l *Lexicon) Weight(c Category) float64 { return l.weights[c] }

// Negative reports whether c counts toward the negative-valence share.
func (l *Lexicon) Negative(c Category) bool { return l.negative[c] }

// Rank returns the position of c in the tie-break ordering, or Len() when
// c is not part of the table.
func (l *Lexicon) Rank(c Category) int {
	for i, known := range l.order {
		if known == c {
			return i
		}
	}
	return len(l.order)
}

// CrisisGroups returns the high-severity phrase groups.
func (l *Lexicon) CrisisGroups() []PhraseGroup {
	out := make([]PhraseGroup, len(l.crisis))
	for i, g := range l.crisis {
		out[i] = PhraseGroup{Name: g.Name, Phrases: append([]string(nil), g.Phrases...)}
	}
	return out
}

// ConcernPhrases returns the moderate-concern phrase list.
func (l *Lexicon) ConcernPhrases() []string {
	return append([]string(nil), l.concern...)
}

// #endregion accessors

// #region normalize

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// Normalize lowercases text, folds typographic apostrophes and collapses
// whitespace runs to a single space, so "can’t\ngo on" and "can't go on"
// match the same table entry.
func Normalize(text string) string {
	return apostrophes.Replace(strings.Join(strings.Fields(strings.ToLower(text)), " "))
}

// #endregion normalize
