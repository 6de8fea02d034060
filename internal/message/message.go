// Package message defines the raw and labeled message shapes that cross the
// engine boundary, and validates raw input before any classification runs.
package message

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/medichat-ai/insights-engine/internal/lexicon"
)

// #region types

// Raw is one user message as supplied by the storage collaborator.
type Raw struct {
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// Labeled is a Raw message plus its classifier output. Values are never
// mutated after creation; the caller persists Emotion and Confidence.
type Labeled struct {
	ID         string           `json:"id,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
	Text       string           `json:"text"`
	Emotion    lexicon.Category `json:"emotion"`
	Confidence int              `json:"confidence"`
}

// Raw drops the label so a stored message can be re-classified.
func (l Labeled) Raw() Raw {
	return Raw{ID: l.ID, Timestamp: l.Timestamp, Text: l.Text}
}

// #endregion types

// #region errors

// ErrMalformedInput marks input that is rejected at the boundary.
var ErrMalformedInput = errors.New("malformed input")

// ValidationError reports the first offending message in a batch.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("message %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedInput.
func (e *ValidationError) Unwrap() error { return ErrMalformedInput }

// #endregion errors

// #region validate

// maxSkew bounds how far into the future a timestamp may sit before it is
// considered impossible rather than clock drift.
const maxSkew = 24 * time.Hour

var epoch = time.Unix(0, 0).UTC()

// Validate rejects the whole batch on the first malformed message. Empty
// text is allowed and later classifies as neutral.
func Validate(msgs []Raw, now time.Time) error {
	for i, m := range msgs {
		if err := validateOne(m, now); err != nil {
			err.Index = i
			return err
		}
	}
	return nil
}

func validateOne(m Raw, now time.Time) *ValidationError {
	switch {
	case m.Timestamp.IsZero():
		return &ValidationError{Field: "timestamp", Reason: "missing"}
	case m.Timestamp.Before(epoch):
		return &ValidationError{Field: "timestamp", Reason: "before unix epoch"}
	case !now.IsZero() && m.Timestamp.After(now.Add(maxSkew)):
		return &ValidationError{Field: "timestamp", Reason: "in the future"}
	case !utf8.ValidString(m.Text):
		return &ValidationError{Field: "text", Reason: "not valid utf-8"}
	}
	return nil
}

// #endregion validate

// #region helpers

// Texts returns the text of each labeled message in order.
func Texts(msgs []Labeled) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

// Preview truncates text to at most n runes for bounded samples.
func Preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}

// #endregion helpers
