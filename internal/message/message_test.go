package message

import (
	"errors"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ok := Raw{Timestamp: now.Add(-time.Hour), Text: "fine"}

	tests := []struct {
		name      string
		msgs      []Raw
		wantIndex int
		wantField string
	}{
		{"valid", []Raw{ok, {Timestamp: now, Text: ""}}, -1, ""},
		{"zero-timestamp", []Raw{ok, {Text: "x"}}, 1, "timestamp"},
		{"pre-epoch", []Raw{{Timestamp: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), Text: "x"}}, 0, "timestamp"},
		{"future", []Raw{{Timestamp: now.Add(72 * time.Hour), Text: "x"}}, 0, "timestamp"},
		{"bad-utf8", []Raw{ok, ok, {Timestamp: now, Text: string([]byte{0xff, 0xfe})}}, 2, "text"},
		{"empty-batch", nil, -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.msgs, now)
			if tt.wantIndex < 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("expected ErrMalformedInput, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if ve.Index != tt.wantIndex || ve.Field != tt.wantField {
				t.Errorf("got index=%d field=%s, want index=%d field=%s", ve.Index, ve.Field, tt.wantIndex, tt.wantField)
			}
		})
	}
}

func TestValidate_ZeroNowSkipsFutureCheck(t *testing.T) {
	msgs := []Raw{{Timestamp: time.Now().Add(100 * 24 * time.Hour), Text: "x"}}
	if err := Validate(msgs, time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("héllo wörld", 5); got != "héllo" {
		t.Errorf("got %q", got)
	}
	if got := Preview("short", 100); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := Preview("anything", 0); got != "" {
		t.Errorf("got %q", got)
	}
}
