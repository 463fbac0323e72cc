package services

import (
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestFormatQuoteNumber(t *testing.T) {
	tests := []struct {
		name   string
		year   int
		seq    int
		expect string
	}{
		{"first", 2026, 1, "Q-2026-0001"},
		{"sequential", 2026, 42, "Q-2026-0042"},
		{"wide", 2025, 12345, "Q-2025-12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatQuoteNumber(tt.year, tt.seq); got != tt.expect {
				t.Errorf("formatQuoteNumber(%d, %d) = %q, want %q", tt.year, tt.seq, got, tt.expect)
			}
		})
	}
}

func TestIsDuplicateQuoteNumber(t *testing.T) {
	notUnique := validation.Errors{
		"quote_number": validation.NewError("validation_not_unique", "Value must be unique."),
	}
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil", nil, false},
		{"record validation", notUnique, true},
		{"wrapped record validation", fmt.Errorf("save: %w", notUnique), true},
		{"sqlite constraint", errors.New("UNIQUE constraint failed: quotes.contractor, quotes.quote_number"), true},
		{"other validation", validation.Errors{"status": validation.NewError("validation_required", "Cannot be blank.")}, false},
		{"other error", errors.New("disk full"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateQuoteNumber(tt.err); got != tt.expect {
				t.Errorf("isDuplicateQuoteNumber(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}
