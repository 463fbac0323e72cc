package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
)

// maxQuoteNumberAttempts bounds the retries when a concurrent create takes
// the number that was just generated.
const maxQuoteNumberAttempts = 5

// formatQuoteNumber constructs the quote number string from components.
func formatQuoteNumber(year, sequence int) string {
	return fmt.Sprintf("Q-%d-%04d", year, sequence)
}

// GenerateQuoteNumber creates the next quote number for a contractor.
// Format: Q-{year}-{sequence}
// - year: calendar year of now
// - sequence: 4-digit zero-padded, per contractor per year, one past the highest in use
func GenerateQuoteNumber(app core.App, contractorID string, now time.Time) (string, error) {
	year := now.Year()
	prefix := fmt.Sprintf("Q-%d-", year)

	existing, err := app.FindRecordsByFilter(
		QuotesCollection,
		"contractor = {:contractor} && quote_number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{
			"contractor": contractorID,
			"prefix":     prefix + "%",
		},
	)
	if err != nil {
		return "", fmt.Errorf("list quote numbers for contractor %s: %w", contractorID, err)
	}

	highest := 0
	for _, r := range existing {
		seq, err := strconv.Atoi(strings.TrimPrefix(r.GetString("quote_number"), prefix))
		if err == nil && seq > highest {
			highest = seq
		}
	}
	return formatQuoteNumber(year, highest+1), nil
}

// isDuplicateQuoteNumber reports whether err came from the unique
// (contractor, quote_number) index.
func isDuplicateQuoteNumber(err error) bool {
	if err == nil {
		return false
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for _, fieldErr := range fieldErrs {
			var ve validation.Error
			if errors.As(fieldErr, &ve) && ve.Code() == "validation_not_unique" {
				return true
			}
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
