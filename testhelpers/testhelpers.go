// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"contractshield/collections"
	"contractshield/services"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestContractor creates a contractor record with the given name and returns it.
func CreateTestContractor(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(services.ContractorsCollection)
	if err != nil {
		t.Fatalf("failed to find contractors collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test contractor: %v", err)
	}

	return record
}

// CreateTestClient creates a client record owned by a contractor and returns it.
func CreateTestClient(t *testing.T, app *pocketbase.PocketBase, contractorID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(services.ClientsCollection)
	if err != nil {
		t.Fatalf("failed to find clients collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("contractor", contractorID)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test client: %v", err)
	}

	return record
}

// CreateTestTemplate stores an active catalog template for a contractor.
// Zero-valued Unit and Category default to "each" and general.
func CreateTestTemplate(t *testing.T, app *pocketbase.PocketBase, contractorID string, tmpl services.LineItemTemplate) services.LineItemTemplate {
	t.Helper()

	tmpl.ContractorID = contractorID
	tmpl.IsActive = true
	if tmpl.Unit == "" {
		tmpl.Unit = "each"
	}
	if tmpl.Category == "" {
		tmpl.Category = services.CategoryGeneral
	}

	saved, err := services.SaveTemplate(app, tmpl)
	if err != nil {
		t.Fatalf("failed to save test template %q: %v", tmpl.Name, err)
	}
	return saved
}

// CreateTestLaborRates stores a labor rate schedule for a contractor.
func CreateTestLaborRates(t *testing.T, app *pocketbase.PocketBase, contractorID string, rates services.LaborRates) {
	t.Helper()

	if _, err := services.SaveLaborRates(app, contractorID, rates); err != nil {
		t.Fatalf("failed to save test labor rates: %v", err)
	}
}

// CreateTestQuote stores a quote with the given line items and returns its id.
func CreateTestQuote(t *testing.T, app *pocketbase.PocketBase, contractorID, clientID string, items []services.EnhancedLineItem) string {
	t.Helper()

	store := services.PocketBaseQuoteStore{App: app}
	id, err := store.SaveQuote(services.QuotePayload{
		ContractorID: contractorID,
		ClientID:     clientID,
		LineItems:    items,
		Totals:       services.CalcQuoteTotals(items),
		ValidUntil:   time.Now().AddDate(0, 0, services.DefaultQuoteValidityDays),
		Status:       services.QuoteStatusPendingClientReview,
	})
	if err != nil {
		t.Fatalf("failed to save test quote: %v", err)
	}
	return id
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected body to contain %q\nbody (truncated): %s", frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
