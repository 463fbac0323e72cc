package templates

import (
	"context"
	"strings"
	"testing"
)

func renderSummary(t *testing.T, data QuoteSummaryData) string {
	t.Helper()
	var b strings.Builder
	if err := QuoteSummary(data).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return b.String()
}

func TestQuoteSummary_RendersItemsAndTotals(t *testing.T) {
	html := renderSummary(t, QuoteSummaryData{
		QuoteNumber:    "Q-2026-0001",
		ContractorName: "Acme Renovations",
		ClientName:     "Jane Client",
		CreatedDate:    "15 Jan 2026",
		ValidUntil:     "14 Feb 2026",
		Status:         "pending_client_review",
		Items: []QuoteSummaryItem{
			{Description: "Install outlet", Quantity: "2", Unit: "each", UnitPrice: "$494.00", Total: "$988.00"},
			{Description: "Mystery work", Quantity: "1", Unit: "each", UnitPrice: "$100.00", Total: "$100.00", Note: "Review pricing", NeedsReview: true},
		},
		Total: "$1,088.00",
	})

	for _, want := range []string{
		"<title>Quote Q-2026-0001</title>",
		"Acme Renovations",
		"Client: Jane Client",
		"Valid until: 14 Feb 2026",
		"Pending client review",
		`<span class="description">Install outlet</span>`,
		"$988.00",
		`<tr class="needs-review">`,
		`<div class="note">Review pricing</div>`,
		"<dt>Total</dt><dd>$1,088.00</dd>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestQuoteSummary_EscapesContent(t *testing.T) {
	html := renderSummary(t, QuoteSummaryData{
		Items: []QuoteSummaryItem{{Description: "<script>alert(1)</script>"}},
		Notes: "Tom & Jerry",
	})
	if strings.Contains(html, "<script>") {
		t.Error("description was not escaped")
	}
	if !strings.Contains(html, "Tom &amp; Jerry") {
		t.Error("notes were not escaped")
	}
}

func TestQuoteSummary_EmptyQuote(t *testing.T) {
	html := renderSummary(t, QuoteSummaryData{})
	if !strings.Contains(html, "No line items") {
		t.Error("expected empty-state row")
	}
	if !strings.Contains(html, "Client: Unassigned") {
		t.Error("expected unassigned client")
	}
}
