// Package templates holds the server-rendered HTML views.
package templates

// QuoteSummaryItem is one visible line of the summary table.
type QuoteSummaryItem struct {
	Description string
	Quantity    string
	Unit        string
	UnitPrice   string
	Total       string
	Note        string
	NeedsReview bool
}

// QuoteSummaryData is the preformatted content of the client-facing quote view.
type QuoteSummaryData struct {
	QuoteNumber    string
	ContractorName string
	ClientName     string
	CreatedDate    string
	ValidUntil     string
	Status         string
	Items          []QuoteSummaryItem
	Labor          string
	Materials      string
	Subtotal       string
	Markup         string
	Total          string
	Notes          string
}

type summaryTotal struct {
	Label string
	Value string
}

func (d QuoteSummaryData) title() string {
	if d.QuoteNumber == "" {
		return "Quote"
	}
	return "Quote " + d.QuoteNumber
}

func (d QuoteSummaryData) clientLabel() string {
	if d.ClientName == "" {
		return "Unassigned"
	}
	return d.ClientName
}

func (d QuoteSummaryData) totals() []summaryTotal {
	return []summaryTotal{
		{"Labor", d.Labor},
		{"Materials", d.Materials},
		{"Subtotal", d.Subtotal},
		{"Markup", d.Markup},
		{"Total", d.Total},
	}
}

func statusLabel(status string) string {
	switch status {
	case "pending_client_review":
		return "Pending client review"
	case "accepted":
		return "Accepted"
	case "declined":
		return "Declined"
	case "expired":
		return "Expired"
	}
	return status
}
