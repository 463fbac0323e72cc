package services

import (
	"strconv"
	"time"
)

// ExportRow represents a single line item row in the quote export.
type ExportRow struct {
	Index        string // "1", "2", ...
	Description  string
	Category     string
	Qty          float64
	Unit         string
	UnitPrice    float64
	LaborCost    float64
	MaterialCost float64
	Markup       float64 // percent
	Total        float64
	Note         string
}

// ExportData holds all data needed for export.
type ExportData struct {
	Title          string
	QuoteID        string
	QuoteNumber    string
	ContractorName string
	ClientName     string
	CreatedDate    string
	ValidUntil     string
	Status         string
	Notes          string
	Rows           []ExportRow
	Totals         QuoteTotals
}

// exportDateLayout is used for every date printed in an export.
const exportDateLayout = "02 Jan 2006"

// BuildQuoteExportData flattens a stored quote into export rows. Soft-deleted
// line items are skipped and the remaining rows are numbered from 1. Totals
// are recomputed from the line items rather than trusted from storage.
func BuildQuoteExportData(q StoredQuote, contractorName, clientName string) ExportData {
	data := ExportData{
		Title:          "Quote",
		QuoteID:        q.ID,
		QuoteNumber:    q.QuoteNumber,
		ContractorName: contractorName,
		ClientName:     clientName,
		CreatedDate:    formatExportDate(q.Created),
		ValidUntil:     formatExportDate(q.ValidUntil),
		Status:         string(q.Status),
		Notes:          q.Notes,
		Totals:         CalcQuoteTotals(q.LineItems),
	}
	if contractorName != "" {
		data.Title = "Quote from " + contractorName
	}

	n := 0
	for _, item := range q.LineItems {
		if item.Deleted {
			continue
		}
		n++
		data.Rows = append(data.Rows, ExportRow{
			Index:        strconv.Itoa(n),
			Description:  item.Description,
			Category:     string(item.Category),
			Qty:          item.Quantity,
			Unit:         item.Unit,
			UnitPrice:    item.UnitPrice,
			LaborCost:    item.LaborCost,
			MaterialCost: item.MaterialTotal,
			Markup:       item.Markup,
			Total:        item.Total,
			Note:         item.Note,
		})
	}
	return data
}

func formatExportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportDateLayout)
}
