package collections

import (
	"fmt"
	"log"
	"math"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"contractshield/services"
)

// currentLineItemKeys must all be present in a stored row for it to count as
// already normalized.
var currentLineItemKeys = []string{"id", "unitPrice", "subtotal", "total", "laborCost", "materialTotal", "markupAmount"}

// MigrateLegacyQuoteLineItems rewrites quotes whose line items were stored in
// an older shape (snake_case keys, missing subtotal or id, string numbers) and
// quotes whose stored totals disagree with their line items. Line item prices
// are normalized, never re-priced. Safe to call on every startup -- returns
// early if nothing to migrate. Returns the number of quotes rewritten.
func MigrateLegacyQuoteLineItems(app *pocketbase.PocketBase) (int, error) {
	quotes, err := app.FindRecordsByFilter(services.QuotesCollection, "", "", 0, 0, nil)
	if err != nil {
		return 0, fmt.Errorf("migrate: could not query quotes: %w", err)
	}

	migrated := 0
	for _, quote := range quotes {
		var rows []map[string]any
		if err := quote.UnmarshalJSONField("line_items", &rows); err != nil {
			log.Printf("migrate: quote %s has unreadable line items, skipping: %v\n", quote.Id, err)
			continue
		}

		items := services.NormalizeLineItems(rows)
		totals := services.CalcQuoteTotals(items)
		if !rowsNeedNormalizing(rows) && storedTotalsMatch(storedQuoteTotals(quote), totals) {
			continue
		}

		quote.Set("line_items", items)
		quote.Set("subtotal", totals.Subtotal)
		quote.Set("total_labor", totals.TotalLabor)
		quote.Set("total_materials", totals.TotalMaterials)
		quote.Set("total_markup", totals.TotalMarkup)
		quote.Set("total", totals.Total)
		if err := app.Save(quote); err != nil {
			log.Printf("migrate: failed to rewrite quote %s: %v\n", quote.Id, err)
			continue
		}
		migrated++
		log.Printf("migrate: quote %s -> %d line item(s), total %s\n", quote.Id, len(items), services.FormatCurrency(totals.Total))
	}

	if migrated > 0 {
		log.Printf("migrate: legacy quote migration complete, %d quote(s) rewritten.\n", migrated)
	}
	return migrated, nil
}

func rowsNeedNormalizing(rows []map[string]any) bool {
	for _, row := range rows {
		for _, key := range currentLineItemKeys {
			if _, ok := row[key]; !ok {
				return true
			}
		}
		for _, key := range []string{"quantity", "unitPrice", "total"} {
			if _, isString := row[key].(string); isString {
				return true
			}
		}
	}
	return false
}

func storedQuoteTotals(quote *core.Record) services.QuoteTotals {
	return services.QuoteTotals{
		Subtotal:       quote.GetFloat("subtotal"),
		TotalLabor:     quote.GetFloat("total_labor"),
		TotalMaterials: quote.GetFloat("total_materials"),
		TotalMarkup:    quote.GetFloat("total_markup"),
		Total:          quote.GetFloat("total"),
	}
}

// storedTotalsMatch compares every aggregate stored on a quote with the one
// computed from its line items.
func storedTotalsMatch(stored, computed services.QuoteTotals) bool {
	pairs := [][2]float64{
		{stored.Subtotal, computed.Subtotal},
		{stored.TotalLabor, computed.TotalLabor},
		{stored.TotalMaterials, computed.TotalMaterials},
		{stored.TotalMarkup, computed.TotalMarkup},
		{stored.Total, computed.Total},
	}
	for _, p := range pairs {
		if math.Abs(p[0]-p[1]) >= 0.005 {
			return false
		}
	}
	return true
}
