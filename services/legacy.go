package services

import (
	"github.com/spf13/cast"
)

// NormalizeLineItem converts a stored or imported line item row into an
// EnhancedLineItem. It accepts both the current camelCase field names and the
// older snake_case rows (qty, unit_price, line_total, ...), numbers encoded as
// strings, and rows that never stored a subtotal. Missing derived values are
// filled from the ones present; nothing is recalculated from labor inputs.
func NormalizeLineItem(raw map[string]any) EnhancedLineItem {
	item := EnhancedLineItem{
		ID:          firstString(raw, "id"),
		Description: firstString(raw, "description", "name"),
		Unit:        firstString(raw, "unit", "uom"),
		Note:        firstString(raw, "note", "notes"),
		TemplateID:  firstString(raw, "templateId", "template_id"),
		Category:    Category(firstString(raw, "category")),
		Deleted:     cast.ToBool(raw["deleted"]),
	}
	if item.ID == "" {
		item.ID = NewLineItemID()
	}
	if !item.Category.IsValid() {
		item.Category = ""
	}

	qty, hasQty := firstFloat(raw, "quantity", "qty")
	if !hasQty {
		qty = 1
	}
	item.Quantity = qty

	item.LaborHours, _ = firstFloat(raw, "laborHours", "labor_hours")
	item.LaborRate, _ = firstFloat(raw, "laborRate", "labor_rate")
	item.LaborCost, _ = firstFloat(raw, "laborCost", "labor_cost")
	item.MaterialCost, _ = firstFloat(raw, "materialCost", "material_cost")
	item.MaterialTotal, _ = firstFloat(raw, "materialTotal", "material_total")
	item.Markup, _ = firstFloat(raw, "markup", "markup_percent")
	item.MarkupAmount, _ = firstFloat(raw, "markupAmount", "markup_amount")

	unitPrice, hasUnitPrice := firstFloat(raw, "unitPrice", "unit_price", "rate")
	total, hasTotal := firstFloat(raw, "total", "lineTotal", "line_total")
	switch {
	case hasTotal && !hasUnitPrice:
		unitPrice = total / orDefault(qty, 1)
	case hasUnitPrice && !hasTotal:
		total = unitPrice * orDefault(qty, 1)
	}
	item.UnitPrice = unitPrice
	item.Total = total

	subtotal, hasSubtotal := firstFloat(raw, "subtotal")
	if !hasSubtotal {
		subtotal = total
	}
	item.Subtotal = subtotal

	if conf, ok := firstFloat(raw, "extractionConfidence", "extraction_confidence"); ok {
		item.ExtractionConfidence = &conf
	}

	return item
}

// NormalizeLineItems converts a slice of raw rows.
func NormalizeLineItems(rows []map[string]any) []EnhancedLineItem {
	items := make([]EnhancedLineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, NormalizeLineItem(row))
	}
	return items
}

// firstFloat returns the first key in raw holding a value convertible to a
// number. Empty strings and nil values count as absent.
func firstFloat(raw map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			continue
		}
		return f, true
	}
	return 0, false
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := cast.ToString(raw[key]); s != "" {
			return s
		}
	}
	return ""
}
