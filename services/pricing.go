// Package services provides pricing calculation functions for quote line items.
package services

import "math"

// Category is a catalog trade category. Labor rates can be overridden per category.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryPlumbing   Category = "plumbing"
	CategoryElectrical Category = "electrical"
	CategoryFlooring   Category = "flooring"
	CategoryRoofing    Category = "roofing"
	CategoryHVAC       Category = "hvac"
)

// Categories lists every supported category in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryPlumbing,
	CategoryElectrical,
	CategoryFlooring,
	CategoryRoofing,
	CategoryHVAC,
}

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// LaborRates is a contractor's hourly rate schedule. Overrides holds an entry
// only for categories that do not inherit the global rate; an override of 0
// is an explicit free-labor rate.
type LaborRates struct {
	Global    float64               `json:"global"`
	Overrides map[Category]*float64 `json:"overrides,omitempty"`
}

// LaborRatesFromLegacy converts the stored rate shape, where a category value
// of 0 (or a missing key) means "inherit the global rate", into LaborRates.
// Only strictly positive category values become overrides.
func LaborRatesFromLegacy(global float64, categories map[string]float64) LaborRates {
	rates := LaborRates{Global: global}
	for key, value := range categories {
		cat := Category(key)
		if !cat.IsValid() || !(value > 0) {
			continue
		}
		rates = rates.WithOverride(cat, value)
	}
	return rates
}

// WithOverride returns a copy of r with an override set for cat.
func (r LaborRates) WithOverride(cat Category, rate float64) LaborRates {
	overrides := make(map[Category]*float64, len(r.Overrides)+1)
	for k, v := range r.Overrides {
		overrides[k] = v
	}
	v := rate
	overrides[cat] = &v
	r.Overrides = overrides
	return r
}

// EffectiveRate resolves the labor rate applied to cat.
func (r LaborRates) EffectiveRate(cat Category) float64 {
	if override, ok := r.Overrides[cat]; ok && override != nil {
		return *override
	}
	return r.Global
}

// LegacyCategoryRates flattens r back into the stored shape, writing 0 for
// every category that inherits the global rate.
func (r LaborRates) LegacyCategoryRates() map[string]float64 {
	out := make(map[string]float64, len(Categories))
	for _, cat := range Categories {
		if override, ok := r.Overrides[cat]; ok && override != nil {
			out[string(cat)] = *override
		} else {
			out[string(cat)] = 0
		}
	}
	return out
}

// PricingInput holds the raw numeric inputs of one line item.
type PricingInput struct {
	Quantity      float64
	BasePrice     float64
	LaborHours    float64
	LaborRate     float64
	MaterialCost  float64
	MarkupPercent float64
}

// LineItemCost is the canonical cost breakdown of one line item.
type LineItemCost struct {
	LaborCost    float64 // LaborHours * LaborRate * Quantity
	MaterialCost float64 // MaterialCost * Quantity
	BaseCost     float64 // BasePrice * Quantity
	Subtotal     float64 // LaborCost + MaterialCost + BaseCost
	MarkupAmount float64 // Subtotal * MarkupPercent / 100
	Total        float64 // Subtotal * (1 + MarkupPercent / 100)
}

// CalcLineItemTotal computes the cost breakdown for a line item. It never
// fails: an unset quantity counts as 1 and any other unset input as 0.
func CalcLineItemTotal(in PricingInput) LineItemCost {
	qty := orDefault(in.Quantity, 1)
	basePrice := orDefault(in.BasePrice, 0)
	laborHours := orDefault(in.LaborHours, 0)
	laborRate := orDefault(in.LaborRate, 0)
	materialCost := orDefault(in.MaterialCost, 0)
	markup := orDefault(in.MarkupPercent, 0)

	laborCost := laborHours * laborRate * qty
	materialTotal := materialCost * qty
	baseCost := basePrice * qty
	subtotal := laborCost + materialTotal + baseCost

	return LineItemCost{
		LaborCost:    laborCost,
		MaterialCost: materialTotal,
		BaseCost:     baseCost,
		Subtotal:     subtotal,
		MarkupAmount: subtotal * (markup / 100),
		Total:        subtotal * (1 + markup/100),
	}
}

// orDefault treats 0 and NaN as unset.
func orDefault(v, def float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return def
	}
	return v
}
