package services

import (
	"time"

	"github.com/google/uuid"
)

// PlaceholderUnitPrice is the unit price given to line items that could not be
// priced from the catalog.
const PlaceholderUnitPrice = 100.0

// PlaceholderNote flags a placeholder line item for manual review.
const PlaceholderNote = "No matching catalog template found. Review pricing before sending."

// LineItemTemplate is a catalog entry owned by a contractor.
type LineItemTemplate struct {
	ID           string    `json:"id"`
	ContractorID string    `json:"contractorId,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     Category  `json:"category"`
	Unit         string    `json:"unit"`
	BasePrice    float64   `json:"basePrice"`
	LaborHours   float64   `json:"laborHours"`
	MaterialCost float64   `json:"materialCost"`
	Markup       float64   `json:"markup"`
	IsActive     bool      `json:"isActive"`
	Created      time.Time `json:"created,omitzero"`
	Updated      time.Time `json:"updated,omitzero"`
}

// EnhancedLineItem is one priced row of a quote. LaborCost, MaterialTotal,
// Subtotal, MarkupAmount and Total are derived and only change through
// CreateEnhancedLineItem or RecalculateLineItem.
type EnhancedLineItem struct {
	ID                   string   `json:"id"`
	Description          string   `json:"description"`
	Quantity             float64  `json:"quantity"`
	Unit                 string   `json:"unit"`
	UnitPrice            float64  `json:"unitPrice"`
	LaborHours           float64  `json:"laborHours"`
	LaborRate            float64  `json:"laborRate"`
	LaborCost            float64  `json:"laborCost"`
	MaterialCost         float64  `json:"materialCost"`
	MaterialTotal        float64  `json:"materialTotal"`
	Markup               float64  `json:"markup"`
	MarkupAmount         float64  `json:"markupAmount"`
	Subtotal             float64  `json:"subtotal"`
	Total                float64  `json:"total"`
	Deleted              bool     `json:"deleted"`
	Note                 string   `json:"note"`
	TemplateID           string   `json:"templateId,omitempty"`
	ExtractionConfidence *float64 `json:"extractionConfidence,omitempty"`
	Category             Category `json:"category,omitempty"`
}

// NewLineItemID returns a random identifier for a line item.
func NewLineItemID() string {
	return uuid.NewString()
}

// CreateEnhancedLineItem prices a catalog template for the given quantity
// using the contractor's effective labor rate for the template category.
func CreateEnhancedLineItem(tmpl LineItemTemplate, quantity float64, rates LaborRates) EnhancedLineItem {
	laborRate := rates.EffectiveRate(tmpl.Category)
	cost := CalcLineItemTotal(PricingInput{
		Quantity:      quantity,
		BasePrice:     tmpl.BasePrice,
		LaborHours:    tmpl.LaborHours,
		LaborRate:     laborRate,
		MaterialCost:  tmpl.MaterialCost,
		MarkupPercent: tmpl.Markup,
	})

	return EnhancedLineItem{
		ID:            NewLineItemID(),
		Description:   tmpl.Name,
		Quantity:      quantity,
		Unit:          tmpl.Unit,
		UnitPrice:     cost.Total / orDefault(quantity, 1),
		LaborHours:    tmpl.LaborHours,
		LaborRate:     laborRate,
		LaborCost:     cost.LaborCost,
		MaterialCost:  tmpl.MaterialCost,
		MaterialTotal: cost.MaterialCost,
		Markup:        tmpl.Markup,
		MarkupAmount:  cost.MarkupAmount,
		Subtotal:      cost.Subtotal,
		Total:         cost.Total,
		Deleted:       false,
		Note:          "",
		TemplateID:    tmpl.ID,
		Category:      tmpl.Category,
	}
}

// RecalculateLineItem re-derives the computed fields of item after an edit to
// its quantity, unit price, labor hours, labor rate, material cost or markup.
// The flat base price is taken from the pre-edit unit price divided by the
// quantity. UnitPrice itself is an input and is left untouched, so calling
// RecalculateLineItem twice without edits yields the same result.
func RecalculateLineItem(item EnhancedLineItem) EnhancedLineItem {
	basePrice := item.UnitPrice / orDefault(item.Quantity, 1)
	cost := CalcLineItemTotal(PricingInput{
		Quantity:      item.Quantity,
		BasePrice:     basePrice,
		LaborHours:    item.LaborHours,
		LaborRate:     item.LaborRate,
		MaterialCost:  item.MaterialCost,
		MarkupPercent: item.Markup,
	})

	item.LaborCost = cost.LaborCost
	item.MaterialTotal = cost.MaterialCost
	item.Subtotal = cost.Subtotal
	item.MarkupAmount = cost.MarkupAmount
	item.Total = cost.Total
	return item
}

// NewPlaceholderLineItem builds a manually-priced line item for a description
// that no catalog template matched.
func NewPlaceholderLineItem(description string, quantity float64) EnhancedLineItem {
	cost := CalcLineItemTotal(PricingInput{
		Quantity:  quantity,
		BasePrice: PlaceholderUnitPrice,
	})
	return EnhancedLineItem{
		ID:            NewLineItemID(),
		Description:   description,
		Quantity:      quantity,
		Unit:          "each",
		UnitPrice:     cost.Total / orDefault(quantity, 1),
		LaborCost:     cost.LaborCost,
		MaterialTotal: cost.MaterialCost,
		Subtotal:      cost.Subtotal,
		MarkupAmount:  cost.MarkupAmount,
		Total:         cost.Total,
		Note:          PlaceholderNote,
	}
}

// LineItemEdit carries the editable fields of a line item. Nil fields are
// left unchanged.
type LineItemEdit struct {
	Description  *string  `json:"description"`
	Quantity     *float64 `json:"quantity"`
	Unit         *string  `json:"unit"`
	UnitPrice    *float64 `json:"unitPrice"`
	LaborHours   *float64 `json:"laborHours"`
	LaborRate    *float64 `json:"laborRate"`
	MaterialCost *float64 `json:"materialCost"`
	Markup       *float64 `json:"markup"`
	Note         *string  `json:"note"`
}

// ApplyLineItemEdit applies edit to item and recalculates it when any priced
// field changed.
func ApplyLineItemEdit(item EnhancedLineItem, edit LineItemEdit) EnhancedLineItem {
	if edit.Description != nil {
		item.Description = *edit.Description
	}
	if edit.Unit != nil {
		item.Unit = *edit.Unit
	}
	if edit.Note != nil {
		item.Note = *edit.Note
	}

	if !edit.changesPricing() {
		return item
	}

	if edit.Quantity != nil {
		item.Quantity = *edit.Quantity
	}
	if edit.UnitPrice != nil {
		item.UnitPrice = *edit.UnitPrice
	}
	if edit.LaborHours != nil {
		item.LaborHours = *edit.LaborHours
	}
	if edit.LaborRate != nil {
		item.LaborRate = *edit.LaborRate
	}
	if edit.MaterialCost != nil {
		item.MaterialCost = *edit.MaterialCost
	}
	if edit.Markup != nil {
		item.Markup = *edit.Markup
	}
	return RecalculateLineItem(item)
}

func (e LineItemEdit) changesPricing() bool {
	return e.Quantity != nil || e.UnitPrice != nil || e.LaborHours != nil ||
		e.LaborRate != nil || e.MaterialCost != nil || e.Markup != nil
}
