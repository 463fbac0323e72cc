package services

import (
	"math"
	"testing"
)

func TestNormalizeLineItem(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		qty       float64
		unitPrice float64
		subtotal  float64
		total     float64
		desc      string
		unit      string
	}{
		{
			name: "current shape",
			raw: map[string]any{
				"id": "li1", "description": "Paint", "quantity": 2.0, "unit": "room",
				"unitPrice": 50.0, "subtotal": 90.0, "total": 100.0,
			},
			qty: 2, unitPrice: 50, subtotal: 90, total: 100, desc: "Paint", unit: "room",
		},
		{
			name: "snake case with string numbers",
			raw: map[string]any{
				"description": "Tile", "qty": "3", "uom": "sqft", "unit_price": "12.50", "line_total": "37.5",
			},
			qty: 3, unitPrice: 12.5, subtotal: 37.5, total: 37.5, desc: "Tile", unit: "sqft",
		},
		{
			name: "total only derives unit price",
			raw:  map[string]any{"name": "Haul away", "quantity": 4, "total": 200},
			qty:  4, unitPrice: 50, subtotal: 200, total: 200, desc: "Haul away",
		},
		{
			name: "unit price only derives total",
			raw:  map[string]any{"description": "Outlet", "quantity": 3, "rate": 20},
			qty:  3, unitPrice: 20, subtotal: 60, total: 60, desc: "Outlet",
		},
		{
			name: "missing quantity defaults to one",
			raw:  map[string]any{"description": "Visit", "unitPrice": 75},
			qty:  1, unitPrice: 75, subtotal: 75, total: 75, desc: "Visit",
		},
		{
			name: "blank strings count as absent",
			raw:  map[string]any{"description": "Blank", "quantity": "", "unitPrice": "", "total": "30"},
			qty:  1, unitPrice: 30, subtotal: 30, total: 30, desc: "Blank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLineItem(tt.raw)
			checks := []struct {
				field     string
				got, want float64
			}{
				{"Quantity", got.Quantity, tt.qty},
				{"UnitPrice", got.UnitPrice, tt.unitPrice},
				{"Subtotal", got.Subtotal, tt.subtotal},
				{"Total", got.Total, tt.total},
			}
			for _, c := range checks {
				if math.Abs(c.got-c.want) > 0.001 {
					t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
				}
			}
			if got.Description != tt.desc {
				t.Errorf("Description = %q, want %q", got.Description, tt.desc)
			}
			if got.Unit != tt.unit {
				t.Errorf("Unit = %q, want %q", got.Unit, tt.unit)
			}
			if got.ID == "" {
				t.Error("expected an id to be assigned")
			}
		})
	}
}

func TestNormalizeLineItem_KeepsIDAndFlags(t *testing.T) {
	got := NormalizeLineItem(map[string]any{
		"id":                    "keep-me",
		"description":           "Gutter guard",
		"deleted":               "true",
		"template_id":           "tmpl9",
		"category":              "roofing",
		"extraction_confidence": 0.72,
		"labor_hours":           "1.5",
		"labor_rate":            80,
	})

	if got.ID != "keep-me" {
		t.Errorf("ID = %q, want keep-me", got.ID)
	}
	if !got.Deleted {
		t.Error("expected Deleted to be true")
	}
	if got.TemplateID != "tmpl9" {
		t.Errorf("TemplateID = %q", got.TemplateID)
	}
	if got.Category != CategoryRoofing {
		t.Errorf("Category = %q", got.Category)
	}
	if got.ExtractionConfidence == nil || math.Abs(*got.ExtractionConfidence-0.72) > 0.001 {
		t.Errorf("ExtractionConfidence = %v, want 0.72", got.ExtractionConfidence)
	}
	if got.LaborHours != 1.5 || got.LaborRate != 80 {
		t.Errorf("labor = %v h @ %v, want 1.5 h @ 80", got.LaborHours, got.LaborRate)
	}
}

func TestNormalizeLineItem_DropsUnknownCategory(t *testing.T) {
	got := NormalizeLineItem(map[string]any{"description": "x", "category": "landscaping"})
	if got.Category != "" {
		t.Errorf("Category = %q, want empty", got.Category)
	}
}

func TestNormalizeLineItem_NeverReprices(t *testing.T) {
	got := NormalizeLineItem(map[string]any{
		"description":  "Stale row",
		"quantity":     2,
		"laborHours":   3,
		"laborRate":    85,
		"materialCost": 125,
		"markup":       30,
		"unitPrice":    10,
		"total":        20,
	})
	if got.Total != 20 {
		t.Errorf("Total = %v, want stored 20", got.Total)
	}
}

func TestNormalizeLineItems(t *testing.T) {
	items := NormalizeLineItems([]map[string]any{
		{"description": "a", "total": 10},
		{"description": "b", "total": 20},
	})
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID == items[1].ID {
		t.Error("expected distinct generated ids")
	}
	if got := NormalizeLineItems(nil); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}
