package services

import (
	"math"
	"testing"
)

func TestResolveExtractedItems(t *testing.T) {
	catalog := sampleCatalog()
	catalog[0].LaborHours = 3
	catalog[0].MaterialCost = 125
	catalog[0].Markup = 30
	inactive := LineItemTemplate{ID: "t4", Name: "Gutter Cleaning", IsActive: false}
	catalog = append(catalog, inactive)

	rates := LaborRates{Global: 85}
	items := []ExtractedLineItem{
		{Description: "Wall repair and painting - living room", Quantity: 2, Confidence: 0.9, SuggestedTemplateID: "t1"},
		{Description: "Replace Water Heater", Quantity: 1, Confidence: 0.6},
		{Description: "Gutter Cleaning", Quantity: 1, Confidence: 0.95, SuggestedTemplateID: "t4"},
		{Description: "Install ceiling fan", Quantity: 2, Confidence: 0.7, SuggestedTemplateID: "t2"},
	}

	result := ResolveExtractedItems(items, catalog, rates, DefaultMatcher())

	if len(result.LineItems) != 4 || len(result.Matches) != 4 {
		t.Fatalf("expected 4 items and matches, got %d and %d", len(result.LineItems), len(result.Matches))
	}

	tests := []struct {
		idx         int
		source      MatchSource
		templateID  string
		needsReview bool
	}{
		{0, MatchSourceSuggestion, "t1", false},
		{1, MatchSourceMatcher, "t3", false},
		{2, MatchSourcePlaceholder, "", true},
		{3, MatchSourceMatcher, "t2", false},
	}
	for _, tt := range tests {
		m := result.Matches[tt.idx]
		if m.Source != tt.source {
			t.Errorf("item %d: source = %q, want %q", tt.idx, m.Source, tt.source)
		}
		if m.TemplateID != tt.templateID {
			t.Errorf("item %d: template = %q, want %q", tt.idx, m.TemplateID, tt.templateID)
		}
		if m.NeedsReview != tt.needsReview {
			t.Errorf("item %d: needsReview = %v, want %v", tt.idx, m.NeedsReview, tt.needsReview)
		}
		if m.Index != tt.idx {
			t.Errorf("item %d: index = %d", tt.idx, m.Index)
		}
	}

	first := result.LineItems[0]
	if first.Description != items[0].Description {
		t.Errorf("description = %q, want extraction text", first.Description)
	}
	if math.Abs(first.Total-988) > 0.001 {
		t.Errorf("first total = %v, want 988", first.Total)
	}
	if first.ExtractionConfidence == nil || *first.ExtractionConfidence != 0.9 {
		t.Errorf("first confidence = %v, want 0.9", first.ExtractionConfidence)
	}

	if got := *result.LineItems[1].ExtractionConfidence; got != 1.0 {
		t.Errorf("matcher confidence = %v, want 1.0", got)
	}

	placeholder := result.LineItems[2]
	if placeholder.Note != PlaceholderNote {
		t.Errorf("placeholder note = %q", placeholder.Note)
	}
	if len(result.Unmatched) != 1 || result.Unmatched[0] != "Gutter Cleaning" {
		t.Errorf("Unmatched = %v, want [Gutter Cleaning]", result.Unmatched)
	}

	var want float64
	for _, item := range result.LineItems {
		want += item.Total
	}
	if math.Abs(result.Totals.Total-want) > 0.001 {
		t.Errorf("Totals.Total = %v, want %v", result.Totals.Total, want)
	}
}

func TestResolveExtractedItems_EmptyCatalog(t *testing.T) {
	result := ResolveExtractedItems(
		[]ExtractedLineItem{{Description: "Anything", Quantity: 3, Confidence: 0.4}},
		nil,
		LaborRates{},
		DefaultMatcher(),
	)
	if len(result.LineItems) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.LineItems))
	}
	item := result.LineItems[0]
	if math.Abs(item.Total-3*PlaceholderUnitPrice) > 0.001 {
		t.Errorf("Total = %v, want %v", item.Total, 3*PlaceholderUnitPrice)
	}
	if !result.Matches[0].NeedsReview {
		t.Error("placeholder must need review")
	}
}

func TestActiveTemplates(t *testing.T) {
	got := ActiveTemplates([]LineItemTemplate{
		{ID: "a", IsActive: true},
		{ID: "b"},
		{ID: "c", IsActive: true},
	})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("ActiveTemplates = %+v", got)
	}
}
