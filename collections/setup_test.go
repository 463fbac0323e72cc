package collections_test

import (
	"testing"

	"contractshield/collections"
	"contractshield/services"
	"contractshield/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"contractors",
	"clients",
	"line_item_templates",
	"labor_rates",
	"quotes",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_TemplatesFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("line_item_templates")

	fields := []string{"contractor", "name", "description", "category", "unit", "base_price", "labor_hours", "material_cost", "markup", "is_active", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("line_item_templates: missing field %q", f)
		}
	}

	categoryField := col.Fields.GetByName("category")
	if sf, ok := categoryField.(*core.SelectField); ok {
		expected := map[string]bool{}
		for _, c := range services.Categories {
			expected[string(c)] = true
		}
		for _, v := range sf.Values {
			if !expected[v] {
				t.Errorf("unexpected category value: %q", v)
			}
			delete(expected, v)
		}
		for v := range expected {
			t.Errorf("missing category value: %q", v)
		}
	} else {
		t.Errorf("category field is not a SelectField")
	}
}

func TestSetup_LaborRatesFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("labor_rates")

	fields := []string{"contractor", "global_rate", "general_rate", "plumbing_rate", "electrical_rate", "flooring_rate", "roofing_rate", "hvac_rate"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("labor_rates: missing field %q", f)
		}
	}
}

func TestSetup_QuotesFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("quotes")

	fields := []string{"contractor", "client", "quote_number", "work_order_id", "line_items", "subtotal", "total_labor", "total_materials", "total_markup", "total", "notes", "valid_until", "status", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("quotes: missing field %q", f)
		}
	}

	if _, ok := col.Fields.GetByName("line_items").(*core.JSONField); !ok {
		t.Error("quotes.line_items is not a JSONField")
	}

	contractorField := col.Fields.GetByName("contractor")
	if rf, ok := contractorField.(*core.RelationField); ok {
		if rf.MaxSelect != 1 {
			t.Errorf("quotes.contractor: expected MaxSelect=1, got %d", rf.MaxSelect)
		}
		if !rf.CascadeDelete {
			t.Error("quotes.contractor: expected CascadeDelete=true")
		}
	} else {
		t.Errorf("quotes.contractor is not a RelationField")
	}
}

func TestSetup_CascadeDeleteOnContractor(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	contractor := testhelpers.CreateTestContractor(t, app, "Cascade Co")
	tmpl := testhelpers.CreateTestTemplate(t, app, contractor.Id, services.LineItemTemplate{Name: "Outlet", BasePrice: 10})
	quoteID := testhelpers.CreateTestQuote(t, app, contractor.Id, "", []services.EnhancedLineItem{
		{ID: "a", Description: "Outlet", Quantity: 1, UnitPrice: 10, Subtotal: 10, Total: 10},
	})

	if err := app.Delete(contractor); err != nil {
		t.Fatalf("failed to delete contractor: %v", err)
	}

	if _, err := app.FindRecordById("line_item_templates", tmpl.ID); err == nil {
		t.Error("template should have been cascade-deleted")
	}
	if _, err := app.FindRecordById("quotes", quoteID); err == nil {
		t.Error("quote should have been cascade-deleted")
	}
}
