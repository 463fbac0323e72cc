package services

import (
	"strings"
	"testing"
)

func validTemplate() LineItemTemplate {
	return LineItemTemplate{
		Name:         "Install Ceiling Fan",
		Category:     CategoryElectrical,
		Unit:         "each",
		LaborHours:   2,
		MaterialCost: 40,
		Markup:       20,
	}
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LineItemTemplate)
		wantErr string // field key expected in the errors, "" for valid
	}{
		{"valid", func(*LineItemTemplate) {}, ""},
		{"missing name", func(t *LineItemTemplate) { t.Name = "" }, "name"},
		{"long name", func(t *LineItemTemplate) { t.Name = strings.Repeat("x", 201) }, "name"},
		{"unknown category", func(t *LineItemTemplate) { t.Category = "carpentry" }, "category"},
		{"missing unit", func(t *LineItemTemplate) { t.Unit = "" }, "unit"},
		{"negative base price", func(t *LineItemTemplate) { t.BasePrice = -1 }, "basePrice"},
		{"negative labor hours", func(t *LineItemTemplate) { t.LaborHours = -0.5 }, "laborHours"},
		{"negative material", func(t *LineItemTemplate) { t.MaterialCost = -3 }, "materialCost"},
		{"markup below -100", func(t *LineItemTemplate) { t.Markup = -101 }, "markup"},
		{"discount markup allowed", func(t *LineItemTemplate) { t.Markup = -20 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTemplate()
			tt.mutate(&tmpl)
			errs := FieldErrors(ValidateTemplate(tmpl))

			if tt.wantErr == "" {
				if len(errs) != 0 {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			if _, ok := errs[tt.wantErr]; !ok {
				t.Errorf("expected error on %q, got %v", tt.wantErr, errs)
			}
		})
	}
}

func TestValidateLaborRates(t *testing.T) {
	neg := -5.0
	ok := 90.0

	tests := []struct {
		name    string
		rates   LaborRates
		wantErr string
	}{
		{"empty", LaborRates{}, ""},
		{"global with override", LaborRates{Global: 75, Overrides: map[Category]*float64{CategoryPlumbing: &ok}}, ""},
		{"nil override", LaborRates{Global: 75, Overrides: map[Category]*float64{CategoryPlumbing: nil}}, ""},
		{"negative global", LaborRates{Global: -1}, "global"},
		{"negative override", LaborRates{Global: 75, Overrides: map[Category]*float64{CategoryHVAC: &neg}}, "overrides"},
		{"unknown category", LaborRates{Global: 75, Overrides: map[Category]*float64{"masonry": &ok}}, "overrides"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := FieldErrors(ValidateLaborRates(tt.rates))
			if tt.wantErr == "" {
				if len(errs) != 0 {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			if _, ok := errs[tt.wantErr]; !ok {
				t.Errorf("expected error on %q, got %v", tt.wantErr, errs)
			}
		})
	}
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	errs := FieldErrors(errString("boom"))
	if errs["_"] != "boom" {
		t.Errorf("expected boom under _, got %v", errs)
	}
	if len(FieldErrors(nil)) != 0 {
		t.Error("expected empty map for nil error")
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input  string
		expect Category
		ok     bool
	}{
		{"HVAC", CategoryHVAC, true},
		{" Plumbing ", CategoryPlumbing, true},
		{"general", CategoryGeneral, true},
		{"landscaping", "landscaping", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.input)
		if got != tt.expect || ok != tt.ok {
			t.Errorf("ParseCategory(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.expect, tt.ok)
		}
	}
}
