package services

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Markup below -100% would turn a line total negative.
const minMarkupPercent = -100.0

// ValidateTemplate checks a catalog template before it is stored.
func ValidateTemplate(t LineItemTemplate) error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&t.Description, validation.Length(0, 2000)),
		validation.Field(&t.Category, validation.Required, validation.In(categoryValues()...)),
		validation.Field(&t.Unit, validation.Required, validation.Length(1, 50)),
		validation.Field(&t.BasePrice, validation.Min(0.0)),
		validation.Field(&t.LaborHours, validation.Min(0.0)),
		validation.Field(&t.MaterialCost, validation.Min(0.0)),
		validation.Field(&t.Markup, validation.Min(minMarkupPercent)),
	)
}

// ValidateLaborRates checks a rate schedule before it is stored.
func ValidateLaborRates(r LaborRates) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Global, validation.Min(0.0)),
		validation.Field(&r.Overrides, validation.By(validateOverrides)),
	)
}

func validateOverrides(value any) error {
	overrides, _ := value.(map[Category]*float64)
	for cat, rate := range overrides {
		if !cat.IsValid() {
			return fmt.Errorf("unknown category %q", cat)
		}
		if rate != nil && *rate < 0 {
			return fmt.Errorf("rate for %s must be no less than 0", cat)
		}
	}
	return nil
}

// FieldErrors flattens a validation error into a field -> message map.
// Errors that are not field errors are reported under the "_" key.
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	if err == nil {
		return out
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, fe := range fieldErrs {
			out[field] = fe.Error()
		}
		return out
	}
	out["_"] = err.Error()
	return out
}

// ParseCategory normalizes user input such as "HVAC" or " Plumbing " to a Category.
func ParseCategory(s string) (Category, bool) {
	cat := Category(strings.ToLower(strings.TrimSpace(s)))
	return cat, cat.IsValid()
}

func categoryValues() []any {
	values := make([]any, len(Categories))
	for i, c := range Categories {
		values[i] = c
	}
	return values
}
