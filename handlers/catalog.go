package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"contractshield/services"
)

// templatePatch carries the editable fields of a catalog template. Nil fields
// are left unchanged.
type templatePatch struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Category     *string  `json:"category"`
	Unit         *string  `json:"unit"`
	BasePrice    *float64 `json:"basePrice"`
	LaborHours   *float64 `json:"laborHours"`
	MaterialCost *float64 `json:"materialCost"`
	Markup       *float64 `json:"markup"`
	IsActive     *bool    `json:"isActive"`
}

func (p templatePatch) apply(t services.LineItemTemplate) services.LineItemTemplate {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		if cat, ok := services.ParseCategory(*p.Category); ok {
			t.Category = cat
		} else {
			t.Category = services.Category(*p.Category)
		}
	}
	if p.Unit != nil {
		t.Unit = *p.Unit
	}
	if p.BasePrice != nil {
		t.BasePrice = *p.BasePrice
	}
	if p.LaborHours != nil {
		t.LaborHours = *p.LaborHours
	}
	if p.MaterialCost != nil {
		t.MaterialCost = *p.MaterialCost
	}
	if p.Markup != nil {
		t.Markup = *p.Markup
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	return t
}

// saveTemplateResponse writes the outcome of services.SaveTemplate.
func saveTemplateResponse(e *core.RequestEvent, where string, status int, saved services.LineItemTemplate, err error) error {
	if err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			return ValidationErrorJSON(e, "Template is invalid", err)
		}
		return StoreErrorJSON(e, where, "Template not found", err)
	}
	return e.JSON(status, saved)
}

// HandleTemplateList returns the contractor's catalog. Pass ?all=true to
// include deactivated templates.
// Route: GET /api/contractors/{contractorId}/templates
func HandleTemplateList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")
		includeInactive := e.Request.URL.Query().Get("all") == "true"

		templates, err := services.ListTemplates(app, contractorID, includeInactive)
		if err != nil {
			log.Printf("catalog: list: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to load templates")
		}
		return e.JSON(http.StatusOK, templates)
	}
}

// HandleTemplateCreate adds a template to the contractor's catalog.
// Route: POST /api/contractors/{contractorId}/templates
func HandleTemplateCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")

		var body templatePatch
		if err := e.BindBody(&body); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid request body")
		}

		tmpl := body.apply(services.LineItemTemplate{IsActive: true})
		tmpl.ContractorID = contractorID

		saved, err := services.SaveTemplate(app, tmpl)
		return saveTemplateResponse(e, "catalog: create", http.StatusCreated, saved, err)
	}
}

// HandleTemplateUpdate edits a template. Quotes already issued keep the
// values they were priced with.
// Route: PATCH /api/contractors/{contractorId}/templates/{id}
func HandleTemplateUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")
		id := e.Request.PathValue("id")

		existing, err := services.FindTemplate(app, contractorID, id)
		if err != nil {
			return StoreErrorJSON(e, "catalog: update", "Template not found", err)
		}

		var body templatePatch
		if err := e.BindBody(&body); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid request body")
		}

		saved, err := services.SaveTemplate(app, body.apply(existing))
		return saveTemplateResponse(e, "catalog: update", http.StatusOK, saved, err)
	}
}

// HandleTemplateDeactivate removes a template from matching without deleting it.
// Route: DELETE /api/contractors/{contractorId}/templates/{id}
func HandleTemplateDeactivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")
		id := e.Request.PathValue("id")

		if err := services.DeactivateTemplate(app, contractorID, id); err != nil {
			return StoreErrorJSON(e, "catalog: deactivate", "Template not found", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleTemplateImport validates an uploaded .csv or .xlsx catalog. When every
// row is valid the templates are stored; otherwise nothing is stored and the
// row errors are returned with status 422.
// Route: POST /api/contractors/{contractorId}/templates/import
func HandleTemplateImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")

		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ParseTemplateFile(file, header.Filename, contractorID)
		if err != nil {
			log.Printf("catalog_import: %v", err)
			return ErrorJSON(e, http.StatusBadRequest, err.Error())
		}

		if result.ErrorRows > 0 {
			return e.JSON(http.StatusUnprocessableEntity, result)
		}

		if _, err := services.ImportTemplates(app, result.Templates); err != nil {
			log.Printf("catalog_import: save: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to import templates")
		}

		log.Printf("catalog_import: imported %d template(s) for contractor %s from %s", result.ValidRows, contractorID, header.Filename)
		return e.JSON(http.StatusCreated, result)
	}
}

// HandleTemplateImportSample downloads the empty catalog spreadsheet.
// Route: GET /api/contractors/{contractorId}/templates/import/template
func HandleTemplateImportSample(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateTemplateFile()
		if err != nil {
			log.Printf("catalog_import: template: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to generate template file")
		}
		return writeDownload(e, xlsxContentType, "catalog_template.xlsx", xlsxBytes)
	}
}

// HandleTemplateImportErrors turns posted row errors into a downloadable report.
// Route: POST /api/contractors/{contractorId}/templates/import/errors
func HandleTemplateImportErrors(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var importErrors []services.ImportError
		if err := json.NewDecoder(e.Request.Body).Decode(&importErrors); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid error data")
		}

		xlsxBytes, err := services.GenerateErrorReport(importErrors)
		if err != nil {
			log.Printf("catalog_import: error report: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to generate error report")
		}
		return writeDownload(e, xlsxContentType, "catalog_import_errors.xlsx", xlsxBytes)
	}
}

// HandleLaborRatesGet returns the contractor's rate schedule.
// Route: GET /api/contractors/{contractorId}/labor-rates
func HandleLaborRatesGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")

		rates, err := services.LoadLaborRates(app, contractorID)
		if err != nil {
			log.Printf("labor_rates: get: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to load labor rates")
		}
		return e.JSON(http.StatusOK, laborRatesResponse(rates))
	}
}

// HandleLaborRatesPut replaces the contractor's rate schedule. A category
// that is absent or null in "overrides" inherits the global rate.
// Route: PUT /api/contractors/{contractorId}/labor-rates
func HandleLaborRatesPut(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")

		var rates services.LaborRates
		if err := e.BindBody(&rates); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid request body")
		}

		saved, err := services.SaveLaborRates(app, contractorID, rates)
		if err != nil {
			var fieldErrs validation.Errors
			if errors.As(err, &fieldErrs) {
				return ValidationErrorJSON(e, "Labor rates are invalid", err)
			}
			log.Printf("labor_rates: put: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to save labor rates")
		}
		return e.JSON(http.StatusOK, laborRatesResponse(saved))
	}
}

// laborRatesBody adds the resolved rate of every category to the schedule.
type laborRatesBody struct {
	services.LaborRates
	Effective map[services.Category]float64 `json:"effective"`
}

func laborRatesResponse(rates services.LaborRates) laborRatesBody {
	effective := make(map[services.Category]float64, len(services.Categories))
	for _, cat := range services.Categories {
		effective[cat] = rates.EffectiveRate(cat)
	}
	return laborRatesBody{LaborRates: rates, Effective: effective}
}
