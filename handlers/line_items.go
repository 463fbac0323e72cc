package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"contractshield/services"
)

type buildLineItemRequest struct {
	TemplateID string  `json:"templateId"`
	Quantity   float64 `json:"quantity"`
}

// HandleLineItemBuild prices a catalog template for a quantity using the
// contractor's labor rates.
// Route: POST /api/contractors/{contractorId}/line-items/build
func HandleLineItemBuild(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")

		var body buildLineItemRequest
		if err := e.BindBody(&body); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid request body")
		}
		if body.TemplateID == "" {
			return ErrorJSON(e, http.StatusBadRequest, "templateId is required")
		}

		tmpl, err := services.FindTemplate(app, contractorID, body.TemplateID)
		if err != nil {
			return StoreErrorJSON(e, "line_items: build", "Template not found", err)
		}
		if !tmpl.IsActive {
			return ErrorJSON(e, http.StatusUnprocessableEntity, "Template is no longer active")
		}

		rates, err := services.LoadLaborRates(app, contractorID)
		if err != nil {
			log.Printf("line_items: build: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to load labor rates")
		}

		return e.JSON(http.StatusOK, services.CreateEnhancedLineItem(tmpl, body.Quantity, rates))
	}
}

type recalculateRequest struct {
	Item services.EnhancedLineItem `json:"item"`
	Edit *services.LineItemEdit    `json:"edit"`
}

// HandleLineItemRecalculate applies an in-place edit to a line item that has
// not been saved yet and returns the recomputed item. Without an edit the
// item is recalculated as-is.
// Route: POST /api/contractors/{contractorId}/line-items/recalculate
func HandleLineItemRecalculate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body recalculateRequest
		if err := e.BindBody(&body); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid request body")
		}

		if body.Edit == nil {
			return e.JSON(http.StatusOK, services.RecalculateLineItem(body.Item))
		}
		return e.JSON(http.StatusOK, services.ApplyLineItemEdit(body.Item, *body.Edit))
	}
}

type resolveExtractionRequest struct {
	Items []services.ExtractedLineItem `json:"items"`
}

// HandleExtractionResolve prices the rows produced by document extraction
// against the contractor's active catalog.
// Route: POST /api/contractors/{contractorId}/extractions/resolve
func HandleExtractionResolve(app *pocketbase.PocketBase, matcher services.Matcher) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")

		var body resolveExtractionRequest
		if err := e.BindBody(&body); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid request body")
		}
		if len(body.Items) == 0 {
			return ErrorJSON(e, http.StatusBadRequest, "At least one extracted item is required")
		}

		templates, err := services.LoadActiveTemplates(app, contractorID)
		if err != nil {
			log.Printf("extractions: resolve: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to load templates")
		}
		rates, err := services.LoadLaborRates(app, contractorID)
		if err != nil {
			log.Printf("extractions: resolve: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to load labor rates")
		}

		result := services.ResolveExtractedItems(body.Items, templates, rates, matcher)
		if len(result.Unmatched) > 0 {
			log.Printf("extractions: resolve: contractor %s: %d of %d item(s) unmatched", contractorID, len(result.Unmatched), len(body.Items))
		}
		return e.JSON(http.StatusOK, result)
	}
}
