package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"contractshield/services"
	"contractshield/templates"
)

type previewResponse struct {
	Payload  services.QuotePayload `json:"payload"`
	Warnings []string              `json:"warnings"`
}

func newQuoteService(app *pocketbase.PocketBase, validityDays int) *services.QuoteService {
	svc := services.NewQuoteService(services.PocketBaseQuoteStore{App: app})
	if validityDays > 0 {
		svc.ValidityDays = validityDays
	}
	return svc
}

// bindQuoteInput reads a QuoteInput and scopes it to the contractor in the path.
func bindQuoteInput(e *core.RequestEvent) (services.QuoteInput, error) {
	var in services.QuoteInput
	if err := e.BindBody(&in); err != nil {
		return in, err
	}
	in.ContractorID = e.Request.PathValue("contractorId")
	return in, nil
}

// checkClient returns false and writes a 422 when clientID is set but is not
// one of the contractor's clients.
func checkClient(app *pocketbase.PocketBase, e *core.RequestEvent, contractorID, clientID string) (bool, error) {
	if clientID == "" {
		return true, nil
	}
	if _, err := services.FindClient(app, contractorID, clientID); err != nil {
		return false, ErrorJSON(e, http.StatusUnprocessableEntity, "Client not found")
	}
	return true, nil
}

// quoteResultResponse maps a QuoteResult onto an HTTP status.
func quoteResultResponse(e *core.RequestEvent, result services.QuoteResult) error {
	switch {
	case result.Success:
		return e.JSON(http.StatusCreated, result)
	case result.Error == services.MsgSaveFailed:
		return e.JSON(http.StatusInternalServerError, result)
	default:
		return e.JSON(http.StatusUnprocessableEntity, result)
	}
}

// HandleQuotePreview returns the totals and warnings a quote would be stored
// with, without storing it.
// Route: POST /api/contractors/{contractorId}/quotes/preview
func HandleQuotePreview(app *pocketbase.PocketBase, validityDays int) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		in, err := bindQuoteInput(e)
		if err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid request body")
		}
		if len(in.LineItems) == 0 {
			return ErrorJSON(e, http.StatusUnprocessableEntity, services.MsgLineItemsRequired)
		}
		if msg := services.InconsistentLineItem(in.LineItems); msg != "" {
			return ErrorJSON(e, http.StatusUnprocessableEntity, msg)
		}

		svc := newQuoteService(app, validityDays)
		return e.JSON(http.StatusOK, previewResponse{
			Payload:  svc.BuildPayload(in),
			Warnings: services.QuoteWarnings(in),
		})
	}
}

// HandleQuoteCreate validates, totals and stores a new quote.
// Route: POST /api/contractors/{contractorId}/quotes
func HandleQuoteCreate(app *pocketbase.PocketBase, validityDays int) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		in, err := bindQuoteInput(e)
		if err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid request body")
		}
		if ok, err := checkClient(app, e, in.ContractorID, in.ClientID); !ok {
			return err
		}

		result := newQuoteService(app, validityDays).Create(in)
		if result.Success {
			log.Printf("quotes: create: contractor %s: quote %s with %d line item(s)", in.ContractorID, result.QuoteID, len(in.LineItems))
		}
		return quoteResultResponse(e, result)
	}
}

type importQuoteRequest struct {
	ClientID    string           `json:"clientId"`
	WorkOrderID string           `json:"workOrderId"`
	Notes       string           `json:"notes"`
	ValidUntil  *time.Time       `json:"validUntil"`
	LineItems   []map[string]any `json:"lineItems"`
}

// HandleQuoteImport creates a quote from line items exported by older
// versions. Rows are normalized, never re-priced.
// Route: POST /api/contractors/{contractorId}/quotes/import
func HandleQuoteImport(app *pocketbase.PocketBase, validityDays int) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")

		var body importQuoteRequest
		if err := e.BindBody(&body); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid request body")
		}
		if ok, err := checkClient(app, e, contractorID, body.ClientID); !ok {
			return err
		}

		in := services.QuoteInput{
			ContractorID: contractorID,
			ClientID:     body.ClientID,
			WorkOrderID:  body.WorkOrderID,
			LineItems:    services.NormalizeLineItems(body.LineItems),
			Notes:        body.Notes,
			ValidUntil:   body.ValidUntil,
		}
		return quoteResultResponse(e, newQuoteService(app, validityDays).Create(in))
	}
}

// HandleQuoteGet returns a stored quote.
// Route: GET /api/contractors/{contractorId}/quotes/{id}
func HandleQuoteGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		q, err := services.LoadQuote(app, e.Request.PathValue("contractorId"), e.Request.PathValue("id"))
		if err != nil {
			return StoreErrorJSON(e, "quotes: get", "Quote not found", err)
		}
		return e.JSON(http.StatusOK, q)
	}
}

// HandleQuoteSummary renders the client-facing HTML summary of a quote.
// Route: GET /api/contractors/{contractorId}/quotes/{id}/summary
func HandleQuoteSummary(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")

		q, err := services.LoadQuote(app, contractorID, e.Request.PathValue("id"))
		if err != nil {
			return StoreErrorJSON(e, "quotes: summary", "Quote not found", err)
		}

		data := buildQuoteSummaryData(q, contractorName(app, e, contractorID), services.ClientName(app, q.ClientID))
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return templates.QuoteSummary(data).Render(e.Request.Context(), e.Response)
	}
}

func buildQuoteSummaryData(q services.StoredQuote, contractor, client string) templates.QuoteSummaryData {
	totals := services.CalcQuoteTotals(q.LineItems)

	var items []templates.QuoteSummaryItem
	for _, item := range q.LineItems {
		if item.Deleted {
			continue
		}
		items = append(items, templates.QuoteSummaryItem{
			Description: item.Description,
			Quantity:    services.FormatQuantity(item.Quantity),
			Unit:        item.Unit,
			UnitPrice:   services.FormatCurrency(item.UnitPrice),
			Total:       services.FormatCurrency(item.Total),
			Note:        item.Note,
			NeedsReview: item.Note == services.PlaceholderNote,
		})
	}

	data := templates.QuoteSummaryData{
		QuoteNumber:    q.QuoteNumber,
		ContractorName: contractor,
		ClientName:     client,
		Status:         string(q.Status),
		Items:          items,
		Labor:          services.FormatCurrency(totals.TotalLabor),
		Materials:      services.FormatCurrency(totals.TotalMaterials),
		Subtotal:       services.FormatCurrency(totals.Subtotal),
		Markup:         services.FormatCurrency(totals.TotalMarkup),
		Total:          services.FormatCurrency(totals.Total),
		Notes:          q.Notes,
	}
	if !q.Created.IsZero() {
		data.CreatedDate = q.Created.Format("02 Jan 2006")
	}
	if !q.ValidUntil.IsZero() {
		data.ValidUntil = q.ValidUntil.Format("02 Jan 2006")
	}
	return data
}

// updateLineItem runs fn on {itemId} of quote {id} and writes the updated
// quote, or the error response matching what went wrong.
func updateLineItem(app *pocketbase.PocketBase, e *core.RequestEvent, where string, fn func(item *services.EnhancedLineItem) error) error {
	saved, err := services.UpdateQuoteLineItem(app,
		e.Request.PathValue("contractorId"),
		e.Request.PathValue("id"),
		e.Request.PathValue("itemId"),
		fn,
	)
	switch {
	case err == nil:
		return e.JSON(http.StatusOK, saved)
	case errors.Is(err, services.ErrLineItemNotFound):
		return ErrorJSON(e, http.StatusNotFound, "Line item not found")
	case errors.Is(err, services.ErrLineItemDeleted):
		return ErrorJSON(e, http.StatusConflict, "Line item is deleted. Restore it before editing.")
	default:
		return StoreErrorJSON(e, where, "Quote not found", err)
	}
}

// HandleQuoteLineItemEdit edits one line item of a stored quote and rewrites
// the quote totals.
// Route: PATCH /api/contractors/{contractorId}/quotes/{id}/line-items/{itemId}
func HandleQuoteLineItemEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var edit services.LineItemEdit
		if err := e.BindBody(&edit); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Invalid request body")
		}

		return updateLineItem(app, e, "quotes: edit line item", func(item *services.EnhancedLineItem) error {
			if item.Deleted {
				return services.ErrLineItemDeleted
			}
			*item = services.ApplyLineItemEdit(*item, edit)
			return nil
		})
	}
}

// HandleQuoteLineItemDelete soft-deletes a line item. It stays in the quote
// but no longer counts toward its totals.
// Route: DELETE /api/contractors/{contractorId}/quotes/{id}/line-items/{itemId}
func HandleQuoteLineItemDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return updateLineItem(app, e, "quotes: delete line item", func(item *services.EnhancedLineItem) error {
			item.Deleted = true
			return nil
		})
	}
}

// HandleQuoteLineItemRestore undoes a soft delete.
// Route: POST /api/contractors/{contractorId}/quotes/{id}/line-items/{itemId}/restore
func HandleQuoteLineItemRestore(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return updateLineItem(app, e, "quotes: restore line item", func(item *services.EnhancedLineItem) error {
			item.Deleted = false
			return nil
		})
	}
}
