package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"contractshield/services"
)

type contextKey string

const ContractorKey contextKey = "contractor"

// GetContractor extracts the contractor record resolved by ContractorMiddleware.
func GetContractor(r *http.Request) *core.Record {
	if val, ok := r.Context().Value(ContractorKey).(*core.Record); ok {
		return val
	}
	return nil
}

// ContractorMiddleware resolves the {contractorId} path segment, rejects
// unknown contractors with 404, and stores the contractor record in the
// request context for handlers.
func ContractorMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		contractorID := e.Request.PathValue("contractorId")
		if contractorID == "" {
			return ErrorJSON(e, http.StatusBadRequest, "Missing contractor ID")
		}

		contractor, err := services.FindContractor(app, contractorID)
		if err != nil {
			log.Printf("middleware: contractor %s not found: %v", contractorID, err)
			return ErrorJSON(e, http.StatusNotFound, "Contractor not found")
		}

		ctx := context.WithValue(e.Request.Context(), ContractorKey, contractor)
		e.Request = e.Request.WithContext(ctx)

		return e.Next()
	}
}

// contractorName returns the name of the contractor in the request context,
// falling back to a lookup by id for handlers called outside the middleware.
func contractorName(app *pocketbase.PocketBase, e *core.RequestEvent, contractorID string) string {
	if c := GetContractor(e.Request); c != nil {
		return c.GetString("name")
	}
	if c, err := services.FindContractor(app, contractorID); err == nil {
		return c.GetString("name")
	}
	return ""
}
