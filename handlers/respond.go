package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"contractshield/services"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorJSON writes {"error": message} with the given status code.
func ErrorJSON(e *core.RequestEvent, statusCode int, message string) error {
	return e.JSON(statusCode, errorBody{Error: message})
}

// ValidationErrorJSON writes a 422 response listing the invalid fields of err.
func ValidationErrorJSON(e *core.RequestEvent, message string, err error) error {
	return e.JSON(http.StatusUnprocessableEntity, errorBody{
		Error:  message,
		Fields: services.FieldErrors(err),
	})
}

// StoreErrorJSON maps a storage error to 404 when the record is missing and
// to 500 otherwise. The underlying error is logged, never returned.
func StoreErrorJSON(e *core.RequestEvent, where string, notFoundMessage string, err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return ErrorJSON(e, http.StatusNotFound, notFoundMessage)
	}
	log.Printf("%s: %v", where, err)
	return ErrorJSON(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
