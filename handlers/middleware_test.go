package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"contractshield/testhelpers"
)

func TestGetContractor_FromContext(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	contractor := testhelpers.CreateTestContractor(t, app, "Acme Builders")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ContractorKey, contractor))

	got := GetContractor(req)
	if got == nil {
		t.Fatal("expected contractor, got nil")
	}
	if got.Id != contractor.Id {
		t.Errorf("expected ID %q, got %q", contractor.Id, got.Id)
	}
}

func TestGetContractor_NotInContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetContractor(req); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestContractorMiddleware(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	contractor := testhelpers.CreateTestContractor(t, app, "Acme Builders")

	tests := []struct {
		name         string
		contractorID string
		expectStatus int
		expectNext   bool
	}{
		{"known contractor", contractor.Id, http.StatusOK, true},
		{"unknown contractor", "doesnotexist123", http.StatusNotFound, false},
		{"missing id", "", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/contractors/"+tt.contractorID+"/templates", nil)
			req.SetPathValue("contractorId", tt.contractorID)
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, req, rec)

			if err := ContractorMiddleware(app)(e); err != nil {
				t.Fatalf("middleware returned error: %v", err)
			}

			if rec.Code != tt.expectStatus {
				t.Errorf("expected status %d, got %d", tt.expectStatus, rec.Code)
			}
			got := GetContractor(e.Request)
			if tt.expectNext && (got == nil || got.Id != contractor.Id) {
				t.Errorf("expected contractor in request context, got %v", got)
			}
			if !tt.expectNext && got != nil {
				t.Errorf("expected no contractor in context, got %v", got)
			}
		})
	}
}

func TestContractorName(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	contractor := testhelpers.CreateTestContractor(t, app, "Acme Builders")

	// without middleware the name is looked up by id
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	e := newTestRequestEvent(app, req, httptest.NewRecorder())
	if got := contractorName(app, e, contractor.Id); got != "Acme Builders" {
		t.Errorf("contractorName = %q, want Acme Builders", got)
	}

	other := testhelpers.CreateTestContractor(t, app, "From Context")
	e.Request = req.WithContext(context.WithValue(req.Context(), ContractorKey, other))
	if got := contractorName(app, e, contractor.Id); got != "From Context" {
		t.Errorf("contractorName = %q, want From Context", got)
	}
}
