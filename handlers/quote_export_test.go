package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"contractshield/services"
	"contractshield/testhelpers"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"Q-2026-0001", "Q-2026-0001"},
		{"Acme Builders", "Acme-Builders"},
		{`a/b\c:d"e`, "a-b-c-de"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.expect {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}

func TestHandleQuoteExportExcel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	contractor := testhelpers.CreateTestContractor(t, app, "Acme Builders")
	removed := services.NewPlaceholderLineItem("Removed item", 1)
	removed.Deleted = true
	id := testhelpers.CreateTestQuote(t, app, contractor.Id, "", []services.EnhancedLineItem{pricedItem(), removed})

	q, err := services.LoadQuote(app, contractor.Id, id)
	if err != nil {
		t.Fatalf("LoadQuote: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("contractorId", contractor.Id)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	if err := HandleQuoteExportExcel(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	wantName := "Quote_" + q.QuoteNumber + ".xlsx"
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, wantName) {
		t.Errorf("Content-Disposition = %q, want filename %q", cd, wantName)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a valid xlsx: %v", err)
	}
	defer f.Close()

	desc, _ := f.GetCellValue("Quote", "B6")
	if desc != "Wall Repair and Painting" {
		t.Errorf("B6 = %q, want first line item", desc)
	}
	next, _ := f.GetCellValue("Quote", "B7")
	if next == "Removed item" {
		t.Error("deleted line item must not be exported")
	}
}

func TestHandleQuoteExportPDF(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	contractor := testhelpers.CreateTestContractor(t, app, "Acme Builders")
	id := testhelpers.CreateTestQuote(t, app, contractor.Id, "", []services.EnhancedLineItem{pricedItem()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("contractorId", contractor.Id)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	if err := HandleQuoteExportPDF(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected PDF content")
	}
}

func TestHandleQuoteExport_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	contractor := testhelpers.CreateTestContractor(t, app, "Acme Builders")

	for name, handler := range map[string]func(*http.Request, *httptest.ResponseRecorder) error{
		"excel": func(r *http.Request, w *httptest.ResponseRecorder) error {
			return HandleQuoteExportExcel(app)(newTestRequestEvent(app, r, w))
		},
		"pdf": func(r *http.Request, w *httptest.ResponseRecorder) error {
			return HandleQuoteExportPDF(app)(newTestRequestEvent(app, r, w))
		},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.SetPathValue("contractorId", contractor.Id)
			req.SetPathValue("id", "missing_id_123")
			rec := httptest.NewRecorder()

			if err := handler(req, rec); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected status 404, got %d", rec.Code)
			}
		})
	}
}
