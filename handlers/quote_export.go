package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"contractshield/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// buildQuoteExportData loads a quote with the names shown on exported documents.
func buildQuoteExportData(app *pocketbase.PocketBase, e *core.RequestEvent) (services.ExportData, error) {
	contractorID := e.Request.PathValue("contractorId")
	q, err := services.LoadQuote(app, contractorID, e.Request.PathValue("id"))
	if err != nil {
		return services.ExportData{}, err
	}
	return services.BuildQuoteExportData(q, contractorName(app, e, contractorID), services.ClientName(app, q.ClientID)), nil
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

// exportBaseName names an exported quote after its number, or its id when
// the quote has no number yet.
func exportBaseName(data services.ExportData) string {
	if data.QuoteNumber != "" {
		return "Quote_" + sanitizeFilename(data.QuoteNumber)
	}
	return "Quote_" + sanitizeFilename(data.QuoteID)
}

// writeDownload sends body as a file attachment.
func writeDownload(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(body)
	return err
}

// HandleQuoteExportExcel generates and downloads an Excel file for a quote.
// Route: GET /api/contractors/{contractorId}/quotes/{id}/export/excel
func HandleQuoteExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := buildQuoteExportData(app, e)
		if err != nil {
			return StoreErrorJSON(e, "export_excel", "Quote not found", err)
		}

		xlsxBytes, err := services.GenerateExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to generate Excel file")
		}
		return writeDownload(e, xlsxContentType, exportBaseName(data)+".xlsx", xlsxBytes)
	}
}

// HandleQuoteExportPDF generates and downloads a PDF file for a quote.
// Route: GET /api/contractors/{contractorId}/quotes/{id}/export/pdf
func HandleQuoteExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := buildQuoteExportData(app, e)
		if err != nil {
			return StoreErrorJSON(e, "export_pdf", "Quote not found", err)
		}

		pdfBytes, err := services.GeneratePDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to generate PDF file")
		}
		return writeDownload(e, "application/pdf", exportBaseName(data)+".pdf", pdfBytes)
	}
}
