package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// ImportError represents a single field-level error on one row.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// TemplateImportResult is returned after parsing and validating an uploaded
// catalog file.
type TemplateImportResult struct {
	TotalRows int                `json:"totalRows"`
	ValidRows int                `json:"validRows"`
	ErrorRows int                `json:"errorRows"`
	Errors    []ImportError      `json:"errors"`
	Templates []LineItemTemplate `json:"templates"`
	FileName  string             `json:"-"`
}

// ImportField describes one column of the catalog import file.
type ImportField struct {
	Key      string
	Label    string
	Required bool
}

// TemplateImportFields returns the columns understood by ParseTemplateFile,
// in template order.
func TemplateImportFields() []ImportField {
	return []ImportField{
		{Key: "name", Label: "Name", Required: true},
		{Key: "description", Label: "Description"},
		{Key: "category", Label: "Category", Required: true},
		{Key: "unit", Label: "Unit", Required: true},
		{Key: "basePrice", Label: "Base Price"},
		{Key: "laborHours", Label: "Labor Hours"},
		{Key: "materialCost", Label: "Material Cost"},
		{Key: "markup", Label: "Markup %"},
	}
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return rows[0], rows[1:], nil
}

// mapHeadersToFields maps uploaded column headers to field keys.
// Returns ordered list of field keys (one per column) and any unrecognized columns.
func mapHeadersToFields(headers []string, fields []ImportField) ([]string, []string) {
	labelToKey := make(map[string]string, len(fields)*2)
	for _, f := range fields {
		labelToKey[normalizeHeader(f.Label)] = f.Key
		labelToKey[normalizeHeader(f.Key)] = f.Key
	}

	mapped := make([]string, len(headers))
	var unrecognized []string
	for i, h := range headers {
		if key, ok := labelToKey[normalizeHeader(h)]; ok {
			mapped[i] = key
		} else {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// normalizeHeader lowercases a header and strips the " *" suffix that marks
// required columns in the downloadable template.
func normalizeHeader(h string) string {
	norm := strings.ToLower(strings.TrimSpace(h))
	norm = strings.TrimSuffix(norm, " *")
	return strings.TrimSpace(norm)
}

// ParseTemplateFile parses an uploaded .csv or .xlsx catalog file and
// validates every row. Valid rows are returned as active templates owned by
// contractorID; invalid rows are reported in Errors.
func ParseTemplateFile(file io.Reader, fileName string, contractorID string) (*TemplateImportResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	fields := TemplateImportFields()
	columnKeys, _ := mapHeadersToFields(headers, fields)

	keyToLabel := make(map[string]string, len(fields))
	for _, f := range fields {
		keyToLabel[f.Key] = f.Label
	}

	result := &TemplateImportResult{
		TotalRows: len(dataRows),
		FileName:  fileName,
		Errors:    []ImportError{},
		Templates: []LineItemTemplate{},
	}

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		rowData := make(map[string]string)
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			rowData[key] = strings.TrimSpace(row[colIdx])
		}

		if isBlankRow(rowData) {
			result.TotalRows--
			continue
		}

		tmpl, rowErrors := templateFromRow(rowNum, rowData, keyToLabel)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}
		tmpl.ContractorID = contractorID
		tmpl.IsActive = true
		result.Templates = append(result.Templates, tmpl)
	}

	result.ValidRows = len(result.Templates)
	return result, nil
}

func templateFromRow(rowNum int, data map[string]string, keyToLabel map[string]string) (LineItemTemplate, []ImportError) {
	var errs []ImportError

	tmpl := LineItemTemplate{
		Name:        data["name"],
		Description: data["description"],
		Unit:        data["unit"],
	}

	if cat, ok := ParseCategory(data["category"]); ok {
		tmpl.Category = cat
	} else if data["category"] != "" {
		errs = append(errs, ImportError{
			Row:     rowNum,
			Field:   keyToLabel["category"],
			Message: fmt.Sprintf("Unknown category %q", data["category"]),
		})
	}

	numbers := []struct {
		key string
		dst *float64
	}{
		{"basePrice", &tmpl.BasePrice},
		{"laborHours", &tmpl.LaborHours},
		{"materialCost", &tmpl.MaterialCost},
		{"markup", &tmpl.Markup},
	}
	for _, n := range numbers {
		v, err := parseAmount(data[n.key])
		if err != nil {
			errs = append(errs, ImportError{
				Row:     rowNum,
				Field:   keyToLabel[n.key],
				Message: fmt.Sprintf("%s must be a number", keyToLabel[n.key]),
			})
			continue
		}
		*n.dst = v
	}

	if len(errs) > 0 {
		return tmpl, errs
	}

	fieldErrs := FieldErrors(ValidateTemplate(tmpl))
	keys := make([]string, 0, len(fieldErrs))
	for k := range fieldErrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		label := keyToLabel[k]
		if label == "" {
			label = k
		}
		errs = append(errs, ImportError{
			Row:     rowNum,
			Field:   label,
			Message: fmt.Sprintf("%s %s", label, fieldErrs[k]),
		})
	}
	return tmpl, errs
}

// parseAmount accepts values such as "1,250.00", "$85" or "30%". Empty is 0.
func parseAmount(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)
	if cleaned == "" {
		return 0, nil
	}
	return cast.ToFloat64E(cleaned)
}

func isBlankRow(data map[string]string) bool {
	for _, v := range data {
		if v != "" {
			return false
		}
	}
	return true
}

// GenerateTemplateFile creates the downloadable .xlsx catalog template with
// one header row. Required columns are marked with " *".
func GenerateTemplateFile() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Catalog"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, field := range TemplateImportFields() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		label := field.Label
		if field.Required {
			label += " *"
		}
		f.SetCellValue(sheet, cell, label)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	f.SetColWidth(sheet, "A", "B", 36)
	f.SetColWidth(sheet, "C", "H", 14)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write catalog template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateErrorReport creates a downloadable .xlsx file from import errors.
func GenerateErrorReport(errors []ImportError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, e.Message)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
