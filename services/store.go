package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// Collection names.
const (
	ContractorsCollection = "contractors"
	ClientsCollection     = "clients"
	TemplatesCollection   = "line_item_templates"
	LaborRatesCollection  = "labor_rates"
	QuotesCollection      = "quotes"
)

// ErrNotFound is returned when a record does not exist or belongs to another
// contractor.
var ErrNotFound = errors.New("record not found")

// CategoryRateField is the labor_rates column holding the rate for cat.
func CategoryRateField(cat Category) string {
	return string(cat) + "_rate"
}

func notFound(what, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", what, id, err)
}

// findOwned loads a record by id and checks it belongs to contractorID.
func findOwned(app core.App, collection, contractorID, id string) (*core.Record, error) {
	record, err := app.FindRecordById(collection, id)
	if err != nil {
		return nil, notFound(collection, id, err)
	}
	if record.GetString("contractor") != contractorID {
		return nil, fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
	}
	return record, nil
}

// FindContractor returns the contractor record with the given id.
func FindContractor(app core.App, id string) (*core.Record, error) {
	record, err := app.FindRecordById(ContractorsCollection, id)
	if err != nil {
		return nil, notFound("contractor", id, err)
	}
	return record, nil
}

// FindClient returns one of the contractor's clients.
func FindClient(app core.App, contractorID, id string) (*core.Record, error) {
	return findOwned(app, ClientsCollection, contractorID, id)
}

// ClientName returns the client's name, or "" when id is empty or unknown.
func ClientName(app core.App, id string) string {
	if id == "" {
		return ""
	}
	record, err := app.FindRecordById(ClientsCollection, id)
	if err != nil {
		return ""
	}
	return record.GetString("name")
}

// ── Catalog ─────────────────────────────────────────────────────────────

// TemplateFromRecord maps a line_item_templates record to a LineItemTemplate.
func TemplateFromRecord(r *core.Record) LineItemTemplate {
	return LineItemTemplate{
		ID:           r.Id,
		ContractorID: r.GetString("contractor"),
		Name:         r.GetString("name"),
		Description:  r.GetString("description"),
		Category:     Category(r.GetString("category")),
		Unit:         r.GetString("unit"),
		BasePrice:    r.GetFloat("base_price"),
		LaborHours:   r.GetFloat("labor_hours"),
		MaterialCost: r.GetFloat("material_cost"),
		Markup:       r.GetFloat("markup"),
		IsActive:     r.GetBool("is_active"),
		Created:      r.GetDateTime("created").Time(),
		Updated:      r.GetDateTime("updated").Time(),
	}
}

// ListTemplates returns a contractor's catalog sorted by name. Inactive
// templates are only included when includeInactive is set.
func ListTemplates(app core.App, contractorID string, includeInactive bool) ([]LineItemTemplate, error) {
	filter := "contractor = {:contractor}"
	if !includeInactive {
		filter += " && is_active = true"
	}
	records, err := app.FindRecordsByFilter(
		TemplatesCollection,
		filter,
		"name",
		0,
		0,
		map[string]any{"contractor": contractorID},
	)
	if err != nil {
		return nil, fmt.Errorf("list templates for contractor %s: %w", contractorID, err)
	}

	templates := make([]LineItemTemplate, 0, len(records))
	for _, r := range records {
		templates = append(templates, TemplateFromRecord(r))
	}
	return templates, nil
}

// LoadActiveTemplates returns the templates the matcher may pick from.
func LoadActiveTemplates(app core.App, contractorID string) ([]LineItemTemplate, error) {
	return ListTemplates(app, contractorID, false)
}

// FindTemplate returns one of the contractor's templates, active or not.
func FindTemplate(app core.App, contractorID, id string) (LineItemTemplate, error) {
	record, err := findOwned(app, TemplatesCollection, contractorID, id)
	if err != nil {
		return LineItemTemplate{}, err
	}
	return TemplateFromRecord(record), nil
}

// SaveTemplate validates t and creates it, or updates it when t.ID is set.
// Validation failures are returned as validation.Errors.
func SaveTemplate(app core.App, t LineItemTemplate) (LineItemTemplate, error) {
	if err := ValidateTemplate(t); err != nil {
		return t, err
	}

	var record *core.Record
	if t.ID == "" {
		col, err := app.FindCollectionByNameOrId(TemplatesCollection)
		if err != nil {
			return t, fmt.Errorf("find templates collection: %w", err)
		}
		record = core.NewRecord(col)
		record.Set("contractor", t.ContractorID)
	} else {
		existing, err := findOwned(app, TemplatesCollection, t.ContractorID, t.ID)
		if err != nil {
			return t, err
		}
		record = existing
	}

	setTemplateFields(record, t)
	if err := app.Save(record); err != nil {
		return t, fmt.Errorf("save template %q: %w", t.Name, err)
	}
	return TemplateFromRecord(record), nil
}

func setTemplateFields(record *core.Record, t LineItemTemplate) {
	record.Set("name", t.Name)
	record.Set("description", t.Description)
	record.Set("category", string(t.Category))
	record.Set("unit", t.Unit)
	record.Set("base_price", t.BasePrice)
	record.Set("labor_hours", t.LaborHours)
	record.Set("material_cost", t.MaterialCost)
	record.Set("markup", t.Markup)
	record.Set("is_active", t.IsActive)
}

// DeactivateTemplate hides a template from matching and building. Templates
// are never deleted because issued quotes were priced from them.
func DeactivateTemplate(app core.App, contractorID, id string) error {
	record, err := findOwned(app, TemplatesCollection, contractorID, id)
	if err != nil {
		return err
	}
	record.Set("is_active", false)
	if err := app.Save(record); err != nil {
		return fmt.Errorf("deactivate template %s: %w", id, err)
	}
	return nil
}

// ImportTemplates stores every template in one transaction. Either all
// templates are created or none are.
func ImportTemplates(app core.App, templates []LineItemTemplate) (int, error) {
	col, err := app.FindCollectionByNameOrId(TemplatesCollection)
	if err != nil {
		return 0, fmt.Errorf("find templates collection: %w", err)
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		for i, t := range templates {
			if err := ValidateTemplate(t); err != nil {
				return fmt.Errorf("template %d (%q): %w", i+1, t.Name, err)
			}
			record := core.NewRecord(col)
			record.Set("contractor", t.ContractorID)
			setTemplateFields(record, t)
			if err := txApp.Save(record); err != nil {
				return fmt.Errorf("save template %q: %w", t.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(templates), nil
}

// ── Labor rates ─────────────────────────────────────────────────────────

// LoadLaborRates reads the contractor's rate schedule. A contractor without a
// labor_rates record gets a zero global rate and no overrides.
func LoadLaborRates(app core.App, contractorID string) (LaborRates, error) {
	record, err := findLaborRatesRecord(app, contractorID)
	if err != nil {
		return LaborRates{}, err
	}
	if record == nil {
		return LaborRates{}, nil
	}

	categories := make(map[string]float64, len(Categories))
	for _, cat := range Categories {
		categories[string(cat)] = record.GetFloat(CategoryRateField(cat))
	}
	return LaborRatesFromLegacy(record.GetFloat("global_rate"), categories), nil
}

// SaveLaborRates validates and upserts the contractor's rate schedule. The
// stored shape cannot distinguish an explicit 0 override from "inherit", so
// zero overrides are stored as inherit.
func SaveLaborRates(app core.App, contractorID string, rates LaborRates) (LaborRates, error) {
	if err := ValidateLaborRates(rates); err != nil {
		return rates, err
	}

	record, err := findLaborRatesRecord(app, contractorID)
	if err != nil {
		return rates, err
	}
	if record == nil {
		col, err := app.FindCollectionByNameOrId(LaborRatesCollection)
		if err != nil {
			return rates, fmt.Errorf("find labor_rates collection: %w", err)
		}
		record = core.NewRecord(col)
		record.Set("contractor", contractorID)
	}

	record.Set("global_rate", rates.Global)
	for cat, value := range rates.LegacyCategoryRates() {
		record.Set(CategoryRateField(Category(cat)), value)
	}
	if err := app.Save(record); err != nil {
		return rates, fmt.Errorf("save labor rates for contractor %s: %w", contractorID, err)
	}
	return LoadLaborRates(app, contractorID)
}

func findLaborRatesRecord(app core.App, contractorID string) (*core.Record, error) {
	records, err := app.FindRecordsByFilter(
		LaborRatesCollection,
		"contractor = {:contractor}",
		"",
		1,
		0,
		map[string]any{"contractor": contractorID},
	)
	if err != nil {
		return nil, fmt.Errorf("query labor rates for contractor %s: %w", contractorID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// ── Quotes ──────────────────────────────────────────────────────────────

// PocketBaseQuoteStore persists quotes in the quotes collection.
type PocketBaseQuoteStore struct {
	App core.App
	Now func() time.Time
}

// SaveQuote creates a quote record from payload and returns its id.
func (s PocketBaseQuoteStore) SaveQuote(payload QuotePayload) (string, error) {
	col, err := s.App.FindCollectionByNameOrId(QuotesCollection)
	if err != nil {
		return "", fmt.Errorf("find quotes collection: %w", err)
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	var record *core.Record
	for attempt := 1; ; attempt++ {
		err = s.App.RunInTransaction(func(txApp core.App) error {
			number, err := GenerateQuoteNumber(txApp, payload.ContractorID, now)
			if err != nil {
				return err
			}

			record = core.NewRecord(col)
			record.Set("contractor", payload.ContractorID)
			record.Set("client", payload.ClientID)
			record.Set("quote_number", number)
			record.Set("work_order_id", payload.WorkOrderID)
			record.Set("notes", payload.Notes)
			record.Set("valid_until", payload.ValidUntil)
			record.Set("status", string(payload.Status))
			setQuoteLineItems(record, payload.LineItems, payload.Totals)

			return txApp.Save(record)
		})
		if err == nil {
			return record.Id, nil
		}
		if !isDuplicateQuoteNumber(err) || attempt == maxQuoteNumberAttempts {
			return "", fmt.Errorf("save quote: %w", err)
		}
		log.Printf("store: SaveQuote: quote number taken for contractor %s, retrying (attempt %d)", payload.ContractorID, attempt)
	}
}

func setQuoteLineItems(record *core.Record, items []EnhancedLineItem, totals QuoteTotals) {
	if items == nil {
		items = []EnhancedLineItem{}
	}
	record.Set("line_items", items)
	record.Set("subtotal", totals.Subtotal)
	record.Set("total_labor", totals.TotalLabor)
	record.Set("total_materials", totals.TotalMaterials)
	record.Set("total_markup", totals.TotalMarkup)
	record.Set("total", totals.Total)
}

// QuoteFromRecord maps a quotes record to a StoredQuote. Line items go
// through NormalizeLineItems so rows written by older versions load too.
func QuoteFromRecord(r *core.Record) (StoredQuote, error) {
	var rows []map[string]any
	if err := r.UnmarshalJSONField("line_items", &rows); err != nil {
		return StoredQuote{}, fmt.Errorf("quote %s: decode line items: %w", r.Id, err)
	}

	return StoredQuote{
		ID:           r.Id,
		QuoteNumber:  r.GetString("quote_number"),
		ContractorID: r.GetString("contractor"),
		ClientID:     r.GetString("client"),
		WorkOrderID:  r.GetString("work_order_id"),
		LineItems:    NormalizeLineItems(rows),
		Totals: QuoteTotals{
			Subtotal:       r.GetFloat("subtotal"),
			TotalLabor:     r.GetFloat("total_labor"),
			TotalMaterials: r.GetFloat("total_materials"),
			TotalMarkup:    r.GetFloat("total_markup"),
			Total:          r.GetFloat("total"),
		},
		Notes:      r.GetString("notes"),
		ValidUntil: r.GetDateTime("valid_until").Time(),
		Status:     QuoteStatus(r.GetString("status")),
		Created:    r.GetDateTime("created").Time(),
		Updated:    r.GetDateTime("updated").Time(),
	}, nil
}

// LoadQuote returns one of the contractor's quotes.
func LoadQuote(app core.App, contractorID, id string) (StoredQuote, error) {
	record, err := findOwned(app, QuotesCollection, contractorID, id)
	if err != nil {
		return StoredQuote{}, err
	}
	return QuoteFromRecord(record)
}

// SaveQuoteLineItems replaces the line items of a stored quote and rewrites
// its totals from them.
func SaveQuoteLineItems(app core.App, contractorID, id string, items []EnhancedLineItem) (StoredQuote, error) {
	record, err := findOwned(app, QuotesCollection, contractorID, id)
	if err != nil {
		return StoredQuote{}, err
	}

	setQuoteLineItems(record, items, CalcQuoteTotals(items))
	if err := app.Save(record); err != nil {
		return StoredQuote{}, fmt.Errorf("save quote %s line items: %w", id, err)
	}
	return QuoteFromRecord(record)
}

// Errors returned by UpdateQuoteLineItem.
var (
	ErrLineItemNotFound = errors.New("line item not found")
	ErrLineItemDeleted  = errors.New("line item is deleted")
)

// UpdateQuoteLineItem applies fn to one line item of a stored quote and saves
// the quote with recomputed totals. The read and the write share a
// transaction, so concurrent updates to other items of the same quote are
// not lost.
func UpdateQuoteLineItem(app core.App, contractorID, quoteID, itemID string, fn func(item *EnhancedLineItem) error) (StoredQuote, error) {
	var saved StoredQuote
	err := app.RunInTransaction(func(txApp core.App) error {
		q, err := LoadQuote(txApp, contractorID, quoteID)
		if err != nil {
			return err
		}
		idx := q.FindLineItem(itemID)
		if idx < 0 {
			return fmt.Errorf("quote %s item %s: %w", quoteID, itemID, ErrLineItemNotFound)
		}
		if err := fn(&q.LineItems[idx]); err != nil {
			return err
		}
		saved, err = SaveQuoteLineItems(txApp, contractorID, quoteID, q.LineItems)
		return err
	})
	return saved, err
}
