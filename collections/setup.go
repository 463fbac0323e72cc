package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"contractshield/services"
)

// jsonFieldMaxSize bounds the stored line item array of a quote.
const jsonFieldMaxSize = 2 << 20

// Setup programmatically creates/ensures the contractors, clients,
// line_item_templates, labor_rates and quotes collections exist.
func Setup(app *pocketbase.PocketBase) {
	contractors := ensureCollection(app, "contractors", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.EmailField{Name: "email"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	clients := ensureCollection(app, "clients", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "contractor",
			Required:      true,
			CollectionId:  contractors.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.EmailField{Name: "email"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "line_item_templates", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "contractor",
			Required:      true,
			CollectionId:  contractors.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.TextField{Name: "description", Max: 2000})
		c.Fields.Add(&core.SelectField{
			Name:      "category",
			Required:  true,
			Values:    categoryValues(),
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true, Max: 50})
		// Numeric fields are never Required: pocketbase treats 0 as blank.
		c.Fields.Add(&core.NumberField{Name: "base_price"})
		c.Fields.Add(&core.NumberField{Name: "labor_hours"})
		c.Fields.Add(&core.NumberField{Name: "material_cost"})
		c.Fields.Add(&core.NumberField{Name: "markup"})
		c.Fields.Add(&core.BoolField{Name: "is_active"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "labor_rates", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "contractor",
			Required:      true,
			CollectionId:  contractors.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "global_rate"})
		// One column per category; 0 means the category inherits global_rate.
		for _, cat := range services.Categories {
			c.Fields.Add(&core.NumberField{Name: services.CategoryRateField(cat)})
		}
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_labor_rates_contractor", true, "contractor", "")
	})

	quotes := ensureCollection(app, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "contractor",
			Required:      true,
			CollectionId:  contractors.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "client",
			CollectionId: clients.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "quote_number"})
		c.Fields.Add(&core.TextField{Name: "work_order_id"})
		c.Fields.Add(&core.JSONField{Name: "line_items", MaxSize: jsonFieldMaxSize})
		c.Fields.Add(&core.NumberField{Name: "subtotal"})
		c.Fields.Add(&core.NumberField{Name: "total_labor"})
		c.Fields.Add(&core.NumberField{Name: "total_materials"})
		c.Fields.Add(&core.NumberField{Name: "total_markup"})
		c.Fields.Add(&core.NumberField{Name: "total"})
		c.Fields.Add(&core.TextField{Name: "notes"})
		c.Fields.Add(&core.DateField{Name: "valid_until"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    quoteStatusValues(),
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
	ensureIndex(app, quotes, quoteNumberIndex, true, "contractor, quote_number", "quote_number != ''")
}

// quoteNumberIndex keeps quote numbers unique per contractor.
const quoteNumberIndex = "idx_quotes_contractor_number"

// ensureIndex adds the named index to an existing collection when it is
// missing, so databases created before the index was introduced get it too.
func ensureIndex(app *pocketbase.PocketBase, collection *core.Collection, name string, unique bool, columns, where string) {
	if collection.GetIndex(name) != "" {
		return
	}
	collection.AddIndex(name, unique, columns, where)
	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to add index %q to %q: %v", name, collection.Name, err)
	}
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}

func categoryValues() []string {
	values := make([]string, len(services.Categories))
	for i, c := range services.Categories {
		values[i] = string(c)
	}
	return values
}

func quoteStatusValues() []string {
	values := make([]string, len(services.QuoteStatuses))
	for i, s := range services.QuoteStatuses {
		values[i] = string(s)
	}
	return values
}
