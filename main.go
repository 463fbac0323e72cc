package main

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"contractshield/collections"
	"contractshield/handlers"
	"contractshield/services"
)

func main() {
	app := pocketbase.New()

	var (
		quoteValidityDays int
		matchThreshold    float64
	)
	app.RootCmd.PersistentFlags().IntVar(
		&quoteValidityDays,
		"quoteValidityDays",
		services.DefaultQuoteValidityDays,
		"days a new quote stays valid when no validUntil is given",
	)
	app.RootCmd.PersistentFlags().Float64Var(
		&matchThreshold,
		"matchThreshold",
		services.DefaultMatchThreshold,
		"confidence a catalog template must exceed to match an extracted line item",
	)

	app.RootCmd.AddCommand(&cobra.Command{
		Use:   "recalc-quotes",
		Short: "Normalize legacy quote line items and rewrite stale quote totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			collections.Setup(app)
			n, err := collections.MigrateLegacyQuoteLineItems(app)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d quote(s) rewritten\n", n)
			return nil
		},
	})

	// Create collections and migrate stored quotes on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if _, err := collections.MigrateLegacyQuoteLineItems(app); err != nil {
			log.Printf("Warning: legacy quote migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		matcher := services.Matcher{Scorer: services.LexicalScorer{}, Threshold: matchThreshold}

		g := se.Router.Group("/api/contractors/{contractorId}")
		g.BindFunc(handlers.ContractorMiddleware(app))

		// ── Catalog ──────────────────────────────────────────────
		g.GET("/templates", handlers.HandleTemplateList(app))
		g.POST("/templates", handlers.HandleTemplateCreate(app))
		g.GET("/templates/import/template", handlers.HandleTemplateImportSample(app))
		g.POST("/templates/import/errors", handlers.HandleTemplateImportErrors(app))
		g.POST("/templates/import", handlers.HandleTemplateImport(app))
		g.PATCH("/templates/{id}", handlers.HandleTemplateUpdate(app))
		g.DELETE("/templates/{id}", handlers.HandleTemplateDeactivate(app))

		// ── Labor rates ──────────────────────────────────────────
		g.GET("/labor-rates", handlers.HandleLaborRatesGet(app))
		g.PUT("/labor-rates", handlers.HandleLaborRatesPut(app))

		// ── Line items ───────────────────────────────────────────
		g.POST("/line-items/build", handlers.HandleLineItemBuild(app))
		g.POST("/line-items/recalculate", handlers.HandleLineItemRecalculate(app))
		g.POST("/extractions/resolve", handlers.HandleExtractionResolve(app, matcher))

		// ── Quotes ───────────────────────────────────────────────
		g.POST("/quotes/preview", handlers.HandleQuotePreview(app, quoteValidityDays))
		g.POST("/quotes/import", handlers.HandleQuoteImport(app, quoteValidityDays))
		g.POST("/quotes", handlers.HandleQuoteCreate(app, quoteValidityDays))
		g.GET("/quotes/{id}/summary", handlers.HandleQuoteSummary(app))
		g.GET("/quotes/{id}/export/excel", handlers.HandleQuoteExportExcel(app))
		g.GET("/quotes/{id}/export/pdf", handlers.HandleQuoteExportPDF(app))
		g.PATCH("/quotes/{id}/line-items/{itemId}", handlers.HandleQuoteLineItemEdit(app))
		g.DELETE("/quotes/{id}/line-items/{itemId}", handlers.HandleQuoteLineItemDelete(app))
		g.POST("/quotes/{id}/line-items/{itemId}/restore", handlers.HandleQuoteLineItemRestore(app))
		g.GET("/quotes/{id}", handlers.HandleQuoteGet(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
