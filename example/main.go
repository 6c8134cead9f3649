// godoo-spreadsheet/example/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ilcreatore32/godoo-spreadsheet"
	"github.com/ilcreatore32/godoo-spreadsheet/autofill"
	"github.com/ilcreatore32/godoo-spreadsheet/config"
	"github.com/ilcreatore32/godoo-spreadsheet/document"
	"github.com/ilcreatore32/godoo-spreadsheet/formula"
	"github.com/ilcreatore32/godoo-spreadsheet/l10n"
	"github.com/ilcreatore32/godoo-spreadsheet/list"
	"github.com/ilcreatore32/godoo-spreadsheet/pivot"
)

func main() {
	// Settings come from the file named by GODOO_CONFIG, if any, and the
	// ODOO_URL, ODOO_DB, ODOO_USERNAME and ODOO_PASSWORD variables.
	cfg, err := config.Load(os.Getenv("GODOO_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Error: %v\n"+
			"Set them in the configuration file or export them, e.g.:\n"+
			"export ODOO_URL=\"https://your-odoo-instance.com\"\n"+
			"export ODOO_DB=\"your_odoo_database\"\n"+
			"export ODOO_USERNAME=\"your_odoo_user\"\n"+
			"export ODOO_PASSWORD=\"your_odoo_password\"", err)
	}

	appLogger := godoo.NewLogger(cfg.Log.Env)
	defer func() {
		_ = appLogger.Sync()
	}()

	client, err := cfg.NewClient()
	if err != nil {
		appLogger.Fatal("Failed to initialize Odoo client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// --- A spreadsheet with one pivot and one list ---
	doc := document.New(document.WithLogger(appLogger))
	pivotID, err := doc.AddPivot(&pivot.Definition{
		Model:       godoo.ModelCrmLead,
		Name:        "Pipeline by stage",
		RowGroupBys: []string{"stage_id"},
		ColGroupBys: []string{"create_date:quarter"},
		Measures:    []string{"expected_revenue", pivot.CountMeasure},
		Domain:      godoo.Domain{{"type", "=", "opportunity"}},
		Context:     godoo.OdooContext{"lang": cfg.Lang},
	})
	if err != nil {
		appLogger.Fatal("Invalid pivot", zap.Error(err))
	}
	listID, err := doc.AddList(&list.Definition{
		Model:   godoo.ModelSaleOrder,
		Name:    "Last orders",
		Columns: []string{"name", "partner_id", "date_order", "amount_total", "state"},
		OrderBy: []list.OrderBy{{Name: "date_order", Asc: false}},
		Context: godoo.OdooContext{"lang": cfg.Lang},
	})
	if err != nil {
		appLogger.Fatal("Invalid list", zap.Error(err))
	}

	sources := document.NewSources(doc, client, document.WithPrinter(l10n.New(cfg.Lang)))

	fmt.Println("\n--- Loading pivot and list data ---")
	if err := sources.Load(ctx); err != nil {
		if errors.Is(err, godoo.ErrAuthenticationFailed) {
			fmt.Println(">> Application Error: Authentication failed! Please check Odoo credentials.")
		} else {
			fmt.Printf(">> Application Error: %v\n", err)
		}
		return
	}

	// --- Example 1: Reading cells ---
	fmt.Println("\n--- Pivot rows ---")
	m, _ := sources.PivotModel(pivotID)
	for i := 0; i < m.RowCount(); i++ {
		path := m.RowPath(i)
		header := formula.MakePivotHeader(pivotID, path.Args()...)
		value := formula.MakePivot(pivotID, "expected_revenue", path.Args()...)
		fmt.Printf("  %-30v %v\n", display(sources, m, header), display(sources, m, value))
	}

	fmt.Println("\n--- First list records ---")
	for pos := 1; pos <= 3; pos++ {
		f := formula.MakeList(listID, pos, "name")
		r := sources.Value(f)
		fmt.Printf("  %d: %v\n", pos, r.Display(m.Printer()))
	}

	// --- Example 2: Autofill and tooltips ---
	fmt.Println("\n--- Dragging the first pivot value ---")
	engine := autofill.New(sources, sources, autofill.WithLogger(appLogger))
	start := formula.MakePivot(pivotID, "expected_revenue", m.RowPath(0).Args()...)
	for _, dir := range []autofill.Direction{autofill.Down, autofill.Right, autofill.Left} {
		next := engine.Next(start, dir, 1)
		fmt.Printf("  %-5s %s\n", dir, next)
		for _, tip := range engine.Tooltip(next, dir) {
			fmt.Printf("        %s: %s\n", tip.Title, tip.Value)
		}
	}

	// --- Example 3: Global filter ---
	fmt.Println("\n--- Restricting the pivot to won opportunities ---")
	if err := doc.SetPivotFilterDomain(pivotID, godoo.Domain{{"probability", "=", 100}}); err != nil {
		appLogger.Error("Failed to set filter", zap.Error(err))
		return
	}
	sources.ApplyFilters(ctx)
	if err := sources.Load(ctx); err != nil && !document.IsStale(err) {
		appLogger.Error("Failed to reload", zap.Error(err))
		return
	}
	total := sources.Value(formula.MakePivot(pivotID, "expected_revenue"))
	fmt.Printf("  Won revenue: %v\n", total.Display(m.Printer()))

	domain, err := sources.RecordsDomain(start)
	if err == nil {
		fmt.Printf("  Records of the first cell: %v\n", domain)
	}
}

// display evaluates f, fetching missing relation names once.
func display(sources *document.Sources, m *pivot.Model, f string) interface{} {
	r := sources.Value(f)
	if r.State == pivot.Loading && len(r.Missing) > 0 {
		if err := sources.FetchLabels(context.Background(), r.Missing); err == nil {
			r = sources.Value(f)
		}
	}
	return r.Display(m.Printer())
}
