// BarCut — 1D profile cutting optimizer
//
// Reads a cut list (CSV or Excel), computes an optimized cutting plan for
// linear stock and writes the plan to the terminal and optionally to PDF,
// Excel or QR label sheets.
//
// Build:
//   go build -o barcut ./cmd/barcut
//
// Examples:
//   barcut -input cuts.csv -stock 6100,3500
//   barcut -input cuts.xlsx -kerf 3 -pdf plan.pdf -labels labels.pdf
//   barcut -project order42.json -xlsx plan.xlsx

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/barcut/barcut/internal/config"
	"github.com/barcut/barcut/internal/engine"
	"github.com/barcut/barcut/internal/export"
	"github.com/barcut/barcut/internal/importer"
	"github.com/barcut/barcut/internal/model"
	"github.com/barcut/barcut/internal/project"
)

func main() {
	var (
		inputFile    = flag.String("input", "", "Path to cut list file (.csv, .xlsx)")
		projectFile  = flag.String("project", "", "Path to project JSON file to load or create")
		stockList    = flag.String("stock", "", "Comma-separated stock lengths in mm (default from inventory)")
		kerf         = flag.Float64("kerf", -1, "Kerf width in mm (overrides config)")
		startSafety  = flag.Float64("start-safety", -1, "Start safety margin in mm (overrides config)")
		endSafety    = flag.Float64("end-safety", -1, "End safety margin in mm (overrides config)")
		minScrap     = flag.Float64("min-scrap", -1, "Minimum reusable scrap length in mm (overrides config)")
		pdfOut       = flag.String("pdf", "", "Write the plan as a PDF to this path")
		labelsOut    = flag.String("labels", "", "Write QR piece labels as a PDF to this path")
		xlsxOut      = flag.String("xlsx", "", "Write the plan as an Excel workbook to this path")
		inventory    = flag.String("inventory", "", "Path to the stock inventory JSON (default: ~/.barcut/inventory.json)")
		importInv    = flag.String("import-inventory", "", "Merge stock and remnants from this JSON file into the inventory")
		saveRemnants = flag.Bool("save-remnants", false, "Bank reclaimable offcuts into the inventory after planning")
		configDir    = flag.String("config-dir", "", "Directory containing barcut.yaml (default: working directory)")
		compare      = flag.Bool("compare", false, "Also compare alternative saw setups")
		metricsAddr  = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
		verbose      = flag.Bool("verbose", false, "Enable debug logging")
	)

	flag.Parse()

	log, err := buildLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(runOptions{
		inputFile:    *inputFile,
		projectFile:  *projectFile,
		stockList:    *stockList,
		kerf:         *kerf,
		startSafety:  *startSafety,
		endSafety:    *endSafety,
		minScrap:     *minScrap,
		pdfOut:       *pdfOut,
		labelsOut:    *labelsOut,
		xlsxOut:      *xlsxOut,
		inventory:    *inventory,
		importInv:    *importInv,
		saveRemnants: *saveRemnants,
		configDir:    *configDir,
		compare:      *compare,
		metricsAddr:  *metricsAddr,
	}, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	inputFile    string
	projectFile  string
	stockList    string
	kerf         float64
	startSafety  float64
	endSafety    float64
	minScrap     float64
	pdfOut       string
	labelsOut    string
	xlsxOut      string
	inventory    string
	importInv    string
	saveRemnants bool
	configDir    string
	compare      bool
	metricsAddr  string
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func run(opts runOptions, log *zap.Logger) error {
	cfg, err := config.Load(opts.configDir)
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		go serveMetrics(opts.metricsAddr, log)
	}

	items, proj, err := loadItems(opts)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no items to optimize; supply -input or -project")
	}

	invPath := opts.inventory
	if invPath == "" {
		if invPath, err = project.DefaultInventoryPath(); err != nil {
			return err
		}
	}
	inv, err := project.LoadInventory(invPath)
	if err != nil {
		return fmt.Errorf("loading inventory: %w", err)
	}
	if opts.importInv != "" {
		if inv, err = project.ImportInventory(opts.importInv, inv); err != nil {
			return fmt.Errorf("importing inventory: %w", err)
		}
		if err := project.SaveInventory(invPath, inv); err != nil {
			return fmt.Errorf("saving inventory: %w", err)
		}
	}

	constraints := resolveConstraints(cfg, proj, opts)
	stockLengths, err := resolveStockLengths(cfg, proj, inv, opts.stockList)
	if err != nil {
		return err
	}

	ctx, err := model.NewContext(items, stockLengths, constraints,
		model.DefaultObjectives(), model.PerformanceBudget{}, model.DefaultCostModel())
	if err != nil {
		return err
	}

	result, err := engine.New(cfg.EngineParams(), log).Optimize(ctx)
	if err != nil {
		return err
	}

	printPlan(result)

	if opts.compare {
		printComparison(items, stockLengths, constraints, log)
	}

	if opts.pdfOut != "" {
		if err := export.ExportPDF(opts.pdfOut, result, constraints); err != nil {
			return fmt.Errorf("exporting PDF: %w", err)
		}
		fmt.Printf("Plan PDF written to %s\n", opts.pdfOut)
	}
	if opts.labelsOut != "" {
		if err := export.ExportLabels(opts.labelsOut, result); err != nil {
			return fmt.Errorf("exporting labels: %w", err)
		}
		fmt.Printf("Labels written to %s\n", opts.labelsOut)
	}
	if opts.xlsxOut != "" {
		if err := export.ExportExcel(opts.xlsxOut, result, constraints); err != nil {
			return fmt.Errorf("exporting Excel: %w", err)
		}
		fmt.Printf("Workbook written to %s\n", opts.xlsxOut)
	}

	if opts.saveRemnants {
		banked, err := bankRemnants(invPath, inv, result.Cuts, planName(opts))
		if err != nil {
			return fmt.Errorf("saving remnants: %w", err)
		}
		fmt.Printf("Banked %d remnant(s) to %s\n", banked, invPath)
	}

	if opts.projectFile != "" {
		proj.Items = items
		proj.StockLengths = stockLengths
		proj.Constraints = constraints
		proj.Result = &result
		if err := project.SaveProject(opts.projectFile, proj); err != nil {
			return fmt.Errorf("saving project: %w", err)
		}
		fmt.Printf("Project saved to %s\n", opts.projectFile)
	}

	return nil
}

// loadItems resolves the demand list from -input, falling back to the
// project file when no input file is given.
func loadItems(opts runOptions) ([]model.OptimizationItem, project.Project, error) {
	proj := project.NewProject("untitled")
	if opts.projectFile != "" {
		if loaded, err := project.LoadProject(opts.projectFile); err == nil {
			proj = loaded
		} else if !os.IsNotExist(err) {
			return nil, proj, err
		} else {
			proj = project.NewProject(strings.TrimSuffix(filepath.Base(opts.projectFile), ".json"))
		}
	}

	if opts.inputFile == "" {
		return proj.Items, proj, nil
	}

	var imported importer.ImportResult
	switch strings.ToLower(filepath.Ext(opts.inputFile)) {
	case ".xlsx", ".xls":
		imported = importer.ImportExcel(opts.inputFile)
	default:
		imported = importer.ImportCSV(opts.inputFile)
	}

	for _, w := range imported.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	if len(imported.Errors) > 0 {
		return nil, proj, fmt.Errorf("import failed: %s", strings.Join(imported.Errors, "; "))
	}
	return imported.Items, proj, nil
}

// resolveConstraints layers flag overrides on top of the project's saved
// constraints, which in turn default to the config file.
func resolveConstraints(cfg *config.Config, proj project.Project, opts runOptions) model.Constraints {
	c := cfg.Constraints()
	if opts.projectFile != "" && len(proj.Items) > 0 {
		c = proj.Constraints
	}
	if opts.kerf >= 0 {
		c.KerfWidth = opts.kerf
	}
	if opts.startSafety >= 0 {
		c.StartSafety = opts.startSafety
	}
	if opts.endSafety >= 0 {
		c.EndSafety = opts.endSafety
	}
	if opts.minScrap >= 0 {
		c.MinScrapLength = opts.minScrap
	}
	return c
}

// resolveStockLengths picks the bar lengths to cut from: the -stock flag
// wins, then a loaded project's saved lengths, then the shop inventory,
// then the configured default.
func resolveStockLengths(cfg *config.Config, proj project.Project, inv project.Inventory, stockList string) ([]float64, error) {
	if stockList != "" {
		var lengths []float64
		for _, part := range strings.Split(stockList, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid stock length %q", part)
			}
			lengths = append(lengths, v)
		}
		return lengths, nil
	}
	if len(proj.StockLengths) > 0 && len(proj.Items) > 0 {
		return proj.StockLengths, nil
	}
	if lengths := inv.StockLengths(); len(lengths) > 0 {
		return lengths, nil
	}
	return []float64{cfg.DefaultStockLength}, nil
}

// bankRemnants stores a finished plan's reclaimable offcuts in the
// inventory file and reports how many were added.
func bankRemnants(path string, inv project.Inventory, cuts []*model.Cut, plan string) (int, error) {
	before := len(inv.Remnants)
	inv = inv.AddRemnants(cuts, plan)
	if err := project.SaveInventory(path, inv); err != nil {
		return 0, err
	}
	return len(inv.Remnants) - before, nil
}

// planName derives a label for remnant provenance from the project or
// input file the plan came from.
func planName(opts runOptions) string {
	if opts.projectFile != "" {
		return strings.TrimSuffix(filepath.Base(opts.projectFile), ".json")
	}
	if opts.inputFile != "" {
		return filepath.Base(opts.inputFile)
	}
	return "ad-hoc"
}

func printPlan(result model.OptimizeResult) {
	fmt.Printf("Strategy: %s | Bars: %d | Efficiency: %.1f%% | Waste: %.0f mm | Cost: %.2f\n",
		result.Strategy, result.TotalBars(), result.Efficiency, result.TotalWaste, result.TotalCost)
	for i, cut := range result.Cuts {
		fmt.Printf("  Bar %2d: %s\n", i+1, cut.PlanLabel)
	}
	for _, w := range result.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}

func printComparison(items []model.OptimizationItem, stockLengths []float64, base model.Constraints, log *zap.Logger) {
	scenarios := engine.BuildDefaultScenarios(base)
	results := engine.CompareScenarios(scenarios, items, stockLengths, log)

	fmt.Println("\nScenario comparison:")
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  %-24s error: %v\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Printf("  %-24s bars: %2d | waste: %5.1f%% | cuts: %d\n",
			r.Scenario.Name, r.BarsUsed, r.WastePercent, r.TotalCuts)
	}
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("metrics server stopped", zap.Error(err))
	}
}
