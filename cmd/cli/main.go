package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"storage-arbitrage/internal/analysis"
	"storage-arbitrage/internal/backtest"
	"storage-arbitrage/internal/config"
	"storage-arbitrage/internal/data"
	"storage-arbitrage/internal/economics"
	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/strategy"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "simulate":
		cmdSimulate(os.Args[2:])
	case "datasets":
		cmdDatasets(os.Args[2:])
	case "potential":
		cmdPotential(os.Args[2:])
	case "economics":
		cmdEconomics(os.Args[2:])
	case "compare":
		cmdCompare(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli simulate  --data data/prices.csv [--config config.yaml] [--out output]")
	fmt.Println("  cli datasets  [--dir data]")
	fmt.Println("  cli potential --data data/prices.csv [--capacity 1.0]")
	fmt.Println("  cli economics --annual-profit 15000 [--annual-cycles 300]")
	fmt.Println("  cli compare   --data data/prices.csv --presets presets")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - simulate writes daily_results.csv, transactions.csv and trades.csv into --out")
	fmt.Println("  - potential prints per-day price spreads plus a perfect-foresight profit bound")
	fmt.Println("  - compare ranks every storage preset in --presets by NPV over the dataset")
}

func cmdSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	dataPath := fs.String("data", "", "price series (SMARD CSV or JSON)")
	cfgPath := fs.String("config", "", "YAML config path")
	presetPath := fs.String("preset", "", "storage preset YAML (replaces config storage)")
	stratName := fs.String("strategy", "", "strategy name (overrides config)")
	maxDays := fs.Int("max-days", 0, "limit to first N days (0=config)")
	outDir := fs.String("out", "", "output directory for CSV exports (overrides config)")
	exportDays := fs.Int("export-days", 0, "write a per-day detail CSV every Nth day (0=config)")
	econ := fs.Bool("economics", false, "print the investment analysis")
	verbose := fs.Bool("v", false, "verbose logging")
	_ = fs.Parse(args)

	if *dataPath == "" {
		fmt.Println("--data is required")
		os.Exit(2)
	}

	cfg := loadConfig(*cfgPath)
	if *stratName != "" {
		cfg.Strategy.Name = *stratName
	}
	if *maxDays > 0 {
		cfg.Output.MaxDays = *maxDays
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *exportDays > 0 {
		cfg.Output.ExportFrequency = *exportDays
	}

	storageCfg := cfg.Storage
	if *presetPath != "" {
		loaded, err := config.LoadStorageFile(*presetPath)
		if err != nil {
			panic(err)
		}
		storageCfg = loaded
	}

	series, err := data.Load(*dataPath)
	if err != nil {
		panic(err)
	}

	store, err := model.NewEnergyStorage(storageCfg.ToParams())
	if err != nil {
		panic(err)
	}

	log := newLogger(*verbose)
	strat, err := buildStrategy(cfg, log)
	if err != nil {
		panic(err)
	}

	engine := backtest.New(log)
	res, err := engine.Run(series, store, strat, backtest.Options{
		MaxDays:     cfg.Output.MaxDays,
		KeepDetails: true,
	})
	if err != nil {
		panic(err)
	}

	printSummary(res)

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		panic(err)
	}
	exports := []struct {
		name  string
		write func(string, []backtest.DayResult) error
	}{
		{"daily_results.csv", backtest.WriteDailyResultsCSV},
		{"transactions.csv", backtest.WriteTransactionsCSV},
		{"trades.csv", backtest.WriteTradesCSV},
	}
	for _, ex := range exports {
		if err := ex.write(filepath.Join(cfg.Output.Dir, ex.name), res.Days); err != nil {
			panic(err)
		}
	}
	if err := engine.ExportDayDetails(filepath.Join(cfg.Output.Dir, "days"), res.Days, backtest.ExportOptions{
		Every:   cfg.Output.ExportFrequency,
		Workers: cfg.Output.ExportWorkers,
	}); err != nil {
		panic(err)
	}
	fmt.Printf("\nWrote daily_results.csv, transactions.csv and trades.csv to %s\n", cfg.Output.Dir)

	if *econ {
		annualProfit := economics.Annualize(res.TotalProfit, res.DayCount())
		annualCycles := economics.Annualize(res.TotalCycles, res.DayCount())
		printEconomics(economics.Analyze(res.Storage, annualProfit, annualCycles, cfg.Economics))
	}
}

func cmdDatasets(args []string) {
	fs := flag.NewFlagSet("datasets", flag.ExitOnError)
	dir := fs.String("dir", "", "datasets directory (overrides config)")
	cfgPath := fs.String("config", "", "YAML config path")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	if *dir != "" {
		cfg.Data.DatasetsDir = *dir
	}

	datasets, err := data.ScanDatasets(cfg.Data.DatasetsDir)
	if err != nil {
		panic(err)
	}
	if len(datasets) == 0 {
		fmt.Printf("no datasets in %s\n", cfg.Data.DatasetsDir)
		return
	}

	fmt.Printf("%-28s %-10s %-6s %-8s %-9s %-9s %-9s %-9s\n",
		"name", "format", "days", "points", "min", "max", "mean", "p95-p05")
	for _, ds := range datasets {
		series, err := data.Load(ds.Path)
		if err != nil {
			fmt.Printf("%-28s %-10s unreadable: %v\n", ds.Name, ds.Format, err)
			continue
		}
		stats := analysis.SeriesStats(series)
		fmt.Printf("%-28s %-10s %-6d %-8d %-9.2f %-9.2f %-9.2f %-9.2f\n",
			ds.Name, ds.Format, len(model.SplitByDay(series)), stats.Count,
			stats.MinPrice, stats.MaxPrice, stats.MeanPrice, stats.SpreadP95P05)
	}
}

func cmdPotential(args []string) {
	fs := flag.NewFlagSet("potential", flag.ExitOnError)
	dataPath := fs.String("data", "", "price series (SMARD CSV or JSON)")
	cfgPath := fs.String("config", "", "YAML config path")
	capacity := fs.Float64("capacity", 0, "storage capacity MWh (overrides config)")
	chargeRate := fs.Float64("charge-rate", 0, "C-rate (overrides config)")
	efficiency := fs.Float64("efficiency", 0, "round-trip efficiency (overrides config)")
	fee := fs.Float64("fee", 0, "transaction fee per MWh (overrides config)")
	_ = fs.Parse(args)

	if *dataPath == "" {
		fmt.Println("--data is required")
		os.Exit(2)
	}

	cfg := loadConfig(*cfgPath)
	storage := config.MergeStorage(cfg.Storage, config.StorageConfig{
		CapacityMWh: *capacity,
		ChargeRate:  *chargeRate,
		Efficiency:  *efficiency,
		FeePerMWh:   *fee,
	})
	params := storage.ToParams()
	if err := params.Validate(); err != nil {
		panic(err)
	}

	series, err := data.Load(*dataPath)
	if err != nil {
		panic(err)
	}

	p := analysis.ComputePotential(series, params)
	fmt.Printf("Dataset %s: %d points, %s .. %s\n", *dataPath, p.Count,
		p.StartTime.Format("2006-01-02 15:04"), p.EndTime.Format("2006-01-02 15:04"))
	fmt.Printf("  price min/max  %9.2f / %.2f\n", p.MinPrice, p.MaxPrice)
	fmt.Printf("  mean / stddev  %9.2f / %.2f\n", p.MeanPrice, p.StdDevPrice)
	fmt.Printf("  p05 / p95      %9.2f / %.2f (spread %.2f)\n", p.P05Price, p.P95Price, p.SpreadP95P05)
	fmt.Printf("  oracle profit  %9.2f\n", p.OracleProfit)
	fmt.Println()
	fmt.Printf("%-12s %-7s %-9s %-9s %-9s %-9s\n", "date", "points", "min", "max", "mean", "p95-p05")
	for _, d := range p.Days {
		fmt.Printf("%-12s %-7d %-9.2f %-9.2f %-9.2f %-9.2f\n",
			d.Date.Format("2006-01-02"), d.Count, d.MinPrice, d.MaxPrice, d.MeanPrice, d.SpreadP95P05)
	}
}

func cmdEconomics(args []string) {
	fs := flag.NewFlagSet("economics", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config path")
	annualProfit := fs.Float64("annual-profit", 0, "annual trading profit")
	annualCycles := fs.Float64("annual-cycles", 0, "annual full cycles (0=default assumption)")
	capacity := fs.Float64("capacity", 0, "storage capacity MWh (overrides config)")
	chargeRate := fs.Float64("charge-rate", 0, "C-rate (overrides config)")
	efficiency := fs.Float64("efficiency", 0, "round-trip efficiency (overrides config)")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	storage := config.MergeStorage(cfg.Storage, config.StorageConfig{
		CapacityMWh: *capacity,
		ChargeRate:  *chargeRate,
		Efficiency:  *efficiency,
	})
	params := storage.ToParams()
	if err := params.Validate(); err != nil {
		panic(err)
	}

	printEconomics(economics.Analyze(params, *annualProfit, *annualCycles, cfg.Economics))
}

func cmdCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	dataPath := fs.String("data", "", "price series (SMARD CSV or JSON)")
	presetsDir := fs.String("presets", "presets", "storage preset directory")
	cfgPath := fs.String("config", "", "YAML config path")
	maxDays := fs.Int("max-days", 0, "limit to first N days (0=all)")
	verbose := fs.Bool("v", false, "verbose logging")
	_ = fs.Parse(args)

	if *dataPath == "" {
		fmt.Println("--data is required")
		os.Exit(2)
	}

	cfg := loadConfig(*cfgPath)
	series, err := data.Load(*dataPath)
	if err != nil {
		panic(err)
	}

	entries, err := os.ReadDir(*presetsDir)
	if err != nil {
		panic(err)
	}

	log := newLogger(*verbose)
	engine := backtest.New(log)

	var results []analysis.PresetResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		preset, err := config.LoadStorageFile(filepath.Join(*presetsDir, entry.Name()))
		if err != nil {
			fmt.Printf("skipping %s: %v\n", entry.Name(), err)
			continue
		}

		store, err := model.NewEnergyStorage(preset.ToParams())
		if err != nil {
			fmt.Printf("skipping %s: %v\n", entry.Name(), err)
			continue
		}
		strat, err := buildStrategy(cfg, log)
		if err != nil {
			panic(err)
		}

		res, err := engine.Run(series, store, strat, backtest.Options{MaxDays: *maxDays})
		if err != nil {
			panic(err)
		}

		results = append(results, analysis.PresetResult{
			Name:    preset.Name,
			Storage: res.Storage,
			Profit:  res.TotalProfit,
			Cycles:  res.TotalCycles,
			Days:    res.DayCount(),
		})
	}

	if len(results) == 0 {
		fmt.Printf("no usable presets in %s\n", *presetsDir)
		return
	}

	ranked := analysis.RankByNPV(results, cfg.Economics)
	fmt.Printf("%-4s %-20s %-9s %-11s %-11s %-13s %-8s\n",
		"rank", "preset", "capacity", "profit", "annual", "npv", "payback")
	for i, r := range ranked {
		payback := "-"
		if r.PaybackYear != nil {
			payback = fmt.Sprintf("%d", *r.PaybackYear)
		}
		fmt.Printf("%-4d %-20s %-9.2f %-11.2f %-11.2f %-13.2f %-8s\n",
			i+1, r.Name, r.Storage.CapacityMWh, r.Profit, r.AnnualProfit, r.NPV, payback)
	}
}

func printSummary(res *backtest.RunResult) {
	fmt.Printf("Simulated %d days: %s .. %s\n", res.DayCount(),
		res.StartDate.Format("2006-01-02"), res.EndDate.Format("2006-01-02"))
	fmt.Printf("  strategy           %s\n", res.StrategyName)
	fmt.Printf("  storage            %.2f MWh @ %.2fC, efficiency %.0f%%, fee %.2f/MWh\n",
		res.Storage.CapacityMWh, res.Storage.ChargeRate, res.Storage.Efficiency*100, res.Storage.FeePerMWh)
	fmt.Printf("  total profit       %.2f\n", res.TotalProfit)
	fmt.Printf("  total cycles       %.2f\n", res.TotalCycles)
	fmt.Printf("  annual profit      %.2f\n", economics.Annualize(res.TotalProfit, res.DayCount()))
	fmt.Printf("  annual cycles      %.2f\n", economics.Annualize(res.TotalCycles, res.DayCount()))
	fmt.Printf("  final level        %.3f MWh\n", res.FinalLevel)
	fmt.Printf("  revenue efficiency %.1f%%\n", res.ActualEfficiency)
	fmt.Printf("  energy efficiency  %.1f%%\n", res.EnergyEfficiency)
}

func printEconomics(res economics.Result) {
	fmt.Printf("\nInvestment analysis: %.2f MWh @ %.2fC\n", res.Storage.CapacityMWh, res.Storage.ChargeRate)
	fmt.Printf("  capex battery    %12.2f\n", res.Capex.BatteryCost)
	fmt.Printf("  capex inverter   %12.2f\n", res.Capex.InverterCost)
	fmt.Printf("  capex additional %12.2f\n", res.Capex.AdditionalCosts)
	fmt.Printf("  capex total      %12.2f\n", res.Capex.TotalCapex)
	fmt.Printf("  opex year one    %12.2f\n", res.FirstYearOpex.Total)
	fmt.Printf("  annual profit    %12.2f (%.1f cycles)\n", res.AnnualProfit, res.AnnualCycles)
	fmt.Printf("  %d-year revenue  %12.2f (final capacity %.1f%%)\n",
		res.Params.SimulationYears, res.Projection.TotalRevenue, res.Projection.FinalCapacityPct)
	fmt.Printf("  npv              %12.2f\n", res.NPV.NPV)
	if res.NPV.PaybackYear != nil {
		fmt.Printf("  payback          year %d\n", *res.NPV.PaybackYear)
	} else {
		fmt.Printf("  payback          not within %d years\n", res.Params.SimulationYears)
	}
}

// loadConfig loads the YAML config or falls back to the defaults.
func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// buildStrategy maps the config's strategy section onto an instance. The API
// handler carries its own copy of this mapping for request parameters.
func buildStrategy(cfg *config.Config, log *logrus.Logger) (strategy.Strategy, error) {
	params := cfg.Strategy.Params
	switch cfg.Strategy.Name {
	case "threshold_lookahead":
		window := int(mustNum(params, "window_size", float64(strategy.DefaultWindowSize)))
		return strategy.NewThresholdLookahead(strategy.LookaheadParams{WindowSize: window}, log), nil
	case "daily_schedule":
		p := strategy.DefaultScheduleParams()
		p.ChargeStart = mustStr(params, "charge_start", p.ChargeStart)
		p.ChargeEnd = mustStr(params, "charge_end", p.ChargeEnd)
		p.DischargeStart = mustStr(params, "discharge_start", p.DischargeStart)
		p.DischargeEnd = mustStr(params, "discharge_end", p.DischargeEnd)
		return strategy.NewDailySchedule(p)
	default:
		return nil, fmt.Errorf("unsupported strategy: %q", cfg.Strategy.Name)
	}
}

func mustNum(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		}
	}
	return def
}

func mustStr(m map[string]any, key string, def string) string {
	if v, ok := m[key]; ok && v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return def
}
