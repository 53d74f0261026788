package backtest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultExportWorkers bounds the per-day export pool.
const DefaultExportWorkers = 4

// ExportOptions controls the per-day detail export.
type ExportOptions struct {
	// Every exports each Nth day; 0 or 1 exports all days.
	Every int
	// Workers is the pool size; 0 uses DefaultExportWorkers.
	Workers int
}

// ExportDayDetails writes one plot-ready CSV per selected day into dir,
// named day_YYYY-MM-DD.csv, with the day's per-interval time, price, energy
// level and action. Days must have been simulated with KeepDetails.
//
// Files are written on a bounded worker pool. A failing day is logged and
// skipped; the pool drains fully before return.
func (e *Engine) ExportDayDetails(dir string, days []DayResult, opts ExportOptions) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	every := opts.Every
	if every < 1 {
		every = 1
	}
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultExportWorkers
	}

	jobs := make(chan DayResult, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for day := range jobs {
				path := filepath.Join(dir, "day_"+fmtDate(day.Date)+".csv")
				if err := writeDayDetailCSV(path, day); err != nil {
					e.logger.WithError(err).WithField("date", fmtDate(day.Date)).
						Warn("day export failed")
				}
			}
		}()
	}

	for i, day := range days {
		if i%every != 0 {
			continue
		}
		jobs <- day
	}
	close(jobs)
	wg.Wait()

	return nil
}

func writeDayDetailCSV(path string, day DayResult) error {
	if len(day.Prices) == 0 || len(day.History) != len(day.Prices) {
		return fmt.Errorf("day %s has no detail data", fmtDate(day.Date))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "price", "energy_level", "action"}); err != nil {
		return err
	}
	for i, p := range day.Prices {
		h := day.History[i]
		row := []string{
			fmtTime(p.Time),
			fmtFloat(p.Price),
			fmtFloat(h.EnergyLevel),
			h.Action.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
