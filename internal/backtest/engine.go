package backtest

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"storage-arbitrage/internal/analysis"
	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/strategy"
)

// Options tunes a single run.
type Options struct {
	// MaxDays caps the number of simulated days; 0 runs the whole series.
	MaxDays int
	// KeepDetails retains per-day transactions, history, trades and prices on
	// each DayResult. Summaries are always kept.
	KeepDetails bool
}

// Engine drives the day-by-day simulation: each calendar day runs through
// the strategy in one piece, then the daily transaction log is summarized
// and cleared while energy level, cash and cycle counters carry over.
type Engine struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Engine{logger: logger}
}

// Run executes a simulation over a quarter-hourly price series.
func (e *Engine) Run(series []model.PricePoint, store *model.EnergyStorage, strat strategy.Strategy, opts Options) (*RunResult, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is nil")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no price data")
	}

	days := model.SplitByDay(series)
	if opts.MaxDays > 0 && len(days) > opts.MaxDays {
		days = days[:opts.MaxDays]
	}

	result := &RunResult{
		StrategyName: strat.Name(),
		Storage:      store.Params(),
		StartDate:    days[0].Date,
		EndDate:      days[len(days)-1].Date,
		Days:         make([]DayResult, 0, len(days)),
	}

	for _, day := range days {
		initial := store.EnergyLevel()

		history := strat.Run(day.Points, store)
		trades := analysis.SummarizeTrades(history)

		dr := DayResult{
			Date:         day.Date,
			Cycles:       store.DailyCycles(),
			InitialLevel: initial,
			FinalLevel:   store.EnergyLevel(),
		}

		for _, tx := range store.Transactions() {
			dr.Profit += tx.CashDelta()
			switch tx.Kind {
			case model.TransactionCharge:
				dr.ChargeCount++
				dr.ChargedMWh += tx.Charge.AmountMWh
				dr.Cost += tx.Charge.Cost
			case model.TransactionDischarge:
				dr.DischargeCount++
				dr.DischargedMWh += tx.Discharge.AmountGrossMWh
				dr.Revenue += tx.Discharge.Revenue
			}
		}

		if opts.KeepDetails {
			dr.Transactions = store.Transactions()
			dr.History = history
			dr.Trades = trades
			dr.Prices = day.Points
		}

		e.logger.WithFields(logrus.Fields{
			"date":    day.Date.Format("2006-01-02"),
			"profit":  dr.Profit,
			"cycles":  dr.Cycles,
			"level":   dr.FinalLevel,
			"charges": dr.ChargeCount,
			"sales":   dr.DischargeCount,
			"trades":  len(trades),
		}).Debug("day simulated")

		result.Days = append(result.Days, dr)
		result.TotalProfit += dr.Profit

		store.ResetDailyTransactions()
		store.AddOperationDay()
	}

	totals := store.Totals()
	result.TotalCycles = totals.Cycles
	result.FinalLevel = store.EnergyLevel()
	result.ActualEfficiency = store.ActualEfficiency()
	result.EnergyEfficiency = store.EnergyEfficiency()
	result.Totals = totals

	e.logger.WithFields(logrus.Fields{
		"days":   len(result.Days),
		"profit": result.TotalProfit,
		"cycles": result.TotalCycles,
	}).Info("simulation finished")

	return result, nil
}
