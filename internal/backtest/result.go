package backtest

import (
	"time"

	"storage-arbitrage/internal/analysis"
	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/strategy"
)

// DayResult is one simulated calendar day.
// This is the primary artifact for "what happened" in a simulation run.
type DayResult struct {
	Date time.Time

	Profit float64
	Cycles float64

	ChargeCount    int
	DischargeCount int

	InitialLevel float64
	FinalLevel   float64

	ChargedMWh    float64
	DischargedMWh float64
	Cost          float64
	Revenue       float64

	// Populated only when the run keeps details.
	Transactions []model.Transaction
	History      []strategy.EnergyHistoryEntry
	Trades       []analysis.Trade
	Prices       []model.PricePoint
}

// RunResult is the aggregate over all simulated days plus the storage's
// final counters.
type RunResult struct {
	StrategyName string
	Storage      model.StorageParams

	StartDate time.Time
	EndDate   time.Time

	Days []DayResult

	TotalProfit      float64
	TotalCycles      float64
	FinalLevel       float64
	ActualEfficiency float64
	EnergyEfficiency float64

	Totals model.Totals
}

// DayCount returns the number of simulated days.
func (r *RunResult) DayCount() int { return len(r.Days) }
