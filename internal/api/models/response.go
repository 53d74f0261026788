package models

import (
	"time"

	"storage-arbitrage/internal/analysis"
	"storage-arbitrage/internal/data"
	"storage-arbitrage/internal/economics"
	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/store"
)

// SimulateResponse is the body returned by a simulation run.
type SimulateResponse struct {
	ID        string            `json:"id,omitempty"` // set when the run was persisted
	Status    string            `json:"status"`
	Summary   RunSummary        `json:"summary"`
	Days      []DaySummary      `json:"days"`
	Economics *economics.Result `json:"economics,omitempty"`
}

// RunSummary contains aggregated simulation results.
type RunSummary struct {
	Strategy string              `json:"strategy"`
	Storage  model.StorageParams `json:"storage"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TotalDays int       `json:"total_days"`

	TotalProfit  float64 `json:"total_profit"`
	TotalCycles  float64 `json:"total_cycles"`
	AnnualProfit float64 `json:"annual_profit"`
	AnnualCycles float64 `json:"annual_cycles"`

	FinalLevel       float64 `json:"final_energy_level"`
	ActualEfficiency float64 `json:"actual_efficiency"`
	EnergyEfficiency float64 `json:"energy_efficiency"`

	ChargedMWh float64 `json:"charged_mwh"`
	// DischargedMWh is usable energy delivered over the whole run.
	DischargedMWh float64 `json:"discharged_mwh"`
}

// DaySummary is one simulated day, with optional detail arrays.
// DischargedMWh is the day's gross outflow, the amount cycle accounting uses.
type DaySummary struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	Profit         float64 `json:"profit"`
	Cycles         float64 `json:"cycles"`
	ChargeCount    int     `json:"charge_count"`
	DischargeCount int     `json:"discharge_count"`
	InitialLevel   float64 `json:"initial_energy_level"`
	FinalLevel     float64 `json:"final_energy_level"`
	ChargedMWh     float64 `json:"charged_mwh"`
	DischargedMWh  float64 `json:"discharged_mwh"`
	Cost           float64 `json:"cost"`
	Revenue        float64 `json:"revenue"`

	Transactions []TransactionRow `json:"transactions,omitempty"`
	History      []HistoryRow     `json:"history,omitempty"`
	Trades       []analysis.Trade `json:"trades,omitempty"`
}

// TransactionRow is one charge or discharge step.
type TransactionRow struct {
	Kind        string  `json:"kind"`
	TimeIndex   int     `json:"time_index"`
	Interval    int     `json:"interval"`
	Price       float64 `json:"price"`
	AmountMWh   float64 `json:"amount_mwh"`
	UsableMWh   float64 `json:"usable_mwh,omitempty"` // discharge only
	Cost        float64 `json:"cost,omitempty"`       // charge only
	Revenue     float64 `json:"revenue,omitempty"`    // discharge only
	Fee         float64 `json:"fee,omitempty"`
	EnergyLevel float64 `json:"energy_level"`
}

// HistoryRow is one interval of the per-interval energy history.
type HistoryRow struct {
	Index       int     `json:"index"`
	EnergyLevel float64 `json:"energy_level"`
	Action      string  `json:"action"`
}

// RunsResponse lists persisted run summaries.
type RunsResponse struct {
	Runs  []store.RunRecord `json:"runs"`
	Count int               `json:"count"`
}

// DatasetInfo is one scannable price file with its series statistics.
type DatasetInfo struct {
	data.Dataset
	Days int `json:"days"`
	analysis.PriceStats
}

// PotentialResponse reports the arbitrage potential of one dataset for one
// storage configuration.
type PotentialResponse struct {
	Dataset   string                      `json:"dataset"`
	Storage   model.StorageParams         `json:"storage"`
	Potential analysis.ArbitragePotential `json:"potential"`
}

// StorageInfo represents one storage preset.
type StorageInfo struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	File  string              `json:"file"`
	Specs model.StorageParams `json:"specs"`
}

// StrategyInfo represents information about a strategy.
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter.
type ParameterInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "float", "int", "string"
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
