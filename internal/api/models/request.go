package models

import (
	"time"

	"storage-arbitrage/internal/economics"
)

// SimulateRequest is the body for running a simulation. Price data comes
// either from a dataset file or inline.
type SimulateRequest struct {
	Dataset  string          `json:"dataset,omitempty"` // path, resolved against the datasets dir
	Prices   []PricePoint    `json:"prices,omitempty"`  // inline alternative to Dataset
	Storage  StorageConfig   `json:"storage,omitempty"`
	Strategy StrategyConfig  `json:"strategy" binding:"required"`
	Options  SimulateOptions `json:"options,omitempty"`
}

// PricePoint is one inline price sample. Time is RFC 3339.
type PricePoint struct {
	Time  time.Time `json:"time" binding:"required"`
	Price float64   `json:"price"`
}

// StorageConfig selects the storage asset: a preset name resolved in the
// presets directory, inline parameters, or a preset with overrides. Zero
// fields fall back to the preset or the server defaults.
type StorageConfig struct {
	Preset      string  `json:"preset,omitempty"`
	Name        string  `json:"name,omitempty"`
	CapacityMWh float64 `json:"capacity_mwh,omitempty"`
	ChargeRate  float64 `json:"charge_rate,omitempty"`
	Efficiency  float64 `json:"efficiency,omitempty"`
	FeePerMWh   float64 `json:"fee_per_mwh,omitempty"`
}

// StrategyConfig selects a strategy and its parameters.
type StrategyConfig struct {
	Name   string         `json:"name" binding:"required"`
	Params map[string]any `json:"params,omitempty"`
}

// SimulateOptions contains optional simulation parameters.
type SimulateOptions struct {
	MaxDays             int  `json:"max_days,omitempty"`             // 0 = all days
	IncludeHistory      bool `json:"include_history,omitempty"`      // per-interval energy history
	IncludeTransactions bool `json:"include_transactions,omitempty"` // per-step transactions
	IncludeTrades       bool `json:"include_trades,omitempty"`       // completed trades
	Economics           bool `json:"economics,omitempty"`            // run the investment analysis
	Persist             bool `json:"persist,omitempty"`              // save the run, return its id
}

// PotentialRequest are the query parameters of the arbitrage potential
// endpoint. Zero storage fields fall back to the server defaults.
type PotentialRequest struct {
	Path        string  `form:"path" binding:"required"`
	CapacityMWh float64 `form:"capacity_mwh"`
	ChargeRate  float64 `form:"charge_rate"`
	Efficiency  float64 `form:"efficiency"`
	FeePerMWh   float64 `form:"fee_per_mwh"`
}

// EconomicsRequest is the body for a standalone investment calculation.
// Params absent from the body keep the server defaults the handler seeds
// before binding.
type EconomicsRequest struct {
	Storage      StorageConfig    `json:"storage"`
	AnnualProfit float64          `json:"annual_profit"`
	AnnualCycles float64          `json:"annual_cycles,omitempty"`
	Params       economics.Params `json:"params,omitempty"`
}
