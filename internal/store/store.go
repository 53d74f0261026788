// Package store persists completed simulation runs so they can be listed,
// inspected and deleted later through the API.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"storage-arbitrage/internal/model"
)

var (
	// ErrNotFound is returned when a requested run does not exist.
	ErrNotFound = errors.New("run not found")

	// ErrDuplicateID is returned when saving a run whose id is already taken.
	ErrDuplicateID = errors.New("duplicate run id")

	// ErrInvalidRun is returned when a run fails basic validation.
	ErrInvalidRun = errors.New("invalid run record")
)

// NewRunID returns a fresh identifier for a run record.
func NewRunID() string {
	return uuid.NewString()
}

// RunRecord is the persisted summary of a completed simulation run.
type RunRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Dataset      string              `json:"dataset,omitempty"`
	StrategyName string              `json:"strategy"`
	Storage      model.StorageParams `json:"storage"`

	TotalDays        int     `json:"total_days"`
	TotalProfit      float64 `json:"total_profit"`
	TotalCycles      float64 `json:"total_cycles"`
	AnnualProfit     float64 `json:"annual_profit"`
	AnnualCycles     float64 `json:"annual_cycles"`
	FinalLevel       float64 `json:"final_energy_level"`
	ActualEfficiency float64 `json:"actual_efficiency"`
	EnergyEfficiency float64 `json:"energy_efficiency"`

	// NPV is set only when the run was saved together with an economics
	// analysis.
	NPV *float64 `json:"npv,omitempty"`
}

// DayRecord is one simulated day of a persisted run.
type DayRecord struct {
	Date           time.Time `json:"date"`
	Profit         float64   `json:"profit"`
	Cycles         float64   `json:"cycles"`
	ChargeCount    int       `json:"charge_count"`
	DischargeCount int       `json:"discharge_count"`
	InitialLevel   float64   `json:"initial_energy_level"`
	FinalLevel     float64   `json:"final_energy_level"`
}

// TradeRecord is one completed charge or discharge excursion of a persisted
// run. Indices are day-local quarter-hour interval indices.
type TradeRecord struct {
	Date        time.Time             `json:"date"`
	Kind        model.TransactionKind `json:"kind"`
	StartIndex  int                   `json:"start_index"`
	EndIndex    int                   `json:"end_index"`
	StartEnergy float64               `json:"start_energy_level"`
	EndEnergy   float64               `json:"end_energy_level"`
	EnergyMWh   float64               `json:"energy_traded"`
	Intervals   int                   `json:"intervals"`
}

// Run bundles a run record with its per-day results and completed trades.
type Run struct {
	RunRecord
	Days   []DayRecord   `json:"days,omitempty"`
	Trades []TradeRecord `json:"trades,omitempty"`
}

// RunStore persists simulation runs. Implementations must be safe for
// concurrent use.
type RunStore interface {
	// SaveRun stores a run together with its days and trades, atomically.
	// Returns ErrInvalidRun for a nil run or empty id and ErrDuplicateID
	// when the id is already taken.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun returns a run with its days and trades, or ErrNotFound.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns run summaries, newest first. A limit <= 0 returns
	// all runs.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// DeleteRun removes a run with its days and trades, or returns
	// ErrNotFound.
	DeleteRun(ctx context.Context, id string) error
}
