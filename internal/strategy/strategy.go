package strategy

import "storage-arbitrage/internal/model"

// EnergyHistoryEntry is the per-step snapshot a strategy records before
// acting at an index: the energy level entering the step and the mode the
// storage was in at that moment.
type EnergyHistoryEntry struct {
	TimeIndex   int
	EnergyLevel float64
	Action      model.Action
}

// Strategy drives one storage through one day's price slice and returns the
// per-step energy history. Indices in the history and in the storage's
// transactions are positions within the given slice.
type Strategy interface {
	Name() string
	Run(day []model.PricePoint, store *model.EnergyStorage) []EnergyHistoryEntry
}
