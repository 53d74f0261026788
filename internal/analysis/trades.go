package analysis

import (
	"math"

	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/strategy"
)

// Trade is a contiguous charge or discharge operation reconstructed from the
// per-interval energy history. Indices refer to the day's interval indices;
// because history records the state at the start of an interval, a trade's
// StartIndex is the first interval that already shows the operation's action.
type Trade struct {
	Type        model.TransactionKind `json:"type"`
	StartIndex  int                   `json:"start_index"`
	EndIndex    int                   `json:"end_index"`
	StartEnergy float64               `json:"start_energy"`
	EndEnergy   float64               `json:"end_energy"`
	EnergyMWh   float64               `json:"energy_traded"`
	Intervals   int                   `json:"intervals"`
}

// SummarizeTrades groups consecutive non-idle history entries into trades.
// A trade closes on the first idle entry after it (or at the end of the
// history for a still-running operation).
func SummarizeTrades(history []strategy.EnergyHistoryEntry) []Trade {
	var trades []Trade
	var open *Trade

	for i, entry := range history {
		switch {
		case entry.Action != model.ActionIdle && open == nil:
			open = &Trade{
				Type:        entry.Action.TransactionKind(),
				StartIndex:  entry.TimeIndex,
				StartEnergy: entry.EnergyLevel,
				Intervals:   1,
			}
		case entry.Action == model.ActionIdle && open != nil:
			open.EndIndex = entry.TimeIndex - 1
			open.EndEnergy = history[i-1].EnergyLevel
			open.EnergyMWh = math.Abs(open.EndEnergy - open.StartEnergy)
			trades = append(trades, *open)
			open = nil
		case open != nil:
			open.Intervals++
		}
	}

	if open != nil {
		last := history[len(history)-1]
		open.EndIndex = last.TimeIndex
		open.EndEnergy = last.EnergyLevel
		open.EnergyMWh = math.Abs(open.EndEnergy - open.StartEnergy)
		trades = append(trades, *open)
	}

	return trades
}
