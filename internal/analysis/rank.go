package analysis

import (
	"sort"

	"storage-arbitrage/internal/economics"
	"storage-arbitrage/internal/model"
)

// PresetResult is one storage preset's simulated outcome over a dataset.
type PresetResult struct {
	Name    string              `json:"name"`
	Storage model.StorageParams `json:"storage"`
	Profit  float64             `json:"profit"`
	Cycles  float64             `json:"cycles"`
	Days    int                 `json:"days"`
}

// RankedPreset extends a preset result with its annualized figures and the
// investment metrics used for ordering.
type RankedPreset struct {
	PresetResult
	AnnualProfit float64 `json:"annual_profit"`
	AnnualCycles float64 `json:"annual_cycles"`
	NPV          float64 `json:"npv"`
	PaybackYear  *int    `json:"payback_year,omitempty"`
}

// RankByNPV runs the economic analysis for every preset and sorts descending
// by NPV, ties broken by annual profit.
func RankByNPV(results []PresetResult, p economics.Params) []RankedPreset {
	out := make([]RankedPreset, 0, len(results))
	for _, r := range results {
		annualProfit := economics.Annualize(r.Profit, r.Days)
		annualCycles := economics.Annualize(r.Cycles, r.Days)

		res := economics.Analyze(r.Storage, annualProfit, annualCycles, p)

		out = append(out, RankedPreset{
			PresetResult: r,
			AnnualProfit: annualProfit,
			AnnualCycles: res.AnnualCycles,
			NPV:          res.NPV.NPV,
			PaybackYear:  res.NPV.PaybackYear,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NPV != out[j].NPV {
			return out[i].NPV > out[j].NPV
		}
		return out[i].AnnualProfit > out[j].AnnualProfit
	})
	return out
}
