package economics

import "storage-arbitrage/internal/model"

// Result bundles the full investment analysis for one storage configuration
// and one simulated (or assumed) operating year.
type Result struct {
	Storage       model.StorageParams `json:"storage"`
	Params        Params              `json:"params"`
	AnnualProfit  float64             `json:"annual_profit"`
	AnnualCycles  float64             `json:"annual_cycles"`
	Capex         CapexBreakdown      `json:"capex"`
	FirstYearOpex OpexBreakdown       `json:"first_year_opex"`
	Projection    Projection          `json:"projection"`
	NPV           NPVResult           `json:"npv"`
}

// Annualize scales a simulated total onto a full year. Days is the number of
// simulated days; non-positive days return zero.
func Annualize(total float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return total * 365 / float64(days)
}

// Analyze runs the full chain: CAPEX, degradation projection from the annual
// cycle count (falling back to DefaultAnnualCycles when the simulation
// produced none), and the NPV of the resulting cash flows.
func Analyze(storage model.StorageParams, annualProfit, annualCycles float64, p Params) Result {
	if annualCycles <= 0 {
		annualCycles = p.DefaultAnnualCycles
	}

	capex := ComputeCapex(storage, p)
	proj := ProjectDegradation(annualProfit, annualCycles, storage.CapacityMWh, p)
	npv := ComputeNPV(capex, proj, storage.CapacityMWh, p)

	return Result{
		Storage:       storage,
		Params:        p,
		AnnualProfit:  annualProfit,
		AnnualCycles:  annualCycles,
		Capex:         capex,
		FirstYearOpex: ComputeOpex(capex.TotalCapex, storage.CapacityMWh, 1, p),
		Projection:    proj,
		NPV:           npv,
	}
}
