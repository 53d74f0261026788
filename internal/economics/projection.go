package economics

// YearProjection is one year of the degradation-adjusted revenue forecast.
type YearProjection struct {
	Year                 int     `json:"year"`
	CumulativeCycles     float64 `json:"cumulative_cycles"`
	Degradation          float64 `json:"degradation"`
	CapacityFactor       float64 `json:"capacity_factor"`
	RemainingCapacityMWh float64 `json:"remaining_capacity_mwh"`
	Revenue              float64 `json:"revenue"`
	Cycles               float64 `json:"cycles"`
}

// Projection is the multi-year forecast. Revenue in year n is the annual
// profit scaled by the capacity remaining after n years of cycling.
type Projection struct {
	Years            []YearProjection `json:"years"`
	TotalRevenue     float64          `json:"total_revenue"`
	TotalCycles      float64          `json:"total_cycles"`
	FinalCapacityPct float64          `json:"final_capacity_pct"`
}

// ProjectDegradation forecasts revenue over the simulation horizon. Capacity
// fades linearly with cumulative cycles up to MaxCycleDegradation at
// MaxLifetimeCycles and is capped there.
func ProjectDegradation(annualProfit, annualCycles, capacityMWh float64, p Params) Projection {
	proj := Projection{Years: make([]YearProjection, 0, p.SimulationYears)}

	cumulative := 0.0
	factor := 1.0
	for year := 1; year <= p.SimulationYears; year++ {
		cumulative += annualCycles

		degradation := cumulative / p.MaxLifetimeCycles * p.MaxCycleDegradation
		if degradation > p.MaxCycleDegradation {
			degradation = p.MaxCycleDegradation
		}
		factor = 1 - degradation

		yp := YearProjection{
			Year:                 year,
			CumulativeCycles:     cumulative,
			Degradation:          degradation,
			CapacityFactor:       factor,
			RemainingCapacityMWh: capacityMWh * factor,
			Revenue:              annualProfit * factor,
			Cycles:               annualCycles * factor,
		}
		proj.Years = append(proj.Years, yp)
		proj.TotalRevenue += yp.Revenue
		proj.TotalCycles += yp.Cycles
	}

	proj.FinalCapacityPct = factor * 100
	return proj
}
