package economics

import "math"

// OpexBreakdown is the running cost of one operating year. All components are
// inflation-adjusted to the given year (year 1 is uninflated).
type OpexBreakdown struct {
	Year        int     `json:"year"`
	BaseOpex    float64 `json:"base_opex"`
	Insurance   float64 `json:"insurance"`
	Maintenance float64 `json:"maintenance"`
	Total       float64 `json:"total"`
}

// ComputeOpex calculates the operating cost for one year. BaseOpex and
// insurance scale with total CAPEX, maintenance with installed capacity.
func ComputeOpex(totalCapex, capacityMWh float64, year int, p Params) OpexBreakdown {
	inflation := math.Pow(1+p.InflationRatePct/100, float64(year-1))

	base := totalCapex * p.OpexPctOfCapex / 100 * inflation
	insurance := totalCapex * p.InsurancePctOfCapex / 100 * inflation
	maintenance := capacityMWh * p.MaintenancePerMWh * inflation

	return OpexBreakdown{
		Year:        year,
		BaseOpex:    base,
		Insurance:   insurance,
		Maintenance: maintenance,
		Total:       base + insurance + maintenance,
	}
}
