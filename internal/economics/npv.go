package economics

import "math"

// NPVResult is the discounted cash-flow view of the investment. CashFlows[0]
// is the initial outlay, one entry per projected year follows. PaybackYear is
// the first year the undiscounted cumulative flow turns non-negative, nil if
// the investment never pays back inside the horizon.
type NPVResult struct {
	CashFlows   []float64 `json:"cash_flows"`
	NPV         float64   `json:"npv"`
	PaybackYear *int      `json:"payback_year,omitempty"`
}

// ComputeNPV discounts the projected yearly revenue net of operating costs.
// DiscountRate is a fraction: 0.05 discounts year n by 1.05^n.
func ComputeNPV(capex CapexBreakdown, proj Projection, capacityMWh float64, p Params) NPVResult {
	flows := make([]float64, 0, len(proj.Years)+1)
	flows = append(flows, -capex.TotalCapex)

	for _, yp := range proj.Years {
		opex := ComputeOpex(capex.TotalCapex, capacityMWh, yp.Year, p)
		flows = append(flows, yp.Revenue-opex.Total)
	}

	npv := 0.0
	for year, flow := range flows {
		npv += flow / math.Pow(1+p.DiscountRate, float64(year))
	}

	var payback *int
	cumulative := 0.0
	for year, flow := range flows {
		cumulative += flow
		if year > 0 && cumulative >= 0 {
			y := year
			payback = &y
			break
		}
	}

	return NPVResult{CashFlows: flows, NPV: npv, PaybackYear: payback}
}
