package economics

import "storage-arbitrage/internal/model"

// CapexBreakdown is the one-time investment split into its components.
// AdditionalCosts covers grid connection, installation, planning and housing
// as a flat percentage on top of battery and inverter.
type CapexBreakdown struct {
	BatteryCost     float64 `json:"battery_cost"`
	InverterCost    float64 `json:"inverter_cost"`
	BaseCapex       float64 `json:"base_capex"`
	AdditionalCosts float64 `json:"additional_costs"`
	TotalCapex      float64 `json:"total_capex"`
}

// ComputeCapex prices the system from its storage parameters. The inverter is
// sized to the maximum power (capacity times C-rate).
func ComputeCapex(storage model.StorageParams, p Params) CapexBreakdown {
	battery := storage.CapacityMWh * p.BatteryCostPerMWh
	inverter := storage.CapacityMWh * storage.ChargeRate * p.InverterCostPerMW
	base := battery + inverter
	additional := base * p.AdditionalCostsPct / 100

	return CapexBreakdown{
		BatteryCost:     battery,
		InverterCost:    inverter,
		BaseCapex:       base,
		AdditionalCosts: additional,
		TotalCapex:      base + additional,
	}
}
