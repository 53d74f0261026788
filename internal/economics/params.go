package economics

// Params holds the assumptions for the investment calculation. Percentages
// are in percent (0.75 = 0.75%), except DiscountRate which is a fraction
// (0.05 = 5%).
type Params struct {
	BatteryCostPerMWh   float64 `yaml:"battery_cost_per_mwh" json:"battery_cost_per_mwh"`
	InverterCostPerMW   float64 `yaml:"inverter_cost_per_mw" json:"inverter_cost_per_mw"`
	AdditionalCostsPct  float64 `yaml:"additional_costs_pct" json:"additional_costs_pct"`
	OpexPctOfCapex      float64 `yaml:"opex_pct_of_capex" json:"opex_pct_of_capex"`
	InsurancePctOfCapex float64 `yaml:"insurance_pct_of_capex" json:"insurance_pct_of_capex"`
	MaintenancePerMWh   float64 `yaml:"maintenance_per_mwh" json:"maintenance_per_mwh"`
	InflationRatePct    float64 `yaml:"inflation_rate_pct" json:"inflation_rate_pct"`
	SimulationYears     int     `yaml:"simulation_years" json:"simulation_years"`
	MaxLifetimeCycles   float64 `yaml:"max_lifetime_cycles" json:"max_lifetime_cycles"`
	MaxCycleDegradation float64 `yaml:"max_cycle_degradation" json:"max_cycle_degradation"`
	DefaultAnnualCycles float64 `yaml:"default_annual_cycles" json:"default_annual_cycles"`
	DiscountRate        float64 `yaml:"discount_rate" json:"discount_rate"`
}

// DefaultParams returns the house assumptions for a grid-scale LFP system.
func DefaultParams() Params {
	return Params{
		BatteryCostPerMWh:   85_000,
		InverterCostPerMW:   75_000,
		AdditionalCostsPct:  67,
		OpexPctOfCapex:      0.75,
		InsurancePctOfCapex: 0.5,
		MaintenancePerMWh:   2_500,
		InflationRatePct:    2,
		SimulationYears:     15,
		MaxLifetimeCycles:   8_000,
		MaxCycleDegradation: 0.3,
		DefaultAnnualCycles: 300,
		DiscountRate:        0.05,
	}
}
