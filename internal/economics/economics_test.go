package economics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage-arbitrage/internal/model"
)

func TestComputeCapex(t *testing.T) {
	storage := model.StorageParams{CapacityMWh: 2, ChargeRate: 0.5, Efficiency: 0.85}

	capex := ComputeCapex(storage, DefaultParams())

	// 2 MWh * 85k, 1 MW inverter * 75k, plus 67% additional costs.
	assert.InDelta(t, 170_000, capex.BatteryCost, 1e-6)
	assert.InDelta(t, 75_000, capex.InverterCost, 1e-6)
	assert.InDelta(t, 245_000, capex.BaseCapex, 1e-6)
	assert.InDelta(t, 164_150, capex.AdditionalCosts, 1e-6)
	assert.InDelta(t, 409_150, capex.TotalCapex, 1e-6)
}

func TestComputeOpex_InflationAdjusted(t *testing.T) {
	p := DefaultParams()

	year1 := ComputeOpex(409_150, 2, 1, p)
	assert.InDelta(t, 3068.625, year1.BaseOpex, 1e-6)   // 0.75% of capex
	assert.InDelta(t, 2045.75, year1.Insurance, 1e-6)   // 0.5% of capex
	assert.InDelta(t, 5000, year1.Maintenance, 1e-6)    // 2500/MWh * 2
	assert.InDelta(t, 10114.375, year1.Total, 1e-6)

	// Year 2 carries one year of 2% inflation on every component.
	year2 := ComputeOpex(409_150, 2, 2, p)
	assert.InDelta(t, 10114.375*1.02, year2.Total, 1e-6)
}

func TestProjectDegradation(t *testing.T) {
	p := DefaultParams()

	proj := ProjectDegradation(50_000, 400, 2, p)
	require.Len(t, proj.Years, 15)

	y1 := proj.Years[0]
	assert.InDelta(t, 400, y1.CumulativeCycles, 1e-9)
	assert.InDelta(t, 0.015, y1.Degradation, 1e-9) // 400/8000 * 0.3
	assert.InDelta(t, 0.985, y1.CapacityFactor, 1e-9)
	assert.InDelta(t, 1.97, y1.RemainingCapacityMWh, 1e-9)
	assert.InDelta(t, 49_250, y1.Revenue, 1e-6)
	assert.InDelta(t, 394, y1.Cycles, 1e-9)

	y15 := proj.Years[14]
	assert.InDelta(t, 6000, y15.CumulativeCycles, 1e-9)
	assert.InDelta(t, 0.775, y15.CapacityFactor, 1e-9)
	assert.InDelta(t, 38_750, y15.Revenue, 1e-6)

	// Sum over years of factor 1-0.015n: 15 - 0.015*120 = 13.2.
	assert.InDelta(t, 660_000, proj.TotalRevenue, 1e-6)
	assert.InDelta(t, 5280, proj.TotalCycles, 1e-6)
	assert.InDelta(t, 77.5, proj.FinalCapacityPct, 1e-9)
}

func TestProjectDegradation_CapsAtMax(t *testing.T) {
	p := DefaultParams()

	// 4000 cycles per year hits the 8000-cycle lifetime limit in year 2.
	proj := ProjectDegradation(10_000, 4000, 1, p)
	assert.InDelta(t, 0.15, proj.Years[0].Degradation, 1e-9)
	assert.InDelta(t, 0.3, proj.Years[1].Degradation, 1e-9)
	assert.InDelta(t, 0.3, proj.Years[2].Degradation, 1e-9)
	assert.InDelta(t, 0.7, proj.Years[14].CapacityFactor, 1e-9)
}

func TestComputeNPV(t *testing.T) {
	storage := model.StorageParams{CapacityMWh: 1, ChargeRate: 1, Efficiency: 0.85}
	p := DefaultParams()
	p.SimulationYears = 2

	capex := ComputeCapex(storage, p) // 85k + 75k, +67% = 267200
	require.InDelta(t, 267_200, capex.TotalCapex, 1e-6)

	proj := ProjectDegradation(200_000, 300, storage.CapacityMWh, p)
	npv := ComputeNPV(capex, proj, storage.CapacityMWh, p)

	// Year 1: revenue 200000*0.98875, opex 2004+1336+2500 = 5840.
	// Year 2: revenue 200000*0.9775, opex 5840*1.02 = 5956.8.
	require.Len(t, npv.CashFlows, 3)
	assert.InDelta(t, -267_200, npv.CashFlows[0], 1e-6)
	assert.InDelta(t, 197_750-5840, npv.CashFlows[1], 1e-6)
	assert.InDelta(t, 195_500-5956.8, npv.CashFlows[2], 1e-6)

	want := -267_200 + 191_910/1.05 + 189_543.2/(1.05*1.05)
	assert.InDelta(t, want, npv.NPV, 1e-6)

	// Cumulative flow: -75290 after year 1, +114253.2 after year 2.
	require.NotNil(t, npv.PaybackYear)
	assert.Equal(t, 2, *npv.PaybackYear)
}

func TestComputeNPV_NeverPaysBack(t *testing.T) {
	storage := model.StorageParams{CapacityMWh: 1, ChargeRate: 1, Efficiency: 0.85}
	p := DefaultParams()

	capex := ComputeCapex(storage, p)
	proj := ProjectDegradation(1000, 300, storage.CapacityMWh, p)
	npv := ComputeNPV(capex, proj, storage.CapacityMWh, p)

	assert.Nil(t, npv.PaybackYear)
	assert.Less(t, npv.NPV, 0.0)
}

func TestAnalyze_FallsBackToDefaultCycles(t *testing.T) {
	storage := model.StorageParams{CapacityMWh: 1, ChargeRate: 1, Efficiency: 0.85}

	res := Analyze(storage, 50_000, 0, DefaultParams())

	assert.InDelta(t, 300, res.AnnualCycles, 1e-9)
	require.NotEmpty(t, res.Projection.Years)
	assert.InDelta(t, 300, res.Projection.Years[0].CumulativeCycles, 1e-9)
	assert.InDelta(t, 5840, res.FirstYearOpex.Total, 1e-6)
	assert.Len(t, res.NPV.CashFlows, 16)
}

func TestAnnualize(t *testing.T) {
	assert.InDelta(t, 500, Annualize(100, 73), 1e-9)
	assert.InDelta(t, 0, Annualize(50, 0), 1e-9)
	assert.InDelta(t, 0, Annualize(50, -3), 1e-9)
}
