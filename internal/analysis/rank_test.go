package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage-arbitrage/internal/economics"
	"storage-arbitrage/internal/model"
)

func TestRankByNPV(t *testing.T) {
	small := model.StorageParams{CapacityMWh: 1, ChargeRate: 0.5, Efficiency: 0.85}
	big := model.StorageParams{CapacityMWh: 10, ChargeRate: 0.5, Efficiency: 0.85}

	// Same profit on a ten times larger (and more expensive) system: the
	// small preset must rank first.
	results := []PresetResult{
		{Name: "big", Storage: big, Profit: 40_000, Cycles: 80, Days: 365},
		{Name: "small", Storage: small, Profit: 40_000, Cycles: 80, Days: 365},
	}

	ranked := RankByNPV(results, economics.DefaultParams())
	require.Len(t, ranked, 2)
	assert.Equal(t, "small", ranked[0].Name)
	assert.Equal(t, "big", ranked[1].Name)
	assert.Greater(t, ranked[0].NPV, ranked[1].NPV)

	// A simulated half year annualizes to double.
	half := RankByNPV([]PresetResult{
		{Name: "half", Storage: small, Profit: 20_000, Cycles: 40, Days: 182},
	}, economics.DefaultParams())
	require.Len(t, half, 1)
	assert.InDelta(t, 20_000*365/182.0, half[0].AnnualProfit, 1e-6)
}

func TestRankByNPV_Empty(t *testing.T) {
	assert.Empty(t, RankByNPV(nil, economics.DefaultParams()))
}
