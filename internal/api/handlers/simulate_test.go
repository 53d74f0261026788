package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage-arbitrage/internal/api/models"
	"storage-arbitrage/internal/config"
	"storage-arbitrage/internal/data"
	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/store"
	"storage-arbitrage/internal/store/memory"
)

func simulateConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.DatasetsDir = t.TempDir()
	cfg.API.PresetsDir = t.TempDir()
	return cfg
}

func newSimulateRouter(cfg *config.Config, runs store.RunStore) *gin.Engine {
	router := gin.New()
	h := NewSimulateHandler(cfg, data.NewCache(0), runs, testLogger())
	router.POST("/api/v1/simulate", h.Simulate)
	return router
}

func TestSimulateInlinePrices(t *testing.T) {
	router := newSimulateRouter(simulateConfig(t), memory.New())

	w := performRequest(t, router, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{
		Prices:   twoDayPrices(),
		Strategy: models.StrategyConfig{Name: "threshold_lookahead"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SimulateResponse
	decodeBody(t, w, &resp)

	assert.Empty(t, resp.ID)
	assert.Equal(t, "completed", resp.Status)
	assert.Nil(t, resp.Economics)

	sum := resp.Summary
	assert.Equal(t, "threshold_lookahead", sum.Strategy)
	assert.Equal(t, model.StorageParams{CapacityMWh: 1, ChargeRate: 0.5, Efficiency: 0.85}, sum.Storage)
	assert.Equal(t, 2, sum.TotalDays)
	assert.InDelta(t, 81.25, sum.TotalProfit, 1e-9)
	assert.InDelta(t, 0.5, sum.TotalCycles, 1e-9)
	assert.InDelta(t, 81.25*365/2, sum.AnnualProfit, 1e-9)
	assert.InDelta(t, 0.25, sum.FinalLevel, 1e-9)
	assert.InDelta(t, 0.75, sum.ChargedMWh, 1e-9)
	assert.InDelta(t, 0.425, sum.DischargedMWh, 1e-9)

	require.Len(t, resp.Days, 2)
	d1, d2 := resp.Days[0], resp.Days[1]
	assert.Equal(t, "2024-03-01", d1.Date)
	assert.Equal(t, 6, d1.ChargeCount)
	assert.InDelta(t, -3.75, d1.Profit, 1e-9)
	assert.Equal(t, "2024-03-02", d2.Date)
	assert.Equal(t, 4, d2.DischargeCount)
	assert.InDelta(t, 85, d2.Profit, 1e-9)

	// Detail arrays are opt-in.
	assert.Nil(t, d1.Transactions)
	assert.Nil(t, d1.History)
	assert.Nil(t, d1.Trades)
}

func TestSimulateIncludeDetails(t *testing.T) {
	router := newSimulateRouter(simulateConfig(t), memory.New())

	w := performRequest(t, router, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{
		Prices:   twoDayPrices(),
		Strategy: models.StrategyConfig{Name: "threshold_lookahead"},
		Options: models.SimulateOptions{
			IncludeTransactions: true,
			IncludeHistory:      true,
			IncludeTrades:       true,
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SimulateResponse
	decodeBody(t, w, &resp)
	require.Len(t, resp.Days, 2)
	d1, d2 := resp.Days[0], resp.Days[1]

	require.Len(t, d1.Transactions, 6)
	tx := d1.Transactions[0]
	assert.Equal(t, "charge", tx.Kind)
	assert.InDelta(t, 5, tx.Price, 1e-9)
	assert.InDelta(t, 0.125, tx.AmountMWh, 1e-9)
	assert.InDelta(t, 0.625, tx.Cost, 1e-9)

	require.Len(t, d2.Transactions, 4)
	sell := d2.Transactions[0]
	assert.Equal(t, "discharge", sell.Kind)
	assert.InDelta(t, 200, sell.Price, 1e-9)
	assert.InDelta(t, 0.10625, sell.UsableMWh, 1e-9)
	assert.InDelta(t, 21.25, sell.Revenue, 1e-9)

	assert.Len(t, d1.History, 10)
	assert.Len(t, d2.History, 7)

	require.Len(t, d1.Trades, 1)
	assert.Equal(t, model.TransactionCharge, d1.Trades[0].Type)
	require.Len(t, d2.Trades, 1)
	assert.Equal(t, model.TransactionDischarge, d2.Trades[0].Type)
}

func TestSimulateEconomicsOption(t *testing.T) {
	router := newSimulateRouter(simulateConfig(t), memory.New())

	w := performRequest(t, router, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{
		Prices:   twoDayPrices(),
		Strategy: models.StrategyConfig{Name: "threshold_lookahead"},
		Options:  models.SimulateOptions{Economics: true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SimulateResponse
	decodeBody(t, w, &resp)

	require.NotNil(t, resp.Economics)
	assert.InDelta(t, resp.Summary.AnnualProfit, resp.Economics.AnnualProfit, 1e-9)
	assert.Greater(t, resp.Economics.Capex.TotalCapex, 0.0)
	assert.NotEmpty(t, resp.Economics.NPV.CashFlows)
}

func TestSimulatePersist(t *testing.T) {
	runs := memory.New()
	router := newSimulateRouter(simulateConfig(t), runs)

	w := performRequest(t, router, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{
		Prices:   twoDayPrices(),
		Strategy: models.StrategyConfig{Name: "threshold_lookahead"},
		Options:  models.SimulateOptions{Persist: true, Economics: true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SimulateResponse
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.ID)

	run, err := runs.GetRun(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "threshold_lookahead", run.StrategyName)
	assert.Empty(t, run.Dataset) // inline prices carry no dataset name
	assert.Equal(t, 2, run.TotalDays)
	assert.InDelta(t, 81.25, run.TotalProfit, 1e-9)
	assert.Len(t, run.Days, 2)
	assert.Len(t, run.Trades, 2)
	require.NotNil(t, run.NPV)
	assert.InDelta(t, resp.Economics.NPV.NPV, *run.NPV, 1e-9)
}

func TestSimulateFromDataset(t *testing.T) {
	cfg := simulateConfig(t)
	name := writePriceJSON(t, cfg.Data.DatasetsDir, "prices.json")
	runs := memory.New()
	router := newSimulateRouter(cfg, runs)

	w := performRequest(t, router, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{
		Dataset:  name,
		Strategy: models.StrategyConfig{Name: "threshold_lookahead"},
		Options:  models.SimulateOptions{Persist: true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SimulateResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, 2, resp.Summary.TotalDays)
	assert.InDelta(t, 81.25, resp.Summary.TotalProfit, 1e-9)

	run, err := runs.GetRun(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "prices.json", run.Dataset)
}

func TestSimulateStoragePreset(t *testing.T) {
	cfg := simulateConfig(t)
	preset := "storage:\n  name: big-pack\n  capacity_mwh: 2\n  charge_rate: 0.5\n  efficiency: 0.9\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.API.PresetsDir, "big-pack.yaml"), []byte(preset), 0o644))
	router := newSimulateRouter(cfg, memory.New())

	w := performRequest(t, router, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{
		Prices:   twoDayPrices(),
		Storage:  models.StorageConfig{Preset: "big-pack", Efficiency: 0.85},
		Strategy: models.StrategyConfig{Name: "threshold_lookahead"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SimulateResponse
	decodeBody(t, w, &resp)
	// Preset values with the explicit request override on top.
	assert.InDelta(t, 2, resp.Summary.Storage.CapacityMWh, 1e-9)
	assert.InDelta(t, 0.85, resp.Summary.Storage.Efficiency, 1e-9)
}

func TestSimulateMaxDays(t *testing.T) {
	router := newSimulateRouter(simulateConfig(t), memory.New())

	w := performRequest(t, router, http.MethodPost, "/api/v1/simulate", models.SimulateRequest{
		Prices:   twoDayPrices(),
		Strategy: models.StrategyConfig{Name: "threshold_lookahead"},
		Options:  models.SimulateOptions{MaxDays: 1},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SimulateResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, 1, resp.Summary.TotalDays)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, "2024-03-01", resp.Days[0].Date)
}

func TestSimulateErrors(t *testing.T) {
	cfg := simulateConfig(t)
	router := newSimulateRouter(cfg, memory.New())

	prices := twoDayPrices()
	tests := []struct {
		name string
		body any
		code string
	}{
		{
			name: "missing strategy name",
			body: map[string]any{"strategy": map[string]any{}},
			code: "INVALID_REQUEST",
		},
		{
			name: "no prices and no dataset",
			body: models.SimulateRequest{Strategy: models.StrategyConfig{Name: "threshold_lookahead"}},
			code: "INVALID_DATA",
		},
		{
			name: "unknown dataset",
			body: models.SimulateRequest{
				Dataset:  "nope.json",
				Strategy: models.StrategyConfig{Name: "threshold_lookahead"},
			},
			code: "INVALID_DATA",
		},
		{
			name: "unknown strategy",
			body: models.SimulateRequest{
				Prices:   prices,
				Strategy: models.StrategyConfig{Name: "sorcery"},
			},
			code: "INVALID_STRATEGY",
		},
		{
			name: "invalid storage",
			body: models.SimulateRequest{
				Prices:   prices,
				Storage:  models.StorageConfig{Efficiency: 1.5},
				Strategy: models.StrategyConfig{Name: "threshold_lookahead"},
			},
			code: "INVALID_STORAGE",
		},
		{
			name: "unknown preset",
			body: models.SimulateRequest{
				Prices:   prices,
				Storage:  models.StorageConfig{Preset: "missing"},
				Strategy: models.StrategyConfig{Name: "threshold_lookahead"},
			},
			code: "INVALID_STORAGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, router, http.MethodPost, "/api/v1/simulate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}
