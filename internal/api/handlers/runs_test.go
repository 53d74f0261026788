package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage-arbitrage/internal/api/models"
	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/store"
	"storage-arbitrage/internal/store/memory"
)

func newRunsRouter(runs store.RunStore) *gin.Engine {
	router := gin.New()
	h := NewRunsHandler(runs, testLogger())
	router.GET("/api/v1/runs", h.ListRuns)
	router.GET("/api/v1/runs/:id", h.GetRun)
	router.DELETE("/api/v1/runs/:id", h.DeleteRun)
	return router
}

func seedRun(t *testing.T, runs store.RunStore, id string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, runs.SaveRun(context.Background(), &store.Run{
		RunRecord: store.RunRecord{
			ID:           id,
			CreatedAt:    createdAt,
			Dataset:      "prices.json",
			StrategyName: "threshold_lookahead",
			Storage:      model.StorageParams{CapacityMWh: 1, ChargeRate: 0.5, Efficiency: 0.85},
			TotalDays:    2,
			TotalProfit:  81.25,
		},
	}))
}

func TestListRuns(t *testing.T) {
	runs := memory.New()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedRun(t, runs, "run-a", base)
	seedRun(t, runs, "run-b", base.Add(time.Hour))
	seedRun(t, runs, "run-c", base.Add(2*time.Hour))
	router := newRunsRouter(runs)

	w := performRequest(t, router, http.MethodGet, "/api/v1/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.RunsResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Runs, 3)
	assert.Equal(t, "run-c", resp.Runs[0].ID) // newest first
	assert.Equal(t, "run-a", resp.Runs[2].ID)

	w = performRequest(t, router, http.MethodGet, "/api/v1/runs?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &resp)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, "run-c", resp.Runs[0].ID)

	w = performRequest(t, router, http.MethodGet, "/api/v1/runs?limit=two", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PARAM", errorCode(t, w))
}

func TestGetRun(t *testing.T) {
	runs := memory.New()
	seedRun(t, runs, "run-a", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	router := newRunsRouter(runs)

	w := performRequest(t, router, http.MethodGet, "/api/v1/runs/run-a", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var run store.Run
	decodeBody(t, w, &run)
	assert.Equal(t, "run-a", run.ID)
	assert.Equal(t, "prices.json", run.Dataset)
	assert.InDelta(t, 81.25, run.TotalProfit, 1e-9)

	w = performRequest(t, router, http.MethodGet, "/api/v1/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RUN_NOT_FOUND", errorCode(t, w))
}

func TestDeleteRun(t *testing.T) {
	runs := memory.New()
	seedRun(t, runs, "run-a", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	router := newRunsRouter(runs)

	w := performRequest(t, router, http.MethodDelete, "/api/v1/runs/run-a", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(t, router, http.MethodGet, "/api/v1/runs/run-a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(t, router, http.MethodDelete, "/api/v1/runs/run-a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RUN_NOT_FOUND", errorCode(t, w))
}
