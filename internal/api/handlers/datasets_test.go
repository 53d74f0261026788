package handlers

import (
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
)

func newDatasetsRouter(dir string) *gin.Engine {
	router := gin.New()
	h := NewDatasetsHandler(dir, config.Default().Storage, data.NewCache(0), testLogger())
	router.GET("/api/v1/datasets", h.ListDatasets)
	router.GET("/api/v1/datasets/potential", h.Potential)
	return router
}

type datasetsListing struct {
	Datasets []models.DatasetInfo `json:"datasets"`
	Count    int                  `json:"count"`
}

func TestListDatasets(t *testing.T) {
	dir := t.TempDir()
	writePriceJSON(t, dir, "prices.json")
	// Scanned but unparseable files are skipped, non-dataset files and
	// subdirectories are not scanned at all.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("no;smard;header\n1;2;3\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))
	router := newDatasetsRouter(dir)

	w := performRequest(t, router, http.MethodGet, "/api/v1/datasets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp datasetsListing
	decodeBody(t, w, &resp)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Datasets, 1)

	ds := resp.Datasets[0]
	assert.Equal(t, "prices", ds.Name)
	assert.Equal(t, data.FormatJSON, ds.Format)
	assert.Equal(t, 2, ds.Days)
	assert.Equal(t, 17, ds.Count)
	assert.InDelta(t, 5, ds.MinPrice, 1e-9)
	assert.InDelta(t, 200, ds.MaxPrice, 1e-9)
}

func TestListDatasetsMissingDir(t *testing.T) {
	router := newDatasetsRouter(filepath.Join(t.TempDir(), "missing"))

	w := performRequest(t, router, http.MethodGet, "/api/v1/datasets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp datasetsListing
	decodeBody(t, w, &resp)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Datasets)
}

func TestPotential(t *testing.T) {
	dir := t.TempDir()
	writePriceJSON(t, dir, "prices.json")
	router := newDatasetsRouter(dir)

	w := performRequest(t, router, http.MethodGet, "/api/v1/datasets/potential?path=prices.json", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.PotentialResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "prices.json", resp.Dataset)
	assert.InDelta(t, 1, resp.Storage.CapacityMWh, 1e-9)
	assert.Equal(t, 17, resp.Potential.Count)
	assert.InDelta(t, 5, resp.Potential.MinPrice, 1e-9)
	assert.InDelta(t, 200, resp.Potential.MaxPrice, 1e-9)
	assert.Greater(t, resp.Potential.OracleProfit, 0.0)
	assert.Len(t, resp.Potential.Days, 2)
}

func TestPotentialStorageOverride(t *testing.T) {
	dir := t.TempDir()
	writePriceJSON(t, dir, "prices.json")
	router := newDatasetsRouter(dir)

	w := performRequest(t, router, http.MethodGet,
		"/api/v1/datasets/potential?path=prices.json&capacity_mwh=2&efficiency=0.9", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.PotentialResponse
	decodeBody(t, w, &resp)
	assert.InDelta(t, 2, resp.Storage.CapacityMWh, 1e-9)
	assert.InDelta(t, 0.9, resp.Storage.Efficiency, 1e-9)
	assert.InDelta(t, 0.5, resp.Storage.ChargeRate, 1e-9) // default kept
}

func TestPotentialErrors(t *testing.T) {
	dir := t.TempDir()
	writePriceJSON(t, dir, "prices.json")
	router := newDatasetsRouter(dir)

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{name: "missing path", query: "", code: "INVALID_REQUEST"},
		{name: "unknown file", query: "?path=nope.json", code: "INVALID_DATA"},
		{name: "invalid storage", query: "?path=prices.json&efficiency=1.5", code: "INVALID_STORAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, router, http.MethodGet, "/api/v1/datasets/potential"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}
