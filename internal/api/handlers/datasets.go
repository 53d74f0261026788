package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storage-arbitrage/internal/analysis"
	"storage-arbitrage/internal/api/models"
	"storage-arbitrage/internal/config"
	"storage-arbitrage/internal/data"
	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/observability"
)

// DatasetsHandler serves the datasets directory: listings with price
// statistics and the arbitrage potential of a single file.
type DatasetsHandler struct {
	dir      string
	defaults config.StorageConfig
	cache    *data.Cache
	logger   *logrus.Logger
}

// NewDatasetsHandler creates a datasets handler rooted at dir.
func NewDatasetsHandler(dir string, defaults config.StorageConfig, cache *data.Cache, logger *logrus.Logger) *DatasetsHandler {
	return &DatasetsHandler{dir: dir, defaults: defaults, cache: cache, logger: logger}
}

// ListDatasets handles GET /api/v1/datasets. A missing directory yields an
// empty listing, not an error. Files that fail to parse are skipped.
func (h *DatasetsHandler) ListDatasets(c *gin.Context) {
	infos := []models.DatasetInfo{}

	datasets, err := data.ScanDatasets(h.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.logger.WithError(err).WithField("dir", h.dir).Warn("scan datasets failed")
		}
		c.JSON(http.StatusOK, gin.H{"datasets": infos, "count": 0})
		return
	}

	for _, ds := range datasets {
		series, hit, err := h.cache.Load(ds.Path)
		if err != nil {
			h.logger.WithError(err).WithField("path", ds.Path).Warn("skipping unreadable dataset")
			continue
		}
		observability.RecordDatasetCache(hit)

		infos = append(infos, models.DatasetInfo{
			Dataset:    ds,
			Days:       len(model.SplitByDay(series)),
			PriceStats: analysis.SeriesStats(series),
		})
	}

	c.JSON(http.StatusOK, gin.H{"datasets": infos, "count": len(infos)})
}

// Potential handles GET /api/v1/datasets/potential. It reports per-day price
// spreads and the oracle profit bound for a storage configuration.
func (h *DatasetsHandler) Potential(c *gin.Context) {
	var req models.PotentialRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	path := req.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.dir, path)
	}
	series, hit, err := h.cache.Load(path)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_DATA", err.Error())
		return
	}
	observability.RecordDatasetCache(hit)

	storage := config.MergeStorage(h.defaults, config.StorageConfig{
		CapacityMWh: req.CapacityMWh,
		ChargeRate:  req.ChargeRate,
		Efficiency:  req.Efficiency,
		FeePerMWh:   req.FeePerMWh,
	})
	params := storage.ToParams()
	if err := params.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_STORAGE", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.PotentialResponse{
		Dataset:   req.Path,
		Storage:   params,
		Potential: analysis.ComputePotential(series, params),
	})
}
