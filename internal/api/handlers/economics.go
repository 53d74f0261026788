package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storage-arbitrage/internal/api/models"
	"storage-arbitrage/internal/config"
	"storage-arbitrage/internal/economics"
)

// EconomicsHandler runs standalone investment calculations.
type EconomicsHandler struct {
	defaults config.StorageConfig
	params   economics.Params
}

// NewEconomicsHandler creates an economics handler with the server's
// default storage and economics parameters.
func NewEconomicsHandler(defaults config.StorageConfig, params economics.Params) *EconomicsHandler {
	return &EconomicsHandler{defaults: defaults, params: params}
}

// Analyze handles POST /api/v1/economics. Economics parameters absent from
// the body keep the server defaults.
func (h *EconomicsHandler) Analyze(c *gin.Context) {
	req := models.EconomicsRequest{Params: h.params}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	storage := config.MergeStorage(h.defaults, storageOverride(req.Storage))
	params := storage.ToParams()
	if err := params.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_STORAGE", err.Error())
		return
	}

	result := economics.Analyze(params, req.AnnualProfit, req.AnnualCycles, req.Params)
	c.JSON(http.StatusOK, result)
}
