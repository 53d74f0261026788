package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storage-arbitrage/internal/api/models"
	"storage-arbitrage/internal/strategy"
)

// StrategyHandler serves the static strategy catalog.
type StrategyHandler struct{}

// NewStrategyHandler creates a strategy handler.
func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

// ListStrategies handles GET /api/v1/strategies.
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	strategies := []models.StrategyInfo{
		{
			Name:        "threshold_lookahead",
			Description: "Charges below the p20 and discharges above the p80 of a sliding price window.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "window_size",
					Type:        "int",
					Description: "Number of intervals in the sliding percentile window",
					Default:     strategy.DefaultWindowSize,
				},
			},
		},
		{
			Name:        "daily_schedule",
			Description: "Charges and discharges in fixed clock windows every day.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "charge_start",
					Type:        "string",
					Description: "Start of the charge window (HH:MM)",
					Default:     "01:00",
				},
				{
					Name:        "charge_end",
					Type:        "string",
					Description: "End of the charge window (HH:MM)",
					Default:     "05:00",
				},
				{
					Name:        "discharge_start",
					Type:        "string",
					Description: "Start of the discharge window (HH:MM)",
					Default:     "17:00",
				},
				{
					Name:        "discharge_end",
					Type:        "string",
					Description: "End of the discharge window (HH:MM)",
					Default:     "21:00",
				},
			},
		},
	}

	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}
