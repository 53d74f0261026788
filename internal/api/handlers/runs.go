package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storage-arbitrage/internal/api/models"
	"storage-arbitrage/internal/store"
)

// DefaultRunListLimit caps run listings when no limit is given.
const DefaultRunListLimit = 50

// RunsHandler serves persisted simulation runs.
type RunsHandler struct {
	runs   store.RunStore
	logger *logrus.Logger
}

// NewRunsHandler creates a runs handler.
func NewRunsHandler(runs store.RunStore, logger *logrus.Logger) *RunsHandler {
	return &RunsHandler{runs: runs, logger: logger}
}

// ListRuns handles GET /api/v1/runs.
func (h *RunsHandler) ListRuns(c *gin.Context) {
	limit := DefaultRunListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_PARAM", "limit must be an integer")
			return
		}
		limit = parsed
	}

	records, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("list runs failed")
		abortWithError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.RunsResponse{Runs: records, Count: len(records)})
}

// GetRun handles GET /api/v1/runs/:id.
func (h *RunsHandler) GetRun(c *gin.Context) {
	run, err := h.runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "RUN_NOT_FOUND", err.Error())
			return
		}
		h.logger.WithError(err).Error("get run failed")
		abortWithError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, run)
}

// DeleteRun handles DELETE /api/v1/runs/:id.
func (h *RunsHandler) DeleteRun(c *gin.Context) {
	err := h.runs.DeleteRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "RUN_NOT_FOUND", err.Error())
			return
		}
		h.logger.WithError(err).Error("delete run failed")
		abortWithError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}
