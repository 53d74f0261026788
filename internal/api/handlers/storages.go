package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storage-arbitrage/internal/api/models"
	"storage-arbitrage/internal/config"
)

// StoragesHandler serves the storage preset directory.
type StoragesHandler struct {
	presetsDir string
	logger     *logrus.Logger
}

// NewStoragesHandler creates a storages handler rooted at presetsDir.
func NewStoragesHandler(presetsDir string, logger *logrus.Logger) *StoragesHandler {
	return &StoragesHandler{presetsDir: presetsDir, logger: logger}
}

// ListStorages handles GET /api/v1/storages. A missing directory yields an
// empty listing; unparseable preset files are skipped.
func (h *StoragesHandler) ListStorages(c *gin.Context) {
	storages := []models.StorageInfo{}

	entries, err := os.ReadDir(h.presetsDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.logger.WithError(err).WithField("dir", h.presetsDir).Warn("read presets dir failed")
		}
		c.JSON(http.StatusOK, gin.H{"storages": storages})
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}

		path := filepath.Join(h.presetsDir, name)
		preset, err := config.LoadStorageFile(path)
		if err != nil {
			h.logger.WithError(err).WithField("path", path).Warn("skipping invalid storage preset")
			continue
		}

		storages = append(storages, models.StorageInfo{
			ID:    strings.TrimSuffix(name, ".yaml"),
			Name:  preset.Name,
			File:  path,
			Specs: preset.ToParams(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"storages": storages})
}
