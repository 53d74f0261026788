package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"storage-arbitrage/internal/model"
)

// Dataset formats.
const (
	FormatSMARDCSV = "smard-csv"
	FormatJSON     = "json"
)

// Dataset describes one loadable price file.
type Dataset struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Format     string    `json:"format"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ScanDatasets lists the price files in dir, sorted by name. CSV files are
// assumed to be SMARD exports. Subdirectories are not descended into.
func ScanDatasets(dir string) ([]Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan datasets: %w", err)
	}

	var out []Dataset
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		var format string
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv":
			format = FormatSMARDCSV
		case ".json":
			format = FormatJSON
		default:
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		out = append(out, Dataset{
			Name:       strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Path:       filepath.Join(dir, e.Name()),
			Format:     format,
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Load reads a price file, picking the parser from the file extension.
func Load(path string) ([]model.PricePoint, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadSMARDCSV(path)
	case ".json":
		return LoadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", path)
	}
}
