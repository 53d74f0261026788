package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"storage-arbitrage/internal/economics"
	"storage-arbitrage/internal/model"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load storage parameters from a separate YAML preset
	// (e.g. presets/*.yaml). Explicit storage fields override the preset.
	StorageFile string         `yaml:"storage_file"`
	Storage     StorageConfig  `yaml:"storage"`
	Strategy    StrategyConfig `yaml:"strategy"`

	Economics economics.Params `yaml:"economics"`
	Data      DataConfig       `yaml:"data"`
	Output    OutputConfig     `yaml:"output"`
	API       APIConfig        `yaml:"api"`
}

type StorageConfig struct {
	Name        string  `yaml:"name"`
	CapacityMWh float64 `yaml:"capacity_mwh"`
	ChargeRate  float64 `yaml:"charge_rate"`
	Efficiency  float64 `yaml:"efficiency"`
	FeePerMWh   float64 `yaml:"fee_per_mwh"`
}

type StrategyConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

type DataConfig struct {
	PriceFile   string `yaml:"price_file"`
	DatasetsDir string `yaml:"datasets_dir"`
}

type OutputConfig struct {
	Dir             string `yaml:"dir"`
	ExportFrequency int    `yaml:"export_frequency"`
	ExportWorkers   int    `yaml:"export_workers"`
	MaxDays         int    `yaml:"max_days"`
}

type APIConfig struct {
	Addr        string `yaml:"addr"`
	PresetsDir  string `yaml:"presets_dir"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// Default returns the baseline configuration: a 1 MWh / 0.5C / 85% system
// trading with the threshold strategy. YAML files are loaded on top of it.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Name:        "baseline-1mwh",
			CapacityMWh: 1.0,
			ChargeRate:  0.5,
			Efficiency:  0.85,
			FeePerMWh:   0,
		},
		Strategy:  StrategyConfig{Name: "threshold_lookahead"},
		Economics: economics.DefaultParams(),
		Data: DataConfig{
			DatasetsDir: "data",
		},
		Output: OutputConfig{
			Dir:             "output",
			ExportFrequency: 1,
			ExportWorkers:   4,
		},
		API: APIConfig{
			Addr:       ":8080",
			PresetsDir: "presets",
		},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config over the defaults, but does not
// validate it. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// A bare unmarshal keeps track of what the file set explicitly, so a
	// storage preset is only overridden by fields the user actually wrote,
	// not by the baked-in defaults.
	var explicit Config
	if err := yaml.Unmarshal(raw, &explicit); err != nil {
		return nil, err
	}

	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, err
	}

	if c.StorageFile != "" {
		presetPath := c.StorageFile
		if !filepath.IsAbs(presetPath) {
			// Prefer interpreting relative paths as relative to the config
			// file directory, but fall back to the provided path if that
			// doesn't exist.
			cand := filepath.Join(filepath.Dir(path), presetPath)
			if _, err := os.Stat(cand); err == nil {
				presetPath = cand
			}
		}
		loaded, err := LoadStorageFile(presetPath)
		if err != nil {
			return nil, err
		}
		c.Storage = MergeStorage(loaded, explicit.Storage)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Strategy.Name == "" {
		return errors.New("strategy.name is required")
	}
	if err := c.Storage.ToParams().Validate(); err != nil {
		return fmt.Errorf("storage config invalid: %w", err)
	}
	if c.Economics.SimulationYears <= 0 {
		return errors.New("economics.simulation_years must be > 0")
	}
	return nil
}

func (s StorageConfig) ToParams() model.StorageParams {
	return model.StorageParams{
		CapacityMWh: s.CapacityMWh,
		ChargeRate:  s.ChargeRate,
		Efficiency:  s.Efficiency,
		FeePerMWh:   s.FeePerMWh,
	}
}

type storageFileWrapper struct {
	Storage StorageConfig `yaml:"storage"`
}

// LoadStorageFile reads a storage preset YAML. The file carries a single
// `storage:` section; a missing name defaults to the file name.
func LoadStorageFile(path string) (StorageConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return StorageConfig{}, err
	}
	var w storageFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return StorageConfig{}, err
	}
	if w.Storage.Name == "" {
		base := filepath.Base(path)
		w.Storage.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	return w.Storage, nil
}

// MergeStorage overlays non-zero fields from override onto base.
// This is used when loading a preset file and then applying overrides from
// the config or a request.
func MergeStorage(base, override StorageConfig) StorageConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.CapacityMWh != 0 {
		out.CapacityMWh = override.CapacityMWh
	}
	if override.ChargeRate != 0 {
		out.ChargeRate = override.ChargeRate
	}
	if override.Efficiency != 0 {
		out.Efficiency = override.Efficiency
	}
	if override.FeePerMWh != 0 {
		out.FeePerMWh = override.FeePerMWh
	}
	return out
}
