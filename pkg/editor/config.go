package editor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/route"
)

// Config controls the editor and the maintenance cascade.
type Config struct {
	GridSize     float64      `yaml:"grid_size"`     // World units per grid cell (default: 1.27)
	Route        route.Config `yaml:"route"`         // Router cost model and limits
	HistoryDepth int          `yaml:"history_depth"` // Undo snapshots kept (default: 50)
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		GridSize:     grid.DefaultSpacing,
		Route:        route.DefaultConfig(),
		HistoryDepth: 50,
	}
}

// Validate clamps out-of-range values back to their defaults.
func (c *Config) Validate() error {
	if c.GridSize <= 0 {
		c.GridSize = grid.DefaultSpacing
	}
	if c.HistoryDepth < 1 {
		c.HistoryDepth = 50
	}
	return c.Route.Validate()
}

// LoadConfig reads a YAML config file over the defaults. Keys missing from
// the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("editor: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("editor: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
