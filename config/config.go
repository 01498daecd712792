// Package config loads the studio configuration from a YAML file and
// fills in defaults for anything unspecified.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"portstudio/core"
	"portstudio/grid"
	"portstudio/viewport"
)

// Config is the studio configuration.
type Config struct {
	// SymbolsRoot is the symbol library directory.
	SymbolsRoot string `yaml:"symbols_root"`

	// ReviewDB is the SQLite path for collaborative review state.
	ReviewDB string `yaml:"review_db"`

	// Listen is the HTTP listen address for the serve command.
	Listen string `yaml:"listen"`

	// Grid configures snapping. Snapping starts disabled; the editor
	// toggles it at runtime.
	Grid GridConfig `yaml:"grid"`

	// MaxZoomMultiple is how far past fit-to-view the editor may zoom.
	MaxZoomMultiple float64 `yaml:"max_zoom_multiple"`

	// MinZoneEdge is the smallest zone edge length, in document units.
	MinZoneEdge float64 `yaml:"min_zone_edge"`

	// Colors overrides the display color per port type name.
	Colors map[string]string `yaml:"colors,omitempty"`
}

// GridConfig is the snap-to-grid section.
type GridConfig struct {
	Snap bool    `yaml:"snap"`
	Size float64 `yaml:"size"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		SymbolsRoot:     "symbols",
		ReviewDB:        "review.db",
		Listen:          ":8877",
		Grid:            GridConfig{Snap: false, Size: grid.DefaultSize},
		MaxZoomMultiple: viewport.DefaultMaxZoomMultiple,
		MinZoneEdge:     1.0,
	}
}

// Load reads a YAML config file over the defaults. An empty path yields
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if cfg.Grid.Size <= 0 {
		cfg.Grid.Size = grid.DefaultSize
	}
	if cfg.MaxZoomMultiple < 1 {
		cfg.MaxZoomMultiple = viewport.DefaultMaxZoomMultiple
	}
	if cfg.MinZoneEdge <= 0 {
		cfg.MinZoneEdge = 1.0
	}
	return cfg, nil
}

// NewGrid builds the snap grid from the config.
func (c Config) NewGrid() grid.Grid {
	return grid.Grid{Enabled: c.Grid.Snap, Size: c.Grid.Size}
}

// Palette resolves the color overrides against the port type names.
// Unknown type names are ignored.
func (c Config) Palette() core.Palette {
	if len(c.Colors) == 0 {
		return nil
	}
	pal := make(core.Palette, len(c.Colors))
	for name, color := range c.Colors {
		if typ, ok := core.ParsePortType(name); ok {
			pal[typ] = color
		}
	}
	return pal
}
