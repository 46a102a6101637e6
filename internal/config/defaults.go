package config

import (
	"github.com/ziadkadry99/civcards/internal/layout"
	"github.com/ziadkadry99/civcards/internal/selection"
	"github.com/ziadkadry99/civcards/internal/view"
)

// DefaultFile is the configuration file looked up in the working
// directory.
const DefaultFile = ".civcards.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Civ:             "greek",
		StateDir:        ".civcards",
		Port:            8080,
		DefaultMajorGod: selection.DefaultMajorGod,
		DefaultBuilding: selection.DefaultBuilding,
		GridColumns:     layout.DefaultColumns,
		Breakpoint:      view.DefaultBreakpoint,
		Metrics:         true,
	}
}
