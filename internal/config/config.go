package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/civcards/internal/civ/source"
	"github.com/ziadkadry99/civcards/internal/db"
	"github.com/ziadkadry99/civcards/internal/layout"
	"github.com/ziadkadry99/civcards/internal/selection"
	"github.com/ziadkadry99/civcards/internal/view"
)

// EnvPrefix marks environment overrides: CIVCARDS_PORT -> port.
const EnvPrefix = "CIVCARDS_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CIVCARDS_*). A missing file is not an
// error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values. Every
// problem is reported.
func (c *Config) Validate() error {
	var errs []error

	if c.Civ == "" {
		errs = append(errs, errors.New("civ is required"))
	} else if strings.ContainsAny(c.Civ, `/\`) {
		errs = append(errs, fmt.Errorf("invalid civ %q: must be a bare name", c.Civ))
	}

	if c.DatasetURL != "" {
		if !strings.HasPrefix(c.DatasetURL, "http://") && !strings.HasPrefix(c.DatasetURL, "https://") {
			errs = append(errs, fmt.Errorf("invalid dataset_url %q: must be http or https", c.DatasetURL))
		}
		if !strings.Contains(c.DatasetURL, source.CivPlaceholder) {
			errs = append(errs, fmt.Errorf("invalid dataset_url %q: must contain %s", c.DatasetURL, source.CivPlaceholder))
		}
	}

	if c.StateDir == "" {
		errs = append(errs, errors.New("state_dir is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.GridColumns < 1 {
		errs = append(errs, errors.New("grid_columns must be positive"))
	}
	if c.Breakpoint < 0 {
		errs = append(errs, errors.New("breakpoint must be non-negative"))
	}
	for i, row := range c.BuildingSlots {
		if len(row) == 0 {
			errs = append(errs, fmt.Errorf("building_slots row %d is empty", i))
		}
	}

	return errors.Join(errs...)
}

// Loader returns the dataset loader described by the configuration.
func (c *Config) Loader() *source.Loader {
	return source.NewLoader(c.DataDir, c.DatasetURL)
}

// DBPath is the selection database inside the state directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.StateDir, db.DefaultFile)
}

// SelectionDefaults are the values of a session with nothing stored.
func (c *Config) SelectionDefaults() selection.Defaults {
	return selection.Defaults{MajorGod: c.DefaultMajorGod, Building: c.DefaultBuilding}
}

// ViewOptions are the display settings handed to the projections.
func (c *Config) ViewOptions() view.Options {
	return view.Options{
		Grid:       layout.GridOptions{Columns: c.GridColumns},
		Slots:      c.BuildingSlots,
		Breakpoint: c.Breakpoint,
	}
}
