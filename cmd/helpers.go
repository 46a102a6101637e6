package cmd

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/civcards/internal/civ"
	"github.com/ziadkadry99/civcards/internal/config"
)

// loadConfig loads and validates the config, applying the --civ override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `civcards init` to create a config file", err)
	}
	if civFlag != "" {
		cfg.Civ = civFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s:\n%w", cfgFile, err)
	}
	return cfg, nil
}

// loadDataset loads the configured civilization, blocking until done.
func loadDataset(ctx context.Context) (*config.Config, *civ.Dataset, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	ds, err := cfg.Loader().Load(ctx, cfg.Civ)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", cfg.Civ, err)
	}
	return cfg, ds, nil
}
