package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it. civs are the civilizations offered for selection.
func RunWizard(path string, civs []string) (*Config, error) {
	fmt.Println("Welcome to civcards! Let's configure your viewer.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Civilization.
	if len(civs) > 0 {
		civPrompt := promptui.Select{
			Label: "Select civilization",
			Items: civs,
		}
		_, civ, err := civPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("civilization selection: %w", err)
		}
		cfg.Civ = civ
	} else {
		civPrompt := promptui.Prompt{Label: "Civilization", Default: cfg.Civ}
		civ, err := civPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("civilization: %w", err)
		}
		cfg.Civ = civ
	}

	// 2. Dataset directory.
	dataPrompt := promptui.Prompt{
		Label:   "Dataset directory (leave blank for the builtin data)",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// 3. Port.
	portPrompt := promptui.Prompt{
		Label:    "HTTP port",
		Default:  strconv.Itoa(cfg.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 4. Default major god.
	godPrompt := promptui.Prompt{
		Label:   "Major god selected for new sessions",
		Default: cfg.DefaultMajorGod,
	}
	god, err := godPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("default major god: %w", err)
	}
	cfg.DefaultMajorGod = god

	// 5. Metrics.
	metricsPrompt := promptui.Select{
		Label: "Expose Prometheus metrics at /metrics",
		Items: []string{"yes", "no"},
	}
	idx, _, err := metricsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("metrics selection: %w", err)
	}
	cfg.Metrics = idx == 0

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("port must be a number")
	}
	if n < 1 || n > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}
