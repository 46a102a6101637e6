package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/civcards/internal/config"
)

var (
	cfgFile string
	civFlag string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "civcards",
	Short: "Browse a civilization's units, buildings, technologies and gods",
	Long: `civcards loads a civilization dataset and lays it out as cards: a
carousel of major gods, the minor gods they unlock, a fixed table of
buildings and, for the selected building, a grid of the units it trains
and the technologies it researches. Serve it as a live web viewer, query
it from the terminal or expose it to AI agents over MCP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&civFlag, "civ", "", "civilization to load (overrides the config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
