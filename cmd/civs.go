package cmd

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var civsCmd = &cobra.Command{
	Use:   "civs",
	Short: "List the civilizations that can be loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		names, err := cfg.Loader().Available()
		if err != nil {
			return err
		}

		table := tablewriter.NewTable(os.Stdout, tablewriter.WithHeader([]string{"Civilization", "Configured"}))
		for _, n := range names {
			mark := ""
			if n == cfg.Civ {
				mark = "*"
			}
			_ = table.Append([]string{n, mark})
		}
		return table.Render()
	},
}

func init() {
	rootCmd.AddCommand(civsCmd)
}
