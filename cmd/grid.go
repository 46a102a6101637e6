package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/civcards/internal/civ"
	"github.com/ziadkadry99/civcards/internal/layout"
)

var gridMajorGod string

var gridCmd = &cobra.Command{
	Use:   "grid <building>",
	Short: "Print the units and technologies grid of a building",
	Long: `Prints the three-row grid shown for a building: the units it trains,
the technology matched to each unit, and the generic technologies
available under the chosen major god.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		b, ok := layout.FindBuilding(ds, args[0])
		if !ok {
			return missError(ds, args[0])
		}
		majorGod := gridMajorGod
		if majorGod == "" {
			majorGod = cfg.SelectionDefaults().MajorGod
		}

		grid := layout.ComputeGrid(ds, b.Name, majorGod, cfg.ViewOptions().Grid)

		color.New(color.FgCyan, color.Bold).Printf("%s under %s\n", b.Name, majorGod)
		if grid.Empty() {
			fmt.Println("Nothing to train or research.")
			return nil
		}

		header := []string{"Row"}
		for i := 0; i < grid.Columns(); i++ {
			header = append(header, fmt.Sprintf("%d", i+1))
		}
		table := tablewriter.NewTable(os.Stdout, tablewriter.WithHeader(header))
		labels := []string{"Units", "Unit techs", "Generic techs"}
		for r, cells := range grid {
			row := []string{labels[r]}
			for _, e := range cells {
				row = append(row, cellName(e))
			}
			_ = table.Append(row)
		}
		return table.Render()
	},
}

func cellName(e civ.Entity) string {
	if e == nil {
		return ""
	}
	return e.Info().Name
}

// missError reports a failed lookup with the closest names.
func missError(ds *civ.Dataset, name string) error {
	suggestions := ds.Suggest(name, 5)
	if len(suggestions) == 0 {
		return fmt.Errorf("%w: %q", civ.ErrNotFound, name)
	}
	names := make([]string, len(suggestions))
	for i, s := range suggestions {
		names[i] = s.Name
	}
	return fmt.Errorf("%w: %q (did you mean %v?)", civ.ErrNotFound, name, names)
}

func init() {
	gridCmd.Flags().StringVarP(&gridMajorGod, "god", "g", "", "major god key (default from config)")
	rootCmd.AddCommand(gridCmd)
}
