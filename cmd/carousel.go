package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/civcards/internal/layout"
)

var carouselCmd = &cobra.Command{
	Use:   "carousel [major-god]",
	Short: "Print the major god carousel around the active god",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		active := cfg.SelectionDefaults().MajorGod
		if len(args) == 1 {
			active = args[0]
		}

		activeColor := color.New(color.FgGreen, color.Bold)
		for _, slot := range layout.Carousel(ds.MajorGods.Keys(), active) {
			label := "+ add god"
			if !slot.AddNew {
				label = slot.Key
				if g, ok := ds.MajorGods.Get(slot.Key); ok {
					label = g.Name
				}
			}
			if slot.Active {
				activeColor.Printf("%+3d  %s\n", slot.Offset, label)
				continue
			}
			fmt.Printf("%+3d  %s\n", slot.Offset, label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(carouselCmd)
}
