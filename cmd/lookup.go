package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/civcards/internal/view"
)

var lookupMajorGod string

var lookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Show the card of a unit, building, technology or god",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		name := strings.Join(args, " ")
		e, ok := ds.FindEntityByName(name)
		if !ok {
			return missError(ds, name)
		}
		majorGod := lookupMajorGod
		if majorGod == "" {
			majorGod = cfg.SelectionDefaults().MajorGod
		}
		card := view.Preview(ds, e, majorGod)

		color.New(color.FgCyan, color.Bold).Printf("%s %s", card.GodIcon, card.Name)
		color.New(color.FgYellow).Printf("  (%s)\n", card.Kind)
		if card.Tagline != "" {
			fmt.Println(card.Tagline)
		}
		if card.PrerequisiteGod != "" {
			fmt.Printf("Requires %s\n", card.PrerequisiteGod)
		}

		if len(card.Stats) > 0 {
			fmt.Println()
			if err := printStats(card.Stats); err != nil {
				return err
			}
		}
		if card.Attack != nil {
			color.New(color.FgRed, color.Bold).Printf("\n%s\n", card.Attack.Title)
			if err := printStats(card.Attack.Stats); err != nil {
				return err
			}
			for _, m := range card.Attack.Multipliers {
				fmt.Printf("  %s\n", m)
			}
		}

		printList("Trained at", card.TrainedAt)
		printList("Researched at", card.ResearchedAt)
		printList("Trains", card.Trains)
		printList("Researches", card.Researches)
		printList("God powers", card.GodPowers)

		if d := strings.TrimSpace(e.Info().Description); d != "" {
			fmt.Printf("\n%s\n", d)
		}
		return nil
	},
}

func printStats(stats []view.Stat) error {
	table := tablewriter.NewTable(os.Stdout, tablewriter.WithHeader([]string{"", "Stat", "Value"}))
	for _, s := range stats {
		label := s.Label
		if label == "" {
			label = s.Key
		}
		_ = table.Append([]string{s.Icon, label, s.Value})
	}
	return table.Render()
}

func printList(title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Printf("%s: %s\n", color.New(color.Bold).Sprint(title), strings.Join(names, ", "))
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupMajorGod, "god", "g", "", "major god for the card's god mark (default from config)")
	rootCmd.AddCommand(lookupCmd)
}
