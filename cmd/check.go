package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/civcards/internal/progress"
)

const checkConcurrency = 4

var checkAll bool

var checkCmd = &cobra.Command{
	Use:   "check [civ...]",
	Short: "Validate dataset references",
	Long: `Loads each named civilization (the configured one by default, every
available one with --all) and reports references that do not resolve:
units and technologies named by buildings, prerequisite gods, and the
minor gods and god powers listed by gods.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		loader := cfg.Loader()

		names := args
		switch {
		case checkAll:
			if names, err = loader.Available(); err != nil {
				return err
			}
		case len(names) == 0:
			names = []string{cfg.Civ}
		}

		results := make([]error, len(names))
		reporter := progress.NewReporter()
		reporter.Start(len(names))

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(checkConcurrency)
		for i, name := range names {
			g.Go(func() error {
				ds, err := loader.Load(ctx, name)
				if err == nil {
					err = ds.Validate()
				}
				results[i] = err
				reporter.Done(name, err)
				return nil
			})
		}
		_ = g.Wait()
		reporter.Finish()

		order := make([]int, len(names))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return names[order[a]] < names[order[b]] })

		failed := 0
		for _, i := range order {
			if results[i] == nil {
				color.Green("✓ %s", names[i])
				continue
			}
			failed++
			color.Red("✗ %s", names[i])
			for _, e := range unjoin(results[i]) {
				fmt.Printf("    %v\n", e)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d datasets have problems", failed, len(names))
		}
		return nil
	},
}

// unjoin splits an errors.Join result back into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func init() {
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "check every available civilization")
	rootCmd.AddCommand(checkCmd)
}
