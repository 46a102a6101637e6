package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/civcards/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize civcards configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure civcards and writes a .civcards.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		civs, err := config.DefaultConfig().Loader().Available()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not list civilizations: %v\n", err)
		}
		_, err = config.RunWizard(cfgFile, civs)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
