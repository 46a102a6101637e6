package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/civcards/internal/civ/source"
	mcpserver "github.com/ziadkadry99/civcards/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing entity lookup and layout tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		loader := cfg.Loader()
		src := source.New(loader, cfg.Civ)
		src.Start(context.Background())

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "civcards MCP server started on stdio (civ=%s)\n", cfg.Civ)

		srv := mcpserver.NewServer(src, loader, cfg.ViewOptions(), cfg.SelectionDefaults())
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
