// Package mcp exposes the card lookups and layouts as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/civcards/internal/civ"
	"github.com/ziadkadry99/civcards/internal/selection"
	"github.com/ziadkadry99/civcards/internal/view"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Datasets hands out the active dataset. *source.Source implements it.
type Datasets interface {
	Civ() string
	Dataset() (*civ.Dataset, error)
}

// Catalog lists the civilizations that could be loaded.
type Catalog interface {
	Available() ([]string, error)
}

// Server wraps an MCP server over one dataset.
type Server struct {
	data     Datasets
	catalog  Catalog
	opts     view.Options
	defaults selection.Defaults
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server. catalog may be nil.
func NewServer(data Datasets, catalog Catalog, opts view.Options, defaults selection.Defaults) *Server {
	s := &Server{
		data:     data,
		catalog:  catalog,
		opts:     opts,
		defaults: defaults,
	}

	s.mcp = server.NewMCPServer(
		"civcards",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(lookupEntityTool, s.handleLookupEntity)
	s.mcp.AddTool(computeGridTool, s.handleComputeGrid)
	s.mcp.AddTool(carouselTool, s.handleCarousel)
	s.mcp.AddTool(buildingSlotsTool, s.handleBuildingSlots)
	s.mcp.AddTool(listCivsTool, s.handleListCivs)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
