package mcp

import "github.com/mark3labs/mcp-go/mcp"

var lookupEntityTool = mcp.NewTool("lookup_entity",
	mcp.WithDescription("Look up a unit, building, technology, god, ability or god power by key or name and return its card."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Entity key or display name, case-insensitive"),
	),
	mcp.WithString("major_god",
		mcp.Description("Major god used for the card's god mark (default: the configured default)"),
	),
)

var computeGridTool = mcp.NewTool("compute_grid",
	mcp.WithDescription("Compute the units and technologies grid of a building: trained units, the technology matched to each unit, and the generic technologies available under a major god."),
	mcp.WithString("building",
		mcp.Required(),
		mcp.Description("Building name or key, e.g. Barracks or town_center"),
	),
	mcp.WithString("major_god",
		mcp.Description("Major god key (default: the configured default)"),
	),
)

var carouselTool = mcp.NewTool("carousel",
	mcp.WithDescription("List the major god carousel with each card's offset from the active god."),
	mcp.WithString("active",
		mcp.Description("Active major god key (default: the configured default)"),
	),
)

var buildingSlotsTool = mcp.NewTool("building_slots",
	mcp.WithDescription("Show the building slot table and which slots the dataset fills."),
	mcp.WithString("active",
		mcp.Description("Active building name or key"),
	),
)

var listCivsTool = mcp.NewTool("list_civs",
	mcp.WithDescription("List the civilizations available to load and the one being served."),
)
