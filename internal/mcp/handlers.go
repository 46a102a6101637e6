package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/civcards/internal/civ"
	"github.com/ziadkadry99/civcards/internal/civ/source"
	"github.com/ziadkadry99/civcards/internal/layout"
	"github.com/ziadkadry99/civcards/internal/view"
)

const suggestionLimit = 5

var rowLabels = [...]string{"Units", "Unit technologies", "Generic technologies"}

// handleLookupEntity finds an entity by key or name and formats its card.
func (s *Server) handleLookupEntity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	ds, errResult := s.dataset()
	if errResult != nil {
		return errResult, nil
	}

	e, found := ds.FindEntityByName(name)
	if !found {
		return mcp.NewToolResultError(formatMiss(name, ds.Suggest(name, suggestionLimit))), nil
	}

	majorGod := request.GetString("major_god", s.defaults.MajorGod)
	return mcp.NewToolResultText(formatCard(view.Preview(ds, e, majorGod), e.Info().Description)), nil
}

// handleComputeGrid lays out the units and technologies of a building.
func (s *Server) handleComputeGrid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	building, err := request.RequireString("building")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: building"), nil
	}
	ds, errResult := s.dataset()
	if errResult != nil {
		return errResult, nil
	}

	b, ok := layout.FindBuilding(ds, building)
	if !ok {
		return mcp.NewToolResultError(formatMiss(building, ds.Suggest(building, suggestionLimit))), nil
	}
	majorGod := request.GetString("major_god", s.defaults.MajorGod)

	grid := layout.ComputeGrid(ds, b.Name, majorGod, s.opts.Grid)
	if grid.Empty() {
		return mcp.NewToolResultText(fmt.Sprintf("%s trains and researches nothing under %s.", b.Name, majorGod)), nil
	}
	return mcp.NewToolResultText(formatGrid(b.Name, majorGod, grid)), nil
}

// handleCarousel lists the major god ring around the active god.
func (s *Server) handleCarousel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, errResult := s.dataset()
	if errResult != nil {
		return errResult, nil
	}
	active := request.GetString("active", s.defaults.MajorGod)

	var b strings.Builder
	fmt.Fprintf(&b, "# Major gods (active: %s)\n\n", active)
	for _, slot := range layout.Carousel(ds.MajorGods.Keys(), active) {
		label := slot.Key
		if slot.AddNew {
			label = "(add god)"
		} else if g, ok := ds.MajorGods.Get(slot.Key); ok {
			label = fmt.Sprintf("%s (%s)", g.Name, slot.Key)
		}
		marker := ""
		if slot.Active {
			marker = " *"
		}
		fmt.Fprintf(&b, "- %+d %s%s\n", slot.Offset, label, marker)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleBuildingSlots prints the building table with resolved names.
func (s *Server) handleBuildingSlots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, errResult := s.dataset()
	if errResult != nil {
		return errResult, nil
	}
	active := request.GetString("active", s.defaults.Building)

	var b strings.Builder
	b.WriteString("# Buildings\n\n")
	for _, row := range layout.BuildingSlots(ds, s.opts.Slots, active) {
		cells := make([]string, len(row))
		for i, slot := range row {
			switch slot.Kind {
			case layout.SlotAdd:
				cells[i] = "+"
			case layout.SlotEmpty:
				cells[i] = "-"
			default:
				cells[i] = slot.Building.Name
				if slot.Active {
					cells[i] += " *"
				}
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleListCivs lists the loadable civilizations.
func (s *Server) handleListCivs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := []string{s.data.Civ()}
	if s.catalog != nil {
		available, err := s.catalog.Available()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing civilizations failed: %v", err)), nil
		}
		names = available
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Serving: %s\n\nAvailable:\n", s.data.Civ())
	for _, n := range names {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// dataset returns the active dataset, or a tool error result while it is
// unavailable.
func (s *Server) dataset() (*civ.Dataset, *mcp.CallToolResult) {
	ds, err := s.data.Dataset()
	if errors.Is(err, source.ErrNotLoaded) {
		return nil, mcp.NewToolResultError("The dataset is still loading. Try again shortly.")
	}
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("dataset unavailable: %v", err))
	}
	return ds, nil
}

func formatMiss(name string, suggestions []civ.Suggestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "No entity named %q.", name)
	if len(suggestions) > 0 {
		b.WriteString(" Did you mean:")
		for _, sg := range suggestions {
			fmt.Fprintf(&b, "\n- %s (%s)", sg.Name, sg.Kind)
		}
	}
	return b.String()
}

func formatCard(card view.PreviewCard, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", card.GodIcon, card.Name)
	fmt.Fprintf(&b, "**Kind:** %s\n", card.Kind)
	if card.Tagline != "" {
		fmt.Fprintf(&b, "**Tagline:** %s\n", card.Tagline)
	}
	if card.PrerequisiteGod != "" {
		fmt.Fprintf(&b, "**Requires:** %s\n", card.PrerequisiteGod)
	}
	if len(card.Stats) > 0 {
		b.WriteString("\n## Stats\n\n")
		writeStats(&b, card.Stats)
	}
	if card.Attack != nil {
		fmt.Fprintf(&b, "\n## %s\n\n", card.Attack.Title)
		writeStats(&b, card.Attack.Stats)
		for _, m := range card.Attack.Multipliers {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}
	writeList(&b, "Trained at", card.TrainedAt)
	writeList(&b, "Researched at", card.ResearchedAt)
	writeList(&b, "Trains", card.Trains)
	writeList(&b, "Researches", card.Researches)
	writeList(&b, "God powers", card.GodPowers)
	if description = strings.TrimSpace(description); description != "" {
		b.WriteString("\n" + description + "\n")
	}
	return b.String()
}

func writeStats(b *strings.Builder, stats []view.Stat) {
	for _, st := range stats {
		label := st.Label
		if label == "" {
			label = st.Key
		}
		fmt.Fprintf(b, "- %s %s: %s\n", st.Icon, label, st.Value)
	}
}

func writeList(b *strings.Builder, title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:** %s\n", title, strings.Join(names, ", "))
}

func formatGrid(building, majorGod string, grid layout.Grid) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s under %s\n", building, majorGod)
	for row, cells := range grid {
		fmt.Fprintf(&b, "\n## %s\n\n", rowLabels[row])
		for col, e := range cells {
			if e == nil {
				continue
			}
			fmt.Fprintf(&b, "- [%d] %s (%s)\n", col, e.Info().Name, e.Kind())
		}
	}
	return b.String()
}
