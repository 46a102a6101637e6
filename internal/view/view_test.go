package view

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ziadkadry99/civcards/internal/civ"
	"github.com/ziadkadry99/civcards/internal/civ/source"
	"github.com/ziadkadry99/civcards/internal/selection"
)

func greek(t *testing.T) *civ.Dataset {
	t.Helper()
	ds, err := (&source.Loader{}).Load(context.Background(), "greek")
	if err != nil {
		t.Fatalf("loading greek: %v", err)
	}
	return ds
}

func TestMajorGodsCarousel(t *testing.T) {
	ds := greek(t)
	cards := MajorGods(ds, selection.State{MajorGod: "poseidon"})

	if len(cards) != ds.MajorGods.Len()+1 {
		t.Fatalf("cards = %d, want gods + add card", len(cards))
	}
	var active []string
	for _, c := range cards {
		if c.Active {
			active = append(active, c.Key)
		}
	}
	if len(active) != 1 || active[0] != "poseidon" {
		t.Errorf("active cards = %v, want [poseidon]", active)
	}
	if last := cards[len(cards)-1]; !last.AddNew || last.Name != "" {
		t.Errorf("last card = %+v, want the add card", last)
	}
	if cards[0].Name != "Zeus" || cards[0].Image == "" {
		t.Errorf("first card = %+v", cards[0])
	}
}

func TestMinorGodsFollowMajorGod(t *testing.T) {
	ds := greek(t)

	names := func(tiles []Tile) string {
		var out []string
		for _, tile := range tiles {
			out = append(out, tile.Name)
		}
		return strings.Join(out, ",")
	}

	zeus := names(MinorGods(ds, selection.State{MajorGod: "zeus"}))
	poseidon := names(MinorGods(ds, selection.State{MajorGod: "poseidon"}))
	if zeus == poseidon {
		t.Errorf("zeus and poseidon offer the same minor gods: %s", zeus)
	}
	if !strings.Contains(zeus, "Athena") || strings.Contains(zeus, "Ares") {
		t.Errorf("zeus minor gods = %s", zeus)
	}
}

func TestBuildingsProjection(t *testing.T) {
	ds := greek(t)
	rows := Buildings(ds, selection.State{Building: "town_center"}, Options{})

	if len(rows) != 3 || len(rows[0]) != 6 {
		t.Fatalf("rows = %dx%d, want 3x6", len(rows), len(rows[0]))
	}
	if !rows[0][1].Placeholder {
		t.Errorf("open cell = %+v, want placeholder", rows[0][1])
	}
	if !rows[2][5].Empty {
		t.Errorf("wonder cell = %+v, want empty (no wonder in dataset)", rows[2][5])
	}
	if tc := rows[2][0]; tc.Name != "Town Center" || !tc.Active || tc.Kind != civ.KindBuilding {
		t.Errorf("town center cell = %+v", tc)
	}
}

func TestUnitsTechsProjection(t *testing.T) {
	ds := greek(t)
	st := selection.State{MajorGod: "zeus", Building: "barracks", Entity: "Hoplite"}
	rows := UnitsTechs(ds, st, Options{})

	if rows[0][0].Name != "Hoplite" || !rows[0][0].Active {
		t.Errorf("row 0 col 0 = %+v, want active Hoplite", rows[0][0])
	}
	if !rows[0][5].Placeholder {
		t.Errorf("row 0 col 5 = %+v, want placeholder", rows[0][5])
	}
	// Phalanx precedes Bronze Armor in research order and matches
	// Hoplite by tag.
	if rows[1][0].Name != "Phalanx" {
		t.Errorf("row 1 col 0 = %q, want Phalanx", rows[1][0].Name)
	}
	if rows[2][0].Name != "Sarissa" || rows[2][1].Name != "Levy Infantry" {
		t.Errorf("row 2 = %q, %q; want Sarissa, Levy Infantry", rows[2][0].Name, rows[2][1].Name)
	}
}

func TestPreviewMount(t *testing.T) {
	building := &civ.Building{}
	unit := &civ.Unit{}

	tests := []struct {
		name  string
		e     civ.Entity
		width int
		want  string
	}{
		{"narrow building", building, 500, MountModal},
		{"at breakpoint", unit, 768, MountModal},
		{"wide building", building, 1200, MountBuildingsPane},
		{"wide unit", unit, 769, MountUnitsTechsPane},
		{"unknown width", building, 0, MountBuildingsPane},
		{"nothing selected", nil, 1200, MountUnitsTechsPane},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PreviewMount(tt.e, tt.width, DefaultBreakpoint); got != tt.want {
				t.Errorf("PreviewMount = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreviewUnit(t *testing.T) {
	ds := greek(t)
	hoplite, _ := ds.Units.Get("hoplite")

	card := Preview(ds, hoplite, "hades")

	if card.Name != "Hoplite" || card.Kind != civ.KindUnit {
		t.Fatalf("card = %+v", card)
	}
	if card.GodIcon != GodIcons["hades"] {
		t.Errorf("GodIcon = %q, want the active god's icon", card.GodIcon)
	}
	if card.Attack == nil || card.Attack.Title != "MELEE ATTACK" {
		t.Fatalf("Attack = %+v", card.Attack)
	}
	for _, s := range card.Attack.Stats {
		if s.Key == "range" {
			t.Error("melee attack should not show range")
		}
	}
	if len(card.TrainedAt) == 0 || card.TrainedAt[0] != "Barracks" {
		t.Errorf("TrainedAt = %v", card.TrainedAt)
	}
}

func TestPreviewAttackMultipliers(t *testing.T) {
	a := &civ.Attack{
		Type:        civ.AttackRanged,
		PierceDamage: 7,
		Range:       18,
		Multipliers: map[string]float64{"infantry": 1.5, "building": 0.5, "cavalry": 1, "archer": 2},
	}
	block := attackBlock(a)

	if got := strings.Join(block.Multipliers, "|"); got != "2x vs archer|1.5x vs infantry" {
		t.Errorf("Multipliers = %q", got)
	}
	var hasRange bool
	for _, s := range block.Stats {
		if s.Key == "range" && s.Value == "18" {
			hasRange = true
		}
	}
	if !hasRange {
		t.Errorf("ranged attack stats %+v lack range", block.Stats)
	}
}

func TestPreviewGods(t *testing.T) {
	ds := greek(t)

	zeus, _ := ds.MajorGods.Get("zeus")
	card := Preview(ds, zeus, "hades")
	if card.GodIcon != GodIcons["zeus"] {
		t.Errorf("major god icon = %q, want zeus icon", card.GodIcon)
	}
	if len(card.GodPowers) == 0 {
		t.Error("zeus card lists no god powers")
	}

	sarissa, _ := ds.Technologies.Get("sarissa")
	card = Preview(ds, sarissa, "zeus")
	if card.GodIcon != GodIcons["default"] {
		t.Errorf("technology with minor god prerequisite icon = %q, want default", card.GodIcon)
	}
	if card.PrerequisiteGod != "Athena" || len(card.ResearchedAt) != 1 {
		t.Errorf("card = %+v", card)
	}
}

func TestPreviewNothingSelected(t *testing.T) {
	card := Preview(greek(t), nil, "zeus")
	if card.Message != NoSelectionMessage || card.Name != "" {
		t.Errorf("card = %+v", card)
	}
}

func TestRenderDescription(t *testing.T) {
	got := string(RenderDescription("Heavy **infantry**.\n\n<script>alert(1)</script>"))
	if !strings.Contains(got, "<strong>infantry</strong>") {
		t.Errorf("markdown not rendered: %s", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML passed through: %s", got)
	}
	if RenderDescription("  ") != "" {
		t.Error("blank description should render empty")
	}
}

func TestProject(t *testing.T) {
	ds := greek(t)
	st := selection.Initial(selection.Defaults{})

	p := Project(ds, st, 1024, Options{})
	// With no entity selected the active building is previewed.
	if p.Preview.Name != "Town Center" || p.PreviewMount != MountBuildingsPane {
		t.Errorf("preview = %q in %q", p.Preview.Name, p.PreviewMount)
	}

	st.SelectEntity("Hoplite")
	p = Project(ds, st, 600, Options{})
	if p.Preview.Name != "Hoplite" || p.PreviewMount != MountModal {
		t.Errorf("preview = %q in %q", p.Preview.Name, p.PreviewMount)
	}

	st.SelectBuilding("")
	p = Project(ds, st, 1024, Options{})
	if p.Preview.Message != NoSelectionMessage {
		t.Errorf("preview = %+v, want nothing selected", p.Preview)
	}
}

func TestRenderPageAndFrame(t *testing.T) {
	ds := greek(t)
	r, err := NewHTMLRenderer()
	if err != nil {
		t.Fatalf("NewHTMLRenderer: %v", err)
	}
	st := selection.Initial(selection.Defaults{})
	st.SelectBuilding("Barracks")
	st.SelectEntity("Hoplite")
	p := Project(ds, st, 0, Options{})

	var buf bytes.Buffer
	if err := r.RenderPage(&buf, &p); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	page := buf.String()
	for _, want := range []string{
		`id="major-gods"`, `id="minor-gods"`, `id="buildings"`, `id="units-techs"`,
		`id="buildings-pane"`, `id="units-techs-pane"`, `id="modal"`,
		`data-event="select_major_god"`, `data-event="edit_god"`, `data-event="add_god"`,
		`data-event="select_building" data-name="Barracks"`,
		`MELEE ATTACK`, `new WebSocket`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}

	f, err := BuildFrame(r, &p)
	if err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}
	if f.Type != FrameType || f.Preview != MountUnitsTechsPane {
		t.Errorf("frame type %q preview %q", f.Type, f.Preview)
	}
	if len(f.Mounts) != len(GridMounts)+1 {
		t.Errorf("frame has %d mounts, want %d", len(f.Mounts), len(GridMounts)+1)
	}
	if !strings.Contains(f.Mounts[MountUnitsTechsPane], "Hoplite") {
		t.Errorf("preview mount = %s", f.Mounts[MountUnitsTechsPane])
	}
	if len(GridMounts) != 4 {
		t.Errorf("BuildFrame modified GridMounts: %v", GridMounts)
	}
}

func TestRenderUnknownMount(t *testing.T) {
	r, err := NewHTMLRenderer()
	if err != nil {
		t.Fatal(err)
	}
	if err := r.RenderMount(&bytes.Buffer{}, "sidebar", &Page{}); err == nil {
		t.Error("expected error for unknown mount")
	}
}
