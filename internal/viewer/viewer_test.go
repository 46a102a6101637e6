package viewer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ziadkadry99/civcards/internal/civ/source"
	"github.com/ziadkadry99/civcards/internal/db"
	"github.com/ziadkadry99/civcards/internal/observe"
	"github.com/ziadkadry99/civcards/internal/selection"
	"github.com/ziadkadry99/civcards/internal/view"
)

func setupTest(t *testing.T) (*Viewer, *selection.History) {
	t.Helper()

	ds, err := (&source.Loader{}).Load(context.Background(), "greek")
	if err != nil {
		t.Fatalf("loading greek: %v", err)
	}
	return setupWith(t, source.Static(ds))
}

func setupWith(t *testing.T, data Datasets) (*Viewer, *selection.History) {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	history := selection.NewHistory(database)
	v, err := New(Deps{
		Datasets: data,
		Store:    selection.NewSQLiteStore(database, selection.Defaults{}),
		History:  history,
		Catalog:  &source.Loader{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v, history
}

func setupRouter(v *Viewer) chi.Router {
	r := chi.NewRouter()
	v.RegisterRoutes(r)
	return r
}

func get(t *testing.T, r http.Handler, target, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
}

func TestIndexRendersPage(t *testing.T) {
	v, _ := setupTest(t)
	r := setupRouter(v)

	w := get(t, r, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, id := range []string{"major-gods", "minor-gods", "buildings", "units-techs"} {
		if !strings.Contains(body, `id="`+id+`"`) {
			t.Errorf("page missing mount %q", id)
		}
	}
	// Default selection previews the town center.
	if !strings.Contains(body, "Town Center") {
		t.Error("page does not preview the default building")
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), SessionCookie+"=") {
		t.Errorf("expected session cookie, got %q", w.Header().Get("Set-Cookie"))
	}
}

func TestIndexKeepsValidSession(t *testing.T) {
	v, _ := setupTest(t)
	r := setupRouter(v)

	w := get(t, r, "/", uuid.NewString())
	if got := w.Header().Get("Set-Cookie"); got != "" {
		t.Errorf("valid session should not be replaced, got Set-Cookie %q", got)
	}
	w = get(t, r, "/", "not-a-uuid")
	if got := w.Header().Get("Set-Cookie"); got == "" {
		t.Error("invalid session should be replaced")
	}
}

func TestUnavailableDataset(t *testing.T) {
	pending := source.New(&source.Loader{}, "greek")

	failed := source.New(&source.Loader{NoBuiltin: true}, "greek")
	failed.Start(context.Background())
	if _, err := failed.Wait(context.Background()); err == nil {
		t.Fatal("expected load failure without builtin")
	}

	for name, data := range map[string]Datasets{"pending": pending, "failed": failed} {
		t.Run(name, func(t *testing.T) {
			v, _ := setupWith(t, data)
			r := setupRouter(v)

			for _, target := range []string{"/", "/api/entities/hoplite", "/api/grid", "/api/carousel", "/api/buildings"} {
				if w := get(t, r, target, ""); w.Code != http.StatusServiceUnavailable {
					t.Errorf("%s: expected 503, got %d", target, w.Code)
				}
			}
			// State does not need the dataset.
			if w := get(t, r, "/api/state", ""); w.Code != http.StatusOK {
				t.Errorf("/api/state: expected 200, got %d", w.Code)
			}
		})
	}
}

func TestEntityEndpoint(t *testing.T) {
	v, _ := setupTest(t)
	r := setupRouter(v)

	w := get(t, r, "/api/entities/hoplite?major_god=hades", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Kind    string           `json:"kind"`
		Entity  map[string]any   `json:"entity"`
		Preview view.PreviewCard `json:"preview"`
	}
	decode(t, w, &resp)
	if resp.Kind != "unit" || resp.Entity["name"] != "Hoplite" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Preview.GodIcon != view.GodIcons["hades"] {
		t.Errorf("GodIcon = %q, want hades icon", resp.Preview.GodIcon)
	}
}

func TestEntityNotFoundSuggests(t *testing.T) {
	v, _ := setupTest(t)
	r := setupRouter(v)

	w := get(t, r, "/api/entities/Hoplit", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp notFoundResponse
	decode(t, w, &resp)
	if len(resp.Suggestions) == 0 || resp.Suggestions[0].Name != "Hoplite" {
		t.Errorf("suggestions = %+v, want Hoplite first", resp.Suggestions)
	}
}

func TestGridEndpoint(t *testing.T) {
	v, _ := setupTest(t)
	r := setupRouter(v)

	w := get(t, r, "/api/grid?building=Barracks&major_god=zeus", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp gridResponse
	decode(t, w, &resp)
	if resp.Building != "barracks" || resp.MajorGod != "zeus" {
		t.Errorf("building %q god %q", resp.Building, resp.MajorGod)
	}
	if len(resp.Rows) != 3 || resp.Rows[0][0].Name != "Hoplite" || resp.Rows[2][0].Name != "Sarissa" {
		t.Errorf("rows = %+v", resp.Rows)
	}

	// Query overrides are not persisted.
	w = get(t, r, "/api/state", "")
	var st selection.State
	decode(t, w, &st)
	if st.Building != selection.DefaultBuilding {
		t.Errorf("state building = %q, want default", st.Building)
	}
}

func TestCarouselEndpoint(t *testing.T) {
	v, _ := setupTest(t)
	r := setupRouter(v)

	w := get(t, r, "/api/carousel?active=hades", "")
	var cards []view.GodCard
	decode(t, w, &cards)
	if len(cards) != 4 {
		t.Fatalf("cards = %d, want 4", len(cards))
	}
	for _, c := range cards {
		if c.Active != (c.Key == "hades") {
			t.Errorf("card %q active = %v", c.Key, c.Active)
		}
	}
	if cards[0].Offset != -2 || cards[3].Offset != 1 {
		t.Errorf("offsets = %d..%d, want -2..1", cards[0].Offset, cards[3].Offset)
	}
}

func TestBuildingsEndpoint(t *testing.T) {
	v, _ := setupTest(t)
	r := setupRouter(v)

	var rows [][]view.Tile
	decode(t, get(t, r, "/api/buildings", ""), &rows)
	if len(rows) != 3 || !rows[2][0].Active {
		t.Errorf("rows = %+v, want town center active", rows)
	}
}

func TestStateRoundTrip(t *testing.T) {
	v, history := setupTest(t)
	r := setupRouter(v)
	sessionID := uuid.NewString()

	body := strings.NewReader(`{"activeBuilding": "barracks", "activeEntity": "Hoplite"}`)
	req := httptest.NewRequest("PUT", "/api/state", body)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var st selection.State
	decode(t, get(t, r, "/api/state", sessionID), &st)
	want := selection.State{MajorGod: "zeus", Building: "barracks", Entity: "Hoplite"}
	if st != want {
		t.Errorf("state = %+v, want %+v", st, want)
	}

	entries, err := history.List(context.Background(), selection.HistoryFilter{SessionID: sessionID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("history entries = %d, want 2", len(entries))
	}

	var listed []selection.Entry
	decode(t, get(t, r, "/api/history?key=activeEntity", sessionID), &listed)
	if len(listed) != 1 || listed[0].NewValue != "Hoplite" {
		t.Errorf("history = %+v", listed)
	}
}

func TestPutStateRejectsUnknownKey(t *testing.T) {
	v, _ := setupTest(t)
	r := setupRouter(v)

	for _, body := range []string{`{"activeUnit": "x"}`, `not json`} {
		req := httptest.NewRequest("PUT", "/api/state", strings.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestCivsEndpoint(t *testing.T) {
	v, _ := setupTest(t)
	r := setupRouter(v)

	var resp civsResponse
	decode(t, get(t, r, "/api/civs", ""), &resp)
	if resp.Active != "Greek" {
		t.Errorf("active = %q", resp.Active)
	}
	if strings.Join(resp.Available, ",") != "greek" {
		t.Errorf("available = %v", resp.Available)
	}
}

func dial(t *testing.T, server *httptest.Server, sessionID string) (*websocket.Conn, *http.Response) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	header := http.Header{}
	if sessionID != "" {
		header.Set("Cookie", (&http.Cookie{Name: SessionCookie, Value: sessionID}).String())
	}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, resp
}

func roundTrip(t *testing.T, conn *websocket.Conn, ev Event) map[string]any {
	t.Helper()
	if err := conn.WriteJSON(ev); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocketSetsSessionCookie(t *testing.T) {
	v, _ := setupTest(t)
	server := httptest.NewServer(setupRouter(v))
	defer server.Close()

	_, resp := dial(t, server, "")
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Set-Cookie"), SessionCookie+"=") {
		t.Errorf("expected session cookie on upgrade, got %q", resp.Header.Get("Set-Cookie"))
	}
}

func TestWebSocketEvents(t *testing.T) {
	v, _ := setupTest(t)
	server := httptest.NewServer(setupRouter(v))
	defer server.Close()
	sessionID := uuid.NewString()
	conn, _ := dial(t, server, sessionID)

	msg := roundTrip(t, conn, Event{Type: EventSelectBuilding, Name: "Barracks", Viewport: 1200})
	if msg["type"] != "frame" || msg["preview"] != view.MountBuildingsPane {
		t.Fatalf("frame = %v", msg)
	}
	mounts := msg["mounts"].(map[string]any)
	if !strings.Contains(mounts[view.MountUnitsTechs].(string), "Hoplite") {
		t.Error("units grid does not show the barracks units")
	}
	if !strings.Contains(mounts[view.MountBuildingsPane].(string), "Barracks") {
		t.Error("building pane does not preview the barracks")
	}

	msg = roundTrip(t, conn, Event{Type: EventPreview, Name: "Hoplite", Viewport: 500})
	if msg["preview"] != view.MountModal {
		t.Errorf("narrow preview mount = %v, want modal", msg["preview"])
	}

	msg = roundTrip(t, conn, Event{Type: EventSelectMajorGod, Key: "hades", Viewport: 1200})
	mounts = msg["mounts"].(map[string]any)
	if !strings.Contains(mounts[view.MountMajorGods].(string), `data-key="hades"`) {
		t.Error("carousel missing hades actions")
	}

	var st selection.State
	decode(t, get(t, setupRouter(v), "/api/state", sessionID), &st)
	want := selection.State{MajorGod: "hades", Building: "barracks", Entity: "Hoplite"}
	if st != want {
		t.Errorf("state = %+v, want %+v", st, want)
	}
}

func TestWebSocketErrors(t *testing.T) {
	v, _ := setupTest(t)
	server := httptest.NewServer(setupRouter(v))
	defer server.Close()
	conn, _ := dial(t, server, "")

	msg := roundTrip(t, conn, Event{Type: "explode"})
	if msg["type"] != "error" || !strings.Contains(msg["error"].(string), "unknown type") {
		t.Errorf("msg = %v", msg)
	}

	msg = roundTrip(t, conn, Event{Type: EventSelectMajorGod})
	if msg["type"] != "error" {
		t.Errorf("select_major_god without key: %v", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp errorMessage
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Error != "invalid message format" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestWebSocketWhileLoading(t *testing.T) {
	v, _ := setupWith(t, source.New(&source.Loader{}, "greek"))
	server := httptest.NewServer(setupRouter(v))
	defer server.Close()
	conn, _ := dial(t, server, "")

	msg := roundTrip(t, conn, Event{Type: EventRender})
	if msg["type"] != "error" || !strings.Contains(msg["error"].(string), "not loaded") {
		t.Errorf("msg = %v", msg)
	}
}

type countingRecorder struct {
	mu     sync.Mutex
	events map[string]int
	errors int
}

func (c *countingRecorder) RecordEvent(_ context.Context, event string, _ time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.events == nil {
		c.events = make(map[string]int)
	}
	c.events[event]++
	if err != nil {
		c.errors++
	}
}

func TestHandleEventGodStubs(t *testing.T) {
	ds, err := (&source.Loader{}).Load(context.Background(), "greek")
	if err != nil {
		t.Fatal(err)
	}
	store := selection.NewMemStore(selection.Defaults{})
	rec := &countingRecorder{}
	v, err := New(Deps{Datasets: source.Static(ds), Store: store, Metrics: rec})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, typ := range []string{EventAddGod, EventEditGod, EventRemoveGod, EventRender} {
		frame, err := v.HandleEvent(ctx, "s1", Event{Type: typ, Key: "zeus"})
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if len(frame.Mounts) != len(view.GridMounts)+1 {
			t.Errorf("%s: frame has %d mounts", typ, len(frame.Mounts))
		}
	}

	st, _ := store.Load(ctx, "s1")
	if st != selection.Initial(selection.Defaults{}) {
		t.Errorf("stub events changed the selection: %+v", st)
	}

	if _, err := v.HandleEvent(ctx, "s1", Event{Type: "bogus"}); err == nil {
		t.Error("expected error for unknown event")
	}
	if rec.events[EventAddGod] != 1 || rec.events[eventUnknown] != 1 || rec.errors != 1 {
		t.Errorf("recorded events = %v, errors = %d", rec.events, rec.errors)
	}
}

func TestEventMetricsBoundLabels(t *testing.T) {
	ds, err := (&source.Loader{}).Load(context.Background(), "greek")
	if err != nil {
		t.Fatal(err)
	}
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	v, err := New(Deps{
		Datasets: source.Static(ds),
		Store:    selection.NewMemStore(selection.Defaults{}),
		Metrics:  metrics,
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, typ := range []string{"x1", "x2", "x3"} {
		if _, err := v.HandleEvent(ctx, "s1", Event{Type: typ}); err == nil {
			t.Fatalf("%s: expected error", typ)
		}
	}
	if _, err := v.HandleEvent(ctx, "s1", Event{Type: EventRender}); err != nil {
		t.Fatalf("render: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var sum metricdata.Sum[int64]
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "civcards.viewer.events" {
				sum = m.Data.(metricdata.Sum[int64])
			}
		}
	}

	counts := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		event, _ := dp.Attributes.Value(attribute.Key("event"))
		counts[event.AsString()] += dp.Value
	}
	if len(counts) != 2 || counts[eventUnknown] != 3 || counts[EventRender] != 1 {
		t.Errorf("events by label = %v, want unknown=3 render=1", counts)
	}
}

func TestSessionLocksAreReleased(t *testing.T) {
	v, _ := setupTest(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := v.HandleEvent(ctx, uuid.NewString(), Event{Type: EventRender}); err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	if n := v.locks.len(); n != 0 {
		t.Errorf("%d session locks left after all events finished", n)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	inside := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := v.lock("shared")
			mu.Lock()
			inside++
			if inside > 1 {
				t.Error("two holders of one session lock")
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if n := v.locks.len(); n != 0 {
		t.Errorf("%d session locks left after concurrent use", n)
	}
}

func TestWebSocketOriginPolicy(t *testing.T) {
	v, _ := setupTest(t)
	server := httptest.NewServer(setupRouter(v))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	for origin, allowed := range map[string]bool{
		"":                       true,
		server.URL:               true,
		"http://localhost:5173":  true,
		"http://127.0.0.1:9999":  true,
		"http://evil.example":    false,
		"https://localhost.evil": false,
	} {
		header := http.Header{}
		if origin != "" {
			header.Set("Origin", origin)
		}
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		if allowed {
			if err != nil {
				t.Errorf("origin %q: dial failed: %v", origin, err)
				continue
			}
			conn.Close()
			continue
		}
		if err == nil {
			conn.Close()
			t.Errorf("origin %q: upgrade should be refused", origin)
			continue
		}
		if resp == nil || resp.StatusCode != http.StatusForbidden {
			t.Errorf("origin %q: response = %v, want 403", origin, resp)
		}
	}
}

func TestWebSocketAllowAllOrigins(t *testing.T) {
	ds, err := (&source.Loader{}).Load(context.Background(), "greek")
	if err != nil {
		t.Fatal(err)
	}
	v, err := New(Deps{
		Datasets:        source.Static(ds),
		Store:           selection.NewMemStore(selection.Defaults{}),
		AllowAllOrigins: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(setupRouter(v))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"http://evil.example"}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()
}
