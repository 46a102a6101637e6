package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/civcards/internal/view"
)

// Client event types.
const (
	EventSelectMajorGod = "select_major_god"
	EventSelectBuilding = "select_building"
	EventPreview        = "preview"
	EventAddGod         = "add_god"
	EventEditGod        = "edit_god"
	EventRemoveGod      = "remove_god"
	EventRender         = "render"
)

const writeWait = 10 * time.Second

// eventUnknown labels metrics for event types the viewer does not handle.
const eventUnknown = "unknown"

var knownEvents = map[string]bool{
	EventSelectMajorGod: true,
	EventSelectBuilding: true,
	EventPreview:        true,
	EventAddGod:         true,
	EventEditGod:        true,
	EventRemoveGod:      true,
	EventRender:         true,
}

// eventLabel bounds the metric label set to the known event types.
func eventLabel(typ string) string {
	if knownEvents[typ] {
		return typ
	}
	return eventUnknown
}

// Event is a message from the page.
type Event struct {
	Type     string `json:"type"`
	Key      string `json:"key,omitempty"`
	Name     string `json:"name,omitempty"`
	Viewport int    `json:"viewport,omitempty"`
}

// errorMessage is sent instead of a frame when an event fails.
type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

var (
	errBadEvent    = errors.New("bad event")
	errUnavailable = errors.New("dataset unavailable")
)

func (v *Viewer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var header http.Header
	sessionID, ok := sessionFromCookie(r)
	if !ok {
		sessionID = uuid.NewString()
		header = http.Header{"Set-Cookie": {newSessionCookie(sessionID).String()}}
	}

	conn, err := v.upgrader.Upgrade(w, r, header)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "session", sessionID, "error", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			if !send(conn, errorMessage{Type: "error", Error: "invalid message format"}) {
				return
			}
			continue
		}

		frame, err := v.HandleEvent(r.Context(), sessionID, ev)
		if err != nil {
			if !errors.Is(err, errBadEvent) && !errors.Is(err, errUnavailable) {
				slog.Error("handling event", "session", sessionID, "event", ev.Type, "error", err)
			}
			if !send(conn, errorMessage{Type: "error", Error: err.Error()}) {
				return
			}
			continue
		}
		if !send(conn, frame) {
			return
		}
	}
}

func send(conn *websocket.Conn, v any) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(v); err != nil {
		slog.Warn("websocket write failed", "error", err)
		return false
	}
	return true
}

// HandleEvent applies ev to the session's selection, persists the result
// and returns the re-rendered frame. Events for one session are handled
// one at a time.
func (v *Viewer) HandleEvent(ctx context.Context, sessionID string, ev Event) (frame *view.Frame, err error) {
	start := time.Now()
	defer func() { v.metrics.RecordEvent(ctx, eventLabel(ev.Type), time.Since(start), err) }()

	ds, err := v.dataset()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUnavailable, err)
	}

	unlock := v.lock(sessionID)
	defer unlock()

	prev, err := v.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading selection: %w", err)
	}
	next := prev

	switch ev.Type {
	case EventSelectMajorGod:
		if ev.Key == "" {
			return nil, fmt.Errorf("%w: %s needs a key", errBadEvent, ev.Type)
		}
		next.SelectMajorGod(ev.Key)
	case EventSelectBuilding:
		next.SelectBuilding(ev.Name)
		next.SelectEntity(ev.Name)
	case EventPreview:
		next.SelectEntity(ev.Name)
	case EventAddGod, EventEditGod, EventRemoveGod:
		slog.Info("god editing is not available", "action", ev.Type, "key", ev.Key)
	case EventRender:
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errBadEvent, ev.Type)
	}

	if err := v.commit(ctx, sessionID, prev, next); err != nil {
		return nil, err
	}

	page := view.Project(ds, next, ev.Viewport, v.opts)
	return view.BuildFrame(v.renderer, &page)
}
