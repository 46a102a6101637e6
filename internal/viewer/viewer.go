// Package viewer serves the card viewer: the page, the websocket event
// channel that keeps it current, and a JSON API over the same projections.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/civcards/internal/civ"
	"github.com/ziadkadry99/civcards/internal/civ/source"
	"github.com/ziadkadry99/civcards/internal/selection"
	"github.com/ziadkadry99/civcards/internal/view"
)

// SessionCookie identifies a browser's selection state.
const SessionCookie = "civcards_session"

const (
	requestTimeout = 60 * time.Second
	sessionMaxAge  = 365 * 24 * 60 * 60
)

// Datasets hands out the active dataset. *source.Source implements it.
type Datasets interface {
	Civ() string
	Dataset() (*civ.Dataset, error)
}

// Catalog lists the civilizations that could be served.
// *source.Loader implements it.
type Catalog interface {
	Available() ([]string, error)
}

// Recorder receives one measurement per handled event.
type Recorder interface {
	RecordEvent(ctx context.Context, event string, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordEvent(context.Context, string, time.Duration, error) {}

// Deps are the collaborators of a Viewer. History, Catalog and Metrics are
// optional.
type Deps struct {
	Datasets Datasets
	Store    selection.Store
	History  *selection.History
	Renderer view.Renderer
	Catalog  Catalog
	Options  view.Options
	Metrics  Recorder
	// AllowAllOrigins lets any page open the event channel. Otherwise only
	// the viewer's own host and localhost pages may.
	AllowAllOrigins bool
}

// Viewer serves one dataset to any number of browser sessions.
type Viewer struct {
	data     Datasets
	store    selection.Store
	history  *selection.History
	renderer view.Renderer
	catalog  Catalog
	opts     view.Options
	metrics  Recorder
	upgrader websocket.Upgrader

	allowAllOrigins bool
	locks           sessionLocks
}

// New creates a Viewer. A nil Renderer gets the HTML renderer.
func New(deps Deps) (*Viewer, error) {
	if deps.Datasets == nil || deps.Store == nil {
		return nil, errors.New("viewer: datasets and store are required")
	}
	if deps.Renderer == nil {
		r, err := view.NewHTMLRenderer()
		if err != nil {
			return nil, fmt.Errorf("viewer: %w", err)
		}
		deps.Renderer = r
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	v := &Viewer{
		data:            deps.Datasets,
		store:           deps.Store,
		history:         deps.History,
		renderer:        deps.Renderer,
		catalog:         deps.Catalog,
		opts:            deps.Options,
		metrics:         deps.Metrics,
		allowAllOrigins: deps.AllowAllOrigins,
	}
	v.upgrader = websocket.Upgrader{CheckOrigin: v.checkOrigin}
	return v, nil
}

// RegisterRoutes mounts the page, the event channel and the JSON API.
// The websocket route is kept out of the request timeout.
func (v *Viewer) RegisterRoutes(r chi.Router) {
	r.Get("/ws", v.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/", v.handleIndex)
		r.Route("/api", func(r chi.Router) {
			r.Get("/entities/{name}", v.handleEntity)
			r.Get("/grid", v.handleGrid)
			r.Get("/carousel", v.handleCarousel)
			r.Get("/buildings", v.handleBuildings)
			r.Get("/state", v.handleGetState)
			r.Put("/state", v.handlePutState)
			r.Get("/history", v.handleHistory)
			r.Get("/civs", v.handleCivs)
		})
	})
}

// dataset returns the active dataset. While the source is still loading
// the caller's render is skipped with a warning.
func (v *Viewer) dataset() (*civ.Dataset, error) {
	ds, err := v.data.Dataset()
	if errors.Is(err, source.ErrNotLoaded) {
		slog.Warn("render skipped, dataset not loaded yet", "civ", v.data.Civ())
	}
	return ds, err
}

// session returns the session id from the request cookie. A request
// without a valid id gets a new one, set on w.
func session(w http.ResponseWriter, r *http.Request) string {
	if id, ok := sessionFromCookie(r); ok {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, newSessionCookie(id))
	return id
}

func sessionFromCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

func newSessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// checkOrigin applies the CORS origin policy to websocket upgrades.
// Requests without an Origin header come from non-browser clients.
func (v *Viewer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || v.allowAllOrigins {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1":
		return true
	}
	return false
}

// sessionLocks hands out one mutex per session id. An entry lives only
// while some caller holds or waits for it.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sessionLock)
	}
	sl, ok := l.m[sessionID]
	if !ok {
		sl = &sessionLock{}
		l.m[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		if sl.refs--; sl.refs == 0 {
			delete(l.m, sessionID)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

// lock serialises work on one session and returns the unlock func.
func (v *Viewer) lock(sessionID string) func() {
	return v.locks.lock(sessionID)
}

// commit persists next and records what changed since prev.
func (v *Viewer) commit(ctx context.Context, sessionID string, prev, next selection.State) error {
	changes := prev.Diff(next)
	if len(changes) == 0 {
		return nil
	}
	if err := v.store.Save(ctx, sessionID, next); err != nil {
		return fmt.Errorf("saving selection: %w", err)
	}
	if v.history != nil {
		if err := v.history.Record(ctx, sessionID, changes); err != nil {
			return fmt.Errorf("recording history: %w", err)
		}
	}
	return nil
}
