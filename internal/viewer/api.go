package viewer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/civcards/internal/civ"
	"github.com/ziadkadry99/civcards/internal/civ/source"
	"github.com/ziadkadry99/civcards/internal/selection"
	"github.com/ziadkadry99/civcards/internal/view"
)

// suggestionLimit caps the "did you mean" list of a missed lookup.
const suggestionLimit = 5

type entityResponse struct {
	Kind    civ.Kind         `json:"kind"`
	Entity  civ.Entity       `json:"entity"`
	Preview view.PreviewCard `json:"preview"`
}

type notFoundResponse struct {
	Error       string           `json:"error"`
	Suggestions []civ.Suggestion `json:"suggestions"`
}

type gridResponse struct {
	Building string        `json:"building"`
	MajorGod string        `json:"major_god"`
	Rows     [][]view.Tile `json:"rows"`
}

type civsResponse struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

func (v *Viewer) handleIndex(w http.ResponseWriter, r *http.Request) {
	ds, ok := v.requireDataset(w)
	if !ok {
		return
	}
	st, ok := v.loadState(w, r)
	if !ok {
		return
	}

	// The first paint does not know the viewport; the script reports it
	// with every event.
	page := view.Project(ds, st, 0, v.opts)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := v.renderer.RenderPage(w, &page); err != nil {
		slog.Error("rendering page", "error", err)
	}
}

func (v *Viewer) handleEntity(w http.ResponseWriter, r *http.Request) {
	ds, ok := v.requireDataset(w)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")

	e, found := ds.FindEntityByName(name)
	if !found {
		suggestions := ds.Suggest(name, suggestionLimit)
		if suggestions == nil {
			suggestions = []civ.Suggestion{}
		}
		writeJSON(w, http.StatusNotFound, notFoundResponse{
			Error:       fmt.Sprintf("%s: %q", civ.ErrNotFound, name),
			Suggestions: suggestions,
		})
		return
	}

	majorGod := r.URL.Query().Get("major_god")
	if majorGod == "" {
		st, ok := v.loadState(w, r)
		if !ok {
			return
		}
		majorGod = st.MajorGod
	}
	writeJSON(w, http.StatusOK, entityResponse{
		Kind:    e.Kind(),
		Entity:  e,
		Preview: view.Preview(ds, e, majorGod),
	})
}

func (v *Viewer) handleGrid(w http.ResponseWriter, r *http.Request) {
	ds, ok := v.requireDataset(w)
	if !ok {
		return
	}
	st, ok := v.loadState(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if b := q.Get("building"); b != "" {
		st.SelectBuilding(b)
	}
	if g := q.Get("major_god"); g != "" {
		st.SelectMajorGod(g)
	}

	writeJSON(w, http.StatusOK, gridResponse{
		Building: st.Building,
		MajorGod: st.MajorGod,
		Rows:     view.UnitsTechs(ds, st, v.opts),
	})
}

func (v *Viewer) handleCarousel(w http.ResponseWriter, r *http.Request) {
	ds, ok := v.requireDataset(w)
	if !ok {
		return
	}
	st, ok := v.loadState(w, r)
	if !ok {
		return
	}
	if active := r.URL.Query().Get("active"); active != "" {
		st.SelectMajorGod(active)
	}
	writeJSON(w, http.StatusOK, view.MajorGods(ds, st))
}

func (v *Viewer) handleBuildings(w http.ResponseWriter, r *http.Request) {
	ds, ok := v.requireDataset(w)
	if !ok {
		return
	}
	st, ok := v.loadState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view.Buildings(ds, st, v.opts))
}

func (v *Viewer) handleGetState(w http.ResponseWriter, r *http.Request) {
	st, ok := v.loadState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handlePutState applies a partial update keyed by the stored key names,
// for example {"activeBuilding": "barracks"}.
func (v *Viewer) handlePutState(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	sessionID := session(w, r)
	unlock := v.lock(sessionID)
	defer unlock()

	prev, err := v.store.Load(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	next := prev
	for k, value := range body {
		key, err := selection.ParseKey(k)
		if err == nil {
			err = next.Set(key, value)
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	if err := v.commit(r.Context(), sessionID, prev, next); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (v *Viewer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if v.history == nil {
		writeJSON(w, http.StatusOK, []selection.Entry{})
		return
	}
	q := r.URL.Query()

	filter := selection.HistoryFilter{SessionID: session(w, r)}
	if k := q.Get("key"); k != "" {
		key, err := selection.ParseKey(k)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		filter.Key = key
	}
	if s := q.Get("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			filter.Since = &t
		}
	}
	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}
	if s := q.Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Offset = n
		}
	}

	entries, err := v.history.List(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []selection.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (v *Viewer) handleCivs(w http.ResponseWriter, r *http.Request) {
	resp := civsResponse{Active: v.data.Civ(), Available: []string{v.data.Civ()}}
	if v.catalog != nil {
		names, err := v.catalog.Available()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp.Available = names
	}
	writeJSON(w, http.StatusOK, resp)
}

// requireDataset answers 503 while the dataset is unavailable.
func (v *Viewer) requireDataset(w http.ResponseWriter) (*civ.Dataset, bool) {
	ds, err := v.dataset()
	if err != nil {
		msg := "dataset unavailable"
		if errors.Is(err, source.ErrNotLoaded) {
			msg = "dataset is still loading"
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": msg})
		return nil, false
	}
	return ds, true
}

func (v *Viewer) loadState(w http.ResponseWriter, r *http.Request) (selection.State, bool) {
	st, err := v.store.Load(r.Context(), session(w, r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return selection.State{}, false
	}
	return st, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
