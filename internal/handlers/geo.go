package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/diewo77/go-crm-panel/httpx"
	"github.com/diewo77/go-crm-panel/internal/refdata"
	"github.com/diewo77/go-crm-panel/internal/session"
)

// draftFields are the demographic inputs carried across cascade steps.
var draftFields = []string{"address", "postal_code", "timezone", "language"}

// GeoHandler drives the country -> state -> city cascade of the demographic
// form and serves the same lists as JSON.
type GeoHandler struct {
	Base
	refdata RefData
}

func NewGeoHandler(base Base, rd RefData) *GeoHandler {
	return &GeoHandler{Base: base, refdata: rd}
}

// Country selects a country and loads its states.
func (h *GeoHandler) Country(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, func(ctx context.Context, g *session.GeoSelection) fetchFunc {
		t, ok := g.SelectCountry(formInt(r, "country_id"), h.refdata.ListCountries(ctx))
		if !ok {
			return nil
		}
		return func() func(*session.GeoSelection) {
			states := h.refdata.ListStates(ctx, t.CountryID)
			return func(cur *session.GeoSelection) {
				if !cur.ApplyStates(t, states) {
					h.log().Debug("stale state list dropped", zap.Int("country_id", t.CountryID))
				}
			}
		}
	})
}

// State selects a state of the chosen country and loads its cities.
func (h *GeoHandler) State(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, func(ctx context.Context, g *session.GeoSelection) fetchFunc {
		t, ok := g.SelectState(formInt(r, "state_id"))
		if !ok {
			return nil
		}
		return func() func(*session.GeoSelection) {
			cities := h.refdata.ListCities(ctx, t.CountryID, t.StateID)
			return func(cur *session.GeoSelection) {
				if !cur.ApplyCities(t, cities) {
					h.log().Debug("stale city list dropped", zap.Int("country_id", t.CountryID), zap.Int("state_id", t.StateID))
				}
			}
		}
	})
}

// City selects a city of the chosen state. No list depends on it.
func (h *GeoHandler) City(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, func(_ context.Context, g *session.GeoSelection) fetchFunc {
		g.SelectCity(formInt(r, "city_id"))
		return nil
	})
}

// fetchFunc loads the list a cascade choice depends on and returns how to
// install it.
type fetchFunc func() func(*session.GeoSelection)

// step applies choose to the cascade and saves it before the dependent
// list is fetched. The list is then applied to the state as saved by then,
// so a newer choice made meanwhile wins.
func (h *GeoHandler) step(w http.ResponseWriter, r *http.Request, choose func(context.Context, *session.GeoSelection) fetchFunc) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	st, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st.Shell.OpenEdit(id)
	st.Shell.SetSection(session.SectionDemographic)
	st.Geo.ForClient(id)
	if d := draftOf(r.PostForm); len(d) > 0 {
		st.Geo.Draft = d
	}

	fetch := choose(r.Context(), &st.Geo)
	h.save(r, st)
	if fetch != nil {
		apply := fetch()
		st, err = session.Update(r.Context(), h.Sessions, st.ID, func(cur *session.State) {
			if cur.Geo.ClientID == id {
				apply(&cur.Geo)
			}
		})
		if err != nil {
			h.fail(w, r, err)
			return
		}
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, st.Geo)
		return
	}
	http.Redirect(w, r, editURL(id, session.SectionDemographic), http.StatusSeeOther)
}

func draftOf(form url.Values) map[string][]string {
	out := map[string][]string{}
	for _, k := range draftFields {
		if vs, ok := form[k]; ok {
			out[k] = vs
		}
	}
	return out
}

// Countries serves the country list as JSON.
func (h *GeoHandler) Countries(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"data": nonNil(h.refdata.ListCountries(r.Context()))})
}

// States serves GET /api/refdata/states?country_id=.
func (h *GeoHandler) States(w http.ResponseWriter, r *http.Request) {
	countryID, ok := queryID(r, "country_id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "country_id is required", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": nonNil(h.refdata.ListStates(r.Context(), countryID))})
}

// Cities serves GET /api/refdata/cities?country_id=&state_id=.
func (h *GeoHandler) Cities(w http.ResponseWriter, r *http.Request) {
	countryID, ok := queryID(r, "country_id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "country_id is required", nil)
		return
	}
	stateID, ok := queryID(r, "state_id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "state_id is required", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": nonNil(h.refdata.ListCities(r.Context(), countryID, stateID))})
}

func queryID(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	return n, err == nil && n > 0
}

func nonNil(list []refdata.Place) []refdata.Place {
	if list == nil {
		return []refdata.Place{}
	}
	return list
}
