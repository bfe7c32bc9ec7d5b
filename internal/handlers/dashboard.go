package handlers

import (
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/diewo77/go-crm-panel/internal/models"
	"github.com/diewo77/go-crm-panel/internal/session"
)

const recentClients = 5

type DashboardHandler struct {
	Base
	backend ClientBackend
}

func NewDashboardHandler(base Base, b ClientBackend) *DashboardHandler {
	return &DashboardHandler{Base: base, backend: b}
}

// Show renders the dashboard area: the client count and the most recently
// updated clients. An unreachable backend leaves both out.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	st, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st.Shell.Activate(session.AreaDashboard)

	data := map[string]any{}
	clients, err := h.backend.ListClients(r.Context())
	if err != nil {
		h.log().Warn("dashboard stats unavailable", zap.Error(err))
	} else {
		data["StatsLoaded"] = true
		data["ClientCount"] = len(clients)
		data["Recent"] = mostRecent(clients, recentClients)
	}
	h.page(w, r, st, http.StatusOK, "index.html", data)
}

func mostRecent(clients []models.Client, n int) []models.Client {
	out := slices.Clone(clients)
	slices.SortStableFunc(out, func(a, b models.Client) int {
		ta, _ := a.LastUpdated()
		tb, _ := b.LastUpdated()
		return tb.Compare(ta)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
