package handlers

import (
	"go.uber.org/zap"

	"github.com/diewo77/go-crm-panel/internal/metrics"
	"github.com/diewo77/go-crm-panel/internal/session"
)

// Deps are the collaborators the handlers are built from.
type Deps struct {
	Backend  ClientBackend
	RefData  RefData
	Sessions session.Store
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	// PrefillFromRecord seeds edit forms from the stored record.
	PrefillFromRecord bool
}

// RouterConfig holds the configured handlers of the panel.
type RouterConfig struct {
	Dashboard *DashboardHandler
	Clients   *ClientHandler
	Edit      *EditHandler
	Geo       *GeoHandler
}

// NewRouterConfig wires every handler from d.
func NewRouterConfig(d Deps) *RouterConfig {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	base := Base{Sessions: d.Sessions, Logger: logger, Metrics: d.Metrics}
	return &RouterConfig{
		Dashboard: NewDashboardHandler(base, d.Backend),
		Clients:   NewClientHandler(base, d.Backend),
		Edit:      NewEditHandler(base, d.Backend, d.RefData, d.PrefillFromRecord),
		Geo:       NewGeoHandler(base, d.RefData),
	}
}
