package main

import (
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/diewo77/go-crm-panel/auth"
	"github.com/diewo77/go-crm-panel/httpx"
	"github.com/diewo77/go-crm-panel/i18n"
	"github.com/diewo77/go-crm-panel/internal/backend"
	"github.com/diewo77/go-crm-panel/internal/handlers"
	"github.com/diewo77/go-crm-panel/internal/metrics"
	"github.com/diewo77/go-crm-panel/view"
)

// Options tune the global middleware chain.
type Options struct {
	SessionTTL time.Duration
	// CSRFKey is the 32-byte token key; nil disables CSRF protection.
	CSRFKey []byte
	// Secure marks cookies Secure and enables the strict TLS origin checks.
	Secure bool
}

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *handlers.RouterConfig
	metrics   *metrics.Metrics
	logger    *zap.Logger
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *handlers.RouterConfig, m *metrics.Metrics, logger *zap.Logger, opts Options) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
		metrics:   m,
		logger:    logger,
	}
	app.setupRoutes()

	// outermost first: request id, access log, session, preferences, cookies for the backend signer, csrf
	var h http.Handler = app.mux
	if opts.CSRFKey != nil {
		h = app.protect(h, opts)
	}
	h = withInboundCookies(h)
	h = withPreferences(h)
	h = auth.Middleware(opts.SessionTTL)(h)
	h = withLogging(logger, h)
	app.handler = httpx.RequestID(h)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Dashboard
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /{$}", a.routerCfg.Dashboard.Show)

	// ─────────────────────────────────────────────────────────────────────────
	// Clients: list, add, selection, export, view, delete
	// ─────────────────────────────────────────────────────────────────────────
	ch := a.routerCfg.Clients

	a.mux.HandleFunc("GET /clients", ch.List)
	a.mux.HandleFunc("POST /clients", ch.Create)
	a.mux.HandleFunc("GET /clients/export", ch.Export)
	a.mux.HandleFunc("POST /clients/select", ch.Select)
	a.mux.HandleFunc("POST /clients/select-all", ch.SelectAll)
	a.mux.HandleFunc("POST /clients/select/clear", ch.ClearSelection)
	a.mux.HandleFunc("POST /clients/close", ch.Close)
	a.mux.HandleFunc("GET /clients/{id}", ch.View)
	a.mux.HandleFunc("POST /clients/{id}/delete", ch.Delete)

	// ─────────────────────────────────────────────────────────────────────────
	// Client editing: one form per section, plus the geography cascade
	// ─────────────────────────────────────────────────────────────────────────
	eh := a.routerCfg.Edit
	gh := a.routerCfg.Geo

	a.mux.HandleFunc("GET /clients/{id}/edit", eh.Edit)
	a.mux.HandleFunc("POST /clients/{id}/edit/{section}", eh.Submit)
	a.mux.HandleFunc("POST /clients/{id}/edit/settings/generate-password", eh.GeneratePassword)
	a.mux.HandleFunc("POST /clients/{id}/geo/country", gh.Country)
	a.mux.HandleFunc("POST /clients/{id}/geo/state", gh.State)
	a.mux.HandleFunc("POST /clients/{id}/geo/city", gh.City)

	// Reference data for browser scripts
	a.mux.HandleFunc("GET /api/refdata/countries", gh.Countries)
	a.mux.HandleFunc("GET /api/refdata/states", gh.States)
	a.mux.HandleFunc("GET /api/refdata/cities", gh.Cities)

	// ─────────────────────────────────────────────────────────────────────────
	// Operations
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.Handle("GET /metrics", a.metrics.Handler())
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// protect wraps next with gorilla/csrf. Over plain HTTP the request is marked
// as such so the origin check does not demand a TLS referer.
func (a *App) protect(next http.Handler, opts Options) http.Handler {
	protected := csrf.Protect(opts.CSRFKey,
		csrf.Secure(opts.Secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Warn("csrf rejected",
				zap.String("path", r.URL.Path),
				zap.String("request_id", httpx.RequestIDFromContext(r.Context())),
				zap.Error(csrf.FailureReason(r)))
			msg := i18n.T(i18n.LangFromContext(r.Context()), "error_csrf")
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusForbidden, msg, nil)
				return
			}
			http.Error(w, msg, http.StatusForbidden)
		})),
	)(next)
	if opts.Secure {
		return protected
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// withPreferences injects language and theme preferences.
// Language: query (persisted in a cookie) > cookie > Accept-Language > default.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		lang := ""
		if c, err := r.Cookie("lang"); err == nil && i18n.Supported(c.Value) {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); i18n.Supported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		if lang == "" {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		ctx = i18n.WithLang(ctx, lang)

		if c, err := r.Cookie("theme"); err == nil && (c.Value == "light" || c.Value == "dark") {
			ctx = view.WithTheme(ctx, c.Value)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withInboundCookies exposes the browser's cookies to the backend signer.
func withInboundCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := backend.WithInboundCookies(r.Context(), r.Cookies())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware.
func withLogging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", httpx.RequestIDFromContext(r.Context())))
	})
}
