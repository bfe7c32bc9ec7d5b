// Package handlers serves the panel pages. Every handler loads the browser's
// session.State, applies one step, saves it and then renders or redirects.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/diewo77/go-crm-panel/auth"
	"github.com/diewo77/go-crm-panel/httpx"
	"github.com/diewo77/go-crm-panel/i18n"
	"github.com/diewo77/go-crm-panel/internal/backend"
	"github.com/diewo77/go-crm-panel/internal/metrics"
	"github.com/diewo77/go-crm-panel/internal/models"
	"github.com/diewo77/go-crm-panel/internal/refdata"
	"github.com/diewo77/go-crm-panel/internal/schema"
	"github.com/diewo77/go-crm-panel/internal/session"
	"github.com/diewo77/go-crm-panel/view"
)

// ClientBackend is the part of the CRM backend the panel talks to.
type ClientBackend interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	AddClient(ctx context.Context, in models.NewClient) error
	DeleteClient(ctx context.Context, id int64) error
	UpdateAbout(ctx context.Context, id int64, in models.AboutUpdate) error
	UpdateDemographic(ctx context.Context, id int64, in models.DemographicUpdate) error
	UpdateBilling(ctx context.Context, id int64, in models.BillingUpdate) error
	UpdateDetailsReference(ctx context.Context, id int64, in models.DetailsReferenceUpdate) error
	UpdateSettings(ctx context.Context, id int64, in models.SettingsUpdate) error
	UploadSharedFile(ctx context.Context, id int64, f models.FileUpload) error
	ListSharedFiles(ctx context.Context, id int64) ([]models.SharedFile, error)
}

// RefData fills the dropdowns. Lookups never fail; an unavailable list is empty.
type RefData interface {
	ListCountries(ctx context.Context) []refdata.Place
	ListStates(ctx context.Context, countryID int) []refdata.Place
	ListCities(ctx context.Context, countryID, stateID int) []refdata.Place
	ListLanguages(ctx context.Context) []refdata.Language
	ListTimezones(ctx context.Context) []refdata.Timezone
}

var errNoSession = errors.New("handlers: request carries no session")

// maxUploadBytes bounds a multipart body kept in memory.
const maxUploadBytes = 10 << 20

// Base carries what every handler needs.
type Base struct {
	Sessions session.Store
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

func (b *Base) log() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

func (b *Base) load(r *http.Request) (*session.State, error) {
	id, ok := auth.SessionIDFromContext(r.Context())
	if !ok {
		return nil, errNoSession
	}
	return b.Sessions.Load(r.Context(), id)
}

func (b *Base) save(r *http.Request, st *session.State) {
	if err := b.Sessions.Save(r.Context(), st); err != nil {
		b.log().Error("session save failed", zap.String("request_id", httpx.RequestIDFromContext(r.Context())), zap.Error(err))
	}
}

// page renders name with the shell state and the pending notice, then saves st.
func (b *Base) page(w http.ResponseWriter, r *http.Request, st *session.State, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["Shell"] = st.Shell
	data["Notice"] = st.PopNotice()
	b.save(r, st)
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		b.log().Error("render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (b *Base) redirect(w http.ResponseWriter, r *http.Request, st *session.State, to string) {
	b.save(r, st)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (b *Base) fail(w http.ResponseWriter, r *http.Request, err error) {
	b.log().Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// flashFailure records a failed backend call as an error notice: the
// backend's own message when it sent one, the translated fallback otherwise.
func (b *Base) flashFailure(r *http.Request, st *session.State, op string, err error, fallbackCode string) string {
	b.log().Warn("backend call failed", zap.String("op", op), zap.String("request_id", httpx.RequestIDFromContext(r.Context())), zap.Error(err))
	msg := backend.UserMessage(err, tr(r, fallbackCode))
	st.Flash(session.NoticeError, msg)
	return msg
}

func tr(r *http.Request, code string) string {
	return i18n.T(i18n.LangFromContext(r.Context()), code)
}

// failureStatus maps a backend error to the status of the re-rendered page.
func failureStatus(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func formInt(r *http.Request, field string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(field)))
	return n
}

// readInput decodes an urlencoded or multipart body. File parts without a
// name and content are the browser's empty file inputs and are skipped.
func readInput(r *http.Request) (schema.Input, error) {
	in := schema.Input{Files: map[string][]models.FileUpload{}}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return in, err
		}
		in.Form = r.PostForm
		return in, nil
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return in, err
	}
	in.Form = r.PostForm
	for field, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			if fh.Filename == "" && fh.Size == 0 {
				continue
			}
			f, err := fh.Open()
			if err != nil {
				return in, err
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return in, err
			}
			ctype := fh.Header.Get("Content-Type")
			if ctype == "" || ctype == "application/octet-stream" {
				ctype = http.DetectContentType(data)
			}
			in.Files[field] = append(in.Files[field], models.FileUpload{Filename: fh.Filename, ContentType: ctype, Data: data})
		}
	}
	return in, nil
}

// firstValues flattens a form for re-rendering single-valued inputs.
func firstValues(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k, vs := range form {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
