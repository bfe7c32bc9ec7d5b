package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/diewo77/go-crm-panel/httpx"
	"github.com/diewo77/go-crm-panel/internal/backend"
	"github.com/diewo77/go-crm-panel/internal/models"
	"github.com/diewo77/go-crm-panel/internal/refdata"
	"github.com/diewo77/go-crm-panel/internal/schema"
	"github.com/diewo77/go-crm-panel/internal/session"
	"github.com/diewo77/go-crm-panel/validation"
)

// EditHandler serves the sectioned edit surface of one client.
type EditHandler struct {
	Base
	backend ClientBackend
	refdata RefData
	// prefill seeds the forms from the stored record instead of leaving them blank.
	prefill bool
}

func NewEditHandler(base Base, b ClientBackend, rd RefData, prefillFromRecord bool) *EditHandler {
	return &EditHandler{Base: base, backend: b, refdata: rd, prefill: prefillFromRecord}
}

func editURL(id int64, section string) string {
	return "/clients/" + strconv.FormatInt(id, 10) + "/edit?section=" + url.QueryEscape(section)
}

// Edit opens the edit surface. An unknown ?section= keeps the current one.
func (h *EditHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	st, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st.Shell.OpenEdit(id)
	if s := r.URL.Query().Get("section"); s != "" {
		st.Shell.SetSection(s)
	}
	st.Geo.ForClient(id)

	c, err := h.backend.GetClient(r.Context(), id)
	if backend.IsNotFound(err) {
		st.Shell.Close()
		h.save(r, st)
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.flashFailure(r, st, "get_client", err, "error_generic_load")
		c = nil
	}
	if h.prefill && c != nil && st.Shell.Section == session.SectionDemographic {
		h.seedGeo(r.Context(), &st.Geo, c)
	}
	h.renderEdit(w, r, st, http.StatusOK, c, nil)
}

func (h *EditHandler) renderEdit(w http.ResponseWriter, r *http.Request, st *session.State, status int, c *models.Client, f *form) {
	id := st.Shell.SelectedID
	section := st.Shell.Section
	if f == nil {
		f = h.initialForm(st, section, c)
	}
	data := map[string]any{
		"Client":   c,
		"ClientID": id,
		"Section":  section,
		"Sections": session.Sections,
		"Form":     f,
	}
	switch section {
	case session.SectionDemographic:
		ctx := r.Context()
		data["Geo"] = st.Geo
		data["Countries"] = h.refdata.ListCountries(ctx)
		data["Languages"] = h.refdata.ListLanguages(ctx)
		data["Timezones"] = h.refdata.ListTimezones(ctx)
	case session.SectionDetailsReference:
		data["References"] = schema.References
	case session.SectionSharedFiles:
		data["Files"] = h.sharedFiles(r, st, id)
	}
	h.page(w, r, st, status, "clients/edit.html", data)
}

// initialForm applies the prefill policy. A generated password and the
// demographic draft are shown whatever the policy.
func (h *EditHandler) initialForm(st *session.State, section string, c *models.Client) *form {
	f := &form{Values: map[string]string{}, Multi: map[string][]string{}}
	if h.prefill && c != nil {
		prefill(f, section, c)
	}
	switch section {
	case session.SectionSettings:
		if pw := st.PopPassword(); pw != "" {
			f.Values["password"] = pw
		}
	case session.SectionDemographic:
		for k, vs := range st.Geo.Draft {
			if k == "language" {
				f.Multi[k] = vs
			} else if len(vs) > 0 {
				f.Values[k] = vs[0]
			}
		}
	}
	return f
}

func prefill(f *form, section string, c *models.Client) {
	v := f.Values
	switch section {
	case session.SectionAbout:
		v["first_name"], v["last_name"] = c.SplitName()
		v["email"] = c.Email
		v["phone"] = c.Phone
		v["country_code"] = models.Str(c.CountryCode)
		v["company"] = c.Company
		v["position"] = c.Position
	case session.SectionDemographic:
		v["address"] = models.Str(c.Address)
		v["postal_code"] = models.Str(c.PostalCode)
		v["timezone"] = models.Str(c.Timezone)
		f.Multi["language"] = c.Languages()
	case session.SectionBilling:
		v["bill_to"] = models.Str(c.BillTo)
		v["tax_id"] = models.Str(c.TaxID)
		v["billing_address"] = models.Str(c.BillingAddress)
		v["billing_phone"] = models.Str(c.BillingPhone)
		v["country_code"] = models.Str(c.CountryCode)
		v["billing_email"] = models.Str(c.BillingEmail)
	case session.SectionDetailsReference:
		v["details"] = models.Str(c.Details)
		v["reference"] = models.Str(c.Reference)
	case session.SectionSettings:
		if c.HasPortalAccess() {
			v["can_access_portal"] = "on"
		}
	}
}

// seedGeo walks the cascade down to the stored country, state and city so
// the prefilled dropdowns start on the record's values.
func (h *EditHandler) seedGeo(ctx context.Context, g *session.GeoSelection, c *models.Client) {
	if g.CountryID != 0 {
		return
	}
	countries := h.refdata.ListCountries(ctx)
	country, ok := refdata.FindPlaceByName(countries, models.Str(c.Country))
	if !ok {
		return
	}
	t, _ := g.SelectCountry(country.ID, countries)
	g.ApplyStates(t, h.refdata.ListStates(ctx, t.CountryID))
	state, ok := refdata.FindPlaceByName(g.States, models.Str(c.State))
	if !ok {
		return
	}
	t, _ = g.SelectState(state.ID)
	g.ApplyCities(t, h.refdata.ListCities(ctx, t.CountryID, t.StateID))
	if city, ok := refdata.FindPlaceByName(g.Cities, models.Str(c.City)); ok {
		g.SelectCity(city.ID)
	}
}

// sharedFiles returns the file list of id, fetching it when the cached one
// belongs to another record or an upload made it stale.
func (h *EditHandler) sharedFiles(r *http.Request, st *session.State, id int64) []models.SharedFile {
	if !st.Files.NeedsRefresh(id) {
		return st.Files.Files
	}
	files, err := h.backend.ListSharedFiles(r.Context(), id)
	if err != nil {
		h.log().Warn("shared files unavailable", zap.Int64("client_id", id), zap.Error(err))
		st.Files = session.SharedFiles{ClientID: id, Stale: true}
		return nil
	}
	st.Files = session.SharedFiles{ClientID: id, Files: files}
	return files
}

// submission is a validated section form ready to be sent.
type submission struct {
	schema     string
	violations validation.Violations
	send       func(context.Context) error
	okCode     string
	failCode   string
}

// sectionSchemas maps each edit section to the schema of its field group.
var sectionSchemas = map[string]string{
	session.SectionAbout:            schema.About,
	session.SectionDemographic:      schema.Demographic,
	session.SectionBilling:          schema.Billing,
	session.SectionDetailsReference: schema.DetailsReference,
	session.SectionSettings:         schema.Settings,
	session.SectionSharedFiles:      schema.SharedFile,
}

func (h *EditHandler) validate(section string, id int64, in schema.Input, geo *session.GeoSelection) (submission, bool) {
	s, ok := schema.For(sectionSchemas[section])
	if !ok {
		return submission{}, false
	}
	if section == session.SectionDemographic {
		// Place names come from the cascade, resolved when each id was chosen.
		in.Form.Set("country", geo.Country)
		in.Form.Set("state", geo.State)
		in.Form.Set("city", geo.City)
	}
	payload, v := s.Parse(in)
	sub := submission{schema: s.Name, violations: v, okCode: "notice_client_updated", failCode: "error_generic_update"}
	switch p := payload.(type) {
	case models.AboutUpdate:
		sub.send = func(ctx context.Context) error { return h.backend.UpdateAbout(ctx, id, p) }
	case models.DemographicUpdate:
		sub.send = func(ctx context.Context) error { return h.backend.UpdateDemographic(ctx, id, p) }
	case models.BillingUpdate:
		sub.send = func(ctx context.Context) error { return h.backend.UpdateBilling(ctx, id, p) }
	case models.DetailsReferenceUpdate:
		sub.send = func(ctx context.Context) error { return h.backend.UpdateDetailsReference(ctx, id, p) }
	case models.SettingsUpdate:
		sub.send = func(ctx context.Context) error { return h.backend.UpdateSettings(ctx, id, p) }
		sub.okCode, sub.failCode = "notice_settings_updated", "error_generic_settings"
	case models.FileUpload:
		sub.send = func(ctx context.Context) error { return h.backend.UploadSharedFile(ctx, id, p) }
		sub.okCode, sub.failCode = "notice_file_uploaded", "error_generic_upload"
	default:
		return submission{}, false
	}
	return sub, true
}

// Submit validates one section form and sends it as a partial update.
// Invalid forms are shown again without any backend call.
func (h *EditHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	section := r.PathValue("section")
	if !ok || !session.ValidSection(section) {
		http.NotFound(w, r)
		return
	}
	st, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := readInput(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	st.Shell.OpenEdit(id)
	st.Shell.SetSection(section)
	st.Geo.ForClient(id)

	sub, ok := h.validate(section, id, in, &st.Geo)
	if !ok {
		http.NotFound(w, r)
		return
	}
	posted := &form{Values: firstValues(in.Form), Multi: map[string][]string{"language": in.Form["language"]}}
	if !sub.violations.Empty() {
		h.Metrics.IncrementFormRejection(sub.schema)
		if httpx.WantsJSON(r) {
			h.save(r, st)
			httpx.JSONError(w, http.StatusUnprocessableEntity, tr(r, "error_form_invalid"), sub.violations)
			return
		}
		posted.Errors = sub.violations
		h.renderEdit(w, r, st, http.StatusUnprocessableEntity, h.headerRecord(r, id), posted)
		return
	}

	if err := sub.send(r.Context()); err != nil {
		msg := h.flashFailure(r, st, section, err, sub.failCode)
		if httpx.WantsJSON(r) {
			st.PopNotice()
			h.save(r, st)
			httpx.JSONError(w, failureStatus(err), msg, nil)
			return
		}
		h.renderEdit(w, r, st, failureStatus(err), h.headerRecord(r, id), posted)
		return
	}

	switch section {
	case session.SectionSharedFiles:
		st.Files.Stale = true
	case session.SectionDemographic:
		st.Geo.Draft = nil
	}
	if httpx.WantsJSON(r) {
		h.save(r, st)
		httpx.JSON(w, http.StatusOK, map[string]string{"message": tr(r, sub.okCode)})
		return
	}
	st.Flash(session.NoticeSuccess, tr(r, sub.okCode))
	h.redirect(w, r, st, editURL(id, section))
}

// headerRecord fetches the record for the page header of a re-rendered form.
func (h *EditHandler) headerRecord(r *http.Request, id int64) *models.Client {
	c, err := h.backend.GetClient(r.Context(), id)
	if err != nil {
		h.log().Warn("client header unavailable", zap.Int64("client_id", id), zap.Error(err))
		return nil
	}
	return c
}

// GeneratePassword fills the settings form with a fresh password. Nothing
// is sent until the form is submitted.
func (h *EditHandler) GeneratePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	st, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pw, err := schema.GeneratePassword(nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st.Shell.OpenEdit(id)
	st.Shell.SetSection(session.SectionSettings)
	if httpx.WantsJSON(r) {
		h.save(r, st)
		httpx.JSON(w, http.StatusOK, map[string]string{"password": pw})
		return
	}
	st.GeneratedPassword = pw
	st.Flash(session.NoticeSuccess, tr(r, "notice_password_generated"))
	h.redirect(w, r, st, editURL(id, session.SectionSettings))
}
