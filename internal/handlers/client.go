package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/diewo77/go-crm-panel/httpx"
	"github.com/diewo77/go-crm-panel/internal/backend"
	"github.com/diewo77/go-crm-panel/internal/models"
	"github.com/diewo77/go-crm-panel/internal/schema"
	"github.com/diewo77/go-crm-panel/internal/session"
	"github.com/diewo77/go-crm-panel/validation"
)

// form is a form being displayed again with its posted values and problems.
type form struct {
	Values map[string]string
	Multi  map[string][]string
	Errors validation.Violations
}

// clientRow is one line of the client table.
type clientRow struct {
	models.Client
	Selected bool
}

type ClientHandler struct {
	Base
	backend ClientBackend
}

func NewClientHandler(base Base, b ClientBackend) *ClientHandler {
	return &ClientHandler{Base: base, backend: b}
}

// List shows all clients with the selection toolbar and the add form.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	st, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st.Shell.Activate(session.AreaClients)

	clients, err := h.backend.ListClients(r.Context())
	if httpx.WantsJSON(r) {
		if err != nil {
			h.save(r, st)
			httpx.JSONError(w, failureStatus(err), backend.UserMessage(err, tr(r, "error_generic_load")), nil)
			return
		}
		st.Selection.Sync(clientIDs(clients))
		h.save(r, st)
		httpx.JSON(w, http.StatusOK, map[string]any{"data": clients, "selected": st.Selection.IDs})
		return
	}
	h.renderList(w, r, st, http.StatusOK, clients, err, nil)
}

func (h *ClientHandler) renderList(w http.ResponseWriter, r *http.Request, st *session.State, status int, clients []models.Client, loadErr error, add *form) {
	data := map[string]any{"AddOpen": add != nil}
	if add == nil {
		add = &form{}
	}
	data["Add"] = add
	if loadErr != nil {
		h.log().Warn("client list unavailable", zap.Error(loadErr))
		data["LoadError"] = backend.UserMessage(loadErr, tr(r, "error_generic_load"))
	} else {
		st.Selection.Sync(clientIDs(clients))
	}
	rows := make([]clientRow, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, clientRow{Client: c, Selected: st.Selection.Has(c.ID)})
	}
	data["Clients"] = rows
	data["SelectedCount"] = st.Selection.Count()
	data["AllSelected"] = st.Selection.AllSelected()
	h.page(w, r, st, status, "clients/index.html", data)
}

func clientIDs(clients []models.Client) []int64 {
	ids := make([]int64, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	return ids
}

// Create handles the add-client form.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	st, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	st.Shell.Activate(session.AreaClients)

	payload, v := schema.ValidateNewClient(schema.Input{Form: r.PostForm})
	if !v.Empty() {
		h.Metrics.IncrementFormRejection(schema.AddClient)
		if httpx.WantsJSON(r) {
			h.save(r, st)
			httpx.JSONError(w, http.StatusUnprocessableEntity, tr(r, "error_form_invalid"), v)
			return
		}
		clients, loadErr := h.backend.ListClients(r.Context())
		h.renderList(w, r, st, http.StatusUnprocessableEntity, clients, loadErr, &form{Values: firstValues(r.PostForm), Errors: v})
		return
	}

	if err := h.backend.AddClient(r.Context(), payload); err != nil {
		msg := h.flashFailure(r, st, "add_client", err, "error_generic_add")
		if httpx.WantsJSON(r) {
			st.PopNotice()
			h.save(r, st)
			httpx.JSONError(w, failureStatus(err), msg, nil)
			return
		}
		clients, loadErr := h.backend.ListClients(r.Context())
		h.renderList(w, r, st, failureStatus(err), clients, loadErr, &form{Values: firstValues(r.PostForm)})
		return
	}

	if httpx.WantsJSON(r) {
		h.save(r, st)
		httpx.JSON(w, http.StatusCreated, map[string]string{"message": tr(r, "notice_client_added")})
		return
	}
	st.Flash(session.NoticeSuccess, tr(r, "notice_client_added"))
	h.redirect(w, r, st, "/clients")
}

// View shows a freshly fetched client and makes it the selected record.
func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request) {
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
	st.Shell.Select(id)

	c, err := h.backend.GetClient(r.Context(), id)
	if backend.IsNotFound(err) {
		st.Shell.Close()
		h.save(r, st)
		http.NotFound(w, r)
		return
	}
	if err != nil {
		msg := h.flashFailure(r, st, "get_client", err, "error_generic_load")
		if httpx.WantsJSON(r) {
			st.PopNotice()
			h.save(r, st)
			httpx.JSONError(w, failureStatus(err), msg, nil)
			return
		}
		h.redirect(w, r, st, "/clients")
		return
	}
	if httpx.WantsJSON(r) {
		h.save(r, st)
		httpx.JSON(w, http.StatusOK, map[string]any{"data": c})
		return
	}
	h.page(w, r, st, http.StatusOK, "clients/view.html", map[string]any{
		"Client":    c,
		"Languages": c.Languages(),
	})
}

// Close leaves the detail or edit view.
func (h *ClientHandler) Close(w http.ResponseWriter, r *http.Request) {
	st, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st.Shell.Close()
	h.redirect(w, r, st, "/clients")
}

// Delete removes a client. The list is refetched afterwards, nothing is
// dropped locally.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.backend.DeleteClient(r.Context(), id); err != nil {
		msg := h.flashFailure(r, st, "delete_client", err, "error_generic_delete")
		if httpx.WantsJSON(r) {
			st.PopNotice()
			h.save(r, st)
			httpx.JSONError(w, failureStatus(err), msg, nil)
			return
		}
		h.redirect(w, r, st, "/clients")
		return
	}
	if st.Shell.SelectedID == id {
		st.Shell.Close()
	}
	if httpx.WantsJSON(r) {
		h.save(r, st)
		httpx.JSON(w, http.StatusOK, map[string]string{"message": tr(r, "notice_client_deleted")})
		return
	}
	st.Flash(session.NoticeSuccess, tr(r, "notice_client_deleted"))
	h.redirect(w, r, st, "/clients")
}

// Select toggles one row of the selection.
func (h *ClientHandler) Select(w http.ResponseWriter, r *http.Request) {
	h.selection(w, r, func(sel *session.Selection) {
		id, _ := strconv.ParseInt(r.FormValue("id"), 10, 64)
		sel.Toggle(id)
	})
}

// SelectAll applies the select-all toggle to the loaded rows.
func (h *ClientHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	h.selection(w, r, func(sel *session.Selection) { sel.ToggleAll() })
}

func (h *ClientHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.selection(w, r, func(sel *session.Selection) { sel.Clear() })
}

func (h *ClientHandler) selection(w http.ResponseWriter, r *http.Request, fn func(*session.Selection)) {
	st, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	fn(&st.Selection)
	if httpx.WantsJSON(r) {
		h.save(r, st)
		httpx.JSON(w, http.StatusOK, map[string]any{"selected": st.Selection.IDs, "all": st.Selection.AllSelected()})
		return
	}
	h.redirect(w, r, st, "/clients")
}
