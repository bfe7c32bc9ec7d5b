// Package session holds the per-browser UI state of the panel: navigation,
// list selection, the address cascade and one-shot notices. State is loaded
// from a Store at the start of a request and saved at the end.
package session

import "github.com/diewo77/go-crm-panel/internal/models"

// Notice kinds.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a flash message shown once on the next rendered page.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SharedFiles caches the shared-file list of the record being edited.
type SharedFiles struct {
	ClientID int64               `json:"client_id"`
	Files    []models.SharedFile `json:"files"`
	Stale    bool                `json:"stale"`
}

// NeedsRefresh reports whether the list must be fetched for id.
func (f *SharedFiles) NeedsRefresh(id int64) bool {
	return f.Stale || f.ClientID != id
}

type State struct {
	ID        string       `json:"id"`
	Shell     Shell        `json:"shell"`
	Selection Selection    `json:"selection"`
	Geo       GeoSelection `json:"geo"`
	Files     SharedFiles  `json:"files"`
	Notice    *Notice      `json:"notice,omitempty"`
	// GeneratedPassword prefills the settings form once.
	GeneratedPassword string `json:"generated_password,omitempty"`
}

func New(id string) *State {
	return &State{
		ID:    id,
		Shell: Shell{ActiveArea: AreaDashboard, Section: DefaultSection},
	}
}

func (s *State) Flash(kind, msg string) { s.Notice = &Notice{Kind: kind, Message: msg} }

// PopNotice returns and clears the pending notice.
func (s *State) PopNotice() *Notice {
	n := s.Notice
	s.Notice = nil
	return n
}

// PopPassword returns and clears the generated password.
func (s *State) PopPassword() string {
	p := s.GeneratedPassword
	s.GeneratedPassword = ""
	return p
}
