package session

import "slices"

// Area is a top-level navigation area.
type Area string

const (
	AreaDashboard Area = "Dashboard"
	AreaClients   Area = "Clients"
)

// Edit sections, in navigation order.
const (
	SectionAbout            = "aboutClient"
	SectionDemographic      = "demographic"
	SectionBilling          = "billing"
	SectionDetailsReference = "details-reference"
	SectionSharedFiles      = "shared-files"
	SectionSettings         = "settings"

	DefaultSection = SectionAbout
)

var Sections = []string{
	SectionAbout,
	SectionDemographic,
	SectionBilling,
	SectionDetailsReference,
	SectionSharedFiles,
	SectionSettings,
}

func ValidSection(s string) bool { return slices.Contains(Sections, s) }

// Shell is the navigation state. Editing implies a selected record, and
// leaving a record resets the edit section.
type Shell struct {
	ActiveArea Area   `json:"active_area"`
	SelectedID int64  `json:"selected_id"`
	Editing    bool   `json:"editing"`
	Section    string `json:"section"`
}

// Activate switches the top-level area. Leaving Clients drops the selection.
func (s *Shell) Activate(a Area) {
	if s.ActiveArea == a {
		return
	}
	s.ActiveArea = a
	if a != AreaClients {
		s.Close()
	}
}

// Select shows the detail view of id.
func (s *Shell) Select(id int64) {
	if id <= 0 {
		s.Close()
		return
	}
	if s.SelectedID != id {
		s.Section = DefaultSection
	}
	s.ActiveArea = AreaClients
	s.SelectedID = id
	s.Editing = false
}

// OpenEdit shows the edit surface of id.
func (s *Shell) OpenEdit(id int64) {
	if id <= 0 {
		s.Close()
		return
	}
	if s.SelectedID != id || s.Section == "" {
		s.Section = DefaultSection
	}
	s.ActiveArea = AreaClients
	s.SelectedID = id
	s.Editing = true
}

// SetSection switches the edit section; it reports false for unknown
// sections or when nothing is being edited.
func (s *Shell) SetSection(section string) bool {
	if !s.Editing || !ValidSection(section) {
		return false
	}
	s.Section = section
	return true
}

// Close clears the selected record, which also ends edit mode.
func (s *Shell) Close() {
	s.SelectedID = 0
	s.Editing = false
	s.Section = DefaultSection
}
