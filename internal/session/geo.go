package session

import "github.com/diewo77/go-crm-panel/internal/refdata"

// GeoSelection is the country -> state -> city cascade of the demographic
// form. State is only meaningful under the selected country and city under
// the selected state; names are resolved when an id is chosen.
//
// Every country or state choice bumps Seq and hands out a Ticket for the
// list fetch it triggers. A list is applied only with the current ticket,
// so a slow answer for an earlier choice cannot overwrite a newer one.
type GeoSelection struct {
	ClientID int64 `json:"client_id"`
	Seq      uint64 `json:"seq"`

	CountryID int    `json:"country_id"`
	Country   string `json:"country"`
	StateID   int    `json:"state_id"`
	State     string `json:"state"`
	CityID    int    `json:"city_id"`
	City      string `json:"city"`

	States []refdata.Place `json:"states"`
	Cities []refdata.Place `json:"cities"`

	// Draft keeps the other demographic fields typed before a cascade step.
	Draft map[string][]string `json:"draft,omitempty"`
}

// Ticket identifies the list fetch triggered by a cascade step.
type Ticket struct {
	Seq       uint64
	CountryID int
	StateID   int
}

// ForClient resets the cascade when a different record is being edited.
func (g *GeoSelection) ForClient(id int64) {
	if g.ClientID != id {
		*g = GeoSelection{ClientID: id}
	}
}

// SelectCountry chooses a country from countries, clears state and city and
// returns the ticket for the state-list fetch.
func (g *GeoSelection) SelectCountry(id int, countries []refdata.Place) (Ticket, bool) {
	p, ok := refdata.FindPlace(countries, id)
	if !ok {
		return Ticket{}, false
	}
	g.Seq++
	g.CountryID, g.Country = p.ID, p.Name
	g.clearState()
	return Ticket{Seq: g.Seq, CountryID: p.ID}, true
}

// ApplyStates installs the state list fetched for t. Stale tickets are ignored.
func (g *GeoSelection) ApplyStates(t Ticket, states []refdata.Place) bool {
	if t.Seq != g.Seq || t.CountryID != g.CountryID || t.StateID != 0 {
		return false
	}
	g.States = states
	return true
}

// SelectState chooses a state from the held state list, clears the city and
// returns the ticket for the city-list fetch.
func (g *GeoSelection) SelectState(id int) (Ticket, bool) {
	p, ok := refdata.FindPlace(g.States, id)
	if !ok || g.CountryID == 0 {
		return Ticket{}, false
	}
	g.Seq++
	g.StateID, g.State = p.ID, p.Name
	g.clearCity()
	return Ticket{Seq: g.Seq, CountryID: g.CountryID, StateID: p.ID}, true
}

// ApplyCities installs the city list fetched for t. Stale tickets are ignored.
func (g *GeoSelection) ApplyCities(t Ticket, cities []refdata.Place) bool {
	if t.Seq != g.Seq || t.CountryID != g.CountryID || t.StateID != g.StateID || t.StateID == 0 {
		return false
	}
	g.Cities = cities
	return true
}

// SelectCity chooses a city from the held city list.
func (g *GeoSelection) SelectCity(id int) bool {
	p, ok := refdata.FindPlace(g.Cities, id)
	if !ok || g.StateID == 0 {
		return false
	}
	g.CityID, g.City = p.ID, p.Name
	return true
}

func (g *GeoSelection) clearState() {
	g.StateID, g.State = 0, ""
	g.States = nil
	g.clearCity()
}

func (g *GeoSelection) clearCity() {
	g.CityID, g.City = 0, ""
	g.Cities = nil
}
