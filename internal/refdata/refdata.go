// Package refdata serves the reference lists behind the panel's dropdowns:
// countries, states, cities, languages and timezones. Lookups never fail;
// an unavailable list comes back empty and the dropdown is disabled.
package refdata

import "strings"

// Place is a country, state or city.
type Place struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Language struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

type Timezone struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// FindPlace returns the entry of list with the given id.
func FindPlace(list []Place, id int) (Place, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return Place{}, false
}

// FindPlaceByName matches a stored name back to its list entry, ignoring case.
func FindPlaceByName(list []Place, name string) (Place, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Place{}, false
	}
	for _, p := range list {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Place{}, false
}
