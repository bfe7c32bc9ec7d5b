package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Client is the CRM record as served by the backend. Optional fields are
// pointers so an absent value is distinguishable from an empty string.
type Client struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	CountryCode *string `json:"country_code"`
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	ProfilePic  *string `json:"profile_pic"`

	// Demographic
	Country    *string `json:"country"`
	State      *string `json:"state"`
	City       *string `json:"city"`
	Address    *string `json:"address"`
	PostalCode *string `json:"postal_code"`
	Timezone   *string `json:"timezone"`
	Language   *string `json:"language"`

	// Billing
	BillTo         *string `json:"bill_to"`
	TaxID          *string `json:"tax_id"`
	BillingAddress *string `json:"billing_address"`
	BillingPhone   *string `json:"billing_phone"`
	BillingEmail   *string `json:"billing_email"`

	Details   *string `json:"details"`
	Reference *string `json:"reference"`

	SharedFiles     int    `json:"shared_files"`
	CanAccessPortal int    `json:"can_access_portal"`
	LastUpdate      string `json:"last_update"`
}

// Str dereferences an optional field.
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Languages decodes the stored language list. The backend keeps it as a
// JSON array; a plain comma separated value is tolerated.
func (c *Client) Languages() []string {
	raw := strings.TrimSpace(Str(c.Language))
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out
	}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// StateCity joins whichever of state and city are known.
func (c *Client) StateCity() string {
	var parts []string
	for _, p := range []*string{c.State, c.City} {
		if v := strings.TrimSpace(Str(p)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// SplitName splits the stored full name into first and last name.
func (c *Client) SplitName() (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(c.Name), " ")
	return first, strings.TrimSpace(last)
}

func (c *Client) HasPortalAccess() bool { return c.CanAccessPortal != 0 }

// LastUpdated parses LastUpdate, accepting RFC3339 and the backend's
// "2006-01-02 15:04:05" layout.
func (c *Client) LastUpdated() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, c.LastUpdate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LastUpdateLabel renders the last update as "Monday, Jan 2, 2006".
func (c *Client) LastUpdateLabel() string {
	t, ok := c.LastUpdated()
	if !ok {
		return c.LastUpdate
	}
	return t.Format("Monday, Jan 2, 2006")
}

// SharedFile is an uploaded artifact, identified by its storage URL.
type SharedFile struct {
	URL string `json:"url"`
}

// Name is the last path segment of the URL.
func (f SharedFile) Name() string {
	u := f.URL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}
