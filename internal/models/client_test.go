package models

import (
	"encoding/json"
	"testing"
)

func ptr(s string) *string { return &s }

func TestClient_Languages(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
		want []string
	}{
		{"absent", nil, nil},
		{"json list", ptr(`["english","bengali"]`), []string{"english", "bengali"}},
		{"comma list", ptr("english, french"), []string{"english", "french"}},
		{"blank", ptr("  "), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{Language: tt.raw}
			got := c.Languages()
			if len(got) != len(tt.want) {
				t.Fatalf("Languages() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Languages()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestClient_DecodeNullableFields(t *testing.T) {
	var c Client
	body := `{"id":7,"name":"Ana Diaz","email":"ana@example.com","phone":"5551234567","country_code":null,"state":"Texas","city":null,"can_access_portal":1}`
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.CountryCode != nil || c.City != nil {
		t.Errorf("expected null fields to stay nil")
	}
	if Str(c.State) != "Texas" || !c.HasPortalAccess() {
		t.Errorf("unexpected decode result: %+v", c)
	}
	if c.StateCity() != "Texas" {
		t.Errorf("StateCity() with missing city = %q, want %q", c.StateCity(), "Texas")
	}
	c.City = ptr("Austin")
	if c.StateCity() != "Texas, Austin" {
		t.Errorf("StateCity() = %q", c.StateCity())
	}
	c.State = nil
	if c.StateCity() != "Austin" {
		t.Errorf("StateCity() with missing state = %q", c.StateCity())
	}
	c.City = nil
	if c.StateCity() != "" {
		t.Errorf("StateCity() with neither = %q, want empty", c.StateCity())
	}
}

func TestClient_SplitName(t *testing.T) {
	first, last := (&Client{Name: "Al van Smith"}).SplitName()
	if first != "Al" || last != "van Smith" {
		t.Errorf("SplitName() = %q, %q", first, last)
	}
}

func TestClient_LastUpdateLabel(t *testing.T) {
	c := &Client{LastUpdate: "2024-03-05 10:00:00"}
	if got := c.LastUpdateLabel(); got != "Tuesday, Mar 5, 2024" {
		t.Errorf("LastUpdateLabel() = %q", got)
	}
	c.LastUpdate = "garbage"
	if got := c.LastUpdateLabel(); got != "garbage" {
		t.Errorf("LastUpdateLabel() fallback = %q", got)
	}
}

func TestSharedFile_Name(t *testing.T) {
	f := SharedFile{URL: "https://files.example.com/clients/7/contract%202024.pdf?sig=abc"}
	if got := f.Name(); got != "contract%202024.pdf" {
		t.Errorf("Name() = %q", got)
	}
}

func TestSettingsUpdate_OmitsAbsentPassword(t *testing.T) {
	b, _ := json.Marshal(SettingsUpdate{CanAccessPortal: true})
	if string(b) != `{"can_access_portal":true}` {
		t.Errorf("unexpected body %s", b)
	}
}
