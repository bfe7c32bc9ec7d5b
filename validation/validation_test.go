package validation

import (
	"regexp"
	"testing"
)

func TestRequiredAndFirstViolationWins(t *testing.T) {
	v := make(Violations)
	Required("name", "   ", "Name is required", v)
	MinLen("name", "", 2, "Name too short", v)
	if v["name"] != "Name is required" {
		t.Fatalf("expected first violation to win, got %q", v["name"])
	}
	if v.Empty() {
		t.Fatalf("expected violations")
	}
}

func TestLengthBoundsCountRunes(t *testing.T) {
	v := make(Violations)
	MinLen("city", "Zü", 2, "short", v)
	MaxLen("city", "Zürich", 6, "long", v)
	if !v.Empty() {
		t.Fatalf("unexpected violations: %v", v)
	}
	MaxLen("city", "Zürich!", 6, "long", v)
	if v["city"] != "long" {
		t.Fatalf("expected max length violation, got %v", v)
	}
}

func TestEmail(t *testing.T) {
	cases := map[string]bool{
		"al@example.com":        true,
		"al.smith+crm@acme.io":  true,
		"Al <al@example.com>":   false,
		"al@localhost":          false,
		"not-an-email":          false,
		"":                      false,
	}
	for in, ok := range cases {
		v := make(Violations)
		Email("email", in, "bad", v)
		if v.Empty() != ok {
			t.Fatalf("Email(%q): expected valid=%v, got violations %v", in, ok, v)
		}
	}
}

func TestMatchesOneOfMerge(t *testing.T) {
	v := make(Violations)
	Matches("postal_code", "12a", regexp.MustCompile(`^\d+$`), "digits", v)
	OneOf("reference", "twitter", []string{"facebook", "whatsapp"}, "pick one", v)
	other := Violations{"postal_code": "other", "tax_id": "short"}
	v.Merge(other)
	if v["postal_code"] != "digits" || v["reference"] != "pick one" || v["tax_id"] != "short" {
		t.Fatalf("unexpected merge result: %v", v)
	}
}
