package validation

import (
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Violations maps a form field to the first human-readable problem found on it.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records msg for field unless the field already has a violation.
func (v Violations) Add(field, msg string) {
	if _, exists := v[field]; exists {
		return
	}
	v[field] = msg
}

// Merge copies violations from other, keeping existing entries.
func (v Violations) Merge(other Violations) {
	for f, m := range other {
		v.Add(f, m)
	}
}

// Basic validators
func Required(field, value, msg string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, msg)
	}
}

func MinLen(field, value string, n int, msg string, v Violations) {
	if utf8.RuneCountInString(value) < n {
		v.Add(field, msg)
	}
}

func MaxLen(field, value string, n int, msg string, v Violations) {
	if utf8.RuneCountInString(value) > n {
		v.Add(field, msg)
	}
}

func Matches(field, value string, re *regexp.Regexp, msg string, v Violations) {
	if !re.MatchString(value) {
		v.Add(field, msg)
	}
}

func Email(field, value, msg string, v Violations) {
	addr, err := mail.ParseAddress(value)
	// ParseAddress accepts "Name <a@b>"; only a bare address is valid here.
	if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@")+1:], ".") {
		v.Add(field, msg)
	}
}

func OneOf(field, value string, allowed []string, msg string, v Violations) {
	if !slices.Contains(allowed, value) {
		v.Add(field, msg)
	}
}
