package refdata

import (
	_ "embed"
	"fmt"
	"strconv"
	"sync"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

var (
	//go:embed data/languages.yaml
	languagesYAML []byte
	//go:embed data/timezones.yaml
	timezonesYAML []byte

	staticOnce sync.Once
	languages  []Language
	zoneCodes  []string
	staticErr  error
)

// InvalidTimezoneLabel is shown when a stored timezone cannot be resolved.
const InvalidTimezoneLabel = "Invalid timezone"

func loadStatic() {
	staticOnce.Do(func() {
		if err := yaml.Unmarshal(languagesYAML, &languages); err != nil {
			staticErr = fmt.Errorf("refdata: languages: %w", err)
			return
		}
		if err := yaml.Unmarshal(timezonesYAML, &zoneCodes); err != nil {
			staticErr = fmt.Errorf("refdata: timezones: %w", err)
		}
	})
}

// GMTLabel renders the current UTC offset of the IANA zone tz as
// "GMT", "GMT+6" or "GMT+5:30". An empty tz yields "" and an unknown one
// InvalidTimezoneLabel.
func GMTLabel(tz string, now time.Time) string {
	if tz == "" {
		return ""
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return InvalidTimezoneLabel
	}
	_, offset := now.In(loc).Zone()
	if offset == 0 {
		return "GMT"
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	label := "GMT" + sign + strconv.Itoa(offset/3600)
	if m := (offset % 3600) / 60; m != 0 {
		label += fmt.Sprintf(":%02d", m)
	}
	return label
}

// timezoneLabel renders "(GMT+05:30) Asia/Kolkata" for dropdowns.
func timezoneLabel(loc *time.Location, code string, now time.Time) string {
	_, offset := now.In(loc).Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("(GMT%c%02d:%02d) %s", sign, offset/3600, (offset%3600)/60, code)
}
