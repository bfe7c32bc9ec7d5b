package schema

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// SplitPhone derives (country_code, phone) from the combined number typed
// into a phone input and the dial code the input detected. The country code
// is the dial code's digits; the phone is the combined value with the first
// "+<dial code>" removed. With no dial code, it is detected from a number
// written in international format.
func SplitPhone(combined, dialCode string) (countryCode, phone string) {
	combined = strings.TrimSpace(combined)
	countryCode = digitsOnly(dialCode)
	if countryCode == "" {
		countryCode = DetectDialCode(combined)
	}
	if countryCode == "" {
		return "", combined
	}
	return countryCode, strings.Replace(combined, "+"+countryCode, "", 1)
}

// DetectDialCode returns the country calling code of an international
// number ("+44 20 ..." -> "44"), or "" when none can be determined.
func DetectDialCode(number string) string {
	if !strings.HasPrefix(strings.TrimSpace(number), "+") {
		return ""
	}
	num, err := phonenumbers.Parse(number, "")
	if err != nil || num.GetCountryCode() == 0 {
		return ""
	}
	return strconv.Itoa(int(num.GetCountryCode()))
}

// PlausibleMobile reports whether phone (optionally with a leading "+") is
// all digits and forms a possible number under the given dial code.
func PlausibleMobile(phone, countryCode string) bool {
	p := strings.TrimPrefix(phone, "+")
	if p == "" || digitsOnly(p) != p {
		return false
	}
	if countryCode == "" || digitsOnly(countryCode) != countryCode {
		return true
	}
	num, err := phonenumbers.Parse("+"+countryCode+p, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
