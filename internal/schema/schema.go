// Package schema holds the validation rules for each editable field group
// of a client record. A schema only ever reads and reports on the fields of
// its own group.
package schema

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/diewo77/go-crm-panel/internal/models"
	"github.com/diewo77/go-crm-panel/validation"
)

// Section names, as used in URLs and the edit navigation.
const (
	About            = "about"
	AddClient        = "add"
	Demographic      = "demographic"
	Billing          = "billing"
	DetailsReference = "details"
	Settings         = "settings"
	SharedFile       = "shared_file"
)

const (
	MaxProfilePicBytes = 5_000_000
	NameMin, NameMax   = 2, 50
	PhoneMin, PhoneMax = 10, 13
	CountryCodeMax     = 3
	PostalCodeMax      = 10
	PasswordMin        = 2
	PasswordMax        = 50
)

var (
	ProfilePicTypes = []string{"image/jpeg", "image/png", "image/jpg"}
	SharedFileTypes = []string{"application/pdf"}
	References      = []string{"facebook", "whatsapp", "messenger"}

	digitsRe = regexp.MustCompile(`^\d+$`)
)

// Input is a decoded form submission.
type Input struct {
	Form  url.Values
	Files map[string][]models.FileUpload
}

func (in Input) get(field string) string {
	return strings.TrimSpace(in.Form.Get(field))
}

func (in Input) file(field string) *models.FileUpload {
	fs := in.Files[field]
	if len(fs) == 0 {
		return nil
	}
	return &fs[0]
}

// Schema is a validator bound to one field group.
type Schema struct {
	Name   string
	Fields []string
	parse  func(Input) (any, validation.Violations)
}

// Parse validates in and decodes it into the group's payload type
// (models.AboutUpdate for About, and so on).
func (s Schema) Parse(in Input) (any, validation.Violations) { return s.parse(in) }

func (s Schema) Validate(in Input) validation.Violations {
	_, v := s.parse(in)
	return v
}

func parser[T any](fn func(Input) (T, validation.Violations)) func(Input) (any, validation.Violations) {
	return func(in Input) (any, validation.Violations) { return fn(in) }
}

var registry = map[string]Schema{
	About: {About, []string{"first_name", "last_name", "email", "phone", "country_code", "company", "position", "profile_pic"},
		parser(ValidateAbout)},
	AddClient: {AddClient, []string{"first_name", "last_name", "email", "phone", "country_code", "company", "position"},
		parser(ValidateNewClient)},
	Demographic: {Demographic, []string{"country", "state", "city", "address", "postal_code", "timezone", "language"},
		parser(ValidateDemographic)},
	Billing: {Billing, []string{"bill_to", "tax_id", "billing_address", "billing_phone", "country_code", "billing_email"},
		parser(ValidateBilling)},
	DetailsReference: {DetailsReference, []string{"details", "reference"},
		parser(ValidateDetailsReference)},
	Settings: {Settings, []string{"can_access_portal", "password"},
		parser(ValidateSettings)},
	SharedFile: {SharedFile, []string{"shared_file"},
		parser(ValidateSharedFile)},
}

// For returns the schema registered under name.
func For(name string) (Schema, bool) {
	s, ok := registry[name]
	return s, ok
}

// Names lists every registered schema.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

func checkPhone(field, phone, countryCode string, v validation.Violations) {
	validation.MinLen(field, phone, PhoneMin, "Phone number must be at least 10 digits", v)
	validation.MaxLen(field, phone, PhoneMax, "Phone number cannot exceed 13 digits", v)
	if !PlausibleMobile(phone, countryCode) {
		v.Add(field, "Please enter a valid phone number")
	}
}

func checkCountryCode(cc string, v validation.Violations) {
	validation.Required("country_code", cc, "Country code is required", v)
	validation.MaxLen("country_code", cc, CountryCodeMax, "Country code cannot exceed 3 digits", v)
	validation.Matches("country_code", cc, digitsRe, "Country code must contain only numbers", v)
}

func checkName(field, label, value string, v validation.Violations) {
	validation.MinLen(field, value, NameMin, label+" must be at least 2 characters", v)
	validation.MaxLen(field, value, NameMax, label+" cannot exceed 50 characters", v)
}

// contact reads the shared contact group. The phone input posts the combined
// number in "phone" and the selected dial code in "dial_code"; an explicit
// "country_code" wins over the dial code.
func contact(in Input) (models.NewClient, validation.Violations) {
	dial := in.get("country_code")
	if dial == "" {
		dial = in.get("dial_code")
	}
	cc, phone := SplitPhone(in.get("phone"), dial)
	c := models.NewClient{
		FirstName:   in.get("first_name"),
		LastName:    in.get("last_name"),
		Email:       in.get("email"),
		Phone:       phone,
		CountryCode: cc,
		Company:     in.get("company"),
		Position:    in.get("position"),
	}
	v := make(validation.Violations)
	checkName("first_name", "First name", c.FirstName, v)
	checkName("last_name", "Last name", c.LastName, v)
	validation.Email("email", c.Email, "Please enter a valid email address", v)
	checkPhone("phone", c.Phone, c.CountryCode, v)
	checkCountryCode(c.CountryCode, v)
	checkName("company", "Company", c.Company, v)
	checkName("position", "Position", c.Position, v)
	return c, v
}

func ValidateNewClient(in Input) (models.NewClient, validation.Violations) {
	return contact(in)
}

func ValidateAbout(in Input) (models.AboutUpdate, validation.Violations) {
	c, v := contact(in)
	out := models.AboutUpdate{NewClient: c}
	if pic := in.file("profile_pic"); pic != nil && pic.Size() > 0 {
		if pic.Size() >= MaxProfilePicBytes {
			v.Add("profile_pic", "File can't be bigger than 5MB.")
		}
		validation.OneOf("profile_pic", pic.ContentType, ProfilePicTypes, "File format must be either jpg, jpeg, or png.", v)
		out.ProfilePic = pic
	}
	return out, v
}

func ValidateDemographic(in Input) (models.DemographicUpdate, validation.Violations) {
	d := models.DemographicUpdate{
		Country:    in.get("country"),
		State:      in.get("state"),
		City:       in.get("city"),
		Address:    in.get("address"),
		PostalCode: in.get("postal_code"),
		Timezone:   in.get("timezone"),
	}
	for _, l := range in.Form["language"] {
		if l = strings.TrimSpace(l); l != "" && !slices.Contains(d.Language, l) {
			d.Language = append(d.Language, l)
		}
	}
	v := make(validation.Violations)
	validation.Required("country", d.Country, "Country is required", v)
	validation.Required("state", d.State, "State is required", v)
	validation.Required("city", d.City, "City is required", v)
	validation.Required("address", d.Address, "Address is required", v)
	validation.Required("postal_code", d.PostalCode, "Postal code is required", v)
	validation.MaxLen("postal_code", d.PostalCode, PostalCodeMax, "Postal code cannot exceed 10 characters", v)
	validation.Matches("postal_code", d.PostalCode, digitsRe, "Postal code must contain only numbers", v)
	validation.Required("timezone", d.Timezone, "Timezone is required", v)
	if len(d.Language) == 0 {
		v.Add("language", "At least one language is required")
	}
	return d, v
}

func ValidateBilling(in Input) (models.BillingUpdate, validation.Violations) {
	dial := in.get("country_code")
	if dial == "" {
		dial = in.get("dial_code")
	}
	cc, phone := SplitPhone(in.get("billing_phone"), dial)
	b := models.BillingUpdate{
		BillTo:         in.get("bill_to"),
		TaxID:          in.get("tax_id"),
		BillingAddress: in.get("billing_address"),
		BillingPhone:   phone,
		CountryCode:    cc,
		BillingEmail:   in.get("billing_email"),
	}
	v := make(validation.Violations)
	validation.MinLen("bill_to", b.BillTo, 3, "Billing Details required", v)
	validation.MinLen("tax_id", b.TaxID, 4, "Tax id is required", v)
	validation.MinLen("billing_address", b.BillingAddress, 5, "Billing address is required", v)
	checkPhone("billing_phone", b.BillingPhone, b.CountryCode, v)
	checkCountryCode(b.CountryCode, v)
	validation.Email("billing_email", b.BillingEmail, "Please enter a valid email address", v)
	return b, v
}

func ValidateDetailsReference(in Input) (models.DetailsReferenceUpdate, validation.Violations) {
	d := models.DetailsReferenceUpdate{
		Details:   in.get("details"),
		Reference: in.get("reference"),
	}
	v := make(validation.Violations)
	validation.Required("details", d.Details, "Details required", v)
	validation.Required("reference", d.Reference, "Please Choose the Reference", v)
	validation.OneOf("reference", d.Reference, References, "Please Choose the Reference", v)
	return d, v
}

// ValidateSettings reads the portal flag as a checkbox and treats an empty
// password as "unchanged".
func ValidateSettings(in Input) (models.SettingsUpdate, validation.Violations) {
	s := models.SettingsUpdate{}
	switch strings.ToLower(in.get("can_access_portal")) {
	case "on", "true", "1", "yes":
		s.CanAccessPortal = true
	}
	v := make(validation.Violations)
	if pw := in.Form.Get("password"); pw != "" {
		validation.MinLen("password", pw, PasswordMin, "Password must be at least 2 characters", v)
		validation.MaxLen("password", pw, PasswordMax, "Password cannot exceed 50 characters", v)
		s.Password = &pw
	}
	return s, v
}

func ValidateSharedFile(in Input) (models.FileUpload, validation.Violations) {
	v := make(validation.Violations)
	files := in.Files["shared_file"]
	switch {
	case len(files) == 0 || files[0].Size() == 0:
		v.Add("shared_file", "Please select a file to upload")
		return models.FileUpload{}, v
	case len(files) > 1:
		v.Add("shared_file", "Only one file can be uploaded at a time")
	}
	validation.OneOf("shared_file", files[0].ContentType, SharedFileTypes, "Only PDF files are allowed", v)
	return files[0], v
}
