package models

// Each partial update carries exactly one field group of Client.

// NewClient is the body of "add client".
type NewClient struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
	Company     string `json:"company"`
	Position    string `json:"position"`
}

// AboutUpdate is the contact field group plus an optional profile picture.
// It is sent as multipart form data.
type AboutUpdate struct {
	NewClient
	ProfilePic *FileUpload `json:"-"`
}

type DemographicUpdate struct {
	Country    string   `json:"country"`
	State      string   `json:"state"`
	City       string   `json:"city"`
	Address    string   `json:"address"`
	PostalCode string   `json:"postal_code"`
	Timezone   string   `json:"timezone"`
	Language   []string `json:"language"`
}

type BillingUpdate struct {
	BillTo         string `json:"bill_to"`
	TaxID          string `json:"tax_id"`
	BillingAddress string `json:"billing_address"`
	BillingPhone   string `json:"billing_phone"`
	CountryCode    string `json:"country_code"`
	BillingEmail   string `json:"billing_email"`
}

type DetailsReferenceUpdate struct {
	Details   string `json:"details"`
	Reference string `json:"reference"`
}

type SettingsUpdate struct {
	CanAccessPortal bool    `json:"can_access_portal"`
	Password        *string `json:"password,omitempty"`
}

// FileUpload is an uploaded file held in memory until it is forwarded.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (f *FileUpload) Size() int { return len(f.Data) }
