package model

// Settings are the tenant's company details.
type Settings struct {
	ID            string `json:"id,omitempty"`
	CompanyName   string `json:"company_name"`
	CompanyEmail  string `json:"company_email"`
	CompanyNumber string `json:"company_number"`
	CompanyLogo   string `json:"company_logo"`
	CompanyURL    string `json:"company_url"`
}
