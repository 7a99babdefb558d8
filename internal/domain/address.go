package domain

// Address holds a shipping or billing destination. Required fields are the
// ones consulted by the shipping-cost lookup; there are no cross-field
// invariants beyond presence.
type Address struct {
	FullName     string `json:"full_name" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city" validate:"required"`
	PostalCode   string `json:"postal_code" validate:"required"`
	Country      string `json:"country" validate:"required,iso3166_1_alpha2"`
}
