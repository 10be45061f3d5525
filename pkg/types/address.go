package types

import (
	"fmt"
	"strings"
	"unicode"
)

// ShippingAddress is the delivery address captured on the checkout form and
// forwarded verbatim to the order API.
type ShippingAddress struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required,min=7,max=20"`
	Street   string `json:"address" validate:"required,max=300"`
	Landmark string `json:"landmark,omitempty" validate:"omitempty,max=120"`
	City     string `json:"city" validate:"required,max=80"`
	State    string `json:"state" validate:"required,max=80"`
	Pincode  string `json:"pincode" validate:"required,len=6,numeric"`
}

// Normalize trims surrounding whitespace from every field.
func (a ShippingAddress) Normalize() ShippingAddress {
	return ShippingAddress{
		FullName: strings.TrimSpace(a.FullName),
		Phone:    strings.TrimSpace(a.Phone),
		Street:   strings.TrimSpace(a.Street),
		Landmark: strings.TrimSpace(a.Landmark),
		City:     strings.TrimSpace(a.City),
		State:    strings.TrimSpace(a.State),
		Pincode:  strings.TrimSpace(a.Pincode),
	}
}

// Validate reports the first missing or malformed field.
func (a ShippingAddress) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"fullName", a.FullName},
		{"phone", a.Phone},
		{"address", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"pincode", a.Pincode},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("shipping address: missing %s", field.name)
		}
	}

	pincode := strings.TrimSpace(a.Pincode)
	if len(pincode) != 6 || strings.IndexFunc(pincode, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return fmt.Errorf("shipping address: pincode must be 6 digits")
	}
	return nil
}
