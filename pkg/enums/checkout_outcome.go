package enums

import "fmt"

// CheckoutOutcome records how a submission attempt ended.
type CheckoutOutcome string

const (
	CheckoutOutcomeConfirmed CheckoutOutcome = "confirmed"
	CheckoutOutcomeFailed    CheckoutOutcome = "failed"
)

var validCheckoutOutcomes = []CheckoutOutcome{
	CheckoutOutcomeConfirmed,
	CheckoutOutcomeFailed,
}

// String implements fmt.Stringer.
func (v CheckoutOutcome) String() string {
	return string(v)
}

// IsValid reports whether the value is a known CheckoutOutcome.
func (v CheckoutOutcome) IsValid() bool {
	for _, candidate := range validCheckoutOutcomes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseCheckoutOutcome converts raw input into a CheckoutOutcome.
func ParseCheckoutOutcome(value string) (CheckoutOutcome, error) {
	for _, candidate := range validCheckoutOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout outcome %q", value)
}
