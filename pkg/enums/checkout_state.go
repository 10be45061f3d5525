package enums

import "fmt"

// CheckoutState tracks where a session is in the checkout flow.
type CheckoutState string

const (
	CheckoutStateEditing    CheckoutState = "editing"
	CheckoutStateSubmitting CheckoutState = "submitting"
	CheckoutStateConfirmed  CheckoutState = "confirmed"
	CheckoutStateFailed     CheckoutState = "failed"
)

var validCheckoutStates = []CheckoutState{
	CheckoutStateEditing,
	CheckoutStateSubmitting,
	CheckoutStateConfirmed,
	CheckoutStateFailed,
}

// String implements fmt.Stringer.
func (v CheckoutState) String() string {
	return string(v)
}

// IsValid reports whether the value is a known CheckoutState.
func (v CheckoutState) IsValid() bool {
	for _, candidate := range validCheckoutStates {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseCheckoutState converts raw input into a CheckoutState.
func ParseCheckoutState(value string) (CheckoutState, error) {
	for _, candidate := range validCheckoutStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout state %q", value)
}
