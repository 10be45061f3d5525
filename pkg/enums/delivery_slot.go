package enums

import "fmt"

// DeliverySlot is the delivery window picked at checkout.
type DeliverySlot string

const (
	DeliverySlotMorning   DeliverySlot = "morning"
	DeliverySlotAfternoon DeliverySlot = "afternoon"
	DeliverySlotEvening   DeliverySlot = "evening"
)

var validDeliverySlots = []DeliverySlot{
	DeliverySlotMorning,
	DeliverySlotAfternoon,
	DeliverySlotEvening,
}

// String implements fmt.Stringer.
func (v DeliverySlot) String() string {
	return string(v)
}

// IsValid reports whether the value is a known DeliverySlot.
func (v DeliverySlot) IsValid() bool {
	for _, candidate := range validDeliverySlots {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseDeliverySlot converts raw input into a DeliverySlot.
func ParseDeliverySlot(value string) (DeliverySlot, error) {
	for _, candidate := range validDeliverySlots {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery slot %q", value)
}
