package enums

import "fmt"

// CouponStatus is the tri-state result shown next to the coupon input.
type CouponStatus string

const (
	CouponStatusUnapplied CouponStatus = "unapplied"
	CouponStatusAccepted  CouponStatus = "accepted"
	CouponStatusRejected  CouponStatus = "rejected"
)

var validCouponStatuss = []CouponStatus{
	CouponStatusUnapplied,
	CouponStatusAccepted,
	CouponStatusRejected,
}

// String implements fmt.Stringer.
func (v CouponStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known CouponStatus.
func (v CouponStatus) IsValid() bool {
	for _, candidate := range validCouponStatuss {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseCouponStatus converts raw input into a CouponStatus.
func ParseCouponStatus(value string) (CouponStatus, error) {
	for _, candidate := range validCouponStatuss {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon status %q", value)
}
