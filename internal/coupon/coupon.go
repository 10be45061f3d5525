// Package coupon checks shopper-entered codes against the single accepted
// promotional code. The result is informational: it never changes the order
// total.
package coupon

import (
	"strings"

	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
)

// DefaultCode is the accepted code when none is configured.
const DefaultCode = "SAVE10"

// Evaluator compares codes against one accepted value, ignoring case.
type Evaluator struct {
	accepted string
}

// NewEvaluator builds an evaluator for the accepted code, falling back to DefaultCode.
func NewEvaluator(accepted string) Evaluator {
	accepted = strings.TrimSpace(accepted)
	if accepted == "" {
		accepted = DefaultCode
	}
	return Evaluator{accepted: accepted}
}

// AcceptedCode returns the configured code.
func (e Evaluator) AcceptedCode() string {
	if e.accepted == "" {
		return DefaultCode
	}
	return e.accepted
}

// Apply returns accepted when code matches the accepted value case-insensitively.
func (e Evaluator) Apply(code string) enums.CouponStatus {
	code = strings.TrimSpace(code)
	if code != "" && strings.EqualFold(code, e.AcceptedCode()) {
		return enums.CouponStatusAccepted
	}
	return enums.CouponStatusRejected
}

// Field is the transient coupon input state kept alongside a cart.
type Field struct {
	Input  string             `json:"input"`
	Status enums.CouponStatus `json:"status"`
}

// NewField returns an empty, unapplied field.
func NewField() Field {
	return Field{Status: enums.CouponStatusUnapplied}
}

// SetInput records new input. A rejected status is cleared once the input changes.
func (f *Field) SetInput(value string) {
	if value == f.Input {
		return
	}
	f.Input = value
	if f.Status == enums.CouponStatusRejected {
		f.Status = enums.CouponStatusUnapplied
	}
}

// Apply evaluates the current input and stores the result.
func (f *Field) Apply(e Evaluator) enums.CouponStatus {
	f.Status = e.Apply(f.Input)
	return f.Status
}

// Reset clears the input and status.
func (f *Field) Reset() {
	*f = NewField()
}

// Normalized returns the field with an empty status mapped to unapplied.
func (f Field) Normalized() Field {
	if !f.Status.IsValid() {
		f.Status = enums.CouponStatusUnapplied
	}
	return f
}
