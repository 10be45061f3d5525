package coupon

import (
	"testing"

	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
)

func TestEvaluatorApply(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator("SAVE10")
	cases := map[string]enums.CouponStatus{
		"save10":     enums.CouponStatusAccepted,
		"SAVE10":     enums.CouponStatusAccepted,
		" Save10 ":   enums.CouponStatusAccepted,
		"SAVE20":     enums.CouponStatusRejected,
		"save 10":    enums.CouponStatusRejected,
		"":           enums.CouponStatusRejected,
		"SAVE10SAVE": enums.CouponStatusRejected,
	}
	for code, want := range cases {
		if got := eval.Apply(code); got != want {
			t.Fatalf("Apply(%q) = %s, want %s", code, got, want)
		}
	}
}

func TestNewEvaluatorDefaultsCode(t *testing.T) {
	t.Parallel()

	if got := NewEvaluator("  ").AcceptedCode(); got != DefaultCode {
		t.Fatalf("expected default code, got %q", got)
	}
	var zero Evaluator
	if zero.Apply("save10") != enums.CouponStatusAccepted {
		t.Fatal("zero evaluator should accept the default code")
	}
}

func TestFieldClearsRejectionOnInputChange(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator("")
	field := NewField()
	field.SetInput("WRONG")
	if status := field.Apply(eval); status != enums.CouponStatusRejected {
		t.Fatalf("expected rejected, got %s", status)
	}

	field.SetInput("WRONG")
	if field.Status != enums.CouponStatusRejected {
		t.Fatal("same input should keep the rejection")
	}

	field.SetInput("SAVE1")
	if field.Status != enums.CouponStatusUnapplied {
		t.Fatalf("expected rejection cleared, got %s", field.Status)
	}

	field.SetInput("save10")
	if status := field.Apply(eval); status != enums.CouponStatusAccepted {
		t.Fatalf("expected accepted, got %s", status)
	}

	field.Reset()
	if field.Input != "" || field.Status != enums.CouponStatusUnapplied {
		t.Fatalf("unexpected field after reset %+v", field)
	}
}

func TestFieldNormalized(t *testing.T) {
	t.Parallel()

	if got := (Field{}).Normalized(); got.Status != enums.CouponStatusUnapplied {
		t.Fatalf("expected unapplied, got %q", got.Status)
	}
}
