package pricing

import (
	"testing"

	"github.com/grocerrypoint/grocerrypoint-backend/pkg/config"
	"github.com/shopspring/decimal"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", value, err)
	}
	return d
}

func line(price, discount string, qty int) Line {
	return Line{
		Price:    decimal.RequireFromString(price),
		Discount: decimal.RequireFromString(discount),
		Quantity: qty,
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(t, want)) {
		t.Fatalf("%s: expected %s, got %s", name, want, got.String())
	}
}

func TestSummarizeDiscountedBelowThreshold(t *testing.T) {
	t.Parallel()

	summary := DefaultRules().Summarize([]Line{line("100", "10", 2)})

	assertDecimal(t, "subtotal", summary.Subtotal, "180.00")
	assertDecimal(t, "savings", summary.Savings, "20.00")
	assertDecimal(t, "shipping", summary.ShippingFee, "31.90")
	assertDecimal(t, "grand total", summary.GrandTotal, "211.90")
	assertDecimal(t, "to free delivery", summary.AmountToFreeDelivery, "319")
	if summary.FreeDelivery {
		t.Fatal("expected paid delivery")
	}
}

func TestSummarizeAboveThresholdShipsFree(t *testing.T) {
	t.Parallel()

	summary := DefaultRules().Summarize([]Line{line("300", "0", 2)})

	assertDecimal(t, "subtotal", summary.Subtotal, "600")
	assertDecimal(t, "shipping", summary.ShippingFee, "0")
	assertDecimal(t, "grand total", summary.GrandTotal, "600")
	assertDecimal(t, "progress", summary.ProgressPercent, "100")
	assertDecimal(t, "to free delivery", summary.AmountToFreeDelivery, "0")
	if !summary.FreeDelivery {
		t.Fatal("expected free delivery")
	}
}

func TestShippingFeeTiers(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	cases := []struct {
		subtotal string
		want     string
	}{
		{"0", "49.90"},
		{"10", "48.90"},
		{"498.95", "0.01"},
		{"498.99", "0.01"},
		{"499", "0"},
		{"1000", "0"},
	}
	// a gap under 0.10 still costs the shopper one paisa
	for _, tc := range cases {
		assertDecimal(t, "shipping("+tc.subtotal+")", rules.ShippingFee(dec(t, tc.subtotal)), tc.want)
	}
}

func TestShippingFeeIsCapped(t *testing.T) {
	t.Parallel()

	rules := Rules{
		FreeDeliveryThreshold: decimal.NewFromInt(2000),
		MaxShippingFee:        decimal.NewFromInt(50),
		ShippingGapDivisor:    decimal.NewFromInt(10),
	}
	assertDecimal(t, "capped", rules.ShippingFee(decimal.NewFromInt(100)), "50")
}

func TestShippingInvariants(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	subtotals := []string{"0", "1", "50", "250", "498", "498.91", "498.96", "498.99", "499", "500", "1200"}
	for _, raw := range subtotals {
		sub := dec(t, raw)
		fee := rules.ShippingFee(sub)
		free := sub.GreaterThanOrEqual(rules.FreeDeliveryThreshold)
		if free {
			if !fee.IsZero() {
				t.Fatalf("subtotal %s: expected free shipping, got %s", raw, fee)
			}
		} else if !fee.IsPositive() || fee.GreaterThan(rules.MaxShippingFee) {
			t.Fatalf("subtotal %s: fee %s outside (0, max]", raw, fee)
		}
		if !rules.GrandTotal(sub).Equal(sub.Add(fee)) {
			t.Fatalf("subtotal %s: grand total mismatch", raw)
		}

		summary := rules.Summarize([]Line{{Price: sub, Quantity: 1}})
		if summary.FreeDelivery != free {
			t.Fatalf("subtotal %s: free delivery %v, want %v", raw, summary.FreeDelivery, free)
		}
		if !free && !summary.ShippingFee.IsPositive() {
			t.Fatalf("subtotal %s: summary shipping %s must be positive", raw, summary.ShippingFee)
		}
	}
}

func TestSubtotalAndSavingsMixedLines(t *testing.T) {
	t.Parallel()

	lines := []Line{
		line("100", "10", 2),
		line("45.50", "0", 3),
		line("80", "25", 1),
	}
	assertDecimal(t, "subtotal", Subtotal(lines), "376.5")
	assertDecimal(t, "savings", Savings(lines), "40")
	assertDecimal(t, "effective", EffectivePrice(lines[2]), "60")
}

func TestDiscountOutsideRangeIsBounded(t *testing.T) {
	t.Parallel()

	assertDecimal(t, "negative", EffectivePrice(line("50", "-5", 1)), "50")
	assertDecimal(t, "over 100", EffectivePrice(line("50", "150", 1)), "0")
}

func TestProgressPercent(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	assertDecimal(t, "empty", rules.ProgressPercent(decimal.Zero), "0")
	assertDecimal(t, "partial", rules.ProgressPercent(dec(t, "249.5")), "50")

	noThreshold := rules
	noThreshold.FreeDeliveryThreshold = decimal.Zero
	assertDecimal(t, "zero threshold", noThreshold.ProgressPercent(decimal.NewFromInt(10)), "100")
}

func TestSummarizeEmptyCart(t *testing.T) {
	t.Parallel()

	summary := DefaultRules().Summarize(nil)
	assertDecimal(t, "subtotal", summary.Subtotal, "0")
	assertDecimal(t, "shipping", summary.ShippingFee, "49.90")
	assertDecimal(t, "grand total", summary.GrandTotal, "49.90")
}

func TestRulesFromConfig(t *testing.T) {
	t.Parallel()

	rules := RulesFromConfig(config.PricingConfig{
		FreeDeliveryThreshold: 999,
		MaxShippingFee:        40,
		ShippingGapDivisor:    0,
	})
	assertDecimal(t, "threshold", rules.FreeDeliveryThreshold, "999")
	assertDecimal(t, "max fee", rules.MaxShippingFee, "40")
	assertDecimal(t, "divisor fallback", rules.ShippingGapDivisor, "10")
}
