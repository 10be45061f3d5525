// Package pricing derives cart totals: subtotal, savings, the tiered delivery
// fee and the free delivery progress. Every function is a pure function of
// its inputs and is recomputed on each call.
package pricing

import (
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/config"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Line is the part of a cart item the calculator reads.
type Line struct {
	Price    decimal.Decimal
	Discount decimal.Decimal
	Quantity int
}

// Rules carries the delivery fee constants.
type Rules struct {
	FreeDeliveryThreshold decimal.Decimal
	MaxShippingFee        decimal.Decimal
	ShippingGapDivisor    decimal.Decimal
}

// DefaultRules returns the storefront defaults: free delivery from 499, fee
// capped at 50, one tenth of the remaining gap otherwise.
func DefaultRules() Rules {
	return Rules{
		FreeDeliveryThreshold: decimal.NewFromInt(499),
		MaxShippingFee:        decimal.NewFromInt(50),
		ShippingGapDivisor:    decimal.NewFromInt(10),
	}
}

// RulesFromConfig converts the env-driven pricing section into Rules.
func RulesFromConfig(cfg config.PricingConfig) Rules {
	rules := Rules{
		FreeDeliveryThreshold: decimal.NewFromFloat(cfg.FreeDeliveryThreshold),
		MaxShippingFee:        decimal.NewFromFloat(cfg.MaxShippingFee),
		ShippingGapDivisor:    decimal.NewFromFloat(cfg.ShippingGapDivisor),
	}
	if !rules.ShippingGapDivisor.IsPositive() {
		rules.ShippingGapDivisor = DefaultRules().ShippingGapDivisor
	}
	return rules
}

// Summary is the derived order summary shown next to the cart.
type Summary struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	Savings               decimal.Decimal `json:"savings"`
	ShippingFee           decimal.Decimal `json:"shipping_fee"`
	GrandTotal            decimal.Decimal `json:"grand_total"`
	FreeDeliveryThreshold decimal.Decimal `json:"free_delivery_threshold"`
	AmountToFreeDelivery  decimal.Decimal `json:"amount_to_free_delivery"`
	ProgressPercent       decimal.Decimal `json:"progress_percent"`
	FreeDelivery          bool            `json:"free_delivery"`
}

func discountRate(line Line) decimal.Decimal {
	if !line.Discount.IsPositive() {
		return zero
	}
	if line.Discount.GreaterThan(hundred) {
		return hundred
	}
	return line.Discount
}

// EffectivePrice is the unit price after the item's percentage discount.
func EffectivePrice(line Line) decimal.Decimal {
	rate := discountRate(line)
	if rate.IsZero() {
		return line.Price
	}
	return line.Price.Sub(line.Price.Mul(rate).Div(hundred))
}

// LineTotal is the effective price times quantity.
func LineTotal(line Line) decimal.Decimal {
	return EffectivePrice(line).Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// Subtotal sums the discounted line totals.
func Subtotal(lines []Line) decimal.Decimal {
	total := zero
	for _, line := range lines {
		total = total.Add(LineTotal(line))
	}
	return total
}

// Savings sums price×discount/100×quantity over discounted lines.
func Savings(lines []Line) decimal.Decimal {
	total := zero
	for _, line := range lines {
		rate := discountRate(line)
		if rate.IsZero() {
			continue
		}
		saved := line.Price.Mul(rate).Div(hundred).Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(saved)
	}
	return total
}

// ShippingFee is zero once the subtotal reaches the threshold, otherwise the
// remaining gap divided by the divisor, capped at MaxShippingFee. The fee is
// rounded up to the paisa so any subtotal below the threshold pays at least
// 0.01.
func (r Rules) ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if r.qualifiesForFreeDelivery(subtotal) {
		return zero
	}
	fee := r.FreeDeliveryThreshold.Sub(subtotal).Div(r.ShippingGapDivisor)
	return decimal.Min(r.MaxShippingFee, fee).RoundCeil(moneyPlaces)
}

func (r Rules) qualifiesForFreeDelivery(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(r.FreeDeliveryThreshold)
}

// GrandTotal is subtotal plus shipping. The coupon never enters this figure.
func (r Rules) GrandTotal(subtotal decimal.Decimal) decimal.Decimal {
	subtotal = subtotal.Round(moneyPlaces)
	return subtotal.Add(r.ShippingFee(subtotal))
}

// ProgressPercent drives the free delivery progress bar, capped at 100.
func (r Rules) ProgressPercent(subtotal decimal.Decimal) decimal.Decimal {
	if !r.FreeDeliveryThreshold.IsPositive() {
		return hundred
	}
	pct := subtotal.Div(r.FreeDeliveryThreshold).Mul(hundred)
	return decimal.Min(hundred, pct).Round(moneyPlaces)
}

// AmountToFreeDelivery is how much more the shopper must add for free delivery.
func (r Rules) AmountToFreeDelivery(subtotal decimal.Decimal) decimal.Decimal {
	gap := r.FreeDeliveryThreshold.Sub(subtotal)
	if gap.IsNegative() {
		return zero
	}
	return gap.Round(moneyPlaces)
}

// Summarize derives every summary figure from the current lines.
func (r Rules) Summarize(lines []Line) Summary {
	subtotal := Subtotal(lines).Round(moneyPlaces)
	shipping := r.ShippingFee(subtotal)
	return Summary{
		Subtotal:              subtotal,
		Savings:               Savings(lines).Round(moneyPlaces),
		ShippingFee:           shipping,
		GrandTotal:            subtotal.Add(shipping),
		FreeDeliveryThreshold: r.FreeDeliveryThreshold,
		AmountToFreeDelivery:  r.AmountToFreeDelivery(subtotal),
		ProgressPercent:       r.ProgressPercent(subtotal),
		FreeDelivery:          r.qualifiesForFreeDelivery(subtotal),
	}
}
