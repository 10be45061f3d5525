package cart

import (
	"strings"

	"github.com/grocerrypoint/grocerrypoint-backend/internal/pricing"
	"github.com/shopspring/decimal"
)

// DefaultQuantity is used when an add request carries no usable quantity.
const DefaultQuantity = 1

// Product is the catalogue snapshot sent when a shopper adds an item.
type Product struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Discount decimal.Decimal `json:"discount"`
	Image    string          `json:"image,omitempty"`
	Category string          `json:"category,omitempty"`
}

// CartItem is one product line in a session cart.
type CartItem struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Discount decimal.Decimal `json:"discount"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
	Category string          `json:"category,omitempty"`
}

func newItem(product Product, qty int) CartItem {
	return CartItem{
		ID:       strings.TrimSpace(product.ID),
		Name:     product.Name,
		Price:    product.Price,
		Discount: product.Discount,
		Quantity: qty,
		Image:    product.Image,
		Category: product.Category,
	}
}

// Line exposes the fields the pricing calculator reads.
func (i CartItem) Line() pricing.Line {
	return pricing.Line{
		Price:    i.Price,
		Discount: i.Discount,
		Quantity: i.Quantity,
	}
}

// EffectivePrice is the discounted unit price.
func (i CartItem) EffectivePrice() decimal.Decimal {
	return pricing.EffectivePrice(i.Line())
}

// Lines converts items into pricing lines.
func Lines(items []CartItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.Line())
	}
	return lines
}
