package cartdto

import "github.com/shopspring/decimal"

// AddItemRequest carries the product snapshot from the catalogue page.
type AddItemRequest struct {
	Product  ProductPayload `json:"product"`
	Quantity int            `json:"quantity" validate:"max=999"`
}

type ProductPayload struct {
	ID       string          `json:"_id" validate:"required,max=128"`
	Name     string          `json:"name" validate:"required,max=256"`
	Price    decimal.Decimal `json:"price" validate:"money"`
	Discount decimal.Decimal `json:"discount" validate:"percent"`
	Image    string          `json:"image,omitempty" validate:"max=2048"`
	Category string          `json:"category,omitempty" validate:"max=128"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"max=999"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"max=64"`
}
