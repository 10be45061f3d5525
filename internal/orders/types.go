package orders

import (
	"time"

	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// OrderItem is one line of the item snapshot sent with an order.
type OrderItem struct {
	Product  string          `json:"product"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Discount decimal.Decimal `json:"discount"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	Items           []OrderItem           `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	DeliveryTime    enums.DeliverySlot    `json:"deliveryTime"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
}

// Order is the order document returned by the order API.
type Order struct {
	ID              string                `json:"_id"`
	User            string                `json:"user,omitempty"`
	Items           []OrderItem           `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	DeliveryTime    enums.DeliverySlot    `json:"deliveryTime"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
	Status          enums.OrderStatus     `json:"status,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// wire types send amounts as JSON numbers; the order API stores them as numbers.
type wireItem struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
}

type wireCreateRequest struct {
	Items           []wireItem            `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	DeliveryTime    enums.DeliverySlot    `json:"deliveryTime"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
	TotalAmount     float64               `json:"totalAmount"`
}

func toWire(req CreateOrderRequest) wireCreateRequest {
	items := make([]wireItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, wireItem{
			Product:  item.Product,
			Name:     item.Name,
			Price:    item.Price.InexactFloat64(),
			Discount: item.Discount.InexactFloat64(),
			Quantity: item.Quantity,
			Image:    item.Image,
		})
	}
	return wireCreateRequest{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		DeliveryTime:    req.DeliveryTime,
		PaymentMethod:   req.PaymentMethod,
		TotalAmount:     req.TotalAmount.Round(2).InexactFloat64(),
	}
}
