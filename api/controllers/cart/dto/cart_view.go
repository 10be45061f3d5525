package cartdto

import (
	"github.com/grocerrypoint/grocerrypoint-backend/internal/cart"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/pricing"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
)

// CartView is the cart payload rendered for the storefront. Money values are
// fixed two-decimal strings.
type CartView struct {
	Items   []CartItem  `json:"items"`
	Count   int         `json:"count"`
	Pricing PricingView `json:"pricing"`
	Coupon  CouponView  `json:"coupon"`
	IsEmpty bool        `json:"is_empty"`
}

type CartItem struct {
	ProductID      string `json:"_id"`
	Name           string `json:"name"`
	Price          string `json:"price"`
	Discount       string `json:"discount"`
	EffectivePrice string `json:"effective_price"`
	LineTotal      string `json:"line_total"`
	Quantity       int    `json:"quantity"`
	Image          string `json:"image,omitempty"`
	Category       string `json:"category,omitempty"`
}

type PricingView struct {
	Subtotal              string `json:"subtotal"`
	Savings               string `json:"savings"`
	ShippingFee           string `json:"shipping_fee"`
	GrandTotal            string `json:"grand_total"`
	FreeDeliveryThreshold string `json:"free_delivery_threshold"`
	AmountToFreeDelivery  string `json:"amount_to_free_delivery"`
	ProgressPercent       string `json:"progress_percent"`
	FreeDelivery          bool   `json:"free_delivery"`
}

type CouponView struct {
	Input  string             `json:"input"`
	Status enums.CouponStatus `json:"status"`
}

func NewCartView(view *cart.View) CartView {
	if view == nil {
		return CartView{Items: []CartItem{}, IsEmpty: true}
	}
	items := make([]CartItem, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, CartItem{
			ProductID:      item.ID,
			Name:           item.Name,
			Price:          item.Price.StringFixed(2),
			Discount:       item.Discount.String(),
			EffectivePrice: item.EffectivePrice().StringFixed(2),
			LineTotal:      pricing.LineTotal(item.Line()).StringFixed(2),
			Quantity:       item.Quantity,
			Image:          item.Image,
			Category:       item.Category,
		})
	}
	return CartView{
		Items:   items,
		Count:   view.Count,
		Pricing: NewPricingView(view.Pricing),
		Coupon: CouponView{
			Input:  view.Coupon.Input,
			Status: view.Coupon.Status,
		},
		IsEmpty: view.IsEmpty(),
	}
}

func NewPricingView(summary pricing.Summary) PricingView {
	return PricingView{
		Subtotal:              summary.Subtotal.StringFixed(2),
		Savings:               summary.Savings.StringFixed(2),
		ShippingFee:           summary.ShippingFee.StringFixed(2),
		GrandTotal:            summary.GrandTotal.StringFixed(2),
		FreeDeliveryThreshold: summary.FreeDeliveryThreshold.StringFixed(2),
		AmountToFreeDelivery:  summary.AmountToFreeDelivery.StringFixed(2),
		ProgressPercent:       summary.ProgressPercent.StringFixed(2),
		FreeDelivery:          summary.FreeDelivery,
	}
}
