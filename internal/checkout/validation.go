package checkout

import (
	"fmt"

	"github.com/grocerrypoint/grocerrypoint-backend/internal/cart"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/types"
)

// SubmitInput is what the shopper fills in on the checkout form.
type SubmitInput struct {
	ShippingAddress types.ShippingAddress
	DeliveryTime    enums.DeliverySlot
	PaymentMethod   enums.PaymentMethod
}

// FieldViolation describes one invalid checkout field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LineViolation describes a cart line that cannot be ordered.
type LineViolation struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	RequestedQty int    `json:"requested_qty"`
}

// ValidateInput checks the form fields and returns every problem at once.
func ValidateInput(input SubmitInput) error {
	var violations []FieldViolation
	if err := input.ShippingAddress.Validate(); err != nil {
		violations = append(violations, FieldViolation{Field: "shippingAddress", Message: err.Error()})
	}
	if !input.DeliveryTime.IsValid() {
		violations = append(violations, FieldViolation{Field: "deliveryTime", Message: fmt.Sprintf("unknown delivery slot %q", input.DeliveryTime)})
	}
	if !input.PaymentMethod.IsValid() {
		violations = append(violations, FieldViolation{Field: "paymentMethod", Message: fmt.Sprintf("unknown payment method %q", input.PaymentMethod)})
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "checkout details are incomplete").WithDetails(map[string]any{
		"violations": violations,
	})
}

// ValidateLines ensures the cart is non-empty and every line has a quantity of at least one.
func ValidateLines(items []cart.CartItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	var violations []LineViolation
	for _, item := range items {
		if item.Quantity < 1 {
			violations = append(violations, LineViolation{
				ProductID:    item.ID,
				ProductName:  item.Name,
				RequestedQty: item.Quantity,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("invalid quantity for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
