package controllers

import (
	"net/http"

	cartdto "github.com/grocerrypoint/grocerrypoint-backend/api/controllers/cart/dto"
	"github.com/grocerrypoint/grocerrypoint-backend/api/middleware"
	"github.com/grocerrypoint/grocerrypoint-backend/api/responses"
	"github.com/grocerrypoint/grocerrypoint-backend/api/validators"
	checkoutsvc "github.com/grocerrypoint/grocerrypoint-backend/internal/checkout"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/orders"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/logger"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/types"
)

// Checkout submits the session cart as an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		session, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), session, checkoutsvc.SubmitInput{
			ShippingAddress: payload.ShippingAddress,
			DeliveryTime:    enums.DeliverySlot(payload.DeliveryTime),
			PaymentMethod:   enums.PaymentMethod(payload.PaymentMethod),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

// CheckoutStatus reports the submission state so the form can show progress,
// the last failure or the confirmed order.
func CheckoutStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}
		responses.WriteSuccess(w, svc.Status(r.Context(), sessionID))
	}
}

// CheckoutAttempts lists the session's submission journal, newest first.
func CheckoutAttempts(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}

		params, err := validators.PageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.Attempts(r.Context(), sessionID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func sessionFromRequest(r *http.Request) (checkoutsvc.Session, error) {
	ctx := r.Context()
	session := checkoutsvc.Session{
		ID:     middleware.SessionIDFromContext(ctx),
		UserID: middleware.UserIDFromContext(ctx),
		Token:  middleware.AccessTokenFromContext(ctx),
	}
	if session.ID == "" {
		return checkoutsvc.Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing")
	}
	return session, nil
}

// checkoutRequest mirrors the checkout form. Field checks live in the
// checkout service so every violation is reported together.
type checkoutRequest struct {
	ShippingAddress types.ShippingAddress `json:"shippingAddress" validate:"-"`
	DeliveryTime    string                `json:"deliveryTime"`
	PaymentMethod   string                `json:"paymentMethod"`
}

type checkoutResponse struct {
	OrderID     string              `json:"order_id"`
	Status      string              `json:"status"`
	OrderStatus enums.OrderStatus   `json:"order_status,omitempty"`
	TotalAmount string              `json:"total_amount"`
	Pricing     cartdto.PricingView `json:"pricing"`
	Items       []orders.OrderItem  `json:"items,omitempty"`
	Checkout    checkoutsvc.Status  `json:"checkout"`
}

func newCheckoutResponse(result *checkoutsvc.Result) checkoutResponse {
	if result == nil {
		return checkoutResponse{}
	}
	resp := checkoutResponse{
		OrderID:     result.OrderID,
		Status:      string(result.Status.State),
		TotalAmount: result.Pricing.GrandTotal.StringFixed(2),
		Pricing:     cartdto.NewPricingView(result.Pricing),
		Checkout:    result.Status,
	}
	if result.Order != nil {
		resp.OrderStatus = result.Order.Status
		resp.Items = result.Order.Items
	}
	return resp
}
