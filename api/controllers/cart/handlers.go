package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	cartdto "github.com/grocerrypoint/grocerrypoint-backend/api/controllers/cart/dto"
	"github.com/grocerrypoint/grocerrypoint-backend/api/middleware"
	"github.com/grocerrypoint/grocerrypoint-backend/api/responses"
	"github.com/grocerrypoint/grocerrypoint-backend/api/validators"
	cartsvc "github.com/grocerrypoint/grocerrypoint-backend/internal/cart"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/logger"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/metrics"
)

type mutation func(r *http.Request, sessionID string) (*cartsvc.View, error)

// handle resolves the session, runs fn and renders the resulting cart.
func handle(svc cartsvc.Service, logg *logger.Logger, fn mutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}

		view, err := fn(r, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartdto.NewCartView(view))
	}
}

// CartFetch renders the session cart with its pricing summary.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, sessionID string) (*cartsvc.View, error) {
		return svc.Get(r.Context(), sessionID)
	})
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, sessionID string) (*cartsvc.View, error) {
		return svc.Clear(r.Context(), sessionID)
	})
}

// CartAddItem adds a product, merging with an existing line.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, sessionID string) (*cartsvc.View, error) {
		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.AddItem(r.Context(), sessionID, toProduct(payload.Product), payload.Quantity)
	})
}

// CartSetQuantity sets a line quantity; values below one are raised to one.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, sessionID string) (*cartsvc.View, error) {
		var payload cartdto.SetQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.SetQuantity(r.Context(), sessionID, productIDParam(r), payload.Quantity)
	})
}

func CartIncrement(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, sessionID string) (*cartsvc.View, error) {
		return svc.Increment(r.Context(), sessionID, productIDParam(r))
	})
}

func CartDecrement(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, sessionID string) (*cartsvc.View, error) {
		return svc.Decrement(r.Context(), sessionID, productIDParam(r))
	})
}

// CartRemoveItem drops a line. Unknown products leave the cart unchanged.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, sessionID string) (*cartsvc.View, error) {
		return svc.RemoveItem(r.Context(), sessionID, productIDParam(r))
	})
}

// CartApplyCoupon evaluates the coupon field. A rejected code is not an error;
// the status is carried in the cart payload.
func CartApplyCoupon(svc cartsvc.Service, m *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, sessionID string) (*cartsvc.View, error) {
		var payload cartdto.ApplyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		view, err := svc.ApplyCoupon(r.Context(), sessionID, payload.Code)
		if err != nil {
			return nil, err
		}
		m.IncCoupon(string(view.Coupon.Status))
		return view, nil
	})
}

func CartResetCoupon(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, sessionID string) (*cartsvc.View, error) {
		return svc.ResetCoupon(r.Context(), sessionID)
	})
}

func productIDParam(r *http.Request) string {
	return validators.PathParam(chi.URLParam(r, "productId"))
}
