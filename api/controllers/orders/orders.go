package orders

import (
	"context"
	"net/http"

	"github.com/grocerrypoint/grocerrypoint-backend/api/middleware"
	"github.com/grocerrypoint/grocerrypoint-backend/api/responses"
	ordersvc "github.com/grocerrypoint/grocerrypoint-backend/internal/orders"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/logger"
)

type orderLister interface {
	ListMine(ctx context.Context, token string) ([]ordersvc.Order, error)
}

// ListMine proxies the shopper's order history from the order API.
func ListMine(api orderLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order api unavailable"))
			return
		}

		token := middleware.AccessTokenFromContext(r.Context())
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		list, err := api.ListMine(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []ordersvc.Order{}
		}

		responses.WriteSuccess(w, map[string]any{"orders": list})
	}
}
