package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grocerrypoint/grocerrypoint-backend/api/controllers"
	cartcontrollers "github.com/grocerrypoint/grocerrypoint-backend/api/controllers/cart"
	ordercontrollers "github.com/grocerrypoint/grocerrypoint-backend/api/controllers/orders"
	"github.com/grocerrypoint/grocerrypoint-backend/api/middleware"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/cart"
	checkoutsvc "github.com/grocerrypoint/grocerrypoint-backend/internal/checkout"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/newsletter"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/orders"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/config"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/logger"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/metrics"
)

// RedisStore is the slice of the redis client the HTTP layer uses for
// idempotency, rate limits and readiness.
type RedisStore interface {
	Get(context.Context, string) (string, error)
	Set(context.Context, string, any, time.Duration) error
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	IdempotencyKey(scope, id string) string
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
	Ping(context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisStore RedisStore,
	gatherer prometheus.Gatherer,
	storefrontMetrics *metrics.StorefrontMetrics,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	ordersAPI orders.API,
	newsletterService newsletter.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	couponPolicy := middleware.NewRateLimitPolicy(
		"coupon",
		cfg.RateLimit.CouponWindow,
		cfg.RateLimit.CouponIPLimit,
		0,
	)
	newsletterPolicy := middleware.NewRateLimitPolicy(
		"newsletter",
		cfg.RateLimit.NewsletterWindow,
		cfg.RateLimit.NewsletterIPLimit,
		cfg.RateLimit.NewsletterEmailLimit,
	)

	readiness := map[string]controllers.Pinger{"db": nil, "redis": nil}
	if dbP != nil {
		readiness["db"] = dbP
	}
	if redisStore != nil {
		readiness["redis"] = redisStore
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.With(rateLimit(newsletterPolicy, redisStore, logg)).Post("/newsletter", controllers.NewsletterSubscribe(newsletterService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Patch("/items/{productId}", cartcontrollers.CartSetQuantity(cartService, logg))
			r.Post("/items/{productId}/increment", cartcontrollers.CartIncrement(cartService, logg))
			r.Post("/items/{productId}/decrement", cartcontrollers.CartDecrement(cartService, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(cartService, logg))
			r.With(rateLimit(couponPolicy, redisStore, logg)).Post("/coupon", cartcontrollers.CartApplyCoupon(cartService, storefrontMetrics, logg))
			r.Delete("/coupon", cartcontrollers.CartResetCoupon(cartService, logg))
		})

		r.Get("/checkout", controllers.CheckoutStatus(checkoutService, logg))
		r.With(idempotency(redisStore, logg)).Post("/checkout", controllers.Checkout(checkoutService, logg))
		r.Get("/checkout/attempts", controllers.CheckoutAttempts(checkoutService, logg))

		r.Get("/orders/my", ordercontrollers.ListMine(ordersAPI, logg))
	})

	return r
}

func rateLimit(policy middleware.RateLimitPolicy, store RedisStore, logg *logger.Logger) func(http.Handler) http.Handler {
	if store == nil {
		return passthrough
	}
	return middleware.RateLimit(policy, store, logg)
}

func idempotency(store RedisStore, logg *logger.Logger) func(http.Handler) http.Handler {
	if store == nil {
		return passthrough
	}
	return middleware.Idempotency(store, logg)
}

func passthrough(next http.Handler) http.Handler {
	return next
}
