// Package checkout assembles orders from a session cart and submits them to
// the order API, tracking the submission state per session.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grocerrypoint/grocerrypoint-backend/internal/cart"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/orders"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/pricing"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/db/models"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/logger"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/metrics"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/pagination"
)

const DefaultSubmitTimeout = 20 * time.Second

type orderCreator interface {
	Create(ctx context.Context, token string, req orders.CreateOrderRequest) (*orders.Order, error)
}

// Session identifies the shopper placing the order.
type Session struct {
	ID     string
	UserID string
	Token  string
}

// Result is returned after a confirmed submission.
type Result struct {
	OrderID string          `json:"order_id"`
	Order   *orders.Order   `json:"order"`
	Pricing pricing.Summary `json:"pricing"`
	Status  Status          `json:"status"`
}

// Service exposes the checkout operations.
type Service interface {
	Status(ctx context.Context, sessionID string) Status
	Submit(ctx context.Context, session Session, input SubmitInput) (*Result, error)
	Attempts(ctx context.Context, sessionID string, params pagination.Params) (pagination.Page[Attempt], error)
}

// Config carries the optional collaborators of the service.
type Config struct {
	SubmitTimeout time.Duration
	Metrics       *metrics.StorefrontMetrics
	Now           func() time.Time
}

type service struct {
	carts   cart.Service
	api     orderCreator
	tracker *Tracker
	journal Journal
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	timeout time.Duration
	now     func() time.Time
}

// NewService wires the checkout flow.
func NewService(carts cart.Service, api orderCreator, tracker *Tracker, journal Journal, logg *logger.Logger, cfg Config) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if api == nil {
		return nil, fmt.Errorf("order api client required")
	}
	if tracker == nil {
		return nil, fmt.Errorf("checkout tracker required")
	}
	if journal == nil {
		return nil, fmt.Errorf("checkout journal required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeout := cfg.SubmitTimeout
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		carts:   carts,
		api:     api,
		tracker: tracker,
		journal: journal,
		logg:    logg,
		metrics: cfg.Metrics,
		timeout: timeout,
		now:     now,
	}, nil
}

func (s *service) Status(_ context.Context, sessionID string) Status {
	return s.tracker.Status(sessionID)
}

// Submit places the order for the session's cart. On failure the cart is
// left untouched and the session goes back to editing.
func (s *service) Submit(ctx context.Context, session Session, input SubmitInput) (*Result, error) {
	if strings.TrimSpace(session.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session is required")
	}
	input.ShippingAddress = input.ShippingAddress.Normalize()
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	view, err := s.carts.Get(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if err := ValidateLines(view.Items); err != nil {
		return nil, err
	}

	if err := s.tracker.Begin(session.ID); err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"session_id":     session.ID,
		"user_id":        session.UserID,
		"item_count":     view.Count,
		"total_amount":   view.Pricing.GrandTotal.StringFixed(2),
		"payment_method": string(input.PaymentMethod),
	})
	s.logg.Info(ctx, "checkout.submit.start")

	req := assembleOrder(view, input)
	started := s.now()
	order, err := s.create(ctx, session.Token, req)
	elapsed := s.now().Sub(started)

	if err != nil {
		status := s.tracker.Fail(session.ID, pkgerrors.UserMessage(err), pkgerrors.Retryable(err))
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.submit.failed")
		s.metrics.ObserveSubmission(string(enums.CheckoutOutcomeFailed), elapsed)
		s.record(ctx, session, view, input, enums.CheckoutOutcomeFailed, "", status.LastError, elapsed)
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID)
	if _, clearErr := s.carts.RemoveOrdered(ctx, session.ID, view.Items); clearErr != nil {
		s.logg.Error(ctx, "checkout.cart_clear.failed", clearErr)
	}
	status := s.tracker.Confirm(session.ID, order.ID)
	s.metrics.ObserveSubmission(string(enums.CheckoutOutcomeConfirmed), elapsed)
	s.record(ctx, session, view, input, enums.CheckoutOutcomeConfirmed, order.ID, "", elapsed)
	s.logg.Info(ctx, "checkout.submit.confirmed")

	return &Result{
		OrderID: order.ID,
		Order:   order,
		Pricing: view.Pricing,
		Status:  status,
	}, nil
}

func (s *service) create(ctx context.Context, token string, req orders.CreateOrderRequest) (*orders.Order, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.api.Create(callCtx, token, req)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order api timeout")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order api request failed")
	}
	if order == nil || strings.TrimSpace(order.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order api returned no order id")
	}
	return order, nil
}

func (s *service) Attempts(ctx context.Context, sessionID string, params pagination.Params) (pagination.Page[Attempt], error) {
	if strings.TrimSpace(sessionID) == "" {
		return pagination.Page[Attempt]{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session is required")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Page[Attempt]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.journal.ListBySession(ctx, sessionID, params)
	if err != nil {
		return pagination.Page[Attempt]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list checkout attempts")
	}

	out := pagination.Page[Attempt]{
		Items:      make([]Attempt, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for _, row := range page.Items {
		out.Items = append(out.Items, attemptFromModel(row))
	}
	return out, nil
}

// record journals the attempt. Journal failures are logged and never reach the shopper.
func (s *service) record(ctx context.Context, session Session, view *cart.View, input SubmitInput, outcome enums.CheckoutOutcome, orderID, message string, elapsed time.Duration) {
	attempt := &models.CheckoutAttempt{
		SessionID:     session.ID,
		UserID:        session.UserID,
		Outcome:       outcome,
		TotalAmount:   view.Pricing.GrandTotal,
		ItemCount:     view.Count,
		PaymentMethod: input.PaymentMethod,
		DeliveryTime:  input.DeliveryTime,
		DurationMS:    elapsed.Milliseconds(),
		CreatedAt:     s.now().UTC(),
	}
	if orderID != "" {
		attempt.OrderID = &orderID
	}
	if message != "" {
		attempt.ErrorMessage = &message
	}
	if err := s.journal.Record(context.WithoutCancel(ctx), attempt); err != nil {
		s.logg.Error(ctx, "checkout.journal.record_failed", err)
	}
}

func assembleOrder(view *cart.View, input SubmitInput) orders.CreateOrderRequest {
	items := make([]orders.OrderItem, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, orders.OrderItem{
			Product:  item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Discount: item.Discount,
			Quantity: item.Quantity,
			Image:    item.Image,
		})
	}
	return orders.CreateOrderRequest{
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		DeliveryTime:    input.DeliveryTime,
		PaymentMethod:   input.PaymentMethod,
		TotalAmount:     view.Pricing.GrandTotal,
	}
}
