package cart

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/grocerrypoint/grocerrypoint-backend/internal/coupon"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/pricing"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const lockStripes = 64

var hundred = decimal.NewFromInt(100)

// Service exposes the session cart operations used by the HTTP layer and checkout.
type Service interface {
	Get(ctx context.Context, sessionID string) (*View, error)
	AddItem(ctx context.Context, sessionID string, product Product, qty int) (*View, error)
	SetQuantity(ctx context.Context, sessionID, productID string, qty int) (*View, error)
	Increment(ctx context.Context, sessionID, productID string) (*View, error)
	Decrement(ctx context.Context, sessionID, productID string) (*View, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*View, error)
	Clear(ctx context.Context, sessionID string) (*View, error)
	RemoveOrdered(ctx context.Context, sessionID string, ordered []CartItem) (*View, error)
	ApplyCoupon(ctx context.Context, sessionID, code string) (*View, error)
	ResetCoupon(ctx context.Context, sessionID string) (*View, error)
}

// View is the cart as rendered to the shopper.
type View struct {
	Items   []CartItem      `json:"items"`
	Count   int             `json:"count"`
	Pricing pricing.Summary `json:"pricing"`
	Coupon  coupon.Field    `json:"coupon"`
}

// IsEmpty reports whether the cart has no lines.
func (v *View) IsEmpty() bool {
	return v == nil || len(v.Items) == 0
}

type service struct {
	registry  Registry
	rules     pricing.Rules
	evaluator coupon.Evaluator
	observer  func(sessionID string)
	locks     [lockStripes]sync.Mutex
}

// Option customises the cart service.
type Option func(*service)

// WithObserver registers fn to run after every stored cart change.
func WithObserver(fn func(sessionID string)) Option {
	return func(s *service) {
		s.observer = fn
	}
}

// NewService builds a cart service backed by the provided registry.
func NewService(registry Registry, rules pricing.Rules, evaluator coupon.Evaluator, opts ...Option) (Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("cart registry required")
	}
	if !rules.ShippingGapDivisor.IsPositive() {
		return nil, fmt.Errorf("pricing rules require a positive shipping gap divisor")
	}
	svc := &service{
		registry:  registry,
		rules:     rules,
		evaluator: evaluator,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*View, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	unlock := s.lock(sessionID)
	defer unlock()

	snap, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(snap), nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, product Product, qty int) (*View, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.ID = strings.TrimSpace(product.ID)
	return s.mutate(ctx, sessionID, func(store *Store, _ *coupon.Field) error {
		store.AddItem(product, qty)
		return nil
	})
}

func (s *service) SetQuantity(ctx context.Context, sessionID, productID string, qty int) (*View, error) {
	return s.mutate(ctx, sessionID, func(store *Store, _ *coupon.Field) error {
		if !SetQuantity(store, productID, qty) {
			return itemNotFound(productID)
		}
		return nil
	})
}

func (s *service) Increment(ctx context.Context, sessionID, productID string) (*View, error) {
	return s.mutate(ctx, sessionID, func(store *Store, _ *coupon.Field) error {
		if !Increment(store, productID) {
			return itemNotFound(productID)
		}
		return nil
	})
}

func (s *service) Decrement(ctx context.Context, sessionID, productID string) (*View, error) {
	return s.mutate(ctx, sessionID, func(store *Store, _ *coupon.Field) error {
		if !Decrement(store, productID) {
			return itemNotFound(productID)
		}
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID, productID string) (*View, error) {
	return s.mutate(ctx, sessionID, func(store *Store, _ *coupon.Field) error {
		store.RemoveItem(productID)
		return nil
	})
}

// Clear empties the cart. The coupon field is left as is.
func (s *service) Clear(ctx context.Context, sessionID string) (*View, error) {
	return s.mutate(ctx, sessionID, func(store *Store, _ *coupon.Field) error {
		store.Clear()
		return nil
	})
}

// RemoveOrdered takes the ordered quantities out of the cart and resets the
// coupon. Lines added or topped up after the order snapshot was taken stay.
func (s *service) RemoveOrdered(ctx context.Context, sessionID string, ordered []CartItem) (*View, error) {
	placed := make(map[string]int, len(ordered))
	for _, item := range ordered {
		placed[strings.TrimSpace(item.ID)] += item.Quantity
	}
	return s.mutate(ctx, sessionID, func(store *Store, field *coupon.Field) error {
		for id, qty := range placed {
			store.adjust(id, func(current int) int { return current - qty })
		}
		for _, item := range store.Items() {
			if item.Quantity <= 0 {
				store.RemoveItem(item.ID)
			}
		}
		field.Reset()
		return nil
	})
}

func (s *service) ApplyCoupon(ctx context.Context, sessionID, code string) (*View, error) {
	return s.mutate(ctx, sessionID, func(_ *Store, field *coupon.Field) error {
		field.SetInput(code)
		field.Apply(s.evaluator)
		return nil
	})
}

func (s *service) ResetCoupon(ctx context.Context, sessionID string) (*View, error) {
	return s.mutate(ctx, sessionID, func(_ *Store, field *coupon.Field) error {
		field.Reset()
		return nil
	})
}

// mutate serialises change and save for one session within this process.
// The registry keeps concurrent writers from other instances consistent.
func (s *service) mutate(ctx context.Context, sessionID string, fn func(store *Store, field *coupon.Field) error) (*View, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	unlock := s.lock(sessionID)
	defer unlock()

	var fnErr error
	next, err := s.registry.Update(ctx, sessionID, func(snap *Snapshot) error {
		store := NewStore(snap.Items)
		field := snap.Coupon.Normalized()
		if fnErr = fn(store, &field); fnErr != nil {
			return fnErr
		}
		snap.Items = store.Items()
		snap.Coupon = field
		return nil
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	if s.observer != nil {
		s.observer(sessionID)
	}
	return s.view(next), nil
}

func (s *service) load(ctx context.Context, sessionID string) (Snapshot, error) {
	snap, err := s.registry.Load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	snap.Coupon = snap.Coupon.Normalized()
	return snap, nil
}

func (s *service) view(snap Snapshot) *View {
	store := NewStore(snap.Items)
	return &View{
		Items:   store.Items(),
		Count:   store.Count(),
		Pricing: s.rules.Summarize(Lines(snap.Items)),
		Coupon:  snap.Coupon,
	}
}

func (s *service) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session is required")
	}
	return nil
}

func validateProduct(product Product) error {
	if strings.TrimSpace(product.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(product.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if product.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price must be non-negative")
	}
	if product.Discount.IsNegative() || product.Discount.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "product discount must be between 0 and 100")
	}
	return nil
}

func itemNotFound(productID string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart").WithDetails(map[string]any{
		"product_id": productID,
	})
}
