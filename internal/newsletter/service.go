// Package newsletter subscribes shoppers to the marketing list.
package newsletter

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/logger"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/metrics"
)

// Subscriber adds an email to the marketing list.
type Subscriber interface {
	Subscribe(ctx context.Context, email string) error
}

// Policy decides what a shopper sees when the subscriber backend fails.
type Policy struct {
	// OptimisticSuccess reports backend failures as a successful signup.
	OptimisticSuccess bool
}

// Result is returned to the presentation layer.
type Result struct {
	Email      string `json:"email"`
	Subscribed bool   `json:"subscribed"`
	Masked     bool   `json:"-"`
}

type Service interface {
	Subscribe(ctx context.Context, email string) (Result, error)
}

type service struct {
	subscriber Subscriber
	policy     Policy
	logg       *logger.Logger
	metrics    *metrics.StorefrontMetrics
	validate   *validator.Validate
}

// NewService builds the newsletter service. metrics may be nil.
func NewService(subscriber Subscriber, policy Policy, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if subscriber == nil {
		return nil, fmt.Errorf("newsletter subscriber required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		subscriber: subscriber,
		policy:     policy,
		logg:       logg,
		metrics:    m,
		validate:   validator.New(),
	}, nil
}

func (s *service) Subscribe(ctx context.Context, email string) (Result, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := s.validate.Var(email, "email,max=254"); err != nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}

	if err := s.subscriber.Subscribe(ctx, email); err != nil {
		if !s.policy.OptimisticSuccess {
			s.metrics.IncNewsletter("failed")
			s.logg.Error(ctx, "newsletter.subscribe.failed", err)
			if pkgerrors.As(err) != nil {
				return Result{}, err
			}
			return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "newsletter signup unavailable")
		}
		s.metrics.IncNewsletter("masked")
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "newsletter.subscribe.masked_failure")
		return Result{Email: email, Subscribed: true, Masked: true}, nil
	}

	s.metrics.IncNewsletter("subscribed")
	s.logg.Info(ctx, "newsletter.subscribe.ok")
	return Result{Email: email, Subscribed: true}, nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
