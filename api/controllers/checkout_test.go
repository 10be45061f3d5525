package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/grocerrypoint/grocerrypoint-backend/api/middleware"
	checkoutsvc "github.com/grocerrypoint/grocerrypoint-backend/internal/checkout"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/orders"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/pricing"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

type stubCheckoutService struct {
	result  *checkoutsvc.Result
	err     error
	status  checkoutsvc.Status
	page    pagination.Page[checkoutsvc.Attempt]
	session checkoutsvc.Session
	input   checkoutsvc.SubmitInput
	params  pagination.Params
}

func (s *stubCheckoutService) Status(_ context.Context, _ string) checkoutsvc.Status {
	return s.status
}

func (s *stubCheckoutService) Submit(_ context.Context, session checkoutsvc.Session, input checkoutsvc.SubmitInput) (*checkoutsvc.Result, error) {
	s.session = session
	s.input = input
	return s.result, s.err
}

func (s *stubCheckoutService) Attempts(_ context.Context, _ string, params pagination.Params) (pagination.Page[checkoutsvc.Attempt], error) {
	s.params = params
	return s.page, s.err
}

const checkoutBody = `{
	"shippingAddress": {"fullName":"Asha Rao","phone":"9876543210","address":"12 MG Road","city":"Bengaluru","state":"Karnataka","pincode":"560001"},
	"deliveryTime": "evening",
	"paymentMethod": "cod"
}`

func authed(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), "user-1", "sess-1", "tok-1"))
}

func TestCheckoutSuccess(t *testing.T) {
	summary := pricing.DefaultRules().Summarize([]pricing.Line{{Price: decimal.NewFromInt(100), Discount: decimal.NewFromInt(10), Quantity: 2}})
	stub := &stubCheckoutService{result: &checkoutsvc.Result{
		OrderID: "ord_1",
		Order:   &orders.Order{ID: "ord_1", Status: enums.OrderStatusPending},
		Pricing: summary,
		Status:  checkoutsvc.Status{State: enums.CheckoutStateConfirmed, LastOrderID: "ord_1"},
	}}

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody)))
	resp := httptest.NewRecorder()
	Checkout(stub, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.OrderID != "ord_1" || envelope.Data.TotalAmount != "211.90" || envelope.Data.Status != "confirmed" {
		t.Fatalf("unexpected response %+v", envelope.Data)
	}
	if stub.session.Token != "tok-1" || stub.session.ID != "sess-1" {
		t.Fatalf("unexpected session %+v", stub.session)
	}
	if stub.input.DeliveryTime != enums.DeliverySlotEvening || stub.input.PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("unexpected input %+v", stub.input)
	}
	if stub.input.ShippingAddress.Street != "12 MG Road" {
		t.Fatalf("expected address mapped, got %+v", stub.input.ShippingAddress)
	}
}

func TestCheckoutSurfacesServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", pkgerrors.New(pkgerrors.CodeValidation, "validation failed"), http.StatusBadRequest},
		{"in flight", pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress"), http.StatusUnprocessableEntity},
		{"timeout", pkgerrors.Wrap(pkgerrors.CodeDependency, context.DeadlineExceeded, "order api timeout"), http.StatusServiceUnavailable},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCheckoutService{err: tt.err}
			req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody)))
			resp := httptest.NewRecorder()
			Checkout(stub, nil).ServeHTTP(resp, req)
			if resp.Code != tt.want {
				t.Fatalf("expected %d got %d", tt.want, resp.Code)
			}
		})
	}
}

func TestCheckoutRequiresSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	resp := httptest.NewRecorder()
	Checkout(&stubCheckoutService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutStatus(t *testing.T) {
	stub := &stubCheckoutService{status: checkoutsvc.Status{
		State:      enums.CheckoutStateEditing,
		LastResult: enums.CheckoutStateFailed,
		LastError:  "order api timeout",
	}}
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/checkout", nil))
	resp := httptest.NewRecorder()
	CheckoutStatus(stub, nil).ServeHTTP(resp, req)

	var envelope struct {
		Data checkoutsvc.Status `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.LastError != "order api timeout" || envelope.Data.State != enums.CheckoutStateEditing {
		t.Fatalf("unexpected status %+v", envelope.Data)
	}
}

func TestCheckoutAttemptsParsesPaging(t *testing.T) {
	stub := &stubCheckoutService{page: pagination.Page[checkoutsvc.Attempt]{
		Items: []checkoutsvc.Attempt{{ID: "a1", Outcome: enums.CheckoutOutcomeFailed}},
	}}
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/attempts?limit=5&cursor=abc", nil))
	resp := httptest.NewRecorder()
	CheckoutAttempts(stub, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.params.Limit != 5 || stub.params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", stub.params)
	}

	bad := authed(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/attempts?limit=0", nil))
	resp = httptest.NewRecorder()
	CheckoutAttempts(stub, nil).ServeHTTP(resp, bad)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range limit got %d", resp.Code)
	}
}
