// Package orders talks to the external order API that persists orders.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
)

const (
	defaultTimeout             = 30 * time.Second
	responseBodyLimit    int64 = 1 << 20
	errorBodyReadLimit   int64 = 4096
	timeoutPublicMessage       = "order api timeout"
)

// API is the surface checkout and the order history endpoint depend on.
type API interface {
	Create(ctx context.Context, token string, req CreateOrderRequest) (*Order, error)
	ListMine(ctx context.Context, token string) ([]Order, error)
}

// Client calls the order REST API, forwarding the shopper's bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds an order API client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("order api base url is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type createResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order"`
}

type listResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Orders  []Order `json:"orders"`
}

// Create submits an order. It does not retry.
func (c *Client) Create(ctx context.Context, token string, req CreateOrderRequest) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order api client not configured")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	payload, err := json.Marshal(toWire(req))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal order request")
	}

	var out createResponse
	if err := c.do(ctx, http.MethodPost, "/orders", token, payload, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.Order == nil {
		return nil, rejected(out.Message, "order api did not confirm the order")
	}
	if strings.TrimSpace(out.Order.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order api returned an order without id")
	}
	return out.Order, nil
}

// ListMine returns the caller's orders.
func (c *Client) ListMine(ctx context.Context, token string) ([]Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order api client not configured")
	}

	var out listResponse
	if err := c.do(ctx, http.MethodGet, "/orders/my", token, nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, rejected(out.Message, "order api rejected the request")
	}
	if out.Orders == nil {
		out.Orders = []Order{}
	}
	return out.Orders, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order api request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token = strings.TrimSpace(token); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, timeoutPublicMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order api unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return mapStatus(resp.StatusCode, raw)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyLimit)).Decode(out); err != nil {
		if isTimeout(ctx, err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, timeoutPublicMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order api response")
	}
	return nil
}

func mapStatus(status int, raw []byte) error {
	message := serverMessage(raw)
	cause := fmt.Errorf("order api status %d: %s", status, strings.TrimSpace(string(raw)))

	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if message == "" {
			message = "order was rejected as invalid"
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, message)
	case http.StatusUnauthorized:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, cause, "order api rejected credentials")
	case http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, cause, "order api denied access")
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, "order api resource not found")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "order api request failed")
	}
}

func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(body.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(body.Error)
}

func rejected(message, fallback string) error {
	if strings.TrimSpace(message) == "" {
		message = fallback
	}
	return pkgerrors.New(pkgerrors.CodeDependency, message)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
