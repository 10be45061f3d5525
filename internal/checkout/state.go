package checkout

import (
	"strings"
	"sync"
	"time"

	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
)

// Status is the checkout state of one session as shown to the shopper.
type Status struct {
	State       enums.CheckoutState `json:"state"`
	LastResult  enums.CheckoutState `json:"last_result,omitempty"`
	LastError   string              `json:"last_error,omitempty"`
	Retryable   bool                `json:"retryable,omitempty"`
	LastOrderID string              `json:"last_order_id,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at,omitempty"`
}

// Tracker holds per-session checkout state. A failed submission returns the
// session to editing with the error kept in LastError.
type Tracker struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]Status
}

func NewTracker() *Tracker {
	return &Tracker{
		now:      time.Now,
		sessions: map[string]Status{},
	}
}

// Status returns the session's state, editing when nothing was recorded.
func (t *Tracker) Status(sessionID string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked(sessionID)
}

func (t *Tracker) statusLocked(sessionID string) Status {
	status, ok := t.sessions[sessionID]
	if !ok {
		return Status{State: enums.CheckoutStateEditing}
	}
	return status
}

// Begin moves the session into submitting. A session already submitting is
// rejected so a double click cannot place two orders.
func (t *Tracker) Begin(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session is required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.statusLocked(sessionID)
	if current.State == enums.CheckoutStateSubmitting {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order submission already in progress")
	}
	current.State = enums.CheckoutStateSubmitting
	current.LastError = ""
	current.Retryable = false
	current.UpdatedAt = t.now().UTC()
	t.sessions[sessionID] = current
	return nil
}

// Confirm records a created order.
func (t *Tracker) Confirm(sessionID, orderID string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := Status{
		State:       enums.CheckoutStateConfirmed,
		LastResult:  enums.CheckoutStateConfirmed,
		LastOrderID: orderID,
		UpdatedAt:   t.now().UTC(),
	}
	t.sessions[sessionID] = status
	return status
}

// Fail returns the session to editing and keeps the message for display.
// retryable tells the form whether resubmitting the same details may succeed.
func (t *Tracker) Fail(sessionID, message string, retryable bool) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := t.statusLocked(sessionID)
	status.State = enums.CheckoutStateEditing
	status.LastResult = enums.CheckoutStateFailed
	status.LastError = message
	status.Retryable = retryable
	status.UpdatedAt = t.now().UTC()
	t.sessions[sessionID] = status
	return status
}

// Reopen returns a confirmed session to editing once the shopper changes the
// cart again. The last order stays visible. Other states are left alone.
func (t *Tracker) Reopen(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status, ok := t.sessions[sessionID]
	if !ok || status.State != enums.CheckoutStateConfirmed {
		return
	}
	status.State = enums.CheckoutStateEditing
	status.UpdatedAt = t.now().UTC()
	t.sessions[sessionID] = status
}
