package checkout

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
)

func TestTrackerLifecycle(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	if got := tracker.Status("s1").State; got != enums.CheckoutStateEditing {
		t.Fatalf("expected editing by default, got %s", got)
	}

	if err := tracker.Begin("s1"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if got := tracker.Status("s1").State; got != enums.CheckoutStateSubmitting {
		t.Fatalf("expected submitting, got %s", got)
	}

	err := tracker.Begin("s1")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for duplicate submit, got %v", err)
	}

	status := tracker.Fail("s1", "order api timeout", true)
	if status.State != enums.CheckoutStateEditing || status.LastError != "order api timeout" || status.LastResult != enums.CheckoutStateFailed {
		t.Fatalf("unexpected status after failure %+v", status)
	}
	if !status.Retryable {
		t.Fatal("expected retryable failure to be flagged")
	}

	if err := tracker.Begin("s1"); err != nil {
		t.Fatalf("retry after failure should be allowed: %v", err)
	}
	if s := tracker.Status("s1"); s.LastError != "" || s.Retryable {
		t.Fatal("Begin should clear the previous error")
	}

	status = tracker.Confirm("s1", "ord_1")
	if status.State != enums.CheckoutStateConfirmed || status.LastOrderID != "ord_1" {
		t.Fatalf("unexpected status after confirm %+v", status)
	}

	tracker.Reopen("s1")
	status = tracker.Status("s1")
	if status.State != enums.CheckoutStateEditing || status.LastOrderID != "ord_1" {
		t.Fatalf("expected editing with the last order kept, got %+v", status)
	}
	if status.LastResult != enums.CheckoutStateConfirmed {
		t.Fatalf("expected confirmed last result, got %s", status.LastResult)
	}
	if err := tracker.Begin("s1"); err != nil {
		t.Fatalf("a reopened session may start a new submission: %v", err)
	}

	tracker.Reopen("s1")
	if tracker.Status("s1").State != enums.CheckoutStateSubmitting {
		t.Fatal("reopen must not interrupt a submission")
	}
}

func TestTrackerBeginRequiresSession(t *testing.T) {
	t.Parallel()

	if err := NewTracker().Begin(""); err == nil {
		t.Fatal("expected error for empty session")
	}
}

func TestTrackerBeginAllowsOneConcurrentSubmitter(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.Begin("s1") == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one submitter, got %d", wins)
	}
}
