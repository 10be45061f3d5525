package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/grocerrypoint/grocerrypoint-backend/internal/coupon"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/redis"
)

const (
	maxUpdateAttempts = 32
	updateBackoff     = time.Millisecond
)

var errUpdateContended = errors.New("too many concurrent writers")

// Snapshot is the persisted state of one session cart.
type Snapshot struct {
	Items     []CartItem   `json:"items"`
	Coupon    coupon.Field `json:"coupon"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// UpdateFunc edits a snapshot in place. Returning an error aborts the update
// and nothing is stored.
type UpdateFunc func(snap *Snapshot) error

// Registry loads and atomically updates cart snapshots keyed by session id.
// Update must apply fn to the latest stored state even when several API
// instances write the same cart; a snapshot left empty removes the cart.
type Registry interface {
	Load(ctx context.Context, sessionID string) (Snapshot, error)
	Update(ctx context.Context, sessionID string, fn UpdateFunc) (Snapshot, error)
}

type memoryEntry struct {
	snap    Snapshot
	expires time.Time
}

// MemoryRegistry keeps carts in process memory. Entries idle longer than the
// TTL are dropped on the next read.
type MemoryRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryRegistry builds a registry; ttl <= 0 keeps carts forever.
func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]memoryEntry{},
	}
}

func (r *MemoryRegistry) Load(_ context.Context, sessionID string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[sessionID]
	if !ok {
		return emptySnapshot(), nil
	}
	if r.ttl > 0 && r.now().After(entry.expires) {
		delete(r.entries, sessionID)
		return emptySnapshot(), nil
	}
	return cloneSnapshot(entry.snap), nil
}

func (r *MemoryRegistry) Update(_ context.Context, sessionID string, fn UpdateFunc) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	snap := emptySnapshot()
	if entry, ok := r.entries[sessionID]; ok && (r.ttl <= 0 || !now.After(entry.expires)) {
		snap = cloneSnapshot(entry.snap)
	}
	if err := fn(&snap); err != nil {
		return Snapshot{}, err
	}

	if isEmptySnapshot(snap) {
		delete(r.entries, sessionID)
		return emptySnapshot(), nil
	}
	snap.UpdatedAt = now
	r.entries[sessionID] = memoryEntry{snap: cloneSnapshot(snap), expires: now.Add(r.ttl)}
	return cloneSnapshot(snap), nil
}

// RedisRegistry stores each cart as a JSON document with a sliding TTL.
type RedisRegistry struct {
	store redis.CartStore
	ttl   time.Duration
	now   func() time.Time
}

// NewRedisRegistry wraps the shared redis client.
func NewRedisRegistry(store redis.CartStore, ttl time.Duration) (*RedisRegistry, error) {
	if store == nil {
		return nil, fmt.Errorf("redis cart store required")
	}
	return &RedisRegistry{store: store, ttl: ttl, now: time.Now}, nil
}

func (r *RedisRegistry) Load(ctx context.Context, sessionID string) (Snapshot, error) {
	raw, err := r.store.Get(ctx, r.store.CartKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return emptySnapshot(), nil
		}
		return Snapshot{}, fmt.Errorf("load cart: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode cart: %w", err)
	}
	// reading keeps an active shopper's cart alive
	if err := r.store.Touch(ctx, r.store.CartKey(sessionID), r.ttl); err != nil {
		return Snapshot{}, fmt.Errorf("refresh cart ttl: %w", err)
	}
	snap.Coupon = snap.Coupon.Normalized()
	return snap, nil
}

// Update retries the optimistic transaction while other writers keep
// changing the same cart.
func (r *RedisRegistry) Update(ctx context.Context, sessionID string, fn UpdateFunc) (Snapshot, error) {
	key := r.store.CartKey(sessionID)
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var result Snapshot
		err := r.store.Transform(ctx, key, r.ttl, func(current string, found bool) (string, error) {
			snap := emptySnapshot()
			if found {
				if err := json.Unmarshal([]byte(current), &snap); err != nil {
					return "", fmt.Errorf("decode cart: %w", err)
				}
				snap.Coupon = snap.Coupon.Normalized()
			}
			if err := fn(&snap); err != nil {
				return "", err
			}
			if isEmptySnapshot(snap) {
				result = emptySnapshot()
				return "", nil
			}
			snap.UpdatedAt = r.now().UTC()
			payload, err := json.Marshal(snap)
			if err != nil {
				return "", fmt.Errorf("encode cart: %w", err)
			}
			result = snap
			return string(payload), nil
		})
		if err == nil {
			return result, nil
		}
		if !redis.IsTxConflict(err) {
			return Snapshot{}, err
		}
		if err := sleepCtx(ctx, time.Duration(attempt+1)*updateBackoff); err != nil {
			return Snapshot{}, err
		}
	}
	return Snapshot{}, fmt.Errorf("update cart: %w", errUpdateContended)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func emptySnapshot() Snapshot {
	return Snapshot{Coupon: coupon.NewField()}
}

func isEmptySnapshot(snap Snapshot) bool {
	return len(snap.Items) == 0 && snap.Coupon == coupon.NewField()
}

func cloneSnapshot(snap Snapshot) Snapshot {
	out := snap
	out.Items = append([]CartItem(nil), snap.Items...)
	return out
}
