package cart

import (
	"strings"
	"sync"
)

// Store is an ordered, in-memory cart. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items []CartItem
}

// NewStore returns a store seeded with a copy of items.
func NewStore(items []CartItem) *Store {
	s := &Store{}
	if len(items) > 0 {
		s.items = append(make([]CartItem, 0, len(items)), items...)
	}
	return s
}

// AddItem increments the quantity of an existing line or appends a new one.
// Ids are compared after trimming. A non-positive qty is treated as
// DefaultQuantity.
func (s *Store) AddItem(product Product, qty int) {
	if qty <= 0 {
		qty = DefaultQuantity
	}
	product.ID = strings.TrimSpace(product.ID)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == product.ID {
			s.items[i].Quantity += qty
			return
		}
	}
	s.items = append(s.items, newItem(product, qty))
}

// RemoveItem deletes the line with the given id. Unknown ids are ignored.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity as given, without clamping. It reports
// whether a line with that id exists.
func (s *Store) UpdateQuantity(id string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = qty
			return true
		}
	}
	return false
}

// adjust rewrites a line's quantity under a single lock.
func (s *Store) adjust(id string, fn func(int) int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = fn(s.items[i].Quantity)
			return true
		}
	}
	return false
}

// Quantity returns the quantity of a line and whether it exists.
func (s *Store) Quantity(id string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == id {
			return item.Quantity, true
		}
	}
	return 0, false
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// Count is the sum of all quantities.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) == 0
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CartItem, len(s.items))
	copy(out, s.items)
	return out
}
