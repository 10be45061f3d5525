package cart

// ClampQuantity keeps user-entered quantities at one or more.
func ClampQuantity(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}

// Increment adds one to the line's quantity.
func Increment(store *Store, id string) bool {
	return store.adjust(id, func(qty int) int { return qty + 1 })
}

// Decrement removes one from the line's quantity, stopping at one.
func Decrement(store *Store, id string) bool {
	return store.adjust(id, func(qty int) int { return ClampQuantity(qty - 1) })
}

// SetQuantity clamps qty before writing it.
func SetQuantity(store *Store, id string, qty int) bool {
	return store.UpdateQuantity(id, ClampQuantity(qty))
}
