package domain

import "time"

// TrackingUpdate is an append-only audit record of an order status change.
// Rows are never mutated or deleted.
type TrackingUpdate struct {
	ID        int64
	OrderID   int64
	Status    OrderStatus
	Location  string
	Comment   *string
	Timestamp time.Time
}
