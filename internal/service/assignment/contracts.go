package assignment

import (
	"context"

	"delivery-tracking/internal/ports/ordertx"
)

// txRunner opens order-store transactions for the coordinator.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
}

// cacheInvalidator drops a cached order after a mutation commits.
type cacheInvalidator interface {
	Invalidate(orderID int64)
}
