package orders

import (
	"context"

	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/gateway/payments"
	"delivery-tracking/internal/ports/ordertx"
)

// orderRepository is the slice of the order store the service uses.
type orderRepository interface {
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
	Create(ctx context.Context, o *domain.Order) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
}

// customerGetter resolves customers for ownership checks.
type customerGetter interface {
	Get(ctx context.Context, id int64) (*domain.Customer, error)
}

// reviewStore persists order reviews.
type reviewStore interface {
	Insert(ctx context.Context, rev *domain.Review) error
}

// paymentGateway charges the customer through the external provider.
type paymentGateway interface {
	Process(ctx context.Context, pr payments.Request) (*payments.Result, error)
}

// orderCache is a read-through cache of orders by ID.
type orderCache interface {
	Get(orderID int64) (*domain.Order, bool)
	Set(o *domain.Order)
	Invalidate(orderID int64)
}
