package ordertx

import (
	"context"
	"time"

	"delivery-tracking/internal/domain"
)

// Repository is the set of order-store operations available inside one
// transaction. Locking the order row first serializes concurrent mutations
// of the same order.
type Repository interface {
	GetOrderForUpdate(ctx context.Context, orderID int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus, deliveredAt *time.Time) error
	SetOrderCourier(ctx context.Context, orderID, courierID int64) error
	ClearOrderCourier(ctx context.Context, orderID int64) error
	SetPaymentResult(ctx context.Context, orderID int64, status string, ref *string) error
	InsertTrackingUpdate(ctx context.Context, u *domain.TrackingUpdate) error
	GetCourierForUpdate(ctx context.Context, courierID int64) (*domain.Courier, error)
	SetCourierAvailability(ctx context.Context, courierID int64, available bool) error
	InsertNotification(ctx context.Context, n *domain.Notification) error
	GetCustomerUserID(ctx context.Context, customerID int64) (int64, error)
}

// Runner opens a transaction and runs fn within it.
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
