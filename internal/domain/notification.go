package domain

import "time"

// Notification types produced by the core.
const (
	NotificationAssignment     = "new_assignment"
	NotificationOrderDelivered = "order_delivered"
	NotificationOrderCancelled = "order_cancelled"
)

// Notification is a durable user-facing message. The outbox worker publishes
// unpublished rows to the external delivery channel; PublishedAt records that.
type Notification struct {
	ID          int64
	UserID      int64
	OrderID     *int64
	Type        string
	Message     string
	IsRead      bool
	CreatedAt   time.Time
	PublishedAt *time.Time
}
