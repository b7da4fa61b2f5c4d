package domain

import "time"

// Order represents a delivery order. Persisted rows are owned by the order
// repository; status and courier binding change only through the transition
// engine and the assignment coordinator.
type Order struct {
	ID                    int64
	CustomerID            int64
	CourierID             *int64
	Status                OrderStatus
	DeliveryAddress       string
	TotalPrice            float64
	PaymentStatus         string
	PaymentRef            *string
	CreatedAt             time.Time
	EstimatedDeliveryTime *time.Time
	ActualDeliveryTime    *time.Time
	Items                 []OrderItem
}

// OrderItem is a single line of an order. Immutable after creation.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductName string
	Quantity    int
	Price       float64
}

// Validate checks an item as received at the API boundary.
func (i OrderItem) Validate() bool {
	return i.ProductName != "" && i.Quantity > 0 && i.Price > 0
}

// TotalPrice computes the order total as the sum of quantity*price over items.
func TotalPrice(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += float64(it.Quantity) * it.Price
	}
	return total
}

// Payment statuses recorded on an order. The settlement itself belongs to the
// external payment provider; the core only records the outcome.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)
