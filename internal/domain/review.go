package domain

import "time"

// Review is a customer rating of a delivered order. At most one per order.
type Review struct {
	ID         int64
	OrderID    int64
	CustomerID int64
	CourierID  *int64
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

// ValidRating reports whether the rating is within [1,5].
func ValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
