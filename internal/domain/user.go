package domain

// Actor identifies the authenticated caller of an operation.
// Credential verification happens outside the core; handlers receive the
// actor from the bearer token middleware.
type Actor struct {
	UserID int64
	Role   Role
}

// Customer represents an order-placing customer.
type Customer struct {
	ID      int64
	UserID  int64
	Name    string
	Address string
	Phone   string
	Email   string
}
