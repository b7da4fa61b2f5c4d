package domain

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

// List of possible order statuses.
const (
	StatusNew               OrderStatus = "new"
	StatusPaid              OrderStatus = "paid"
	StatusPreparing         OrderStatus = "preparing"
	StatusAssignedToCourier OrderStatus = "assigned_to_courier"
	StatusInDelivery        OrderStatus = "in_delivery"
	StatusDelivered         OrderStatus = "delivered"
	StatusCancelled         OrderStatus = "cancelled"
)

// transitions is the closed table of forward edges. Cancellation is handled
// separately: any non-terminal status may move to cancelled.
var transitions = map[OrderStatus]OrderStatus{
	StatusNew:               StatusPaid,
	StatusPaid:              StatusPreparing,
	StatusPreparing:         StatusAssignedToCourier,
	StatusAssignedToCourier: StatusInDelivery,
	StatusInDelivery:        StatusDelivered,
}

// Valid checks if the OrderStatus is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusPaid, StatusPreparing, StatusAssignedToCourier,
		StatusInDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the status may move to next: one step
// along the forward chain, or to cancelled from any non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if next == StatusCancelled {
		return !s.Terminal()
	}
	return transitions[s] == next
}

// Assignable reports whether a courier may be bound to an order in this status.
func (s OrderStatus) Assignable() bool {
	return s == StatusNew || s == StatusPaid || s == StatusPreparing
}

// Role represents the role of an acting user.
type Role string

// List of possible user roles.
const (
	RoleCustomer Role = "customer"
	RoleCourier  Role = "courier"
	RoleAdmin    Role = "admin"
)

// Valid checks if the Role is valid.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleCourier || r == RoleAdmin
}

// CanReportTracking reports whether the role may drive status changes
// through tracking reports.
func (r Role) CanReportTracking() bool {
	return r == RoleCourier || r == RoleAdmin
}
