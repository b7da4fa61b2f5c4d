// Package storetest provides an in-memory order store implementing the
// ordertx contracts for service-level tests. A single mutex stands in for
// row locks: transactions on the store serialize the same way concurrent
// SELECT ... FOR UPDATE writers do.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/ports/ordertx"
)

// MemStore is an in-memory ordertx.Runner + Repository.
type MemStore struct {
	mu sync.Mutex

	Orders          map[int64]*domain.Order
	Couriers        map[int64]*domain.Courier
	CustomerUsers   map[int64]int64 // customer id -> user id
	TrackingUpdates []domain.TrackingUpdate
	Notifications   []domain.Notification

	nextOrderID        int64
	nextTrackingID     int64
	nextNotificationID int64
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		Orders:        make(map[int64]*domain.Order),
		Couriers:      make(map[int64]*domain.Courier),
		CustomerUsers: make(map[int64]int64),
	}
}

var _ ordertx.Runner = (*MemStore)(nil)

// WithTx serializes fn against all other transactions on the store.
func (s *MemStore) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shadow := s.snapshot()
	if err := fn(txView{s: s}); err != nil {
		s.restore(shadow)
		return err
	}
	return nil
}

func (s *MemStore) snapshot() *MemStore {
	cp := &MemStore{
		Orders:             make(map[int64]*domain.Order, len(s.Orders)),
		Couriers:           make(map[int64]*domain.Courier, len(s.Couriers)),
		CustomerUsers:      make(map[int64]int64, len(s.CustomerUsers)),
		TrackingUpdates:    append([]domain.TrackingUpdate(nil), s.TrackingUpdates...),
		Notifications:      append([]domain.Notification(nil), s.Notifications...),
		nextOrderID:        s.nextOrderID,
		nextTrackingID:     s.nextTrackingID,
		nextNotificationID: s.nextNotificationID,
	}
	for id, o := range s.Orders {
		c := *o
		cp.Orders[id] = &c
	}
	for id, c := range s.Couriers {
		cc := *c
		cp.Couriers[id] = &cc
	}
	for k, v := range s.CustomerUsers {
		cp.CustomerUsers[k] = v
	}
	return cp
}

func (s *MemStore) restore(from *MemStore) {
	s.Orders = from.Orders
	s.Couriers = from.Couriers
	s.CustomerUsers = from.CustomerUsers
	s.TrackingUpdates = from.TrackingUpdates
	s.Notifications = from.Notifications
	s.nextOrderID = from.nextOrderID
	s.nextTrackingID = from.nextTrackingID
	s.nextNotificationID = from.nextNotificationID
}

// Create mimics the order repository insert: it assigns an ID and the
// initial status and payment state.
func (s *MemStore) Create(_ context.Context, o *domain.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrderID++
	o.ID = s.nextOrderID
	o.Status = domain.StatusNew
	o.PaymentStatus = domain.PaymentPending
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		o.Items[i].ID = int64(i + 1)
	}
	cp := *o
	s.Orders[o.ID] = &cp
	return o.ID, nil
}

// Get returns a copy of the order, or nil if missing.
func (s *MemStore) Get(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.Orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

// txView implements ordertx.Repository against the locked store.
type txView struct{ s *MemStore }

var _ ordertx.Repository = txView{}

func (t txView) GetOrderForUpdate(_ context.Context, orderID int64) (*domain.Order, error) {
	o, ok := t.s.Orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (t txView) UpdateOrderStatus(_ context.Context, orderID int64, status domain.OrderStatus, deliveredAt *time.Time) error {
	o, ok := t.s.Orders[orderID]
	if !ok {
		return fmt.Errorf("order %d not found", orderID)
	}
	o.Status = status
	if deliveredAt != nil {
		at := *deliveredAt
		o.ActualDeliveryTime = &at
	}
	return nil
}

func (t txView) SetOrderCourier(_ context.Context, orderID, courierID int64) error {
	o, ok := t.s.Orders[orderID]
	if !ok {
		return fmt.Errorf("order %d not found", orderID)
	}
	id := courierID
	o.CourierID = &id
	return nil
}

func (t txView) ClearOrderCourier(_ context.Context, orderID int64) error {
	o, ok := t.s.Orders[orderID]
	if !ok {
		return fmt.Errorf("order %d not found", orderID)
	}
	o.CourierID = nil
	return nil
}

func (t txView) SetPaymentResult(_ context.Context, orderID int64, status string, ref *string) error {
	o, ok := t.s.Orders[orderID]
	if !ok {
		return fmt.Errorf("order %d not found", orderID)
	}
	o.PaymentStatus = status
	o.PaymentRef = ref
	return nil
}

func (t txView) InsertTrackingUpdate(_ context.Context, u *domain.TrackingUpdate) error {
	t.s.nextTrackingID++
	u.ID = t.s.nextTrackingID
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now().UTC()
	}
	t.s.TrackingUpdates = append(t.s.TrackingUpdates, *u)
	return nil
}

func (t txView) GetCourierForUpdate(_ context.Context, courierID int64) (*domain.Courier, error) {
	c, ok := t.s.Couriers[courierID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (t txView) SetCourierAvailability(_ context.Context, courierID int64, available bool) error {
	c, ok := t.s.Couriers[courierID]
	if !ok {
		return fmt.Errorf("courier %d not found", courierID)
	}
	c.IsAvailable = available
	return nil
}

func (t txView) InsertNotification(_ context.Context, n *domain.Notification) error {
	t.s.nextNotificationID++
	n.ID = t.s.nextNotificationID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	t.s.Notifications = append(t.s.Notifications, *n)
	return nil
}

func (t txView) GetCustomerUserID(_ context.Context, customerID int64) (int64, error) {
	userID, ok := t.s.CustomerUsers[customerID]
	if !ok {
		return 0, fmt.Errorf("customer %d not found", customerID)
	}
	return userID, nil
}

// TrackingFor returns the tracking updates recorded for an order, in order.
func (s *MemStore) TrackingFor(orderID int64) []domain.TrackingUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TrackingUpdate, 0)
	for _, u := range s.TrackingUpdates {
		if u.OrderID == orderID {
			out = append(out, u)
		}
	}
	return out
}

// NotificationsFor returns the notifications recorded for a user.
func (s *MemStore) NotificationsFor(userID int64) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, 0)
	for _, n := range s.Notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}
