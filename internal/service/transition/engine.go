package transition

import (
	"context"
	"fmt"
	"time"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/ports/ordertx"
)

// Engine validates and applies order status changes. Every applied change
// appends exactly one tracking update in the same transaction.
type Engine struct {
	repo             txRunner
	cache            cacheInvalidator
	logger           logx.Logger
	operationTimeout time.Duration
	now              func() time.Time
}

// NewEngine creates a transition Engine.
func NewEngine(repo txRunner, cache cacheInvalidator, logger logx.Logger, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Engine{
		repo:             repo,
		cache:            cache,
		logger:           logger,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.operationTimeout)
}

// Change describes one requested status change together with the tracking
// information to record alongside it.
type Change struct {
	Status   domain.OrderStatus
	Location string
	Comment  *string
	Now      time.Time
}

// Apply moves the order to ch.Status if the edge is allowed. Only couriers
// and admins may drive transitions. The status write, the tracking update,
// the courier availability release and the customer notification all commit
// together or not at all.
func (e *Engine) Apply(ctx context.Context, actor domain.Actor, orderID int64, ch Change) (*domain.TrackingUpdate, error) {
	if !actor.Role.CanReportTracking() {
		return nil, apperr.ErrForbidden
	}
	if !ch.Status.Valid() {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if ch.Now.IsZero() {
		ch.Now = e.now()
	}

	var update *domain.TrackingUpdate
	err := e.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		update, err = ApplyInTx(ctx, tx, o, ch)
		return err
	})
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.Invalidate(orderID)
	}
	e.logger.Info("order status changed",
		logx.String("event", "status_changed"),
		logx.Int64("order_id", orderID),
		logx.String("status", string(ch.Status)),
		logx.Int64("actor_user_id", actor.UserID),
	)
	return update, nil
}

// ApplyInTx validates the edge against the transition table and records the
// change on an already-locked order. Callers own the transaction.
func ApplyInTx(ctx context.Context, tx ordertx.Repository, o *domain.Order, ch Change) (*domain.TrackingUpdate, error) {
	if !o.Status.CanTransitionTo(ch.Status) {
		return nil, apperr.ErrInvalidTransition
	}
	return recordInTx(ctx, tx, o, ch)
}

// RecordAssignmentInTx records the assigned_to_courier transition. It is the
// one edge allowed to skip forward-chain steps: any assignable order
// (new, paid, preparing) may take it.
func RecordAssignmentInTx(ctx context.Context, tx ordertx.Repository, o *domain.Order, ch Change) (*domain.TrackingUpdate, error) {
	if ch.Status != domain.StatusAssignedToCourier {
		return nil, apperr.ErrInvalidTransition
	}
	if !o.Status.Assignable() {
		return nil, apperr.ErrInvalidTransition
	}
	return recordInTx(ctx, tx, o, ch)
}

// recordInTx writes the status, appends the tracking row, and derives the
// terminal-state side effects. actual_delivery_time is written in the same
// statement as the status so no crash can observe one without the other.
func recordInTx(ctx context.Context, tx ordertx.Repository, o *domain.Order, ch Change) (*domain.TrackingUpdate, error) {
	var deliveredAt *time.Time
	if ch.Status == domain.StatusDelivered {
		t := ch.Now
		deliveredAt = &t
	}
	if err := tx.UpdateOrderStatus(ctx, o.ID, ch.Status, deliveredAt); err != nil {
		return nil, err
	}

	update := &domain.TrackingUpdate{
		OrderID:  o.ID,
		Status:   ch.Status,
		Location: ch.Location,
		Comment:  ch.Comment,
	}
	if err := tx.InsertTrackingUpdate(ctx, update); err != nil {
		return nil, err
	}

	if ch.Status.Terminal() {
		if o.CourierID != nil {
			if err := tx.SetCourierAvailability(ctx, *o.CourierID, true); err != nil {
				return nil, err
			}
			// a cancelled order carries no courier; a delivered one keeps
			// the binding as the delivery record
			if ch.Status == domain.StatusCancelled {
				if err := tx.ClearOrderCourier(ctx, o.ID); err != nil {
					return nil, err
				}
				o.CourierID = nil
			}
		}
		if err := notifyCustomer(ctx, tx, o, ch.Status); err != nil {
			return nil, err
		}
	}

	o.Status = ch.Status
	if deliveredAt != nil {
		o.ActualDeliveryTime = deliveredAt
	}
	return update, nil
}

func notifyCustomer(ctx context.Context, tx ordertx.Repository, o *domain.Order, status domain.OrderStatus) error {
	userID, err := tx.GetCustomerUserID(ctx, o.CustomerID)
	if err != nil {
		return err
	}

	kind := domain.NotificationOrderDelivered
	message := fmt.Sprintf("Your order #%d has been delivered", o.ID)
	if status == domain.StatusCancelled {
		kind = domain.NotificationOrderCancelled
		message = fmt.Sprintf("Your order #%d has been cancelled", o.ID)
	}

	orderID := o.ID
	return tx.InsertNotification(ctx, &domain.Notification{
		UserID:  userID,
		OrderID: &orderID,
		Type:    kind,
		Message: message,
	})
}
