// Package assignment binds couriers to orders. Binding, the status change,
// the tracking row, the courier availability flip and the courier
// notification commit in one transaction, so two concurrent assignments of
// the same order or the same courier cannot both win.
package assignment

import (
	"context"
	"fmt"
	"time"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/ports/ordertx"
	"delivery-tracking/internal/service/transition"
)

// Coordinator performs courier assignment.
type Coordinator struct {
	repo             txRunner
	cache            cacheInvalidator
	logger           logx.Logger
	operationTimeout time.Duration
}

// NewCoordinator creates an assignment Coordinator.
func NewCoordinator(repo txRunner, cache cacheInvalidator, logger logx.Logger, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Coordinator{
		repo:             repo,
		cache:            cache,
		logger:           logger,
		operationTimeout: timeout,
	}
}

// Assign binds the courier to the order and moves the order to
// assigned_to_courier. Admin only. The order must be in an assignable
// status (new, paid, preparing) and the courier must be available.
func (c *Coordinator) Assign(ctx context.Context, actor domain.Actor, orderID, courierID int64) (*domain.Order, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperr.ErrForbidden
	}

	ctx, cancel := context.WithTimeout(ctx, c.operationTimeout)
	defer cancel()

	var assigned *domain.Order
	err := c.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		courier, err := tx.GetCourierForUpdate(ctx, courierID)
		if err != nil {
			return err
		}
		if courier == nil {
			return apperr.ErrNotFound
		}
		if !o.Status.Assignable() {
			return apperr.ErrInvalidTransition
		}
		if !courier.IsAvailable {
			return apperr.ErrConflict
		}

		if err := tx.SetOrderCourier(ctx, orderID, courierID); err != nil {
			return err
		}
		o.CourierID = &courierID
		if _, err := transition.RecordAssignmentInTx(ctx, tx, o, transition.Change{
			Status: domain.StatusAssignedToCourier,
			Now:    time.Now().UTC(),
		}); err != nil {
			return err
		}
		if err := tx.SetCourierAvailability(ctx, courierID, false); err != nil {
			return err
		}

		oid := orderID
		if err := tx.InsertNotification(ctx, &domain.Notification{
			UserID:  courier.UserID,
			OrderID: &oid,
			Type:    domain.NotificationAssignment,
			Message: fmt.Sprintf("You have been assigned order #%d", orderID),
		}); err != nil {
			return err
		}

		assigned = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Invalidate(orderID)
	}
	c.logger.Info("courier assigned",
		logx.String("event", "courier_assigned"),
		logx.Int64("order_id", orderID),
		logx.Int64("courier_id", courierID),
	)
	return assigned, nil
}
