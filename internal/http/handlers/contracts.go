package handlers

import (
	"context"

	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/service/assignment"
	"delivery-tracking/internal/service/notify"
	"delivery-tracking/internal/service/orders"
	"delivery-tracking/internal/service/transition"
)

type orderUsecase interface {
	Create(ctx context.Context, actor domain.Actor, in orders.CreateOrder) (*domain.Order, error)
	Get(ctx context.Context, orderID int64) (*domain.Order, error)
	Pay(ctx context.Context, actor domain.Actor, orderID int64, in orders.PayInput) (*domain.Order, error)
	Review(ctx context.Context, actor domain.Actor, orderID int64, in orders.ReviewInput) (*domain.Review, error)
}

// NewOrderUsecase wires an orders Service into an orderUsecase.
func NewOrderUsecase(svc *orders.Service) orderUsecase {
	return svc
}

type transitionUsecase interface {
	Apply(ctx context.Context, actor domain.Actor, orderID int64, ch transition.Change) (*domain.TrackingUpdate, error)
}

// NewTransitionUsecase wires a transition Engine into a transitionUsecase.
func NewTransitionUsecase(e *transition.Engine) transitionUsecase {
	return e
}

type assignmentUsecase interface {
	Assign(ctx context.Context, actor domain.Actor, orderID, courierID int64) (*domain.Order, error)
}

// NewAssignmentUsecase wires an assignment Coordinator into an assignmentUsecase.
func NewAssignmentUsecase(c *assignment.Coordinator) assignmentUsecase {
	return c
}

type notifyUsecase interface {
	List(ctx context.Context, actor domain.Actor) ([]domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.Actor, id int64) error
}

// NewNotifyUsecase wires a notify Service into a notifyUsecase.
func NewNotifyUsecase(svc *notify.Service) notifyUsecase {
	return svc
}
