// Package orders implements order creation, reads, payment and reviews.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/gateway/payments"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/metrics"
	"delivery-tracking/internal/ports/ordertx"
	"delivery-tracking/internal/service/transition"
)

// Service owns the order use cases that are not status transitions.
type Service struct {
	repo             orderRepository
	customers        customerGetter
	reviews          reviewStore
	gateway          paymentGateway
	cache            orderCache
	logger           logx.Logger
	operationTimeout time.Duration
	newPaymentKey    func() string
}

// NewService creates an order Service.
func NewService(
	repo orderRepository,
	customers customerGetter,
	reviews reviewStore,
	gateway paymentGateway,
	cache orderCache,
	logger logx.Logger,
	timeout time.Duration,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             repo,
		customers:        customers,
		reviews:          reviews,
		gateway:          gateway,
		cache:            cache,
		logger:           logger,
		operationTimeout: timeout,
		newPaymentKey:    uuid.NewString,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// CreateOrder is the validated input of Create.
type CreateOrder struct {
	CustomerID      int64
	DeliveryAddress string
	Items           []domain.OrderItem
}

// Create validates the input and persists the order with its items in one
// transaction. Customers may only create orders for themselves.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateOrder) (*domain.Order, error) {
	if len(in.Items) == 0 || in.DeliveryAddress == "" {
		return nil, apperr.ErrInvalid
	}
	for _, it := range in.Items {
		if !it.Validate() {
			return nil, apperr.ErrInvalid
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	customer, err := s.customers.Get(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperr.ErrNotFound
	}
	if actor.Role == domain.RoleCustomer && customer.UserID != actor.UserID {
		return nil, apperr.ErrForbidden
	}

	o := &domain.Order{
		CustomerID:      in.CustomerID,
		DeliveryAddress: in.DeliveryAddress,
		TotalPrice:      domain.TotalPrice(in.Items),
		Items:           in.Items,
	}
	id, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		logx.String("event", "order_created"),
		logx.Int64("order_id", id),
		logx.Int64("customer_id", in.CustomerID),
		logx.Float64("total_price", o.TotalPrice),
	)
	return o, nil
}

// Get returns the order, serving repeated reads from the cache.
func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	if s.cache != nil {
		if o, ok := s.cache.Get(orderID); ok {
			return o, nil
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	if s.cache != nil {
		s.cache.Set(o)
	}
	return o, nil
}

// defaultCurrency is what the provider charges in; orders carry no
// per-order currency.
const defaultCurrency = "RUB"

// PayInput is the validated input of Pay.
type PayInput struct {
	Method string
}

// Pay charges the order through the payment provider and moves it to paid.
// The gateway call happens while the order row is locked, so two concurrent
// Pay calls cannot both charge. A provider failure leaves the order untouched.
func (s *Service) Pay(ctx context.Context, actor domain.Actor, orderID int64, in PayInput) (*domain.Order, error) {
	if strings.TrimSpace(in.Method) == "" {
		return nil, fmt.Errorf("%w: payment method is required", apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var paid *domain.Order
	var declined bool
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if actor.Role == domain.RoleCustomer {
			userID, err := tx.GetCustomerUserID(ctx, o.CustomerID)
			if err != nil {
				return err
			}
			if userID != actor.UserID {
				return apperr.ErrForbidden
			}
		}
		if o.Status != domain.StatusNew {
			return apperr.ErrInvalidTransition
		}

		res, err := s.gateway.Process(ctx, payments.Request{
			OrderID:        orderID,
			Amount:         o.TotalPrice,
			Currency:       defaultCurrency,
			Method:         in.Method,
			IdempotencyKey: s.newPaymentKey(),
		})
		if err != nil {
			metrics.PaymentAttempts.WithLabelValues("error").Inc()
			return fmt.Errorf("%w: process payment: %s", apperr.ErrUpstream, err)
		}
		if res.Status != payments.ResultCompleted {
			// commit the failed payment status, then report the conflict
			metrics.PaymentAttempts.WithLabelValues("declined").Inc()
			declined = true
			return tx.SetPaymentResult(ctx, orderID, domain.PaymentFailed, nil)
		}
		metrics.PaymentAttempts.WithLabelValues("completed").Inc()

		ref := res.TransactionRef
		if err := tx.SetPaymentResult(ctx, orderID, domain.PaymentCompleted, &ref); err != nil {
			return err
		}
		if _, err := transition.ApplyInTx(ctx, tx, o, transition.Change{
			Status:   domain.StatusPaid,
			Location: "payment accepted",
			Now:      time.Now().UTC(),
		}); err != nil {
			return err
		}
		o.PaymentStatus = domain.PaymentCompleted
		o.PaymentRef = &ref
		paid = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(orderID)
	}
	if declined {
		s.logger.Warn("payment declined",
			logx.String("event", "payment_declined"),
			logx.Int64("order_id", orderID),
		)
		return nil, fmt.Errorf("%w: payment declined", apperr.ErrConflict)
	}

	s.logger.Info("order paid",
		logx.String("event", "order_paid"),
		logx.Int64("order_id", orderID),
	)
	return paid, nil
}

// ReviewInput is the validated input of Review.
type ReviewInput struct {
	Rating  int
	Comment string
}

// Review records the customer's rating of a delivered order. One review per
// order; the duplicate insert surfaces as ErrConflict.
func (s *Service) Review(ctx context.Context, actor domain.Actor, orderID int64, in ReviewInput) (*domain.Review, error) {
	if !domain.ValidRating(in.Rating) {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	if o.Status != domain.StatusDelivered {
		return nil, apperr.ErrInvalidTransition
	}
	if actor.Role == domain.RoleCustomer {
		customer, err := s.customers.Get(ctx, o.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil || customer.UserID != actor.UserID {
			return nil, apperr.ErrForbidden
		}
	}

	rev := &domain.Review{
		OrderID:    orderID,
		CustomerID: o.CustomerID,
		CourierID:  o.CourierID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}
	if err := s.reviews.Insert(ctx, rev); err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		logx.String("event", "review_created"),
		logx.Int64("order_id", orderID),
		logx.Int("rating", in.Rating),
	)
	return rev, nil
}
