package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/ports/ordertx"
)

// OrderRepo is the single owner of persisted order rows. All multi-step
// mutations go through WithTx so that per-order writes serialize on the
// locked row.
type OrderRepo struct {
	db *pgxpool.Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *OrderRepo) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// Create inserts the order and its items in one transaction and returns
// the generated order ID.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) (int64, error) {
	var id int64
	err := r.WithTx(ctx, func(tx ordertx.Repository) error {
		txr, ok := tx.(*TxRepo)
		if !ok {
			return fmt.Errorf("unexpected tx repository type %T", tx)
		}
		if err := txr.tx.QueryRow(ctx, `
            INSERT INTO orders (customer_id, delivery_address, total_price, status, payment_status)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id, created_at
        `, o.CustomerID, o.DeliveryAddress, o.TotalPrice,
			string(domain.StatusNew), domain.PaymentPending,
		).Scan(&id, &o.CreatedAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i := range o.Items {
			it := &o.Items[i]
			it.OrderID = id
			if err := txr.tx.QueryRow(ctx, `
                INSERT INTO order_items (order_id, product_name, quantity, price)
                VALUES ($1, $2, $3, $4)
                RETURNING id
            `, it.OrderID, it.ProductName, it.Quantity, it.Price).Scan(&it.ID); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	o.ID = id
	o.Status = domain.StatusNew
	o.PaymentStatus = domain.PaymentPending
	return id, nil
}

// Get returns an order with its items, or nil if missing.
func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, customer_id, courier_id, status, delivery_address, total_price,
               payment_status, payment_ref, created_at, estimated_delivery_time, actual_delivery_time
        FROM orders
        WHERE id = $1
    `, id)

	var o domain.Order
	if err := row.Scan(&o.ID, &o.CustomerID, &o.CourierID, &o.Status, &o.DeliveryAddress,
		&o.TotalPrice, &o.PaymentStatus, &o.PaymentRef, &o.CreatedAt,
		&o.EstimatedDeliveryTime, &o.ActualDeliveryTime); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	rows, err := r.db.Query(ctx, `
        SELECT id, order_id, product_name, quantity, price
        FROM order_items
        WHERE order_id = $1
        ORDER BY id
    `, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d items: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// TxRepo implements ordertx.Repository over an open pgx transaction.
type TxRepo struct {
	tx pgx.Tx
}

// GetOrderForUpdate locks the order row for the rest of the transaction.
// Returns nil if the order does not exist.
func (r *TxRepo) GetOrderForUpdate(ctx context.Context, orderID int64) (*domain.Order, error) {
	row := r.tx.QueryRow(ctx, `
        SELECT id, customer_id, courier_id, status, delivery_address, total_price,
               payment_status, payment_ref, created_at, estimated_delivery_time, actual_delivery_time
        FROM orders
        WHERE id = $1
        FOR UPDATE
    `, orderID)

	var o domain.Order
	if err := row.Scan(&o.ID, &o.CustomerID, &o.CourierID, &o.Status, &o.DeliveryAddress,
		&o.TotalPrice, &o.PaymentStatus, &o.PaymentRef, &o.CreatedAt,
		&o.EstimatedDeliveryTime, &o.ActualDeliveryTime); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock order %d: %w", orderID, err)
	}
	return &o, nil
}

// UpdateOrderStatus writes the status and the delivery timestamp in one
// statement, so a crash cannot separate them.
func (r *TxRepo) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus, deliveredAt *time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET status = $2,
            actual_delivery_time = COALESCE($3, actual_delivery_time)
        WHERE id = $1
    `, orderID, string(status), deliveredAt)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", orderID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// SetOrderCourier binds the courier to the order.
func (r *TxRepo) SetOrderCourier(ctx context.Context, orderID, courierID int64) error {
	ct, err := r.tx.Exec(ctx,
		`UPDATE orders SET courier_id = $2 WHERE id = $1`, orderID, courierID)
	if err != nil {
		return fmt.Errorf("set order %d courier: %w", orderID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// ClearOrderCourier drops the courier binding from the order.
func (r *TxRepo) ClearOrderCourier(ctx context.Context, orderID int64) error {
	ct, err := r.tx.Exec(ctx,
		`UPDATE orders SET courier_id = NULL WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("clear order %d courier: %w", orderID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// SetPaymentResult records the payment outcome on the order.
func (r *TxRepo) SetPaymentResult(ctx context.Context, orderID int64, status string, ref *string) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders SET payment_status = $2, payment_ref = $3 WHERE id = $1
    `, orderID, status, ref)
	if err != nil {
		return fmt.Errorf("set order %d payment result: %w", orderID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// InsertTrackingUpdate appends one audit row. Rows are never updated or deleted.
func (r *TxRepo) InsertTrackingUpdate(ctx context.Context, u *domain.TrackingUpdate) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO tracking_updates (order_id, status, location, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING id, timestamp
    `, u.OrderID, string(u.Status), u.Location, u.Comment).Scan(&u.ID, &u.Timestamp)
	if err != nil {
		return fmt.Errorf("insert tracking update: %w", err)
	}
	return nil
}

// GetCourierForUpdate locks the courier row. Returns nil if missing.
func (r *TxRepo) GetCourierForUpdate(ctx context.Context, courierID int64) (*domain.Courier, error) {
	row := r.tx.QueryRow(ctx, `
        SELECT id, user_id, name, phone, is_available, COALESCE(current_location, '')
        FROM couriers
        WHERE id = $1
        FOR UPDATE
    `, courierID)

	var c domain.Courier
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.IsAvailable, &c.CurrentLocation); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock courier %d: %w", courierID, err)
	}
	return &c, nil
}

// SetCourierAvailability flips the courier availability flag.
func (r *TxRepo) SetCourierAvailability(ctx context.Context, courierID int64, available bool) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE couriers SET is_available = $2, updated_at = now() WHERE id = $1
    `, courierID, available)
	if err != nil {
		return fmt.Errorf("set courier %d availability: %w", courierID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("courier %d not found", courierID)
	}
	return nil
}

// InsertNotification enqueues an outbox row; it becomes durable when the
// enclosing transaction commits.
func (r *TxRepo) InsertNotification(ctx context.Context, n *domain.Notification) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO notifications (user_id, order_id, type, message)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `, n.UserID, n.OrderID, n.Type, n.Message).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// GetCustomerUserID resolves the user account behind a customer.
func (r *TxRepo) GetCustomerUserID(ctx context.Context, customerID int64) (int64, error) {
	var userID int64
	err := r.tx.QueryRow(ctx,
		`SELECT user_id FROM customers WHERE id = $1`, customerID,
	).Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("get customer %d user: %w", customerID, err)
	}
	return userID, nil
}
