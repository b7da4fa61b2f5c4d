package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-tracking/internal/domain"
)

// NotificationRepo reads and acknowledges outbox rows. Enqueueing happens
// through TxRepo.InsertNotification inside the writer's transaction.
type NotificationRepo struct{ db *pgxpool.Pool }

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, order_id, type, message, is_read, created_at, published_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.OrderID, &n.Type, &n.Message,
			&n.IsRead, &n.CreatedAt, &n.PublishedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead acknowledges a notification for its owner. Returns false when
// the row does not exist or belongs to another user.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
    `, id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// PublishBatch claims up to limit unpublished rows, hands each to send, and
// stamps the successfully sent ones. The claim and the stamp share one
// transaction; SKIP LOCKED lets concurrent workers take disjoint batches.
// Rows whose send failed stay unpublished and are retried on a later tick.
func (r *NotificationRepo) PublishBatch(ctx context.Context, limit int, at time.Time, send func(domain.Notification) error) (published int, err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, `
        SELECT id, user_id, order_id, type, message, is_read, created_at, published_at
        FROM notifications
        WHERE published_at IS NULL
        ORDER BY id
        LIMIT $1
        FOR UPDATE SKIP LOCKED
    `, limit)
	if err != nil {
		return 0, fmt.Errorf("claim unpublished notifications: %w", err)
	}

	batch := make([]domain.Notification, 0, limit)
	for rows.Next() {
		var n domain.Notification
		if err = rows.Scan(&n.ID, &n.UserID, &n.OrderID, &n.Type, &n.Message,
			&n.IsRead, &n.CreatedAt, &n.PublishedAt); err != nil {
			rows.Close()
			return 0, err
		}
		batch = append(batch, n)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return 0, err
	}

	sent := make([]int64, 0, len(batch))
	var sendErr error
	for _, n := range batch {
		if sendErr = send(n); sendErr != nil {
			break
		}
		sent = append(sent, n.ID)
	}

	if len(sent) > 0 {
		if _, err = tx.Exec(ctx, `
            UPDATE notifications SET published_at = $2 WHERE id = ANY($1)
        `, sent, at); err != nil {
			return 0, fmt.Errorf("mark notifications published: %w", err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit outbox tx: %w", err)
	}
	if sendErr != nil {
		return len(sent), fmt.Errorf("publish notification: %w", sendErr)
	}
	return len(sent), nil
}
