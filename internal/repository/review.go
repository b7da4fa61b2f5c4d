package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
)

// ReviewRepo represents review repository.
type ReviewRepo struct{ db *pgxpool.Pool }

// NewReviewRepo creates a new ReviewRepo.
func NewReviewRepo(db *pgxpool.Pool) *ReviewRepo { return &ReviewRepo{db: db} }

// Insert creates a review. The unique index on order_id enforces at most
// one review per order.
func (r *ReviewRepo) Insert(ctx context.Context, rev *domain.Review) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO reviews (order_id, customer_id, courier_id, rating, comment)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `, rev.OrderID, rev.CustomerID, rev.CourierID, rev.Rating, rev.Comment,
	).Scan(&rev.ID, &rev.CreatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert review for order %d: %w", rev.OrderID, err)
	}
	return nil
}
