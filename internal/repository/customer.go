package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-tracking/internal/domain"
)

// CustomerRepo represents customer repository.
type CustomerRepo struct{ db *pgxpool.Pool }

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(db *pgxpool.Pool) *CustomerRepo { return &CustomerRepo{db: db} }

// Get - returns customer by its ID, or nil if missing.
func (r *CustomerRepo) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.QueryRow(ctx, `
        SELECT id, user_id, name, address, phone, COALESCE(email, '')
        FROM customers
        WHERE id = $1
    `, id).Scan(&c.ID, &c.UserID, &c.Name, &c.Address, &c.Phone, &c.Email)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return &c, nil
}
