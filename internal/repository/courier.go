package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-tracking/internal/domain"
)

// CourierRepo represents courier repository.
type CourierRepo struct{ db *pgxpool.Pool }

// NewCourierRepo creates a new CourierRepo.
func NewCourierRepo(db *pgxpool.Pool) *CourierRepo { return &CourierRepo{db: db} }

// Get - returns courier by its ID, or nil if missing.
func (r *CourierRepo) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	var c domain.Courier
	err := r.db.QueryRow(ctx, `
        SELECT id, user_id, name, phone, is_available, COALESCE(current_location, '')
        FROM couriers
        WHERE id = $1
    `, id).Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.IsAvailable, &c.CurrentLocation)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get courier %d: %w", id, err)
	}
	return &c, nil
}

// InsertLocation appends one row to the courier position log and fills in
// the generated id and timestamp.
func (r *CourierRepo) InsertLocation(ctx context.Context, loc *domain.CourierLocation) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO courier_locations (courier_id, latitude, longitude)
        VALUES ($1, $2, $3)
        RETURNING id, timestamp
    `, loc.CourierID, loc.Latitude, loc.Longitude).Scan(&loc.ID, &loc.Timestamp)
	if err != nil {
		return fmt.Errorf("insert courier %d location: %w", loc.CourierID, err)
	}
	return nil
}
