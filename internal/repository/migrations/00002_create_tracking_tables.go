package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(UpTrackingTables, DownTrackingTables)
}

func UpTrackingTables(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
CREATE TABLE tracking_updates
(
    id        BIGSERIAL PRIMARY KEY,
    order_id  BIGINT NOT NULL REFERENCES orders (id),
    status    VARCHAR(50) NOT NULL,
    location  VARCHAR(200),
    comment   VARCHAR(500),
    timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX idx_tracking_updates_order_id ON tracking_updates (order_id);

CREATE TABLE courier_locations
(
    id         BIGSERIAL PRIMARY KEY,
    courier_id BIGINT NOT NULL REFERENCES couriers (id),
    latitude   DOUBLE PRECISION NOT NULL,
    longitude  DOUBLE PRECISION NOT NULL,
    timestamp  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX idx_courier_locations_courier_ts ON courier_locations (courier_id, timestamp);
`)
	return err
}

func DownTrackingTables(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
DROP TABLE courier_locations;
DROP TABLE tracking_updates;
`)
	return err
}
