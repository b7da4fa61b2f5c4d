package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(UpNotificationsReviews, DownNotificationsReviews)
}

func UpNotificationsReviews(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
CREATE TABLE notifications
(
    id           BIGSERIAL PRIMARY KEY,
    user_id      BIGINT NOT NULL REFERENCES users (id),
    order_id     BIGINT REFERENCES orders (id),
    type         VARCHAR(50) NOT NULL,
    message      VARCHAR(500) NOT NULL,
    is_read      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    published_at TIMESTAMPTZ
);
CREATE INDEX idx_notifications_user_created ON notifications (user_id, created_at DESC);
CREATE INDEX idx_notifications_unpublished ON notifications (id) WHERE published_at IS NULL;

CREATE TABLE reviews
(
    id          BIGSERIAL PRIMARY KEY,
    order_id    BIGINT NOT NULL REFERENCES orders (id) UNIQUE,
    customer_id BIGINT NOT NULL REFERENCES customers (id),
    courier_id  BIGINT REFERENCES couriers (id),
    rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    comment     VARCHAR(500),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
	return err
}

func DownNotificationsReviews(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
DROP TABLE reviews;
DROP TABLE notifications;
`)
	return err
}
