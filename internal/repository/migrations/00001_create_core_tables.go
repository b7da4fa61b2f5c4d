package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(UpCoreTables, DownCoreTables)
}

func UpCoreTables(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
CREATE TABLE users
(
    id    BIGSERIAL PRIMARY KEY,
    email VARCHAR(100) UNIQUE NOT NULL,
    role  VARCHAR(20) NOT NULL DEFAULT 'customer'
);

CREATE TABLE customers
(
    id      BIGSERIAL PRIMARY KEY,
    user_id BIGINT REFERENCES users (id),
    name    VARCHAR(100) NOT NULL,
    address VARCHAR(200) NOT NULL,
    phone   VARCHAR(20) NOT NULL,
    email   VARCHAR(100) UNIQUE
);

CREATE TABLE couriers
(
    id               BIGSERIAL PRIMARY KEY,
    user_id          BIGINT REFERENCES users (id),
    name             VARCHAR(100) NOT NULL,
    phone            VARCHAR(20) NOT NULL,
    is_available     BOOLEAN NOT NULL DEFAULT TRUE,
    current_location VARCHAR(200),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE orders
(
    id                      BIGSERIAL PRIMARY KEY,
    customer_id             BIGINT NOT NULL REFERENCES customers (id),
    courier_id              BIGINT REFERENCES couriers (id),
    status                  VARCHAR(50) NOT NULL DEFAULT 'new',
    delivery_address        VARCHAR(200) NOT NULL,
    total_price             DOUBLE PRECISION NOT NULL,
    payment_status          VARCHAR(50) NOT NULL DEFAULT 'pending',
    payment_ref             VARCHAR(100),
    created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
    estimated_delivery_time TIMESTAMPTZ,
    actual_delivery_time    TIMESTAMPTZ
);
CREATE INDEX idx_orders_customer_id ON orders (customer_id);
CREATE INDEX idx_orders_courier_id ON orders (courier_id);
CREATE INDEX idx_orders_status ON orders (status);

CREATE TABLE order_items
(
    id           BIGSERIAL PRIMARY KEY,
    order_id     BIGINT NOT NULL REFERENCES orders (id),
    product_name VARCHAR(100) NOT NULL,
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    price        DOUBLE PRECISION NOT NULL CHECK (price > 0)
);
CREATE INDEX idx_order_items_order_id ON order_items (order_id);
`)
	return err
}

func DownCoreTables(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
DROP TABLE order_items;
DROP TABLE orders;
DROP TABLE couriers;
DROP TABLE customers;
DROP TABLE users;
`)
	return err
}
