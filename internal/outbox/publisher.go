// Package outbox drains the durable notification outbox into Kafka.
package outbox

import (
	"context"
	"strconv"
	"time"

	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/metrics"
)

// batchStore claims and stamps unpublished notifications.
type batchStore interface {
	PublishBatch(ctx context.Context, limit int, at time.Time, send func(domain.Notification) error) (int, error)
}

// sender pushes one event to the broker.
type sender interface {
	Publish(key string, payload any) error
}

// Event is the wire shape of a published notification.
type Event struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	OrderID   *int64    `json:"order_id,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher polls the outbox and publishes claimed rows. A failed publish
// leaves the row unstamped; the next tick retries it, so delivery is
// at-least-once.
type Publisher struct {
	store        batchStore
	sender       sender
	logger       logx.Logger
	pollInterval time.Duration
	batchSize    int
}

// NewPublisher creates an outbox Publisher.
func NewPublisher(store batchStore, s sender, logger logx.Logger, pollInterval time.Duration, batchSize int) *Publisher {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Publisher{
		store:        store,
		sender:       s,
		logger:       logger,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

// Run polls until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("outbox publisher started",
		logx.Duration("poll_interval", p.pollInterval),
		logx.Int("batch_size", p.batchSize),
	)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox publisher stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.Tick(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("outbox batch failed", logx.Err(err))
			}
		}
	}
}

// Tick drains one batch.
func (p *Publisher) Tick(ctx context.Context) error {
	published, err := p.store.PublishBatch(ctx, p.batchSize, time.Now().UTC(), func(n domain.Notification) error {
		return p.sender.Publish(strconv.FormatInt(n.UserID, 10), Event{
			ID:        n.ID,
			UserID:    n.UserID,
			OrderID:   n.OrderID,
			Type:      n.Type,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	})
	if published > 0 {
		metrics.OutboxPublished.Add(float64(published))
		p.logger.Info("notifications published", logx.Int("count", published))
	}
	return err
}
