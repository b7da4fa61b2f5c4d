package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/outbox"
	"delivery-tracking/internal/transport/kafka"
)

// WorkerRunner runs the outbox publisher loop
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun drains the notification outbox until the context is cancelled
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	producer *kafka.Producer,
	publisher *outbox.Publisher,
) error {
	if producer == nil {
		return fmt.Errorf("kafka producer is nil: worker container misconfigured")
	}
	defer closeWorker(pool, logger, producer)

	logger.Info("outbox-worker started")
	return publisher.Run(ctx)
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, producer *kafka.Producer) {
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
