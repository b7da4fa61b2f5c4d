package app

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/dig"

	"delivery-tracking/internal/config"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/outbox"
	"delivery-tracking/internal/repository"
	"delivery-tracking/internal/transport/kafka"
)

// MustBuildWorkerContainer builds the DI container for the outbox worker
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	container, err := buildWorkerContainer(ctx)
	if err != nil {
		log.Fatalf("failed to build worker container: %v", err)
	}
	return container
}

func buildWorkerContainer(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, connectDbWithRetry, repository.Migrate); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		repository.NewNotificationRepo,
		func(cfg *config.Config) (*kafka.Producer, error) {
			return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		},
		func(
			repo *repository.NotificationRepo,
			producer *kafka.Producer,
			logger logx.Logger,
			cfg *config.Config,
		) *outbox.Publisher {
			return outbox.NewPublisher(repo, producer, logger, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
		},
	)
}
