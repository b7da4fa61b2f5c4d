package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"delivery-tracking/internal/cache"
	"delivery-tracking/internal/config"
	"delivery-tracking/internal/gateway/payments"
	"delivery-tracking/internal/http/handlers"
	"delivery-tracking/internal/http/middleware/ratelimit"
	"delivery-tracking/internal/http/pprofserver"
	"delivery-tracking/internal/http/router"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/metrics"
	"delivery-tracking/internal/repository"
	"delivery-tracking/internal/service/assignment"
	"delivery-tracking/internal/service/notify"
	"delivery-tracking/internal/service/orders"
	"delivery-tracking/internal/service/transition"
	"delivery-tracking/internal/tracking"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	migrate   func(string) error
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		migrate:   repository.Migrate,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithMigrate sets the schema migration function
func (b *ContainerBuilder) WithMigrate(fn func(string) error) *ContainerBuilder {
	if fn != nil {
		b.migrate = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// build builds and returns a new dig container
func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect, b.migrate); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
	migrate func(string) error,
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		pool, err := dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := migrate(cfg.DB.DSN()); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	}
	return provideAll(container, providerDB)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewOrderRepo,
		repository.NewCourierRepo,
		repository.NewCustomerRepo,
		repository.NewReviewRepo,
		repository.NewNotificationRepo,
		func() time.Duration { return 3 * time.Second },
		func(cfg *config.Config) *cache.OrderCache {
			return cache.NewOrderCache(cfg.Cache.TTL)
		},
		func(cfg *config.Config, logger logx.Logger) *payments.RetryingGateway {
			gw := payments.NewHTTPGateway(cfg.Payments.BaseURL, cfg.Payments.Timeout)
			return payments.NewRetryingGateway(gw, logger, metrics.PaymentRetries, payments.RetryConfig{
				MaxAttempts: cfg.Payments.MaxAttempts,
				BaseDelay:   cfg.Payments.BaseDelay,
				MaxDelay:    cfg.Payments.MaxDelay,
			})
		},
		func(repo *repository.OrderRepo, c *cache.OrderCache, logger logx.Logger, timeout time.Duration) *transition.Engine {
			return transition.NewEngine(repo, c, logger, timeout)
		},
		func(repo *repository.OrderRepo, c *cache.OrderCache, logger logx.Logger, timeout time.Duration) *assignment.Coordinator {
			return assignment.NewCoordinator(repo, c, logger, timeout)
		},
		func(
			repo *repository.OrderRepo,
			customers *repository.CustomerRepo,
			reviews *repository.ReviewRepo,
			gw *payments.RetryingGateway,
			c *cache.OrderCache,
			logger logx.Logger,
			timeout time.Duration,
		) *orders.Service {
			return orders.NewService(repo, customers, reviews, gw, c, logger, timeout)
		},
		func(repo *repository.NotificationRepo, logger logx.Logger, timeout time.Duration) *notify.Service {
			return notify.NewService(repo, logger, timeout)
		},
		func(couriers *repository.CourierRepo, logger logx.Logger) *tracking.Hub {
			return tracking.NewHub(couriers, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	routerProvider := func(
		cfg *config.Config,
		base *handlers.Handlers,
		orderHandler *handlers.OrderHandler,
		notificationHandler *handlers.NotificationHandler,
		ws *handlers.WSHandler,
		logger logx.Logger,
		rl *ratelimit.Middleware,
	) http.Handler {
		var debug http.Handler
		if cfg.Pprof.Enabled {
			debug = pprofserver.Handler(pprofserver.Config{User: cfg.Pprof.User, Pass: cfg.Pprof.Pass})
		}
		return router.New(router.Deps{
			Base:          base,
			Orders:        orderHandler,
			Notifications: notificationHandler,
			WS:            ws,
			Logger:        logger,
			AuthSecret:    cfg.Auth.Secret,
			RateLimit:     rl.Handler(),
			Debug:         debug,
		})
	}
	wsProvider := func(
		hub *tracking.Hub,
		couriers *repository.CourierRepo,
		ordersSvc *orders.Service,
		logger logx.Logger,
		cfg *config.Config,
	) *handlers.WSHandler {
		return handlers.NewWSHandler(hub, couriers, ordersSvc, logger, cfg.Tracking.IdleTimeout)
	}
	return provideAll(container,
		handlers.New,
		handlers.NewOrderUsecase,
		handlers.NewTransitionUsecase,
		handlers.NewAssignmentUsecase,
		handlers.NewNotifyUsecase,
		handlers.NewOrderHandler,
		handlers.NewNotificationHandler,
		wsProvider,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitCounter,
		newRateLimitMiddleware,
		routerProvider,
		serverProvider,
	)
}
