package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "delivery",
	Pass: "delivery",
	Name: "delivery",
}

var defaultKafka = Kafka{
	Topic: "notifications",
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       10,
	Burst:      20,
	TTL:        10 * time.Minute,
	MaxBuckets: 100_000,
}

var defaultCache = Cache{
	TTL: 300 * time.Second,
}

var defaultTracking = Tracking{
	IdleTimeout: 90 * time.Second,
}

var defaultPayments = Payments{
	BaseURL:     "http://localhost:9090",
	Timeout:     5 * time.Second,
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

var defaultOutbox = Outbox{
	PollInterval: 2 * time.Second,
	BatchSize:    100,
}

// DefaultPort returns the default HTTP port.
func DefaultPort() int { return defaultPort }

// DefaultDB returns the default database settings.
func DefaultDB() DB { return defaultDB }

// DefaultKafka returns the default Kafka settings.
func DefaultKafka() Kafka { return defaultKafka }

// DefaultRateLimit returns the default rate limiting settings.
func DefaultRateLimit() RateLimit { return defaultRateLimit }

// DefaultCache returns the default order cache settings.
func DefaultCache() Cache { return defaultCache }

// DefaultTracking returns the default tracking hub settings.
func DefaultTracking() Tracking { return defaultTracking }

// DefaultPayments returns the default payment gateway settings.
func DefaultPayments() Payments { return defaultPayments }

// DefaultOutbox returns the default outbox publisher settings.
func DefaultOutbox() Outbox { return defaultOutbox }
