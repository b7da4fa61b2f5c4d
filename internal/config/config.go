package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores delivery service settings.
type Config struct {
	Port      int
	DB        DB
	Kafka     Kafka
	Auth      Auth
	RateLimit RateLimit
	Cache     Cache
	Tracking  Tracking
	Payments  Payments
	Outbox    Outbox
	Pprof     Pprof
}

// DB stores Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN renders the connection string for pgx.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores notification topic settings for the outbox worker.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Auth stores bearer token verification settings.
type Auth struct {
	Secret string
}

// RateLimit stores HTTP rate limiting settings.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Cache stores order read-cache settings.
type Cache struct {
	TTL time.Duration
}

// Tracking stores courier location hub settings.
type Tracking struct {
	IdleTimeout time.Duration
}

// Payments stores the external payment provider endpoint.
type Payments struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Outbox stores the notification publisher loop settings.
type Outbox struct {
	PollInterval time.Duration
	BatchSize    int
}

// Pprof stores profiling endpoint settings. Credentials gate access
// from outside the loopback interface.
type Pprof struct {
	Enabled bool
	User    string
	Pass    string
}

// Load reads configuration in order: .env (if present), then environment, then flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:      envInt("PORT", DefaultPort()),
		DB:        loadDB(),
		Kafka:     loadKafka(),
		Auth:      Auth{Secret: envStr("AUTH_SECRET", "")},
		RateLimit: loadRateLimit(),
		Cache:     Cache{TTL: envDuration("ORDER_CACHE_TTL", DefaultCache().TTL)},
		Tracking:  Tracking{IdleTimeout: envDuration("TRACKING_IDLE_TIMEOUT", DefaultTracking().IdleTimeout)},
		Payments:  loadPayments(),
		Outbox:    loadOutbox(),
		Pprof:     loadPprof(),
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("AUTH_SECRET is required")
	}
	return cfg, nil
}

func loadDB() DB {
	d := DefaultDB()
	d.Host = envStr("DB_HOST", d.Host)
	d.Port = envStr("DB_PORT", d.Port)
	d.User = envStr("DB_USER", d.User)
	d.Pass = envStr("DB_PASS", d.Pass)
	d.Name = envStr("DB_NAME", d.Name)
	return d
}

func loadKafka() Kafka {
	k := Kafka{Topic: envStr("KAFKA_TOPIC", DefaultKafka().Topic)}
	if raw := envStr("KAFKA_BROKERS", ""); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				k.Brokers = append(k.Brokers, b)
			}
		}
	}
	return k
}

func loadRateLimit() RateLimit {
	rl := DefaultRateLimit()
	rl.Enabled = envBool("RATE_LIMIT_ENABLED", rl.Enabled)
	rl.Rate = envFloat("RATE_LIMIT_RATE", rl.Rate)
	rl.Burst = envInt("RATE_LIMIT_BURST", rl.Burst)
	rl.TTL = envDuration("RATE_LIMIT_TTL", rl.TTL)
	rl.MaxBuckets = envInt("RATE_LIMIT_MAX_BUCKETS", rl.MaxBuckets)
	return rl
}

func loadPayments() Payments {
	p := DefaultPayments()
	p.BaseURL = envStr("PAYMENTS_BASE_URL", p.BaseURL)
	return p
}

func loadOutbox() Outbox {
	o := DefaultOutbox()
	o.PollInterval = envDuration("OUTBOX_POLL_INTERVAL", o.PollInterval)
	o.BatchSize = envInt("OUTBOX_BATCH_SIZE", o.BatchSize)
	return o
}

func loadPprof() Pprof {
	return Pprof{
		Enabled: envBool("PPROF_ENABLED", false),
		User:    envStr("PPROF_USER", ""),
		Pass:    envStr("PPROF_PASS", ""),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
