package config

import (
	"os"
	"strings"
	"time"

	id "carepool/pkg/domain"
)

// Server captures process-level configuration for the ledger service.
type Server struct {
	Addr string

	// Owner is the platform owner account: the only caller allowed to create
	// pools and verify providers.
	Owner id.AccountID

	// TreasuryAccount holds pool funds and provider stakes.
	TreasuryAccount id.AccountID

	JWTSigningKey string

	// PostgresDSN enables the SQL store when set; empty keeps the in-memory
	// store.
	PostgresDSN string

	// RedisURL enables the platform-stats cache when set.
	RedisURL string
	// StatsCacheTTL bounds staleness of cached platform stats.
	StatsCacheTTL time.Duration

	// KafkaSeeds enables the Kafka audit sink when non-empty.
	KafkaSeeds []string
	KafkaTopic string

	// ClockEpoch anchors the logical clock; RFC 3339.
	ClockEpoch    time.Time
	TickInterval  time.Duration
	ShutdownGrace time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("CAREPOOL_ADDR", ":8080"),
		Owner:           id.AccountID(envOr("CAREPOOL_OWNER", "owner")),
		TreasuryAccount: id.AccountID(envOr("CAREPOOL_TREASURY", "treasury")),
		JWTSigningKey:   envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:     os.Getenv("CAREPOOL_POSTGRES_DSN"),
		RedisURL:        os.Getenv("CAREPOOL_REDIS_URL"),
		StatsCacheTTL:   durationOr("CAREPOOL_STATS_CACHE_TTL", 30*time.Second),
		KafkaTopic:      envOr("CAREPOOL_KAFKA_TOPIC", "carepool.audit"),
		TickInterval:    durationOr("CAREPOOL_TICK_INTERVAL", 10*time.Minute),
		ShutdownGrace:   durationOr("CAREPOOL_SHUTDOWN_GRACE", 10*time.Second),
	}

	if seeds := os.Getenv("CAREPOOL_KAFKA_SEEDS"); seeds != "" {
		for _, s := range strings.Split(seeds, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.KafkaSeeds = append(cfg.KafkaSeeds, s)
			}
		}
	}

	cfg.ClockEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if raw := os.Getenv("CAREPOOL_CLOCK_EPOCH"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			cfg.ClockEpoch = t
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
