package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Optional backends (Postgres,
// Redis, Kafka) are enabled by presence of their settings; absent ones fall
// back to in-memory equivalents or are disabled.
type Server struct {
	Addr          string
	JWTSigningKey string
	DatabaseDSN   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
}

// RedisConfig carries tuning for the Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("HEIRLOOM_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("HEIRLOOM_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("HEIRLOOM_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	auditTopic := os.Getenv("HEIRLOOM_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "heirloom.audit"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		DatabaseDSN:   os.Getenv("HEIRLOOM_DATABASE_DSN"),
		RedisURL:      os.Getenv("HEIRLOOM_REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    auditTopic,
	}
}

// Redis builds the Redis client settings with defaults.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}
