package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration. Everything comes from the
// environment so main stays lean.
type Config struct {
	Addr          string
	PostgresURL   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	DefaultTZ     string // IANA name used when an org has no business timezone configured
}

// RuleCacheTTL bounds how long a resolved rule set may be served from cache.
// Rule edits invalidate eagerly; the TTL is the backstop.
var RuleCacheTTL = 5 * time.Minute

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:          envOr("FLEETDESK_ADDR", ":8080"),
		PostgresURL:   os.Getenv("FLEETDESK_POSTGRES_URL"),
		RedisURL:      os.Getenv("FLEETDESK_REDIS_URL"),
		AuditTopic:    envOr("FLEETDESK_AUDIT_TOPIC", "fleetdesk.compliance.audit"),
		JWTSigningKey: os.Getenv("FLEETDESK_JWT_SIGNING_KEY"),
		JWTIssuer:     envOr("FLEETDESK_JWT_ISSUER", "fleetdesk"),
		JWTAudience:   envOr("FLEETDESK_JWT_AUDIENCE", "fleetdesk-api"),
		DefaultTZ:     envOr("FLEETDESK_DEFAULT_TIMEZONE", "Europe/Paris"),
	}
	if cfg.JWTSigningKey == "" {
		// Development default - must be overridden in production.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	if brokers := os.Getenv("FLEETDESK_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
