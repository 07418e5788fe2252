package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	strs "caplock/pkg/platform/strings"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// Backing stores. Empty values fall back to in-memory implementations.
	PostgresDSN string
	RedisURL    string

	// Audit sink. Empty broker list keeps audit in memory.
	KafkaBrokers []string
	AuditTopic   string

	// Governance wiring.
	PrimaryAdmin  string
	MintingAdmin  string
	AuthorityAddr string
	InitialLogic  string
	TimelockDelay time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean.
func FromEnv() Server {
	addr := os.Getenv("CAPLOCK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	delay := 600 * time.Second
	if raw := os.Getenv("TIMELOCK_DELAY_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			delay = time.Duration(secs) * time.Second
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strs.DedupeAndTrim(strings.Split(raw, ","))
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    os.Getenv("AUDIT_TOPIC"),
		PrimaryAdmin:  os.Getenv("PRIMARY_ADMIN"),
		MintingAdmin:  os.Getenv("MINTING_ADMIN"),
		AuthorityAddr: os.Getenv("GOVERNANCE_AUTHORITY"),
		InitialLogic:  os.Getenv("LOGIC_POINTER"),
		TimelockDelay: delay,
	}
}
