// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the escrow server configuration. Every field can be set
// via environment variable; cmd/server flags override.
type Config struct {
	// ListenAddr is the HTTP API listen address.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// MetricsAddr is the Prometheus metrics listen address.
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// Owner is the administrative identity recorded at deployment.
	Owner string `env:"OWNER_ADDRESS"`

	// UseMemory selects in-memory storage instead of PostgreSQL.
	UseMemory bool `env:"USE_MEMORY" envDefault:"false"`

	// PostgresDSN is the orders database. Required unless UseMemory.
	PostgresDSN string `env:"POSTGRES_DSN"`

	// ClickhouseDSN enables the settlement event audit trail when set.
	ClickhouseDSN string `env:"CLICKHOUSE_DSN"`

	// KafkaBrokers enables the Kafka event sink when non-empty.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// KafkaTopic is the settlement event topic.
	KafkaTopic string `env:"KAFKA_TOPIC" envDefault:"settlement-events"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config from env: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("OWNER_ADDRESS is required")
	}
	if !c.UseMemory && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (or set USE_MEMORY=true)")
	}
	return nil
}
