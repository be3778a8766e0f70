package config

import (
	"github.com/caarlos0/env/v11"

	"github.com/juliatong/AI-bee-Meta/internal/config/configs"
)

// Config aggregates all configuration sections for the service. Fields are
// populated from environment variables using the caarlos0/env library; the
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// defaults. Use Load to construct a Config.
type Config struct {
	// Env names the deployment environment (e.g. prod, dev). Only used for
	// log annotation.
	Env string `env:"ENV" envDefault:"prod"`

	// HTTP configures the API server. Variables prefixed HTTP_.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger. Variables prefixed LOG_.
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection backing the scheduler's
	// durable job table. Variables prefixed PSQL_.
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Meta configures the Marketing API gateway. Variables prefixed META_.
	Meta configs.Meta `envPrefix:"META_"`

	// Store configures the record store. Variables prefixed STORE_.
	Store configs.Store `envPrefix:"STORE_"`

	// Scheduler configures the activation scheduler. Variables prefixed
	// SCHEDULER_.
	Scheduler configs.Scheduler `envPrefix:"SCHEDULER_"`
}

// Load reads configuration from environment variables into a Config. All
// fields fall back to their declared defaults when no variable is set.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
