package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for gestor-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// LLM generation capability configuration
	LLM LLMConfig `yaml:"llm"`

	// Analyst pipeline tuning
	Analyst AnalystConfig `yaml:"analyst"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"gestor"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"gestor_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	// Pool recycling: how long a connection may live, and how long it
	// may sit idle, before the pool replaces it.
	ConnLifetime   time.Duration `yaml:"conn_lifetime" env:"PGCONN_LIFETIME" env-default:"1h"`
	ConnIdleTime   time.Duration `yaml:"conn_idle_time" env:"PGCONN_IDLE_TIME" env-default:"30m"`
	SSLMode        string        `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string        `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// LLMConfig holds the generation capability settings.
// Provider selects the wire protocol: "openai" covers any OpenAI-compatible
// endpoint (vLLM, Ollama, OpenAI itself); "anthropic" uses the Anthropic API.
type LLMConfig struct {
	Provider       string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	BaseURL        string  `yaml:"base_url" env:"LLM_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model          string  `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	APIKey         string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Temperature    float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.2"`
	TimeoutSeconds int     `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"30"`
}

// Timeout returns the per-call deadline for generation requests.
func (c *LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AnalystConfig bounds what the analyst pipeline feeds into prompts.
type AnalystConfig struct {
	// HistoryTurns is how many recent conversation turns are embedded
	// into classification and analysis prompts.
	HistoryTurns int `yaml:"history_turns" env:"ANALYST_HISTORY_TURNS" env-default:"10"`
	// SnapshotRows caps how many snapshot rows are serialized into the
	// analysis prompt. The full snapshot is still used for execution.
	SnapshotRows int `yaml:"snapshot_rows" env:"ANALYST_SNAPSHOT_ROWS" env-default:"50"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
