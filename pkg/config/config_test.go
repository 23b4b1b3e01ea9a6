package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLLMConfigTimeout(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"configured", 45, 45 * time.Second},
		{"zero falls back to default", 0, 30 * time.Second},
		{"negative falls back to default", -5, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LLMConfig{TimeoutSeconds: tt.seconds}
			assert.Equal(t, tt.want, cfg.Timeout())
		})
	}
}

func TestDatabaseConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "gestor",
		Password: "s3cret",
		Database: "gestor_engine",
		SSLMode:  "require",
	}

	got := cfg.ConnectionString()
	assert.Equal(t, "host=db.internal port=5433 user=gestor password=s3cret dbname=gestor_engine sslmode=require", got)
}
