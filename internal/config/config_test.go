package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "dev", cfg.Environment)
				assert.Equal(t, "p2p-solution", cfg.AppName)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Empty(t, cfg.DBConnectionString)
				assert.Equal(t, "p2p_schema", cfg.DBSchema)
				assert.Equal(t, "/config/infra/dev/db/credentials", cfg.DBCredentialsParameter)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "eventbridge", cfg.EventBusDriver)
				assert.Equal(t, "default", cfg.EventBusName)
				assert.Equal(t, "lambda", cfg.EventSource)
				assert.Equal(t, "Send Notification", cfg.EventDetailType)
				assert.False(t, cfg.MetricsEnabled)
				assert.Equal(t, 10*time.Second, cfg.HTTPClientTimeout)
			},
		},
		{
			name: "credentials parameter follows environment",
			envVars: map[string]string{
				"ENVIRONMENT": "prod",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/config/infra/prod/db/credentials", cfg.DBCredentialsParameter)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"DB_CONNECTION_STRING":    "postgres://u:p@db:5432/p2p?sslmode=disable",
				"DB_MAX_OPEN_CONNECTIONS": "50",
				"DB_MAX_IDLE_CONNECTIONS": "10",
				"DB_CONN_MAX_LIFETIME":    "10",
				"DB_SCHEMA":               "custom",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "postgres://u:p@db:5432/p2p?sslmode=disable", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10, cfg.DBMaxIdleConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, "custom", cfg.DBSchema)
			},
		},
		{
			name: "load custom event configuration",
			envVars: map[string]string{
				"EVENT_BUS_DRIVER": "kafka",
				"KAFKA_BROKERS":    "k1:9092, k2:9092,,",
				"OUTBOX_INTERVAL":  "30",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "kafka", cfg.EventBusDriver)
				assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokerList())
				assert.Equal(t, 30*time.Second, cfg.OutboxInterval)
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "debug", cfg.GetGinMode())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			cfg := Load()

			tt.validate(t, cfg)
		})
	}
}

func TestApplicationName(t *testing.T) {
	t.Run("developer wins", func(t *testing.T) {
		cfg := &Config{Developer: "jane", LambdaName: "request-p2p", AppName: "p2p"}
		assert.Equal(t, "jane", cfg.ApplicationName())
	})

	t.Run("lambda name when no developer", func(t *testing.T) {
		cfg := &Config{LambdaName: "request-p2p", AppName: "p2p"}
		assert.Equal(t, "request-p2p", cfg.ApplicationName())
	})

	t.Run("falls back to app name", func(t *testing.T) {
		cfg := &Config{AppName: "p2p"}
		assert.Equal(t, "p2p", cfg.ApplicationName())
	})
}

func TestCORSOriginList(t *testing.T) {
	cfg := &Config{CORSAllowOrigins: " https://ops.example.com ,,https://admin.example.com"}
	assert.Equal(t, []string{"https://ops.example.com", "https://admin.example.com"}, cfg.CORSOriginList())
	assert.Empty(t, (&Config{}).CORSOriginList())
}

func TestGetGinMode(t *testing.T) {
	assert.Equal(t, "release", (&Config{LogLevel: "info"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "bogus"}).GetGinMode())
}
