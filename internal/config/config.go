// Package config provides application configuration through environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Environment is the deployment stage (e.g., "dev", "qa", "prod").
	Environment string
	// AppName is the application name used to prefix parameters and secrets.
	AppName string
	// Developer identifies a local developer session; takes precedence over LambdaName.
	Developer string
	// LambdaName is the running Lambda function name (AWS_LAMBDA_FUNCTION_NAME).
	LambdaName string
	// LambdaHandler selects which handler the lambda command starts.
	LambdaHandler string
	// AWSRegion is the region used for AWS clients.
	AWSRegion string

	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// DBDriver is the database driver to use.
	DBDriver string
	// DBConnectionString is the connection string for the database. When empty the
	// connection string is built from the DB_* variables and the credentials parameter.
	DBConnectionString string
	// DBHost, DBPort, DBName, DBUser and DBPassword override the credentials parameter.
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// DBSchema is the schema holding the p2p tables.
	DBSchema string
	// DBCredentialsParameter is the SSM parameter holding the infra database config.
	DBCredentialsParameter string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// RateLimitEnabled indicates whether IP based rate limiting of the API is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// EventBusDriver selects the publisher: "eventbridge", "kafka", "pubsub" or "outbox".
	EventBusDriver string
	// EventBusName is the EventBridge bus receiving domain events.
	EventBusName string
	// EventSource is the source tag attached to every domain event.
	EventSource string
	// EventDetailType is the event name attached to every domain event.
	EventDetailType string
	// OutboxTargetDriver is the publisher the outbox relay drains to.
	OutboxTargetDriver string
	// KafkaBrokers is a comma-separated list of kafka brokers.
	KafkaBrokers string
	// KafkaTopic is the topic domain events are written to.
	KafkaTopic string
	// PubSubTopicURL is a gocloud.dev pubsub topic URL (e.g., "awssns:///arn...").
	PubSubTopicURL string
	// QueueSubscriptionURL is a gocloud.dev pubsub subscription URL used by the consume command.
	QueueSubscriptionURL string

	// OutboxInterval is the polling interval of the outbox relay.
	OutboxInterval time.Duration
	// OutboxBatchSize is the number of pending events fetched per poll.
	OutboxBatchSize int
	// OutboxMaxRetries is the number of attempts before an event is marked failed.
	OutboxMaxRetries int

	// NotificationWebhookURL receives notification details when set.
	NotificationWebhookURL string
	// HTTPClientTimeout bounds outbound HTTP calls.
	HTTPClientTimeout time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	environment := env.GetString("ENVIRONMENT", "dev")

	return &Config{
		// Application
		Environment:   environment,
		AppName:       env.GetString("APP_NAME", "p2p-solution"),
		Developer:     env.GetString("DEVELOPER", ""),
		LambdaName:    env.GetString("AWS_LAMBDA_FUNCTION_NAME", ""),
		LambdaHandler: env.GetString("LAMBDA_HANDLER", ""),
		AWSRegion:     env.GetString("AWS_REGION", "us-east-1"),

		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Database configuration
		DBDriver:           env.GetString("DB_DRIVER", "postgres"),
		DBConnectionString: env.GetString("DB_CONNECTION_STRING", ""),
		DBHost:             env.GetString("DB_HOST", ""),
		DBPort:             env.GetInt("DB_PORT", 0),
		DBName:             env.GetString("DB_NAME", ""),
		DBUser:             env.GetString("DB_USER", ""),
		DBPassword:         env.GetString("DB_PASSWORD", ""),
		DBSchema:           env.GetString("DB_SCHEMA", "p2p_schema"),
		DBCredentialsParameter: env.GetString(
			"DB_CREDENTIALS_PARAMETER",
			fmt.Sprintf("/config/infra/%s/db/credentials", environment),
		),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 5),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 2),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", false),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "p2p"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Events
		EventBusDriver:       env.GetString("EVENT_BUS_DRIVER", "eventbridge"),
		EventBusName:         env.GetString("EVENT_BUS_NAME", "default"),
		EventSource:          env.GetString("EVENT_SOURCE", "lambda"),
		EventDetailType:      env.GetString("EVENT_DETAIL_TYPE", "Send Notification"),
		OutboxTargetDriver:   env.GetString("OUTBOX_TARGET_DRIVER", "eventbridge"),
		KafkaBrokers:         env.GetString("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:           env.GetString("KAFKA_TOPIC", "p2p_transaction_notifications"),
		PubSubTopicURL:       env.GetString("PUBSUB_TOPIC_URL", ""),
		QueueSubscriptionURL: env.GetString("QUEUE_SUBSCRIPTION_URL", ""),

		// Outbox relay
		OutboxInterval:   env.GetDuration("OUTBOX_INTERVAL", 5, time.Second),
		OutboxBatchSize:  env.GetInt("OUTBOX_BATCH_SIZE", 10),
		OutboxMaxRetries: env.GetInt("OUTBOX_MAX_RETRIES", 3),

		// Notifications
		NotificationWebhookURL: env.GetString("NOTIFICATION_WEBHOOK_URL", ""),
		HTTPClientTimeout:      env.GetDuration("HTTP_CLIENT_TIMEOUT", 10, time.Second),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// ApplicationName returns the name reported to PostgreSQL as application_name.
func (c *Config) ApplicationName() string {
	if c.Developer != "" {
		return c.Developer
	}
	if c.LambdaName != "" {
		return c.LambdaName
	}
	return c.AppName
}

// KafkaBrokerList splits KafkaBrokers into a trimmed list.
func (c *Config) KafkaBrokerList() []string {
	return splitList(c.KafkaBrokers)
}

// CORSOriginList splits CORSAllowOrigins into a trimmed list.
func (c *Config) CORSOriginList() []string {
	return splitList(c.CORSAllowOrigins)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
