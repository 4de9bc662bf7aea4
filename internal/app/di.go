// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/config"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/database"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/events"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/http"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/httpclient"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/lambda"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/metrics"
	outboxRepository "github.com/DavidCuy/p2p-solution-sls-backend/internal/outbox/repository"
	outboxUsecase "github.com/DavidCuy/p2p-solution-sls-backend/internal/outbox/usecase"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/parameters"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/queue"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/schema"
	transactionHTTP "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/http"
	transactionUseCase "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Lifetime of background goroutines started by components
	ctx    context.Context
	cancel context.CancelFunc

	// Infrastructure
	logger          *slog.Logger
	awsConfig       aws.Config
	parameterStore  *parameters.Store
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	httpClient      *httpclient.Client

	// Managers
	txManager database.TxManager

	// Events
	publisher       events.Publisher
	publisherCloser func(ctx context.Context) error
	outboxRepo      *outboxRepository.PostgreSQLOutboxEventRepository
	relayPublisher  events.Publisher
	relayCloser     func(ctx context.Context) error
	outboxRelay     outboxUsecase.UseCase

	// Transactions
	transactionRepo    transactionUseCase.TransactionRepository
	transactionUseCase transactionUseCase.TransactionUseCase
	transactionHandler *transactionHTTP.TransactionHandler

	// Handlers, Servers and Workers
	lambdaRegistry *lambda.Registry
	httpServer     *http.Server
	metricsServer  *http.MetricsServer
	queueConsumer  *queue.Consumer
	schemaRegistry *schema.Registry

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	awsConfigInit          sync.Once
	parameterStoreInit     sync.Once
	dbInit                 sync.Once
	txManagerInit          sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	httpClientInit         sync.Once
	publisherInit          sync.Once
	outboxRepoInit         sync.Once
	relayPublisherInit     sync.Once
	outboxRelayInit        sync.Once
	transactionRepoInit    sync.Once
	transactionUseCaseInit sync.Once
	transactionHandlerInit sync.Once
	lambdaRegistryInit     sync.Once
	httpServerInit         sync.Once
	metricsServerInit      sync.Once
	queueConsumerInit      sync.Once
	schemaRegistryInit     sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// AWSConfig returns the shared AWS SDK configuration.
func (c *Container) AWSConfig() (aws.Config, error) {
	var err error
	c.awsConfigInit.Do(func() {
		c.awsConfig, err = c.initAWSConfig()
		if err != nil {
			c.initErrors["awsConfig"] = err
		}
	})
	if err != nil {
		return aws.Config{}, err
	}
	if storedErr, exists := c.initErrors["awsConfig"]; exists {
		return aws.Config{}, storedErr
	}
	return c.awsConfig, nil
}

// ParameterStore returns the SSM and Secrets Manager reader.
func (c *Container) ParameterStore() (*parameters.Store, error) {
	var err error
	c.parameterStoreInit.Do(func() {
		c.parameterStore, err = c.initParameterStore()
		if err != nil {
			c.initErrors["parameterStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["parameterStore"]; exists {
		return nil, storedErr
	}
	return c.parameterStore, nil
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when
// metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPClient returns the logging HTTP client.
func (c *Container) HTTPClient() *httpclient.Client {
	c.httpClientInit.Do(func() {
		c.httpClient = httpclient.New(c.config.HTTPClientTimeout, c.Logger())
	})
	return c.httpClient
}

// DatabaseURL returns the connection string, resolving credentials from
// SSM and Secrets Manager when DB_CONNECTION_STRING is empty.
func (c *Container) DatabaseURL(ctx context.Context) (string, error) {
	if c.config.DBConnectionString != "" {
		return c.config.DBConnectionString, nil
	}

	base := database.Credentials{
		Host:            c.config.DBHost,
		Port:            c.config.DBPort,
		Name:            c.config.DBName,
		User:            c.config.DBUser,
		Password:        c.config.DBPassword,
		ApplicationName: c.config.ApplicationName(),
	}

	// Local credentials are used as is.
	if base.Host != "" && base.User != "" && base.Password != "" {
		return base.DSN(), nil
	}

	store, err := c.ParameterStore()
	if err != nil {
		return "", fmt.Errorf("failed to get parameter store for database credentials: %w", err)
	}

	creds, err := store.ResolveDBCredentials(ctx, c.config.DBCredentialsParameter, base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database credentials: %w", err)
	}
	return creds.DSN(), nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.queueConsumer != nil {
		if err := c.queueConsumer.Close(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("queue consumer close: %w", err))
		}
	}

	if c.publisherCloser != nil {
		if err := c.publisherCloser(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("publisher close: %w", err))
		}
	}

	if c.relayCloser != nil {
		if err := c.relayCloser(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("relay publisher close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler).With(
		slog.String("environment", c.config.Environment),
		slog.String("app", c.config.ApplicationName()),
	)
}

// initAWSConfig loads the default AWS credential chain for the configured region.
func (c *Container) initAWSConfig() (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(c.ctx, awsconfig.WithRegion(c.config.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

// initParameterStore creates the parameter store over SSM and Secrets Manager clients.
func (c *Container) initParameterStore() (*parameters.Store, error) {
	awsCfg, err := c.AWSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get aws config for parameter store: %w", err)
	}

	return parameters.NewStore(
		ssm.NewFromConfig(awsCfg),
		secretsmanager.NewFromConfig(awsCfg),
		c.config.Environment,
		c.config.AppName,
		c.Logger(),
	), nil
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	connectionString, err := c.DatabaseURL(c.ctx)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   connectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initMetricsProvider creates the Prometheus-backed provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// eventBridgeClient creates an EventBridge client from the shared AWS config.
func (c *Container) eventBridgeClient() (*eventbridge.Client, error) {
	awsCfg, err := c.AWSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get aws config for eventbridge: %w", err)
	}
	return eventbridge.NewFromConfig(awsCfg), nil
}
