package app

import (
	"fmt"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/http"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/lambda"
	outboxRepository "github.com/DavidCuy/p2p-solution-sls-backend/internal/outbox/repository"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/queue"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/schema"
	transactionHTTP "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/http"
	transactionRepository "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/repository"
	transactionUseCase "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/usecase"
)

// TransactionRepository returns the transaction repository instance.
func (c *Container) TransactionRepository() (transactionUseCase.TransactionRepository, error) {
	var err error
	c.transactionRepoInit.Do(func() {
		c.transactionRepo, err = c.initTransactionRepository()
		if err != nil {
			c.initErrors["transactionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["transactionRepo"]; exists {
		return nil, storedErr
	}
	return c.transactionRepo, nil
}

// TransactionUseCase returns the transaction use case, wrapped with metrics when enabled.
func (c *Container) TransactionUseCase() (transactionUseCase.TransactionUseCase, error) {
	var err error
	c.transactionUseCaseInit.Do(func() {
		c.transactionUseCase, err = c.initTransactionUseCase()
		if err != nil {
			c.initErrors["transactionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["transactionUseCase"]; exists {
		return nil, storedErr
	}
	return c.transactionUseCase, nil
}

// TransactionHandler returns the HTTP handler for transaction queries.
func (c *Container) TransactionHandler() (*transactionHTTP.TransactionHandler, error) {
	var err error
	c.transactionHandlerInit.Do(func() {
		c.transactionHandler, err = c.initTransactionHandler()
		if err != nil {
			c.initErrors["transactionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["transactionHandler"]; exists {
		return nil, storedErr
	}
	return c.transactionHandler, nil
}

// LambdaRegistry returns the registered lambda handler chains.
func (c *Container) LambdaRegistry() (*lambda.Registry, error) {
	var err error
	c.lambdaRegistryInit.Do(func() {
		c.lambdaRegistry, err = c.initLambdaRegistry()
		if err != nil {
			c.initErrors["lambdaRegistry"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["lambdaRegistry"]; exists {
		return nil, storedErr
	}
	return c.lambdaRegistry, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// QueueConsumer returns the consumer feeding QUEUE_SUBSCRIPTION_URL messages
// to the request handler.
func (c *Container) QueueConsumer() (*queue.Consumer, error) {
	var err error
	c.queueConsumerInit.Do(func() {
		c.queueConsumer, err = c.initQueueConsumer()
		if err != nil {
			c.initErrors["queueConsumer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["queueConsumer"]; exists {
		return nil, storedErr
	}
	return c.queueConsumer, nil
}

// SchemaRegistry returns the registry of persisted models.
func (c *Container) SchemaRegistry() *schema.Registry {
	c.schemaRegistryInit.Do(func() {
		c.schemaRegistry = schema.NewRegistry(
			transactionRepository.Descriptor(c.config.DBSchema),
			outboxRepository.Descriptor(c.config.DBSchema),
		)
	})
	return c.schemaRegistry
}

// SchemaValidator returns a validator checking every registered model against the database.
func (c *Container) SchemaValidator(exclude ...string) (*schema.Validator, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for schema validator: %w", err)
	}
	return schema.NewValidator(db, c.SchemaRegistry(), c.Logger(), exclude...), nil
}

// initTransactionRepository creates the transaction repository instance.
func (c *Container) initTransactionRepository() (transactionUseCase.TransactionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for transaction repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return transactionRepository.NewPostgreSQLTransactionRepository(db, c.config.DBSchema), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTransactionUseCase creates the transaction use case with all its dependencies.
func (c *Container) initTransactionUseCase() (transactionUseCase.TransactionUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for transaction use case: %w", err)
	}

	repo, err := c.TransactionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction repository for transaction use case: %w", err)
	}

	publisher, err := c.Publisher()
	if err != nil {
		return nil, fmt.Errorf("failed to get publisher for transaction use case: %w", err)
	}

	baseUseCase := transactionUseCase.NewTransactionUseCase(
		txManager,
		repo,
		publisher,
		transactionUseCase.EventConfig{
			Source:     c.config.EventSource,
			DetailType: c.config.EventDetailType,
			BusName:    c.config.EventBusName,
		},
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for transaction use case: %w", err)
		}
		return transactionUseCase.NewTransactionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTransactionHandler creates the transaction HTTP handler.
func (c *Container) initTransactionHandler() (*transactionHTTP.TransactionHandler, error) {
	useCase, err := c.TransactionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction use case for transaction handler: %w", err)
	}
	return transactionHTTP.NewTransactionHandler(useCase, c.Logger()), nil
}

// initLambdaRegistry registers every function behind logging, metrics and recovery middleware.
func (c *Container) initLambdaRegistry() (*lambda.Registry, error) {
	logger := c.Logger()

	useCase, err := c.TransactionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction use case for lambda registry: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for lambda registry: %w", err)
	}

	handlers := map[string]lambda.Handler{
		lambda.RequestFunction: lambda.NewRequestHandler(useCase, logger),
		lambda.NotificationFunction: lambda.NewNotificationHandler(
			c.HTTPClient(),
			c.config.NotificationWebhookURL,
			logger,
		),
		lambda.FindFunction: lambda.NewFindHandler(useCase, logger),
		lambda.ListFunction: lambda.NewListHandler(useCase, logger),
	}

	registry := lambda.NewRegistry()
	for name, handler := range handlers {
		registry.Register(name, lambda.Chain(
			handler,
			lambda.LoggingMiddleware(logger),
			lambda.MetricsMiddleware(businessMetrics, name),
			lambda.RecoveryMiddleware(logger),
		))
	}

	return registry, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	transactionHandler, err := c.TransactionHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction handler for http server: %w", err)
	}

	registry, err := c.LambdaRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get lambda registry for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(c.ctx, c.config, transactionHandler, registry, metricsProvider)

	return server, nil
}

// initMetricsServer creates the Prometheus metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if metricsProvider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), metricsProvider), nil
}

// initQueueConsumer opens the queue subscription for the request handler.
func (c *Container) initQueueConsumer() (*queue.Consumer, error) {
	if c.config.QueueSubscriptionURL == "" {
		return nil, fmt.Errorf("QUEUE_SUBSCRIPTION_URL is required")
	}

	registry, err := c.LambdaRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get lambda registry for queue consumer: %w", err)
	}

	handler, ok := registry.Get(lambda.RequestFunction)
	if !ok {
		return nil, fmt.Errorf("handler %s is not registered", lambda.RequestFunction)
	}

	consumer, err := queue.OpenConsumer(c.ctx, c.config.QueueSubscriptionURL, handler, c.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to open queue consumer: %w", err)
	}
	return consumer, nil
}
