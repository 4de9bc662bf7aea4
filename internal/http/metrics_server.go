package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/metrics"
)

// MetricsServer serves /metrics on its own port, away from the rate limited API.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewMetricsServer creates a MetricsServer scraping provider. /health is
// served too so the scrape target can be probed.
func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	provider *metrics.Provider,
) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if provider != nil {
		router.GET("/metrics", gin.WrapH(provider.Handler()))
	}

	server := newHTTPServer(host, port, 15*time.Second)
	server.Handler = router

	return &MetricsServer{server: server, logger: logger}
}

// GetHandler returns the router, for tests.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown.
func (s *MetricsServer) Start(ctx context.Context) error {
	return serve(s.server, "metrics server", s.logger)
}

// Shutdown stops the server, waiting for in-flight scrapes until ctx is done.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
