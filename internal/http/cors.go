package http

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/config"
)

// corsExposedHeaders are readable by browser clients: the request id and the
// Lambda function error marker set by the invocation endpoint.
var corsExposedHeaders = []string{"X-Request-Id", functionErrorHeader}

// newCORSMiddleware returns the CORS middleware for cfg, or nil when CORS is
// disabled or no origin is configured. A "*" origin allows every origin
// without credentials.
func newCORSMiddleware(cfg *config.Config, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.CORSEnabled {
		return nil
	}

	origins := cfg.CORSOriginList()
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured")
		return nil
	}

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-Id"},
		ExposeHeaders: corsExposedHeaders,
		MaxAge:        12 * time.Hour,
	}

	if slices.Contains(origins, "*") {
		corsConfig.AllowAllOrigins = true
		logger.Info("CORS enabled for all origins")
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		logger.Info("CORS enabled", slog.Any("origins", origins))
	}

	return cors.New(corsConfig)
}
