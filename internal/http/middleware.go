// Package http provides the HTTP API server, its middleware and the local
// Lambda invocation endpoint.
package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/httputil"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = time.Hour
)

// CustomLoggerMiddleware logs every request with its request id. Server side
// failures are logged at error level.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters keeps one token bucket per client IP.
type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

func (l *clientLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, ok := l.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter
}

// sweep drops clients idle since before cutoff and reports how many remain.
func (l *clientLimiters) sweep(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, client := range l.clients {
		if client.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
	return len(l.clients)
}

func (l *clientLimiters) run(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.sweep(now.Add(-limiterIdleTTL))
		}
	}
}

// retryAfter is the whole number of seconds until limiter grants a token.
func retryAfter(limiter *rate.Limiter, now time.Time) int {
	reservation := limiter.ReserveN(now, 1)
	defer reservation.CancelAt(now)
	if !reservation.OK() {
		return 1
	}
	return int(math.Ceil(reservation.DelayFrom(now).Seconds()))
}

// RateLimitMiddleware rejects clients over rps (with burst) with 429 and a
// Retry-After header. Idle clients are forgotten until ctx is done.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	limiters := newClientLimiters(rps, burst)
	go limiters.run(ctx)

	return func(c *gin.Context) {
		now := time.Now()
		clientIP := c.ClientIP()
		limiter := limiters.get(clientIP, now)

		if limiter.AllowN(now, 1) {
			c.Next()
			return
		}

		wait := retryAfter(limiter, now)
		logger.Debug("rate limit exceeded",
			slog.String("client_ip", clientIP),
			slog.Int("retry_after", wait))

		c.Header("Retry-After", strconv.Itoa(wait))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
			Error:   "rate_limit_exceeded",
			Message: "Too many requests from this client, retry later",
		})
	}
}
