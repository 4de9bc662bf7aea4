// Package httpclient provides an outbound HTTP client that logs every call.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client wraps *http.Client and logs the request and response of every call.
// Responses with a status code of 400 or above are logged at error level.
type Client struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a Client with the given timeout.
func New(timeout time.Duration, logger *slog.Logger) *Client {
	return NewWithHTTPClient(&http.Client{Timeout: timeout}, logger)
}

// NewWithHTTPClient wraps an existing *http.Client.
func NewWithHTTPClient(client *http.Client, logger *slog.Logger) *Client {
	return &Client{client: client, logger: logger}
}

// Do sends req and returns the response with its body still readable.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	requestBody, err := drainBody(&req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("http call failed",
			slog.Group("request",
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.String("body", requestBody),
			),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return nil, err
	}

	responseBody, err := drainBody(&resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	level := slog.LevelInfo
	if resp.StatusCode >= http.StatusBadRequest {
		level = slog.LevelError
	}
	c.logger.Log(req.Context(), level, "http call",
		slog.Group("request",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.String("body", requestBody),
		),
		slog.Group("response",
			slog.Int("status_code", resp.StatusCode),
			slog.String("content", responseBody),
		),
		slog.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

// PostJSON encodes payload and posts it to url.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.Do(req)
}

// drainBody reads *body and replaces it with an equivalent reader.
func drainBody(body *io.ReadCloser) (string, error) {
	if *body == nil || *body == http.NoBody {
		return "", nil
	}

	data, err := io.ReadAll(*body)
	if err != nil {
		return "", err
	}
	_ = (*body).Close()
	*body = io.NopCloser(bytes.NewReader(data))

	return string(data), nil
}
