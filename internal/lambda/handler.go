// Package lambda provides the Lambda function handlers and the middleware
// composed around them.
package lambda

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

// Handler processes one raw invocation event and returns a JSON-encodable response.
type Handler interface {
	Invoke(ctx context.Context, event json.RawMessage) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event json.RawMessage) (any, error)

// Invoke calls f.
func (f HandlerFunc) Invoke(ctx context.Context, event json.RawMessage) (any, error) {
	return f(ctx, event)
}

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Chain wraps h with middlewares. The first middleware is the outermost.
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Runtime adapts h to the aws-lambda-go handler interface.
func Runtime(h Handler) awslambda.Handler {
	return runtimeHandler{handler: h}
}

type runtimeHandler struct {
	handler Handler
}

func (r runtimeHandler) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	resp, err := r.handler.Invoke(ctx, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

// Start runs h under the Lambda runtime. It does not return.
func Start(h Handler) {
	awslambda.Start(Runtime(h))
}

// Function names of the deployed handlers.
const (
	RequestFunction      = "request-p2p-transaction"
	NotificationFunction = "p2p-transaction-notification"
	FindFunction         = "p2p-transaction-find"
	ListFunction         = "p2p-transaction-get-all"
)

// Registry maps function names to handler chains.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds or replaces the handler for name.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
