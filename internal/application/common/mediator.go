package common

import (
	"context"
	"fmt"
	"reflect"
)

// Request represents a command or query, such as RunOptimization or
// ImportDataset.
type Request interface{}

// Response represents the result of handling a request.
type Response interface{}

// RequestHandler handles a specific request type.
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc adapts a function to the RequestHandler contract.
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware wraps handler execution with a cross-cutting concern, for
// example request logging or metrics.
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// Mediator dispatches requests to their handlers.
type Mediator interface {
	Send(ctx context.Context, request Request) (Response, error)
	Register(requestType reflect.Type, handler RequestHandler) error
	Use(mw Middleware)
}

type mediator struct {
	handlers    map[reflect.Type]RequestHandler
	middlewares []Middleware
}

// NewMediator creates a new mediator instance.
func NewMediator() Mediator {
	return &mediator{
		handlers: make(map[reflect.Type]RequestHandler),
	}
}

// Register registers a handler for a specific request type.
func (m *mediator) Register(requestType reflect.Type, handler RequestHandler) error {
	if requestType == nil {
		return fmt.Errorf("request type cannot be nil")
	}

	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	if _, exists := m.handlers[requestType]; exists {
		return fmt.Errorf("handler already registered for type %s", requestType)
	}

	m.handlers[requestType] = handler
	return nil
}

// Use appends a middleware. Middlewares run in registration order around
// every Send.
func (m *mediator) Use(mw Middleware) {
	m.middlewares = append(m.middlewares, mw)
}

// Send dispatches a request to its registered handler through the
// middleware chain.
func (m *mediator) Send(ctx context.Context, request Request) (Response, error) {
	if request == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	requestType := reflect.TypeOf(request)
	handler, ok := m.handlers[requestType]

	if !ok {
		return nil, fmt.Errorf("no handler registered for type %s", requestType)
	}

	invoke := HandlerFunc(handler.Handle)
	for i := len(m.middlewares) - 1; i >= 0; i-- {
		mw := m.middlewares[i]
		next := invoke
		invoke = func(ctx context.Context, request Request) (Response, error) {
			return mw(ctx, request, next)
		}
	}
	return invoke(ctx, request)
}

// RegisterHandler registers a handler with the request type inferred from T.
func RegisterHandler[T Request](m Mediator, handler RequestHandler) error {
	var zero T
	requestType := reflect.TypeOf(zero)
	return m.Register(requestType, handler)
}
