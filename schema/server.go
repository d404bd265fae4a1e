package schema

import (
	"net/http"

	"github.com/anujdecoder/postgraph"
	"github.com/anujdecoder/postgraph/mutate"
	"github.com/anujdecoder/postgraph/resolve"
	"github.com/anujdecoder/postgraph/store"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// Server bundles the schema with the HTTP and WebSocket handlers serving it.
type Server struct {
	Schema    graphql.Schema
	HTTP      http.Handler
	WebSocket http.Handler
}

type serverOptions struct {
	logger  *zap.Logger
	policy  mutate.Policy
	handler []postgraph.HandlerOption
	ws      []postgraph.WebSocketOption
}

// ServerOption configures NewServer.
type ServerOption func(*serverOptions)

// WithLogger is passed to the resolver, the coordinator and the request
// logging middleware.
func WithLogger(l *zap.Logger) ServerOption {
	return func(o *serverOptions) { o.logger = l }
}

// WithPolicy selects the referential maintenance policy.
func WithPolicy(p mutate.Policy) ServerOption {
	return func(o *serverOptions) { o.policy = p }
}

// WithHandlerOptions adds options to both transports.
func WithHandlerOptions(opts ...postgraph.HandlerOption) ServerOption {
	return func(o *serverOptions) { o.handler = append(o.handler, opts...) }
}

// WithWebSocketOptions adds options to the WebSocket transport.
func WithWebSocketOptions(opts ...postgraph.WebSocketOption) ServerOption {
	return func(o *serverOptions) { o.ws = append(o.ws, opts...) }
}

// NewServer wires the resolver and the coordinator over entities and builds
// the schema and its handlers.
func NewServer(entities *store.Entities, opts ...ServerOption) (*Server, error) {
	o := serverOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	r := resolve.New(entities, resolve.WithLogger(o.logger))
	c := mutate.New(entities, mutate.WithLogger(o.logger), mutate.WithPolicy(o.policy))

	s, err := RegisterSchema(r, c)
	if err != nil {
		return nil, err
	}

	handlerOpts := append([]postgraph.HandlerOption{
		postgraph.WithMiddlewares(postgraph.LoggingMiddleware(o.logger)),
	}, o.handler...)
	wsOpts := append([]postgraph.WebSocketOption{postgraph.WithWebSocketLogger(o.logger)}, o.ws...)

	return &Server{
		Schema:    s,
		HTTP:      postgraph.HTTPHandler(s, handlerOpts...),
		WebSocket: postgraph.WebSocketHandler(s, handlerOpts, wsOpts...),
	}, nil
}

// GetGraphqlServer returns the HTTP handler for /graphql.
func GetGraphqlServer(entities *store.Entities, opts ...ServerOption) (http.Handler, error) {
	s, err := NewServer(entities, opts...)
	if err != nil {
		return nil, err
	}
	return s.HTTP, nil
}
