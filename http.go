// Package postgraph serves a GraphQL schema over HTTP and WebSocket.
package postgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anujdecoder/postgraph/observability"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in and out of HTTP requests.
const RequestIDHeader = "X-Request-ID"

// Request is one GraphQL operation to execute.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// HandlerFunc executes a request against the schema.
type HandlerFunc func(ctx context.Context, req *Request) *graphql.Result

// MiddlewareFunc wraps a HandlerFunc.
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	Middlewares        []MiddlewareFunc
	Playground         bool
	PlaygroundTitle    string
	PlaygroundEndpoint string
}

// WithMiddlewares appends middlewares. The first one is the outermost.
func WithMiddlewares(m ...MiddlewareFunc) HandlerOption {
	return func(o *handlerOptions) {
		o.Middlewares = append(o.Middlewares, m...)
	}
}

// WithPlayground serves the GraphiQL playground on GET requests.
func WithPlayground(title, endpoint string) HandlerOption {
	return func(o *handlerOptions) {
		o.Playground = true
		o.PlaygroundTitle = title
		o.PlaygroundEndpoint = endpoint
	}
}

func buildOptions(opts []HandlerOption) handlerOptions {
	o := handlerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func chain(schema graphql.Schema, middlewares []MiddlewareFunc) HandlerFunc {
	exec := func(ctx context.Context, req *Request) *graphql.Result {
		return graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        addVariables(ctx, req.Variables),
		})
	}

	prev := HandlerFunc(exec)
	for i := range middlewares {
		prev = middlewares[len(middlewares)-1-i](prev)
	}
	return prev
}

// HTTPHandler implements the handler required for executing the graphql queries and mutations
func HTTPHandler(schema graphql.Schema, opts ...HandlerOption) http.Handler {
	o := buildOptions(opts)
	h := &httpHandler{exec: chain(schema, o.Middlewares)}
	if o.Playground {
		h.playground = PlaygroundHandler(o.PlaygroundTitle, o.PlaygroundEndpoint)
	}
	return h
}

type httpHandler struct {
	exec       HandlerFunc
	playground http.Handler
}

type httpResponse struct {
	Data   interface{}                `json:"data"`
	Errors []gqlerrors.FormattedError `json:"errors"`
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeResponse := func(response httpResponse) {
		responseJSON, err := json.Marshal(response)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		_, _ = w.Write(responseJSON)
	}
	writeError := func(err error) {
		writeResponse(httpResponse{Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)}})
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && h.playground != nil {
		h.playground.ServeHTTP(w, r)
		return
	}

	if r.Method != http.MethodPost {
		writeError(errors.New("request must be a POST"))
		return
	}

	if r.Body == nil {
		writeError(errors.New("request must include a query"))
		return
	}

	var params Request
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(fmt.Errorf("decode request: %w", err))
		return
	}
	if params.Query == "" {
		writeError(errors.New("request must include a query"))
		return
	}

	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	ctx := observability.WithRequestID(r.Context(), id)

	result := h.exec(ctx, &params)
	writeResponse(httpResponse{Data: result.Data, Errors: result.Errors})
}

// LoggingMiddleware logs every executed operation with its duration and
// error count.
func LoggingMiddleware(logger *zap.Logger) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *graphql.Result {
			start := time.Now()
			result := next(ctx, req)

			fields := []zap.Field{
				zap.String("request_id", observability.RequestID(ctx)),
				zap.String("operation", req.OperationName),
				zap.Duration("duration", time.Since(start)),
				zap.Int("errors", len(result.Errors)),
			}
			if result.HasErrors() {
				logger.Warn("graphql request completed with errors", append(fields, zap.String("first_error", result.Errors[0].Message))...)
				return result
			}
			logger.Info("graphql request", fields...)
			return result
		}
	}
}

type graphqlVariableKeyType int

const graphqlVariableKey graphqlVariableKeyType = 0

// ExtractVariables is used to returns the variables received as part of the graphql request.
// This is intended to be used from within resolvers and middlewares.
func ExtractVariables(ctx context.Context) map[string]interface{} {
	if v := ctx.Value(graphqlVariableKey); v != nil {
		return v.(map[string]interface{})
	}

	return nil
}

func addVariables(ctx context.Context, v map[string]interface{}) context.Context {
	return context.WithValue(ctx, graphqlVariableKey, v)
}

// RequestID returns the id assigned to the request being served.
func RequestID(ctx context.Context) string {
	return observability.RequestID(ctx)
}

// playgroundHTML loads GraphiQL from a CDN. Used by PlaygroundHandler.
const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
    <title>%s</title>
    <style>
        body {
            height: 100%%;
            margin: 0;
            overflow: hidden;
        }
        #graphiql {
            height: 100vh;
        }
    </style>
    <link rel="stylesheet" href="https://unpkg.com/graphiql@1.4.0/graphiql.min.css" />
    <script src="https://unpkg.com/react@16.14.0/umd/react.production.min.js"></script>
    <script src="https://unpkg.com/react-dom@16.14.0/umd/react-dom.production.min.js"></script>
    <script src="https://unpkg.com/graphiql@1.4.0/graphiql.min.js"></script>
</head>
<body>
    <div id="graphiql">Loading...</div>
    <script>
      var endpoint = '%s';
      function graphQLFetcher(graphQLParams) {
        return fetch(endpoint, {
          method: 'post',
          headers: {
            Accept: 'application/json',
            'Content-Type': 'application/json',
          },
          body: JSON.stringify(graphQLParams),
          credentials: 'omit',
        }).then(function (response) {
          return response.json().catch(function () {
            return response.text();
          });
        });
      }

      ReactDOM.render(
        React.createElement(GraphiQL, { fetcher: graphQLFetcher }),
        document.getElementById('graphiql'),
      );
    </script>
</body>
</html>`

// PlaygroundHandler returns an HTTP handler that serves an interactive
// GraphiQL playground posting to graphqlEndpoint.
//
//	http.Handle("/graphql", postgraph.HTTPHandler(schema))
//	http.Handle("/", postgraph.PlaygroundHandler("postgraph", "/graphql"))
func PlaygroundHandler(title, graphqlEndpoint string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = fmt.Fprintf(w, playgroundHTML, title, graphqlEndpoint)
	})
}
