package postgraph

import (
	"context"
	"net/http"
	"sync"

	"github.com/anujdecoder/postgraph/observability"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// wsMessage is one request frame. ID is echoed back in the reply so clients
// can match replies to requests; replies may arrive out of order.
type wsMessage struct {
	ID string `json:"id"`
	Request
}

type wsReply struct {
	ID     string                     `json:"id"`
	Data   interface{}                `json:"data"`
	Errors []gqlerrors.FormattedError `json:"errors"`
}

type wsHandler struct {
	exec     HandlerFunc
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// WebSocketOption configures WebSocketHandler.
type WebSocketOption func(*wsHandler)

// WithWebSocketLogger sets the logger for connection level events.
func WithWebSocketLogger(l *zap.Logger) WebSocketOption {
	return func(h *wsHandler) { h.logger = l }
}

// WithCheckOrigin overrides the origin check of the upgrade. The default
// accepts same-origin requests only.
func WithCheckOrigin(fn func(r *http.Request) bool) WebSocketOption {
	return func(h *wsHandler) { h.upgrader.CheckOrigin = fn }
}

// WebSocketHandler serves request/response GraphQL over a WebSocket. Each
// text frame holds {id, query, variables, operationName} and gets one reply
// frame {id, data, errors}. Frames of one connection execute concurrently.
// Middlewares from opts apply to every frame.
func WebSocketHandler(schema graphql.Schema, opts []HandlerOption, wsOpts ...WebSocketOption) http.Handler {
	o := buildOptions(opts)
	h := &wsHandler{
		exec:   chain(schema, o.Middlewares),
		logger: zap.NewNop(),
	}
	for _, opt := range wsOpts {
		opt(h)
	}
	return h
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Frames outlive the connection: a client that closes right after sending
	// a mutation does not cancel its writes part way through.
	base := context.WithoutCancel(r.Context())

	var writeMu sync.Mutex
	reply := func(msg wsReply) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	var g errgroup.Group
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Info("websocket closed", zap.Error(err))
			}
			break
		}

		g.Go(func() error {
			if msg.Query == "" {
				return reply(wsReply{ID: msg.ID, Errors: []gqlerrors.FormattedError{
					gqlerrors.NewFormattedError("request must include a query"),
				}})
			}
			reqCtx := observability.WithRequestID(base, uuid.NewString())
			result := h.exec(reqCtx, &msg.Request)
			return reply(wsReply{ID: msg.ID, Data: result.Data, Errors: result.Errors})
		})
	}

	if err := g.Wait(); err != nil {
		h.logger.Debug("websocket reply failed", zap.Error(err))
	}
}
