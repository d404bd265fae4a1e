package postgraph_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anujdecoder/postgraph"
	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsReply struct {
	ID     string                 `json:"id"`
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func dialTestSchema(t *testing.T) *websocket.Conn {
	t.Helper()
	h := postgraph.WebSocketHandler(testSchema(t), nil)
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestWebSocketRoundTrip(t *testing.T) {
	conn := dialTestSchema(t)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"id":        "1",
		"query":     "query($v: Int!) { mirror(value: $v) }",
		"variables": map[string]interface{}{"v": 5},
	}))
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"id":    "2",
		"query": "{ requestId }",
	}))

	replies := map[string]wsReply{}
	for range 2 {
		var r wsReply
		require.NoError(t, conn.ReadJSON(&r))
		replies[r.ID] = r
	}

	require.Contains(t, replies, "1")
	assert.Empty(t, replies["1"].Errors)
	assert.Equal(t, float64(-5), replies["1"].Data["mirror"])

	require.Contains(t, replies, "2")
	assert.Len(t, replies["2"].Data["requestId"], 36)
}

func TestWebSocketMissingQuery(t *testing.T) {
	conn := dialTestSchema(t)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"id": "x"}))
	var r wsReply
	require.NoError(t, conn.ReadJSON(&r))
	assert.Equal(t, "x", r.ID)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "request must include a query", r.Errors[0].Message)
	assert.Nil(t, r.Data)
}

func TestWebSocketRejectsPlainHTTP(t *testing.T) {
	h := postgraph.WebSocketHandler(testSchema(t), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/graphql/ws", nil))
	assert.Equal(t, 400, rr.Code)
}

// slowWriteSchema has one mutation that reports when it starts and, after a
// pause, whether its context was still live.
func slowWriteSchema(t *testing.T, started chan<- struct{}, finished chan<- error) graphql.Schema {
	t.Helper()
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"ok": &graphql.Field{Type: graphql.Boolean, Resolve: func(graphql.ResolveParams) (interface{}, error) {
				return true, nil
			}},
		},
	})
	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"write": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					close(started)
					time.Sleep(100 * time.Millisecond)
					finished <- p.Context.Err()
					return true, nil
				},
			},
		},
	})
	s, err := graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
	require.NoError(t, err)
	return s
}

func TestWebSocketMutationSurvivesClose(t *testing.T) {
	started := make(chan struct{})
	finished := make(chan error, 1)
	server := httptest.NewServer(postgraph.WebSocketHandler(slowWriteSchema(t, started, finished), nil))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"id": "1", "query": "mutation { write }"}))
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("mutation never started")
	}

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.NoError(t, conn.Close())

	select {
	case err := <-finished:
		assert.NoError(t, err, "mutation context was cancelled by the close")
	case <-time.After(5 * time.Second):
		t.Fatal("mutation never finished")
	}
}
