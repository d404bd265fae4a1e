package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectError bool
	}{
		{"json info", "info", "json", false},
		{"default format", "debug", "", false},
		{"console warn", "warn", "console", false},
		{"bad level", "loud", "json", true},
		{"bad format", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.format)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestRepoLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewRepoLogger(zap.New(core), "posts")
	ctx := WithRequestID(context.Background(), "req-7")

	l.LogCreate(ctx, zap.String("id", "p1"))
	l.LogError(ctx, errors.New("boom"), "push")

	require.Equal(t, 2, logs.Len())
	created := logs.FilterMessage("store create").All()
	require.Len(t, created, 1)
	fields := created[0].ContextMap()
	assert.Equal(t, "posts", fields["collection"])
	assert.Equal(t, "p1", fields["id"])
	assert.Equal(t, "req-7", fields["request_id"])

	failed := logs.FilterMessage("store error").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "push", failed[0].ContextMap()["operation"])
}

func TestRepoLoggerSkipsDebugWhenDisabled(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewRepoLogger(zap.New(core), "users")
	l.LogRead(context.Background(), zap.Int("ids", 3))
	assert.Equal(t, 0, logs.Len())

	assert.NotPanics(t, func() { NewRepoLogger(nil, "users").LogDelete(context.Background()) })
}

func TestTrackStore(t *testing.T) {
	before := testutil.ToFloat64(StoreOperations.WithLabelValues("comments", "get", "error"))
	TrackStore("comments", "get")(errors.New("x"))
	after := testutil.ToFloat64(StoreOperations.WithLabelValues("comments", "get", "error"))
	assert.Equal(t, before+1, after)

	assert.Equal(t, "ok", Outcome(nil))
}
