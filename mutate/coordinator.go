// Package mutate executes the write side of the API.
//
// Each mutation checks its preconditions and then issues an ordered sequence
// of single-document writes. There is no transaction around the sequence:
// a failure part way leaves the earlier writes in place and is reported as a
// *PartialWriteError carrying the Writes record. Preconditions are checked by
// reading immediately before writing, so concurrent requests can slip between
// the check and the write (two createUser calls with one email may both
// succeed).
package mutate

import (
	"context"

	"github.com/anujdecoder/postgraph/model"
	"github.com/anujdecoder/postgraph/observability"
	"github.com/anujdecoder/postgraph/store"
	"go.uber.org/zap"
)

// Coordinator runs mutations against one set of collections.
type Coordinator struct {
	entities *store.Entities
	logger   *zap.Logger
	maint    maintenance
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPolicy selects the referential maintenance policy. The default is
// Lenient.
func WithPolicy(p Policy) Option {
	return func(c *Coordinator) { c.maint.policy = p }
}

// New creates a Coordinator.
func New(entities *store.Entities, opts ...Option) *Coordinator {
	c := &Coordinator{
		entities: entities,
		logger:   zap.NewNop(),
		maint:    maintenance{entities: entities, policy: Lenient},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the active maintenance policy.
func (c *Coordinator) Policy() Policy {
	return c.maint.policy
}

// track counts and logs one mutation. Call the returned func with the final
// error.
func (c *Coordinator) track(ctx context.Context, mutation string) func(error) {
	return func(err error) {
		observability.Mutations.WithLabelValues(mutation, observability.Outcome(err)).Inc()

		fields := []zap.Field{
			zap.String("mutation", mutation),
			zap.String("request_id", observability.RequestID(ctx)),
		}
		switch {
		case err == nil:
			c.logger.Debug("mutation applied", fields...)
		case IsPartialWrite(err):
			observability.PartialWrites.WithLabelValues(mutation).Inc()
			c.logger.Error("mutation partially applied", append(fields, zap.Error(err))...)
		case model.KindOf(err) != "":
			c.logger.Info("mutation rejected", append(fields, zap.Error(err))...)
		default:
			c.logger.Error("mutation failed", append(fields, zap.Error(err))...)
		}
	}
}
