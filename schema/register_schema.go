// Package schema assembles the GraphQL schema: the User, Post and Comment
// objects built from the resolver dispatch table, the input objects, and the
// Query and Mutation roots.
package schema

import (
	"github.com/anujdecoder/postgraph/mutate"
	"github.com/anujdecoder/postgraph/resolve"
	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
)

// RegisterSchema orchestrates all registrations (objects, inputs, roots) and
// builds the schema.
func RegisterSchema(r *resolve.Resolver, c *mutate.Coordinator) (graphql.Schema, error) {
	t := &Types{}
	RegisterObjects(t, r.Table())
	RegisterInputs(t)

	s, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    RegisterQuery(t, r),
		Mutation: RegisterMutation(t, c),
	})
	if err != nil {
		return graphql.Schema{}, errors.Wrap(err, "build schema")
	}
	return s, nil
}
