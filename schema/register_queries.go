package schema

import (
	"github.com/anujdecoder/postgraph/resolve"
	"github.com/graphql-go/graphql"
)

var idArg = graphql.FieldConfigArgument{
	"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
}

func listOf(o *graphql.Object) graphql.Output {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(o)))
}

// RegisterQuery builds the Query root: a list and a by-id lookup per type.
// Lookups return null for an id that matches nothing.
func RegisterQuery(t *Types, r *resolve.Resolver) *graphql.Object {
	fields := graphql.Fields{
		"users": &graphql.Field{
			Type: listOf(t.User),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return r.Users(p.Context)
			},
		},
		"user": &graphql.Field{
			Type:        t.User,
			Args:        idArg,
			Description: "Fetch a user by ID.",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				u, err := r.User(p.Context, stringArg(p.Args, "id"))
				if u == nil {
					return nil, err
				}
				return u, err
			},
		},
		"posts": &graphql.Field{
			Type: listOf(t.Post),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return r.Posts(p.Context)
			},
		},
		"post": &graphql.Field{
			Type:        t.Post,
			Args:        idArg,
			Description: "Fetch a post by ID.",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				post, err := r.Post(p.Context, stringArg(p.Args, "id"))
				if post == nil {
					return nil, err
				}
				return post, err
			},
		},
		"comments": &graphql.Field{
			Type: listOf(t.Comment),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return r.Comments(p.Context)
			},
		},
		"comment": &graphql.Field{
			Type:        t.Comment,
			Args:        idArg,
			Description: "Fetch a comment by ID.",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				c, err := r.Comment(p.Context, stringArg(p.Args, "id"))
				if c == nil {
					return nil, err
				}
				return c, err
			},
		},
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})
}
