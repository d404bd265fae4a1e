package schema

import (
	"fmt"

	"github.com/anujdecoder/postgraph/model"
	"github.com/anujdecoder/postgraph/resolve"
	"github.com/graphql-go/graphql"
)

// Types holds every named type of the schema so that object fields, inputs
// and roots can refer to each other.
type Types struct {
	User    *graphql.Object
	Post    *graphql.Object
	Comment *graphql.Object

	CreateUserInput    *graphql.InputObject
	UpdateUserInput    *graphql.InputObject
	CreatePostInput    *graphql.InputObject
	UpdatePostInput    *graphql.InputObject
	CreateCommentInput *graphql.InputObject
	UpdateCommentInput *graphql.InputObject
}

func (t *Types) object(name string) *graphql.Object {
	switch name {
	case resolve.TypeUser:
		return t.User
	case resolve.TypePost:
		return t.Post
	case resolve.TypeComment:
		return t.Comment
	}
	panic(fmt.Sprintf("schema: unknown object type %q", name))
}

// objectFields lists each object's fields in SDL order with the scalar type
// of the Scalar ones. Reference fields take their type from the table.
var objectFields = map[string][]struct {
	name   string
	scalar graphql.Output
}{
	resolve.TypeUser: {
		{model.FieldID, graphql.ID},
		{model.FieldName, graphql.String},
		{model.FieldPassword, graphql.String},
		{model.FieldEmail, graphql.String},
		{model.FieldPosts, nil},
		{model.FieldComments, nil},
		{model.FieldLikedPosts, nil},
	},
	resolve.TypePost: {
		{model.FieldID, graphql.ID},
		{model.FieldContent, graphql.String},
		{model.FieldAuthor, nil},
		{model.FieldComments, nil},
		{model.FieldLikes, nil},
	},
	resolve.TypeComment: {
		{model.FieldID, graphql.ID},
		{model.FieldText, graphql.String},
		{model.FieldAuthor, nil},
		{model.FieldPost, nil},
	},
}

// fieldsFor builds the fields of typ from the dispatch table. Every field is
// non-null; a failing reference nulls the closest nullable ancestor.
func fieldsFor(t *Types, table resolve.Table, typ string) graphql.FieldsThunk {
	return func() graphql.Fields {
		fields := graphql.Fields{}
		for _, f := range objectFields[typ] {
			entry, ok := table.Lookup(typ, f.name)
			if !ok {
				panic(fmt.Sprintf("schema: %s.%s missing from resolver table", typ, f.name))
			}

			var out graphql.Output
			switch entry.Capability {
			case resolve.Scalar:
				out = graphql.NewNonNull(f.scalar)
			case resolve.SingleReference:
				out = graphql.NewNonNull(t.object(entry.Target))
			case resolve.SetReference:
				out = graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t.object(entry.Target))))
			}

			resolveFn := entry.Resolve
			fields[f.name] = &graphql.Field{
				Type: out,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return resolveFn(p.Context, p.Source)
				},
			}
		}
		return fields
	}
}

// RegisterUserObject registers User.
func RegisterUserObject(t *Types, table resolve.Table) {
	t.User = graphql.NewObject(graphql.ObjectConfig{
		Name:        resolve.TypeUser,
		Description: "A user. posts, comments and likedPosts drop entries whose target no longer exists.",
		Fields:      fieldsFor(t, table, resolve.TypeUser),
	})
}

// RegisterPostObject registers Post.
func RegisterPostObject(t *Types, table resolve.Table) {
	t.Post = graphql.NewObject(graphql.ObjectConfig{
		Name:        resolve.TypePost,
		Description: "A post. Resolving author fails when the author was deleted.",
		Fields:      fieldsFor(t, table, resolve.TypePost),
	})
}

// RegisterCommentObject registers Comment.
func RegisterCommentObject(t *Types, table resolve.Table) {
	t.Comment = graphql.NewObject(graphql.ObjectConfig{
		Name:        resolve.TypeComment,
		Description: "A comment on a post.",
		Fields:      fieldsFor(t, table, resolve.TypeComment),
	})
}

// RegisterObjects registers the three object types. Their fields are thunks,
// so the order of registration does not matter.
func RegisterObjects(t *Types, table resolve.Table) {
	RegisterUserObject(t, table)
	RegisterPostObject(t, table)
	RegisterCommentObject(t, table)
}
