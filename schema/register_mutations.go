package schema

import (
	"github.com/anujdecoder/postgraph/mutate"
	"github.com/graphql-go/graphql"
)

func inputArgs(in *graphql.InputObject) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(in)},
	}
}

func idInputArgs(in *graphql.InputObject) graphql.FieldConfigArgument {
	args := inputArgs(in)
	args["id"] = idArg["id"]
	return args
}

var likeArgs = graphql.FieldConfigArgument{
	"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
}

// RegisterUserMutations adds createUser, updateUser and deleteUser.
func RegisterUserMutations(fields graphql.Fields, t *Types, c *mutate.Coordinator) {
	fields["createUser"] = &graphql.Field{
		Type:        graphql.NewNonNull(t.User),
		Args:        inputArgs(t.CreateUserInput),
		Description: "Creates a user. Fails when the email is already taken.",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return c.CreateUser(p.Context, decodeCreateUser(p.Args))
		},
	}
	fields["updateUser"] = &graphql.Field{
		Type: graphql.NewNonNull(t.User),
		Args: idInputArgs(t.UpdateUserInput),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return c.UpdateUser(p.Context, stringArg(p.Args, "id"), decodeUpdateUser(p.Args))
		},
	}
	fields["deleteUser"] = &graphql.Field{
		Type:        graphql.NewNonNull(graphql.Boolean),
		Args:        idArg,
		Description: "Deletes a user without touching what references it.",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return c.DeleteUser(p.Context, stringArg(p.Args, "id"))
		},
	}
}

// RegisterPostMutations adds the post mutations including like and unlike.
func RegisterPostMutations(fields graphql.Fields, t *Types, c *mutate.Coordinator) {
	fields["createPost"] = &graphql.Field{
		Type: graphql.NewNonNull(t.Post),
		Args: inputArgs(t.CreatePostInput),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			post, _, err := c.CreatePost(p.Context, decodeCreatePost(p.Args))
			return post, err
		},
	}
	fields["updatePost"] = &graphql.Field{
		Type: graphql.NewNonNull(t.Post),
		Args: idInputArgs(t.UpdatePostInput),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return c.UpdatePost(p.Context, stringArg(p.Args, "id"), decodeUpdatePost(p.Args))
		},
	}
	fields["deletePost"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Args: idArg,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return c.DeletePost(p.Context, stringArg(p.Args, "id"))
		},
	}
	fields["addLikeToPost"] = &graphql.Field{
		Type: graphql.NewNonNull(t.Post),
		Args: likeArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			post, _, err := c.AddLikeToPost(p.Context, stringArg(p.Args, "postId"), stringArg(p.Args, "userId"))
			return post, err
		},
	}
	fields["removeLikeFromPost"] = &graphql.Field{
		Type: graphql.NewNonNull(t.Post),
		Args: likeArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			post, _, err := c.RemoveLikeFromPost(p.Context, stringArg(p.Args, "postId"), stringArg(p.Args, "userId"))
			return post, err
		},
	}
}

// RegisterCommentMutations adds the comment mutations.
func RegisterCommentMutations(fields graphql.Fields, t *Types, c *mutate.Coordinator) {
	fields["createComment"] = &graphql.Field{
		Type:        graphql.NewNonNull(t.Comment),
		Args:        inputArgs(t.CreateCommentInput),
		Description: "Creates a comment and appends it to the post. The two writes are not atomic.",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			comment, _, err := c.CreateComment(p.Context, decodeCreateComment(p.Args))
			return comment, err
		},
	}
	fields["updateComment"] = &graphql.Field{
		Type: graphql.NewNonNull(t.Comment),
		Args: idInputArgs(t.UpdateCommentInput),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return c.UpdateComment(p.Context, stringArg(p.Args, "id"), decodeUpdateComment(p.Args))
		},
	}
	fields["deleteComment"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Args: idArg,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			removed, _, err := c.DeleteComment(p.Context, stringArg(p.Args, "id"))
			return removed, err
		},
	}
}

// RegisterMutation builds the Mutation root.
func RegisterMutation(t *Types, c *mutate.Coordinator) *graphql.Object {
	fields := graphql.Fields{}
	RegisterUserMutations(fields, t, c)
	RegisterPostMutations(fields, t, c)
	RegisterCommentMutations(fields, t, c)

	return graphql.NewObject(graphql.ObjectConfig{
		Name:   "Mutation",
		Fields: fields,
	})
}
