package schema

import (
	"github.com/anujdecoder/postgraph/mutate"
	"github.com/graphql-go/graphql"
)

func requiredFields(names ...string) graphql.InputObjectConfigFieldMap {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, n := range names {
		fields[n] = &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)}
	}
	return fields
}

func requiredIDs(fields graphql.InputObjectConfigFieldMap, names ...string) graphql.InputObjectConfigFieldMap {
	for _, n := range names {
		fields[n] = &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)}
	}
	return fields
}

// RegisterUserInputs registers CreateUserInput and UpdateUserInput.
//
// UpdateUserInput marks every field required, yet only the fields present in
// the request are written. Conformant callers always send all three.
func RegisterUserInputs(t *Types) {
	t.CreateUserInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "CreateUserInput",
		Fields: requiredFields("name", "password", "email"),
	})
	t.UpdateUserInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        "UpdateUserInput",
		Description: "Fields to overwrite. The password is plaintext and is transformed before storage.",
		Fields:      requiredFields("name", "password", "email"),
	})
}

// RegisterPostInputs registers CreatePostInput and UpdatePostInput.
func RegisterPostInputs(t *Types) {
	t.CreatePostInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "CreatePostInput",
		Fields: requiredIDs(requiredFields("content"), "authorId"),
	})
	t.UpdatePostInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "UpdatePostInput",
		Fields: requiredFields("content"),
	})
}

// RegisterCommentInputs registers CreateCommentInput and UpdateCommentInput.
func RegisterCommentInputs(t *Types) {
	t.CreateCommentInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "CreateCommentInput",
		Fields: requiredIDs(requiredFields("text"), "authorId", "postId"),
	})
	t.UpdateCommentInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "UpdateCommentInput",
		Fields: requiredFields("text"),
	})
}

// RegisterInputs registers every input object.
func RegisterInputs(t *Types) {
	RegisterUserInputs(t)
	RegisterPostInputs(t)
	RegisterCommentInputs(t)
}

// The decoders below turn the engine's map arguments into coordinator inputs.
// Update decoders only set the keys that were sent.

func stringArg(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func optionalArg(m map[string]interface{}, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

func inputArg(args map[string]interface{}) map[string]interface{} {
	m, _ := args["input"].(map[string]interface{})
	return m
}

func decodeCreateUser(args map[string]interface{}) mutate.CreateUserInput {
	in := inputArg(args)
	return mutate.CreateUserInput{
		Name:     stringArg(in, "name"),
		Email:    stringArg(in, "email"),
		Password: stringArg(in, "password"),
	}
}

func decodeUpdateUser(args map[string]interface{}) mutate.UpdateUserInput {
	in := inputArg(args)
	return mutate.UpdateUserInput{
		Name:     optionalArg(in, "name"),
		Email:    optionalArg(in, "email"),
		Password: optionalArg(in, "password"),
	}
}

func decodeCreatePost(args map[string]interface{}) mutate.CreatePostInput {
	in := inputArg(args)
	return mutate.CreatePostInput{
		Content:  stringArg(in, "content"),
		AuthorID: stringArg(in, "authorId"),
	}
}

func decodeUpdatePost(args map[string]interface{}) mutate.UpdatePostInput {
	return mutate.UpdatePostInput{Content: optionalArg(inputArg(args), "content")}
}

func decodeCreateComment(args map[string]interface{}) mutate.CreateCommentInput {
	in := inputArg(args)
	return mutate.CreateCommentInput{
		Text:     stringArg(in, "text"),
		AuthorID: stringArg(in, "authorId"),
		PostID:   stringArg(in, "postId"),
	}
}

func decodeUpdateComment(args map[string]interface{}) mutate.UpdateCommentInput {
	return mutate.UpdateCommentInput{Text: optionalArg(inputArg(args), "text")}
}
