package mutate

// CreateUserInput carries the plaintext password; it is transformed before it
// is stored.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput sets only the non-nil fields.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

type CreatePostInput struct {
	Content  string
	AuthorID string
}

type UpdatePostInput struct {
	Content *string
}

type CreateCommentInput struct {
	Text     string
	AuthorID string
	PostID   string
}

type UpdateCommentInput struct {
	Text *string
}
