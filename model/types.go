// Package model holds the three document kinds stored by postgraph, the
// identifier helpers shared by every layer, and the error taxonomy surfaced
// to GraphQL clients.
package model

// =============================================================================
// Documents
// =============================================================================

// Field names as stored in the document collections. They double as the
// GraphQL field names of the reference arrays.
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPassword   = "password"
	FieldPosts      = "posts"
	FieldComments   = "comments"
	FieldLikedPosts = "likedPosts"
	FieldContent    = "content"
	FieldAuthor     = "author"
	FieldLikes      = "likes"
	FieldText       = "text"
	FieldPost       = "post"
)

// User owns posts and comments and may like posts. Email is unique only by
// convention of the mutation layer; the store does not enforce it.
type User struct {
	ID         string   `docstore:"id"`
	Name       string   `docstore:"name"`
	Email      string   `docstore:"email"`
	Password   string   `docstore:"password"`
	Posts      []string `docstore:"posts"`
	Comments   []string `docstore:"comments"`
	LikedPosts []string `docstore:"likedPosts"`

	DocstoreRevision interface{}
}

// Post is written by one user. Likes is a set of user ids.
type Post struct {
	ID       string   `docstore:"id"`
	Content  string   `docstore:"content"`
	Author   string   `docstore:"author"`
	Comments []string `docstore:"comments"`
	Likes    []string `docstore:"likes"`

	DocstoreRevision interface{}
}

// Comment points at its author and the post it was left on.
type Comment struct {
	ID     string `docstore:"id"`
	Text   string `docstore:"text"`
	Author string `docstore:"author"`
	Post   string `docstore:"post"`

	DocstoreRevision interface{}
}

// Document is implemented by pointers to the three document kinds. The store
// uses it to address documents generically.
type Document interface {
	Key() string
	SetKey(id string)
	// Refs returns the reference array stored under field, or false when the
	// document has no array with that name.
	Refs(field string) ([]string, bool)
	SetRefs(field string, ids []string) bool
	// ClearRevision drops the revision so the next write is unconditional.
	ClearRevision()
}

func (u *User) Key() string { return u.ID }
func (u *User) SetKey(id string) { u.ID = id }
func (u *User) ClearRevision() { u.DocstoreRevision = nil }
func (p *Post) Key() string { return p.ID }
func (p *Post) SetKey(id string) { p.ID = id }
func (p *Post) ClearRevision() { p.DocstoreRevision = nil }
func (c *Comment) Key() string { return c.ID }
func (c *Comment) SetKey(id string) { c.ID = id }
func (c *Comment) ClearRevision() { c.DocstoreRevision = nil }

func (u *User) Refs(field string) ([]string, bool) {
	switch field {
	case FieldPosts:
		return u.Posts, true
	case FieldComments:
		return u.Comments, true
	case FieldLikedPosts:
		return u.LikedPosts, true
	}
	return nil, false
}

func (u *User) SetRefs(field string, ids []string) bool {
	switch field {
	case FieldPosts:
		u.Posts = ids
	case FieldComments:
		u.Comments = ids
	case FieldLikedPosts:
		u.LikedPosts = ids
	default:
		return false
	}
	return true
}

func (p *Post) Refs(field string) ([]string, bool) {
	switch field {
	case FieldComments:
		return p.Comments, true
	case FieldLikes:
		return p.Likes, true
	}
	return nil, false
}

func (p *Post) SetRefs(field string, ids []string) bool {
	switch field {
	case FieldComments:
		p.Comments = ids
	case FieldLikes:
		p.Likes = ids
	default:
		return false
	}
	return true
}

// Comment has no reference arrays; its references are single ids.
func (c *Comment) Refs(string) ([]string, bool) { return nil, false }

func (c *Comment) SetRefs(string, []string) bool { return false }

var (
	_ Document = (*User)(nil)
	_ Document = (*Post)(nil)
	_ Document = (*Comment)(nil)
)
