package resolve

import (
	"context"
	"fmt"

	"github.com/anujdecoder/postgraph/model"
)

// Capability says how a field is produced from its parent.
type Capability int

const (
	// Scalar fields are read straight off the parent document.
	Scalar Capability = iota
	// SingleReference fields hold one id and fail when it dangles.
	SingleReference
	// SetReference fields hold many ids and drop the ones that dangle.
	SetReference
)

func (c Capability) String() string {
	switch c {
	case Scalar:
		return "scalar"
	case SingleReference:
		return "single-reference"
	case SetReference:
		return "set-reference"
	}
	return fmt.Sprintf("Capability(%d)", int(c))
}

// Key addresses one field of one object type.
type Key struct {
	Type  string
	Field string
}

// Func resolves a field given its parent (*model.User, *model.Post or
// *model.Comment).
type Func func(ctx context.Context, parent interface{}) (interface{}, error)

// Entry is one row of the dispatch table. Target is the GraphQL type of a
// reference field and empty for scalars.
type Entry struct {
	Capability Capability
	Target     string
	Resolve    Func
}

// Table maps every object field to the function producing it.
type Table map[Key]Entry

// Table returns the dispatch table. Callers must not modify it.
func (r *Resolver) Table() Table {
	return r.table
}

// Lookup returns the entry for typ.field.
func (t Table) Lookup(typ, field string) (Entry, bool) {
	e, ok := t[Key{typ, field}]
	return e, ok
}

// Fields returns the keys registered for typ.
func (t Table) Fields(typ string) []string {
	var out []string
	for k := range t {
		if k.Type == typ {
			out = append(out, k.Field)
		}
	}
	return out
}

func (r *Resolver) buildTable() Table {
	t := Table{}

	user := func(f func(*model.User) interface{}) Func {
		return func(_ context.Context, parent interface{}) (interface{}, error) {
			u, ok := parent.(*model.User)
			if !ok {
				return nil, fmt.Errorf("expected *model.User, got %T", parent)
			}
			return f(u), nil
		}
	}
	post := func(f func(*model.Post) interface{}) Func {
		return func(_ context.Context, parent interface{}) (interface{}, error) {
			p, ok := parent.(*model.Post)
			if !ok {
				return nil, fmt.Errorf("expected *model.Post, got %T", parent)
			}
			return f(p), nil
		}
	}
	comment := func(f func(*model.Comment) interface{}) Func {
		return func(_ context.Context, parent interface{}) (interface{}, error) {
			c, ok := parent.(*model.Comment)
			if !ok {
				return nil, fmt.Errorf("expected *model.Comment, got %T", parent)
			}
			return f(c), nil
		}
	}

	// Scalars.
	t[Key{TypeUser, model.FieldID}] = Entry{Scalar, "", user(func(u *model.User) interface{} { return u.ID })}
	t[Key{TypeUser, model.FieldName}] = Entry{Scalar, "", user(func(u *model.User) interface{} { return u.Name })}
	t[Key{TypeUser, model.FieldEmail}] = Entry{Scalar, "", user(func(u *model.User) interface{} { return u.Email })}
	t[Key{TypeUser, model.FieldPassword}] = Entry{Scalar, "", user(func(u *model.User) interface{} { return u.Password })}
	t[Key{TypePost, model.FieldID}] = Entry{Scalar, "", post(func(p *model.Post) interface{} { return p.ID })}
	t[Key{TypePost, model.FieldContent}] = Entry{Scalar, "", post(func(p *model.Post) interface{} { return p.Content })}
	t[Key{TypeComment, model.FieldID}] = Entry{Scalar, "", comment(func(c *model.Comment) interface{} { return c.ID })}
	t[Key{TypeComment, model.FieldText}] = Entry{Scalar, "", comment(func(c *model.Comment) interface{} { return c.Text })}

	// Single references.
	t[Key{TypePost, model.FieldAuthor}] = Entry{SingleReference, TypeUser, func(ctx context.Context, parent interface{}) (interface{}, error) {
		p, ok := parent.(*model.Post)
		if !ok {
			return nil, fmt.Errorf("expected *model.Post, got %T", parent)
		}
		return r.PostAuthor(ctx, p)
	}}
	t[Key{TypeComment, model.FieldAuthor}] = Entry{SingleReference, TypeUser, func(ctx context.Context, parent interface{}) (interface{}, error) {
		c, ok := parent.(*model.Comment)
		if !ok {
			return nil, fmt.Errorf("expected *model.Comment, got %T", parent)
		}
		return r.CommentAuthor(ctx, c)
	}}
	t[Key{TypeComment, model.FieldPost}] = Entry{SingleReference, TypePost, func(ctx context.Context, parent interface{}) (interface{}, error) {
		c, ok := parent.(*model.Comment)
		if !ok {
			return nil, fmt.Errorf("expected *model.Comment, got %T", parent)
		}
		return r.CommentPost(ctx, c)
	}}

	// Set references.
	t[Key{TypeUser, model.FieldPosts}] = Entry{SetReference, TypePost, func(ctx context.Context, parent interface{}) (interface{}, error) {
		u, ok := parent.(*model.User)
		if !ok {
			return nil, fmt.Errorf("expected *model.User, got %T", parent)
		}
		return r.UserPosts(ctx, u)
	}}
	t[Key{TypeUser, model.FieldComments}] = Entry{SetReference, TypeComment, func(ctx context.Context, parent interface{}) (interface{}, error) {
		u, ok := parent.(*model.User)
		if !ok {
			return nil, fmt.Errorf("expected *model.User, got %T", parent)
		}
		return r.UserComments(ctx, u)
	}}
	t[Key{TypeUser, model.FieldLikedPosts}] = Entry{SetReference, TypePost, func(ctx context.Context, parent interface{}) (interface{}, error) {
		u, ok := parent.(*model.User)
		if !ok {
			return nil, fmt.Errorf("expected *model.User, got %T", parent)
		}
		return r.UserLikedPosts(ctx, u)
	}}
	t[Key{TypePost, model.FieldComments}] = Entry{SetReference, TypeComment, func(ctx context.Context, parent interface{}) (interface{}, error) {
		p, ok := parent.(*model.Post)
		if !ok {
			return nil, fmt.Errorf("expected *model.Post, got %T", parent)
		}
		return r.PostComments(ctx, p)
	}}
	t[Key{TypePost, model.FieldLikes}] = Entry{SetReference, TypeUser, func(ctx context.Context, parent interface{}) (interface{}, error) {
		p, ok := parent.(*model.Post)
		if !ok {
			return nil, fmt.Errorf("expected *model.Post, got %T", parent)
		}
		return r.PostLikes(ctx, p)
	}}

	return t
}
