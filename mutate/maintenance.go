package mutate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anujdecoder/postgraph/model"
	"github.com/anujdecoder/postgraph/store"
)

// Policy decides which reverse references a mutation keeps up to date.
//
// Lenient keeps only Post.comments in step with comment creation. Under it:
//   - new posts are not added to the author's User.posts
//   - new comments are not added to the author's User.comments
//   - likes are not mirrored into User.likedPosts
//   - deleted comments stay listed in Post.comments
//   - nothing cascades on delete
//
// Strict additionally maintains User.posts, User.comments and
// User.likedPosts, and pulls a deleted comment from its post and its author.
// Deletes still do not cascade under either policy.
type Policy int

const (
	Lenient Policy = iota
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// ParsePolicy parses "lenient" or "strict".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "lenient", "":
		return Lenient, nil
	case "strict":
		return Strict, nil
	}
	return Lenient, fmt.Errorf("unknown consistency policy %q", s)
}

// maintenance issues the follow-up writes a mutation owes to documents other
// than the one it creates or deletes. It is the only place the policy is
// consulted.
type maintenance struct {
	entities *store.Entities
	policy   Policy
}

func (m maintenance) postCreated(ctx context.Context, p *plan, post *model.Post) error {
	if m.policy != Strict {
		return nil
	}
	return m.push(ctx, p, m.entities.Users, store.UsersCollection, post.Author, model.FieldPosts, post.ID)
}

func (m maintenance) commentCreated(ctx context.Context, p *plan, c *model.Comment) error {
	if err := m.push(ctx, p, m.entities.Posts, store.PostsCollection, c.Post, model.FieldComments, c.ID); err != nil {
		return err
	}
	if m.policy != Strict {
		return nil
	}
	return m.push(ctx, p, m.entities.Users, store.UsersCollection, c.Author, model.FieldComments, c.ID)
}

// commentDeleted runs after the comment is gone. c is its last known state
// and is nil under Lenient, which never reads it.
func (m maintenance) commentDeleted(ctx context.Context, p *plan, c *model.Comment) error {
	if m.policy != Strict || c == nil {
		return nil
	}
	if err := m.pull(ctx, p, m.entities.Posts, store.PostsCollection, c.Post, model.FieldComments, c.ID); err != nil {
		return err
	}
	return m.pull(ctx, p, m.entities.Users, store.UsersCollection, c.Author, model.FieldComments, c.ID)
}

// needsDeletedComment reports whether commentDeleted wants the comment read
// before it is deleted.
func (m maintenance) needsDeletedComment() bool {
	return m.policy == Strict
}

func (m maintenance) likeAdded(ctx context.Context, p *plan, postID, userID string) error {
	if m.policy != Strict {
		return nil
	}
	return p.do(Step{Collection: store.UsersCollection, Op: OpAddToSet, ID: userID, Field: model.FieldLikedPosts, Ref: postID},
		func() (bool, error) {
			return matched(m.entities.Users.AddToSet(ctx, userID, model.FieldLikedPosts, postID))
		})
}

func (m maintenance) likeRemoved(ctx context.Context, p *plan, postID, userID string) error {
	if m.policy != Strict {
		return nil
	}
	return m.pull(ctx, p, m.entities.Users, store.UsersCollection, userID, model.FieldLikedPosts, postID)
}

type arrayWriter interface {
	Push(ctx context.Context, id, field, ref string) error
	Pull(ctx context.Context, id, field, ref string) error
}

func (m maintenance) push(ctx context.Context, p *plan, coll arrayWriter, name, id, field, ref string) error {
	return p.do(Step{Collection: name, Op: OpPush, ID: id, Field: field, Ref: ref}, func() (bool, error) {
		return matched(coll.Push(ctx, id, field, ref))
	})
}

func (m maintenance) pull(ctx context.Context, p *plan, coll arrayWriter, name, id, field, ref string) error {
	return p.do(Step{Collection: name, Op: OpPull, ID: id, Field: field, Ref: ref}, func() (bool, error) {
		return matched(coll.Pull(ctx, id, field, ref))
	})
}
