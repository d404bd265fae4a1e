// Package resolve turns stored reference ids into materialized entities.
//
// Single references (Post.author, Comment.author, Comment.post) fail with a
// DanglingReference error when their target is gone. Set references
// (User.posts, User.comments, User.likedPosts, Post.comments, Post.likes)
// silently drop missing targets. Nothing is cached between calls: every field
// resolution goes to the store.
package resolve

import (
	"context"

	"github.com/anujdecoder/postgraph/model"
	"github.com/anujdecoder/postgraph/observability"
	"github.com/anujdecoder/postgraph/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GraphQL object type names.
const (
	TypeUser    = "User"
	TypePost    = "Post"
	TypeComment = "Comment"
)

// Resolver reads entities on behalf of the GraphQL executor.
type Resolver struct {
	entities *store.Entities
	logger   *zap.Logger
	table    Table
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver over entities and builds its dispatch table.
func New(entities *store.Entities, opts ...Option) *Resolver {
	r := &Resolver{
		entities: entities,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.table = r.buildTable()
	return r
}

// Users lists every user.
func (r *Resolver) Users(ctx context.Context) ([]*model.User, error) {
	return r.entities.Users.List(ctx)
}

// User returns the user with id, or nil when there is none.
func (r *Resolver) User(ctx context.Context, id string) (*model.User, error) {
	return lookup(ctx, r.entities.Users, id)
}

// Posts lists every post.
func (r *Resolver) Posts(ctx context.Context) ([]*model.Post, error) {
	return r.entities.Posts.List(ctx)
}

// Post returns the post with id, or nil when there is none.
func (r *Resolver) Post(ctx context.Context, id string) (*model.Post, error) {
	return lookup(ctx, r.entities.Posts, id)
}

// Comments lists every comment.
func (r *Resolver) Comments(ctx context.Context) ([]*model.Comment, error) {
	return r.entities.Comments.List(ctx)
}

// Comment returns the comment with id, or nil when there is none.
func (r *Resolver) Comment(ctx context.Context, id string) (*model.Comment, error) {
	return lookup(ctx, r.entities.Comments, id)
}

func lookup[T any](ctx context.Context, coll store.Collection[T], raw string) (*T, error) {
	id, err := model.ParseID(raw)
	if err != nil {
		return nil, err
	}
	doc, err := coll.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return doc, err
}

// PostAuthor resolves Post.author.
func (r *Resolver) PostAuthor(ctx context.Context, p *model.Post) (*model.User, error) {
	return single(ctx, r, Key{TypePost, model.FieldAuthor}, "Author", r.entities.Users, p.Author)
}

// CommentAuthor resolves Comment.author.
func (r *Resolver) CommentAuthor(ctx context.Context, c *model.Comment) (*model.User, error) {
	return single(ctx, r, Key{TypeComment, model.FieldAuthor}, "Author", r.entities.Users, c.Author)
}

// CommentPost resolves Comment.post.
func (r *Resolver) CommentPost(ctx context.Context, c *model.Comment) (*model.Post, error) {
	return single(ctx, r, Key{TypeComment, model.FieldPost}, "Post", r.entities.Posts, c.Post)
}

// UserPosts resolves User.posts.
func (r *Resolver) UserPosts(ctx context.Context, u *model.User) ([]*model.Post, error) {
	return set(ctx, r, Key{TypeUser, model.FieldPosts}, r.entities.Posts, u.Posts)
}

// UserComments resolves User.comments.
func (r *Resolver) UserComments(ctx context.Context, u *model.User) ([]*model.Comment, error) {
	return set(ctx, r, Key{TypeUser, model.FieldComments}, r.entities.Comments, u.Comments)
}

// UserLikedPosts resolves User.likedPosts.
func (r *Resolver) UserLikedPosts(ctx context.Context, u *model.User) ([]*model.Post, error) {
	return set(ctx, r, Key{TypeUser, model.FieldLikedPosts}, r.entities.Posts, u.LikedPosts)
}

// PostComments resolves Post.comments.
func (r *Resolver) PostComments(ctx context.Context, p *model.Post) ([]*model.Comment, error) {
	return set(ctx, r, Key{TypePost, model.FieldComments}, r.entities.Comments, p.Comments)
}

// PostLikes resolves Post.likes.
func (r *Resolver) PostLikes(ctx context.Context, p *model.Post) ([]*model.User, error) {
	return set(ctx, r, Key{TypePost, model.FieldLikes}, r.entities.Users, p.Likes)
}

// single fetches one referenced document. noun names the target in the error
// message, e.g. "Author with ID ... not found".
func single[T any](ctx context.Context, r *Resolver, key Key, noun string, coll store.Collection[T], id string) (_ *T, err error) {
	defer func() {
		observability.ReferenceResolutions.WithLabelValues(key.Type, key.Field, observability.Outcome(err)).Inc()
	}()

	doc, err := coll.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		r.logger.Debug("dangling reference",
			zap.String("type", key.Type),
			zap.String("field", key.Field),
			zap.String("id", id),
			zap.String("request_id", observability.RequestID(ctx)),
		)
		return nil, model.DanglingReference(noun, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s.%s", key.Type, key.Field)
	}
	return doc, nil
}

// set fetches every referenced document with one batched read and returns
// them in the order of ids. Ids whose document no longer exists are dropped;
// repeated ids appear once.
func set[T any, PT interface {
	*T
	model.Document
}](ctx context.Context, r *Resolver, key Key, coll store.Collection[T], ids []string) (_ []*T, err error) {
	defer func() {
		observability.ReferenceResolutions.WithLabelValues(key.Type, key.Field, observability.Outcome(err)).Inc()
	}()

	if len(ids) == 0 {
		return []*T{}, nil
	}
	found, err := coll.GetMany(ctx, ids)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s.%s", key.Type, key.Field)
	}

	byID := make(map[string]*T, len(found))
	for _, doc := range found {
		byID[PT(doc).Key()] = doc
	}

	out := make([]*T, 0, len(found))
	emitted := make(map[string]bool, len(found))
	dropped := 0
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok {
			dropped++
			continue
		}
		if emitted[id] {
			continue
		}
		emitted[id] = true
		out = append(out, doc)
	}

	if dropped > 0 {
		observability.DanglingReferencesDropped.WithLabelValues(key.Type, key.Field).Add(float64(dropped))
		r.logger.Debug("dropped dangling references",
			zap.String("type", key.Type),
			zap.String("field", key.Field),
			zap.Int("dropped", dropped),
			zap.String("request_id", observability.RequestID(ctx)),
		)
	}
	return out, nil
}
