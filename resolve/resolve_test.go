package resolve_test

import (
	"context"
	"sort"
	"testing"

	"github.com/anujdecoder/postgraph/model"
	"github.com/anujdecoder/postgraph/observability"
	"github.com/anujdecoder/postgraph/resolve"
	"github.com/anujdecoder/postgraph/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	entities *store.Entities
	resolver *resolve.Resolver
	logs     *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	e, err := store.OpenMem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	core, logs := observer.New(zap.DebugLevel)
	return &fixture{
		entities: e,
		resolver: resolve.New(e, resolve.WithLogger(zap.New(core))),
		logs:     logs,
	}
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@x.com", Posts: []string{}, Comments: []string{}, LikedPosts: []string{}}
	_, err := f.entities.Users.Insert(context.Background(), u)
	require.NoError(t, err)
	return u
}

func (f *fixture) post(t *testing.T, content, author string) *model.Post {
	t.Helper()
	p := &model.Post{Content: content, Author: author, Comments: []string{}, Likes: []string{}}
	_, err := f.entities.Posts.Insert(context.Background(), p)
	require.NoError(t, err)
	return p
}

func (f *fixture) comment(t *testing.T, text, author, post string) *model.Comment {
	t.Helper()
	c := &model.Comment{Text: text, Author: author, Post: post}
	_, err := f.entities.Comments.Insert(context.Background(), c)
	require.NoError(t, err)
	return c
}

func TestSingleReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	p := f.post(t, "hi", a.ID)
	c := f.comment(t, "nice", a.ID, p.ID)

	author, err := f.resolver.PostAuthor(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "a", author.Name)

	author, err = f.resolver.CommentAuthor(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, a.ID, author.ID)

	post, err := f.resolver.CommentPost(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "hi", post.Content)
}

func TestDanglingSingleReferenceFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	p := f.post(t, "hi", a.ID)
	c := f.comment(t, "nice", a.ID, p.ID)

	_, err := f.entities.Users.Delete(ctx, a.ID)
	require.NoError(t, err)
	_, err = f.entities.Posts.Delete(ctx, p.ID)
	require.NoError(t, err)

	author, err := f.resolver.PostAuthor(ctx, p)
	require.Error(t, err)
	assert.Nil(t, author)
	assert.True(t, model.IsKind(err, model.KindDanglingReference))
	assert.Equal(t, "Author with ID "+a.ID+" not found", err.Error())

	_, err = f.resolver.CommentPost(ctx, c)
	require.Error(t, err)
	assert.Equal(t, "Post with ID "+p.ID+" not found", err.Error())

	assert.Equal(t, 2, f.logs.FilterMessage("dangling reference").Len())
}

func TestDanglingSetReferenceDrops(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	p := f.post(t, "hi", a.ID)

	var ids []string
	for _, text := range []string{"one", "two", "three"} {
		ids = append(ids, f.comment(t, text, a.ID, p.ID).ID)
	}
	p.Comments = ids

	removed, err := f.entities.Comments.Delete(ctx, ids[1])
	require.NoError(t, err)
	require.True(t, removed)

	before := testutil.ToFloat64(observability.DanglingReferencesDropped.WithLabelValues(resolve.TypePost, model.FieldComments))
	comments, err := f.resolver.PostComments(ctx, p)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "one", comments[0].Text)
	assert.Equal(t, "three", comments[1].Text)

	after := testutil.ToFloat64(observability.DanglingReferencesDropped.WithLabelValues(resolve.TypePost, model.FieldComments))
	assert.Equal(t, before+1, after)
}

func TestSetReferenceKeepsArrayOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")
	p := f.post(t, "hi", a.ID)
	p.Likes = []string{c.ID, a.ID, b.ID, a.ID}

	likes, err := f.resolver.PostLikes(ctx, p)
	require.NoError(t, err)

	var names []string
	for _, u := range likes {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestEmptySetReference(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "a")
	u.LikedPosts = nil

	posts, err := f.resolver.UserLikedPosts(context.Background(), u)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestUserSetReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	p := f.post(t, "hi", a.ID)
	c := f.comment(t, "nice", a.ID, p.ID)
	a.Posts = []string{p.ID}
	a.Comments = []string{c.ID}
	a.LikedPosts = []string{p.ID}

	posts, err := f.resolver.UserPosts(ctx, a)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, p.ID, posts[0].ID)

	comments, err := f.resolver.UserComments(ctx, a)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Text)

	liked, err := f.resolver.UserLikedPosts(ctx, a)
	require.NoError(t, err)
	require.Len(t, liked, 1)
}

func TestRootLookups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")

	got, err := f.resolver.User(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	got, err = f.resolver.User(ctx, model.NewID())
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = f.resolver.Post(ctx, "not-an-id")
	assert.True(t, model.IsKind(err, model.KindInvalidID))

	users, err := f.resolver.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	posts, err := f.resolver.Posts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	comment, err := f.resolver.Comment(ctx, model.NewID())
	require.NoError(t, err)
	assert.Nil(t, comment)
}

func TestTableDispatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	p := f.post(t, "hi", a.ID)
	table := f.resolver.Table()

	tests := []struct {
		typ, field string
		capability resolve.Capability
		target     string
	}{
		{resolve.TypeUser, model.FieldName, resolve.Scalar, ""},
		{resolve.TypeUser, model.FieldLikedPosts, resolve.SetReference, resolve.TypePost},
		{resolve.TypePost, model.FieldAuthor, resolve.SingleReference, resolve.TypeUser},
		{resolve.TypePost, model.FieldLikes, resolve.SetReference, resolve.TypeUser},
		{resolve.TypeComment, model.FieldPost, resolve.SingleReference, resolve.TypePost},
		{resolve.TypeComment, model.FieldText, resolve.Scalar, ""},
	}
	for _, tt := range tests {
		t.Run(tt.typ+"."+tt.field, func(t *testing.T) {
			e, ok := table.Lookup(tt.typ, tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.capability, e.Capability)
			assert.Equal(t, tt.target, e.Target)
		})
	}

	author, err := table[resolve.Key{Type: resolve.TypePost, Field: model.FieldAuthor}].Resolve(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "a", author.(*model.User).Name)

	content, err := table[resolve.Key{Type: resolve.TypePost, Field: model.FieldContent}].Resolve(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "hi", content)

	_, err = table[resolve.Key{Type: resolve.TypeUser, Field: model.FieldName}].Resolve(ctx, p)
	assert.Error(t, err)

	fields := table.Fields(resolve.TypeComment)
	sort.Strings(fields)
	assert.Equal(t, []string{"author", "id", "post", "text"}, fields)
	assert.Len(t, table.Fields(resolve.TypeUser), 7)
	assert.Len(t, table.Fields(resolve.TypePost), 5)

	assert.Equal(t, "set-reference", resolve.SetReference.String())
}
