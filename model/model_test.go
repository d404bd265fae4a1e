package model_test

import (
	"errors"
	"testing"

	"github.com/anujdecoder/postgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsParseable(t *testing.T) {
	id := model.NewID()
	require.Len(t, id, 24)

	parsed, err := model.ParseID(id)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.NotEqual(t, id, model.NewID())
}

func TestParseIDNormalizesCase(t *testing.T) {
	parsed, err := model.ParseID("5F1D7A9B2C3D4E5F6A7B8C9D")
	require.NoError(t, err)
	assert.Equal(t, "5f1d7a9b2c3d4e5f6a7b8c9d", parsed)
}

func TestParseIDRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "u1", "zzzzzzzzzzzzzzzzzzzzzzzz", "5f1d7a9b2c3d4e5f6a7b8c"} {
		_, err := model.ParseID(in)
		require.Error(t, err, in)
		assert.True(t, model.IsKind(err, model.KindInvalidID), in)
	}
}

func TestSetHelpers(t *testing.T) {
	ids := model.AddToSet(nil, "a")
	ids = model.AddToSet(ids, "b")
	ids = model.AddToSet(ids, "a")
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.True(t, model.Contains(ids, "b"))

	assert.Equal(t, []string{"b"}, model.Pull(ids, "a"))
	assert.Equal(t, []string{"a", "b"}, model.Pull(ids, "c"))
	assert.Equal(t, []string{}, model.Pull([]string{"x", "x"}, "x"))
}

func TestErrorExtensions(t *testing.T) {
	cases := map[model.Kind]string{
		model.KindNotFound:           "NOT_FOUND",
		model.KindPreconditionFailed: "PRECONDITION_FAILED",
		model.KindDanglingReference:  "DANGLING_REFERENCE",
		model.KindInvalidID:          "INVALID_ID",
	}
	for kind, code := range cases {
		e := &model.Error{Kind: kind, Message: "m"}
		assert.Equal(t, code, e.Extensions()["code"], string(kind))
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := model.DanglingReference("Post", "abc")
	assert.Equal(t, "Post with ID abc not found", base.Error())

	wrapped := errors.Join(errors.New("outer"), base)
	assert.Equal(t, model.KindDanglingReference, model.KindOf(wrapped))
	assert.False(t, model.IsKind(errors.New("plain"), model.KindNotFound))
	assert.False(t, model.IsKind(nil, model.KindNotFound))
}

func TestDocumentRefs(t *testing.T) {
	u := &model.User{}
	require.True(t, u.SetRefs(model.FieldLikedPosts, []string{"p"}))
	refs, ok := u.Refs(model.FieldLikedPosts)
	require.True(t, ok)
	assert.Equal(t, []string{"p"}, refs)

	_, ok = u.Refs(model.FieldLikes)
	assert.False(t, ok)

	p := &model.Post{}
	assert.False(t, p.SetRefs(model.FieldPosts, nil))
	assert.False(t, (&model.Comment{}).SetRefs(model.FieldComments, nil))
}
