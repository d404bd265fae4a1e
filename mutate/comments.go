package mutate

import (
	"context"

	"github.com/anujdecoder/postgraph/model"
	"github.com/anujdecoder/postgraph/store"
	"github.com/pkg/errors"
)

// CreateComment inserts the comment and then appends its id to the post's
// comments. If the append fails the comment is left orphaned: it exists and
// points at the post, but the post does not list it. The returned error is a
// *PartialWriteError in that case.
func (c *Coordinator) CreateComment(ctx context.Context, in CreateCommentInput) (_ *model.Comment, _ Writes, err error) {
	done := c.track(ctx, "createComment")
	defer func() { done(err) }()

	authorID, err := model.ParseID(in.AuthorID)
	if err != nil {
		return nil, nil, err
	}
	postID, err := model.ParseID(in.PostID)
	if err != nil {
		return nil, nil, err
	}

	_, aerr := c.entities.Users.Get(ctx, authorID)
	if aerr != nil && !errors.Is(aerr, store.ErrNotFound) {
		return nil, nil, aerr
	}
	_, perr := c.entities.Posts.Get(ctx, postID)
	if perr != nil && !errors.Is(perr, store.ErrNotFound) {
		return nil, nil, perr
	}
	if aerr != nil || perr != nil {
		return nil, nil, model.PreconditionFailed("Author or Post not found")
	}

	comment := &model.Comment{
		Text:   in.Text,
		Author: authorID,
		Post:   postID,
	}
	p := &plan{mutation: "createComment"}
	err = p.do(Step{Collection: store.CommentsCollection, Op: OpInsert}, func() (bool, error) {
		_, err := c.entities.Comments.Insert(ctx, comment)
		return err == nil, err
	})
	if err != nil {
		return nil, p.writes, err
	}
	p.writes[0].ID = comment.ID

	if err := c.maint.commentCreated(ctx, p, comment); err != nil {
		return nil, p.writes, err
	}
	return comment, p.writes, nil
}

// UpdateComment overwrites the supplied fields and returns the stored result.
func (c *Coordinator) UpdateComment(ctx context.Context, rawID string, in UpdateCommentInput) (_ *model.Comment, err error) {
	done := c.track(ctx, "updateComment")
	defer func() { done(err) }()

	id, err := model.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	fields := store.Fields{}
	if in.Text != nil {
		fields[model.FieldText] = *in.Text
	}
	if err := c.entities.Comments.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	comment, err := c.entities.Comments.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, model.NotFound("Comment not found after update")
	}
	return comment, err
}

// DeleteComment removes the comment. Under the Lenient policy its id stays in
// the post's comments and is dropped at read time.
func (c *Coordinator) DeleteComment(ctx context.Context, rawID string) (_ bool, _ Writes, err error) {
	done := c.track(ctx, "deleteComment")
	defer func() { done(err) }()

	id, err := model.ParseID(rawID)
	if err != nil {
		return false, nil, err
	}

	var last *model.Comment
	if c.maint.needsDeletedComment() {
		last, err = c.entities.Comments.Get(ctx, id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return false, nil, err
		}
	}

	var removed bool
	p := &plan{mutation: "deleteComment"}
	err = p.do(Step{Collection: store.CommentsCollection, Op: OpDelete, ID: id}, func() (bool, error) {
		var err error
		removed, err = c.entities.Comments.Delete(ctx, id)
		return removed, err
	})
	if err != nil {
		return false, p.writes, err
	}
	if !removed {
		return false, p.writes, nil
	}

	if err := c.maint.commentDeleted(ctx, p, last); err != nil {
		return true, p.writes, err
	}
	return true, p.writes, nil
}
