package mutate

import (
	"context"

	"github.com/anujdecoder/postgraph/model"
	"github.com/anujdecoder/postgraph/store"
	"github.com/pkg/errors"
)

// CreatePost inserts a post for an existing author.
func (c *Coordinator) CreatePost(ctx context.Context, in CreatePostInput) (_ *model.Post, _ Writes, err error) {
	done := c.track(ctx, "createPost")
	defer func() { done(err) }()

	authorID, err := model.ParseID(in.AuthorID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := c.entities.Users.Get(ctx, authorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, model.PreconditionFailed("Author with ID %s not found", in.AuthorID)
		}
		return nil, nil, err
	}

	post := &model.Post{
		Content:  in.Content,
		Author:   authorID,
		Comments: []string{},
		Likes:    []string{},
	}
	p := &plan{mutation: "createPost"}
	err = p.do(Step{Collection: store.PostsCollection, Op: OpInsert}, func() (bool, error) {
		_, err := c.entities.Posts.Insert(ctx, post)
		return err == nil, err
	})
	if err != nil {
		return nil, p.writes, err
	}
	p.writes[0].ID = post.ID

	if err := c.maint.postCreated(ctx, p, post); err != nil {
		return nil, p.writes, err
	}
	return post, p.writes, nil
}

// UpdatePost overwrites the supplied fields and returns the stored result.
func (c *Coordinator) UpdatePost(ctx context.Context, rawID string, in UpdatePostInput) (_ *model.Post, err error) {
	done := c.track(ctx, "updatePost")
	defer func() { done(err) }()

	id, err := model.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	fields := store.Fields{}
	if in.Content != nil {
		fields[model.FieldContent] = *in.Content
	}
	if err := c.entities.Posts.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	post, err := c.entities.Posts.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, model.NotFound("Post not found after update")
	}
	return post, err
}

// DeletePost removes the post only. Its comments and any likedPosts entries
// keep pointing at it.
func (c *Coordinator) DeletePost(ctx context.Context, rawID string) (_ bool, err error) {
	done := c.track(ctx, "deletePost")
	defer func() { done(err) }()

	id, err := model.ParseID(rawID)
	if err != nil {
		return false, err
	}
	return c.entities.Posts.Delete(ctx, id)
}

// AddLikeToPost adds userID to the post's likes. Repeating it changes
// nothing.
func (c *Coordinator) AddLikeToPost(ctx context.Context, rawPostID, rawUserID string) (_ *model.Post, _ Writes, err error) {
	done := c.track(ctx, "addLikeToPost")
	defer func() { done(err) }()

	postID, err := model.ParseID(rawPostID)
	if err != nil {
		return nil, nil, err
	}
	userID, err := model.ParseID(rawUserID)
	if err != nil {
		return nil, nil, err
	}

	post, err := c.entities.Posts.Get(ctx, postID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, nil, err
	}
	_, uerr := c.entities.Users.Get(ctx, userID)
	if uerr != nil && !errors.Is(uerr, store.ErrNotFound) {
		return nil, nil, uerr
	}
	if err != nil || uerr != nil {
		return nil, nil, model.PreconditionFailed("Post or User not found")
	}

	p := &plan{mutation: "addLikeToPost"}
	err = p.do(Step{Collection: store.PostsCollection, Op: OpAddToSet, ID: postID, Field: model.FieldLikes, Ref: userID},
		func() (bool, error) {
			return matched(c.entities.Posts.AddToSet(ctx, postID, model.FieldLikes, userID))
		})
	if err != nil {
		return nil, p.writes, err
	}
	if err := c.maint.likeAdded(ctx, p, postID, userID); err != nil {
		return nil, p.writes, err
	}

	post.Likes = model.AddToSet(post.Likes, userID)
	return post, p.writes, nil
}

// RemoveLikeFromPost removes userID from the post's likes. The user need not
// exist; removing an absent like changes nothing.
func (c *Coordinator) RemoveLikeFromPost(ctx context.Context, rawPostID, rawUserID string) (_ *model.Post, _ Writes, err error) {
	done := c.track(ctx, "removeLikeFromPost")
	defer func() { done(err) }()

	postID, err := model.ParseID(rawPostID)
	if err != nil {
		return nil, nil, err
	}
	userID, err := model.ParseID(rawUserID)
	if err != nil {
		return nil, nil, err
	}

	post, err := c.entities.Posts.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, model.PreconditionFailed("Post with ID %s not found", rawPostID)
		}
		return nil, nil, err
	}

	p := &plan{mutation: "removeLikeFromPost"}
	err = p.do(Step{Collection: store.PostsCollection, Op: OpPull, ID: postID, Field: model.FieldLikes, Ref: userID},
		func() (bool, error) {
			return matched(c.entities.Posts.Pull(ctx, postID, model.FieldLikes, userID))
		})
	if err != nil {
		return nil, p.writes, err
	}
	if err := c.maint.likeRemoved(ctx, p, postID, userID); err != nil {
		return nil, p.writes, err
	}

	post.Likes = model.Pull(post.Likes, userID)
	return post, p.writes, nil
}
