package mutate

import (
	"context"

	"github.com/anujdecoder/postgraph/model"
	"github.com/anujdecoder/postgraph/store"
	"github.com/pkg/errors"
)

// CreateUser inserts a user after checking that no user has the email. The
// check and the insert are separate store calls.
func (c *Coordinator) CreateUser(ctx context.Context, in CreateUserInput) (_ *model.User, err error) {
	done := c.track(ctx, "createUser")
	defer func() { done(err) }()

	_, err = c.entities.Users.FindOne(ctx, model.FieldEmail, in.Email)
	switch {
	case err == nil:
		return nil, model.PreconditionFailed("Email already exists. Please use a different email.")
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	u := &model.User{
		Name:       in.Name,
		Email:      in.Email,
		Password:   HashPassword(in.Password),
		Posts:      []string{},
		Comments:   []string{},
		LikedPosts: []string{},
	}
	if _, err := c.entities.Users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser overwrites the supplied fields and returns the stored result. A
// supplied password is treated as plaintext and transformed again.
func (c *Coordinator) UpdateUser(ctx context.Context, rawID string, in UpdateUserInput) (_ *model.User, err error) {
	done := c.track(ctx, "updateUser")
	defer func() { done(err) }()

	id, err := model.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	fields := store.Fields{}
	if in.Name != nil {
		fields[model.FieldName] = *in.Name
	}
	if in.Email != nil {
		fields[model.FieldEmail] = *in.Email
	}
	if in.Password != nil {
		fields[model.FieldPassword] = HashPassword(*in.Password)
	}
	if err := c.entities.Users.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	u, err := c.entities.Users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, model.NotFound("Document not found after update")
	}
	return u, err
}

// DeleteUser removes the user only. Posts, comments and likes that reference
// it are left dangling.
func (c *Coordinator) DeleteUser(ctx context.Context, rawID string) (_ bool, err error) {
	done := c.track(ctx, "deleteUser")
	defer func() { done(err) }()

	id, err := model.ParseID(rawID)
	if err != nil {
		return false, err
	}
	return c.entities.Users.Delete(ctx, id)
}
