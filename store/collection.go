package store

import (
	"context"
	"io"
	"sort"

	"github.com/anujdecoder/postgraph/model"
	"github.com/anujdecoder/postgraph/observability"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocloud.dev/docstore"
	"gocloud.dev/gcerrors"
)

const defaultMaxConflictRetries = 8

// document constrains PT to be a pointer to T that implements model.Document.
type document[T any] interface {
	*T
	model.Document
}

// DocCollection implements Collection on top of a docstore collection.
type DocCollection[T any, PT document[T]] struct {
	name       string
	coll       *docstore.Collection
	log        *observability.RepoLogger
	maxRetries int
}

// NewCollection wraps coll. The key field of coll must be "id".
func NewCollection[T any, PT document[T]](name string, coll *docstore.Collection, opts ...Option) *DocCollection[T, PT] {
	o := options{maxConflictRetries: defaultMaxConflictRetries}
	for _, opt := range opts {
		opt(&o)
	}
	return &DocCollection[T, PT]{
		name:       name,
		coll:       coll,
		log:        observability.NewRepoLogger(o.logger, name),
		maxRetries: o.maxConflictRetries,
	}
}

func (c *DocCollection[T, PT]) keyed(id string) PT {
	doc := PT(new(T))
	doc.SetKey(id)
	return doc
}

func (c *DocCollection[T, PT]) fail(ctx context.Context, err error, op string) error {
	c.log.LogError(ctx, err, op)
	return err
}

// Get fetches one document by id.
func (c *DocCollection[T, PT]) Get(ctx context.Context, id string) (_ *T, err error) {
	done := observability.TrackStore(c.name, "get")
	defer func() { done(err) }()

	doc := c.keyed(id)
	if err := c.coll.Get(ctx, doc); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, errors.Wrapf(ErrNotFound, "%s %s", c.name, id)
		}
		return nil, c.fail(ctx, errors.Wrapf(err, "get %s %s", c.name, id), "get")
	}
	c.log.LogRead(ctx, zap.String("id", id))
	return (*T)(doc), nil
}

// GetMany issues one batched action list of gets.
func (c *DocCollection[T, PT]) GetMany(ctx context.Context, ids []string) (_ []*T, err error) {
	done := observability.TrackStore(c.name, "get_many")
	defer func() { done(err) }()

	seen := make(map[string]struct{}, len(ids))
	docs := make([]PT, 0, len(ids))
	actions := c.coll.Actions()
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		doc := c.keyed(id)
		docs = append(docs, doc)
		actions.Get(doc)
	}
	if len(docs) == 0 {
		return []*T{}, nil
	}

	missing := map[int]bool{}
	if err := actions.Do(ctx); err != nil {
		var alerr docstore.ActionListError
		if !errors.As(err, &alerr) {
			return nil, c.fail(ctx, errors.Wrapf(err, "get many %s", c.name), "get_many")
		}
		for _, e := range alerr {
			if gcerrors.Code(e.Err) != gcerrors.NotFound {
				return nil, c.fail(ctx, errors.Wrapf(e.Err, "get many %s", c.name), "get_many")
			}
			missing[e.Index] = true
		}
	}

	out := make([]*T, 0, len(docs)-len(missing))
	for i, doc := range docs {
		if !missing[i] {
			out = append(out, (*T)(doc))
		}
	}
	c.log.LogRead(ctx, zap.Int("requested", len(docs)), zap.Int("found", len(out)))
	return out, nil
}

// Insert assigns a new ObjectID and creates the document.
func (c *DocCollection[T, PT]) Insert(ctx context.Context, doc *T) (_ string, err error) {
	done := observability.TrackStore(c.name, "insert")
	defer func() { done(err) }()

	d := PT(doc)
	id := model.NewID()
	d.SetKey(id)
	d.ClearRevision()
	if err := c.coll.Create(ctx, d); err != nil {
		return "", c.fail(ctx, errors.Wrapf(err, "insert %s", c.name), "insert")
	}
	c.log.LogCreate(ctx, zap.String("id", id))
	return id, nil
}

// UpdateFields sets the given fields unconditionally.
func (c *DocCollection[T, PT]) UpdateFields(ctx context.Context, id string, fields Fields) (err error) {
	if len(fields) == 0 {
		return nil
	}
	done := observability.TrackStore(c.name, "update")
	defer func() { done(err) }()

	mods := make(docstore.Mods, len(fields))
	for k, v := range fields {
		mods[docstore.FieldPath(k)] = v
	}
	if err := c.coll.Update(ctx, c.keyed(id), mods); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			c.log.LogUpdate(ctx, zap.String("id", id), zap.Bool("matched", false))
			return nil
		}
		return c.fail(ctx, errors.Wrapf(err, "update %s %s", c.name, id), "update")
	}
	c.log.LogUpdate(ctx, zap.String("id", id), zap.Bool("matched", true))
	return nil
}

// Delete removes the document if it exists. The read and the delete are
// tied together by the document revision, so a concurrent delete of the same
// id makes exactly one caller see true. A concurrent write to the document
// between the read and the delete is retried up to maxRetries times; only a
// document that is gone reports false.
func (c *DocCollection[T, PT]) Delete(ctx context.Context, id string) (_ bool, err error) {
	done := observability.TrackStore(c.name, "delete")
	defer func() { done(err) }()

	for attempt := 0; ; attempt++ {
		doc := c.keyed(id)
		if err := c.coll.Get(ctx, doc); err != nil {
			if gcerrors.Code(err) == gcerrors.NotFound {
				return false, nil
			}
			return false, c.fail(ctx, errors.Wrapf(err, "delete %s %s", c.name, id), "delete")
		}

		err := c.coll.Delete(ctx, doc)
		switch {
		case err == nil:
			c.log.LogDelete(ctx, zap.String("id", id))
			return true, nil
		case gcerrors.Code(err) == gcerrors.NotFound:
			return false, nil
		case gcerrors.Code(err) == gcerrors.FailedPrecondition && attempt < c.maxRetries:
			observability.StoreConflictRetries.WithLabelValues(c.name).Inc()
			continue
		default:
			return false, c.fail(ctx, errors.Wrapf(err, "delete %s %s", c.name, id), "delete")
		}
	}
}

// FindOne runs an equality query limited to one result.
func (c *DocCollection[T, PT]) FindOne(ctx context.Context, field string, value interface{}) (_ *T, err error) {
	done := observability.TrackStore(c.name, "find_one")
	defer func() { done(err) }()

	iter := c.coll.Query().Where(docstore.FieldPath(field), "=", value).Limit(1).Get(ctx)
	defer iter.Stop()

	doc := PT(new(T))
	if err := iter.Next(ctx, doc); err != nil {
		if err == io.EOF {
			return nil, errors.Wrapf(ErrNotFound, "%s where %s", c.name, field)
		}
		return nil, c.fail(ctx, errors.Wrapf(err, "find %s by %s", c.name, field), "find_one")
	}
	c.log.LogRead(ctx, zap.String("field", field))
	return (*T)(doc), nil
}

// List reads the whole collection.
func (c *DocCollection[T, PT]) List(ctx context.Context) (_ []*T, err error) {
	done := observability.TrackStore(c.name, "list")
	defer func() { done(err) }()

	iter := c.coll.Query().Get(ctx)
	defer iter.Stop()

	var docs []PT
	for {
		doc := PT(new(T))
		err := iter.Next(ctx, doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, c.fail(ctx, errors.Wrapf(err, "list %s", c.name), "list")
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key() < docs[j].Key() })

	out := make([]*T, len(docs))
	for i, d := range docs {
		out[i] = (*T)(d)
	}
	c.log.LogRead(ctx, zap.Int("count", len(out)))
	return out, nil
}

// Push appends ref to field.
func (c *DocCollection[T, PT]) Push(ctx context.Context, id, field, ref string) error {
	return c.modifyRefs(ctx, "push", id, field, func(ids []string) ([]string, bool) {
		return append(ids, ref), true
	})
}

// AddToSet appends ref to field unless present.
func (c *DocCollection[T, PT]) AddToSet(ctx context.Context, id, field, ref string) error {
	return c.modifyRefs(ctx, "add_to_set", id, field, func(ids []string) ([]string, bool) {
		if model.Contains(ids, ref) {
			return ids, false
		}
		return append(ids, ref), true
	})
}

// Pull removes ref from field.
func (c *DocCollection[T, PT]) Pull(ctx context.Context, id, field, ref string) error {
	return c.modifyRefs(ctx, "pull", id, field, func(ids []string) ([]string, bool) {
		if !model.Contains(ids, ref) {
			return ids, false
		}
		return model.Pull(ids, ref), true
	})
}

// modifyRefs is a revision-checked read-modify-write of one array field.
// The update only lands if nobody wrote the document since the read; on a
// conflict the whole cycle is retried up to maxRetries times. fn reports
// whether anything changed so no-op updates skip the write.
func (c *DocCollection[T, PT]) modifyRefs(ctx context.Context, op, id, field string, fn func([]string) ([]string, bool)) (err error) {
	done := observability.TrackStore(c.name, op)
	defer func() { done(err) }()

	for attempt := 0; ; attempt++ {
		doc := c.keyed(id)
		if err := c.coll.Get(ctx, doc); err != nil {
			if gcerrors.Code(err) == gcerrors.NotFound {
				return errors.Wrapf(ErrNotFound, "%s %s", c.name, id)
			}
			return c.fail(ctx, errors.Wrapf(err, "%s %s %s", op, c.name, id), op)
		}

		current, ok := doc.Refs(field)
		if !ok {
			return errors.Errorf("%s has no reference array %q", c.name, field)
		}
		next, changed := fn(append([]string(nil), current...))
		if !changed {
			return nil
		}
		if next == nil {
			next = []string{}
		}

		err := c.coll.Update(ctx, doc, docstore.Mods{docstore.FieldPath(field): next})
		switch {
		case err == nil:
			c.log.LogUpdate(ctx, zap.String("id", id), zap.String("field", field), zap.String("op", op))
			return nil
		case gcerrors.Code(err) == gcerrors.NotFound:
			return errors.Wrapf(ErrNotFound, "%s %s", c.name, id)
		case gcerrors.Code(err) == gcerrors.FailedPrecondition && attempt < c.maxRetries:
			observability.StoreConflictRetries.WithLabelValues(c.name).Inc()
			continue
		default:
			return c.fail(ctx, errors.Wrapf(err, "%s %s %s", op, c.name, id), op)
		}
	}
}

var (
	_ Collection[model.User]    = (*DocCollection[model.User, *model.User])(nil)
	_ Collection[model.Post]    = (*DocCollection[model.Post, *model.Post])(nil)
	_ Collection[model.Comment] = (*DocCollection[model.Comment, *model.Comment])(nil)
)
