// Package store is the typed facade over the three document collections.
//
// Each collection is a gocloud.dev/docstore collection keyed by the document
// id. Every call is atomic for a single document only: there are no
// multi-document transactions, and callers that touch several collections
// must order their writes themselves.
package store

import (
	"context"

	"github.com/anujdecoder/postgraph/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocloud.dev/docstore"
	"gocloud.dev/docstore/memdocstore"

	// Registers the mongo:// URL scheme.
	_ "gocloud.dev/docstore/mongodocstore"
)

// ErrNotFound is returned by lookups when no document matches.
var ErrNotFound = errors.New("document not found")

// Collection names, also used as metric and log labels.
const (
	UsersCollection    = "users"
	PostsCollection    = "posts"
	CommentsCollection = "comments"
)

// Fields is a partial document: field name to new value.
type Fields map[string]interface{}

// Collection is the contract of one typed collection.
type Collection[T any] interface {
	// Get returns ErrNotFound when no document has the id.
	Get(ctx context.Context, id string) (*T, error)
	// GetMany returns the documents that exist among ids, in no particular
	// order. Missing ids are omitted without error.
	GetMany(ctx context.Context, ids []string) ([]*T, error)
	// Insert assigns a fresh id to doc, creates it and returns the id.
	Insert(ctx context.Context, doc *T) (string, error)
	// UpdateFields replaces the named fields. It is a no-op when the document
	// does not exist.
	UpdateFields(ctx context.Context, id string, fields Fields) error
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// FindOne returns the first document whose field equals value.
	FindOne(ctx context.Context, field string, value interface{}) (*T, error)
	// List returns every document ordered by id.
	List(ctx context.Context) ([]*T, error)

	// Push appends ref to the array field.
	Push(ctx context.Context, id, field, ref string) error
	// AddToSet appends ref to the array field unless already present.
	AddToSet(ctx context.Context, id, field, ref string) error
	// Pull removes every occurrence of ref from the array field.
	Pull(ctx context.Context, id, field, ref string) error
}

// Entities bundles the three collections a request works against.
type Entities struct {
	Users    Collection[model.User]
	Posts    Collection[model.Post]
	Comments Collection[model.Comment]

	closers []*docstore.Collection
}

// URLs locates the three collections, e.g. "mem://users/id" or
// "mongo://postgraph/users?id_field=id".
type URLs struct {
	Users    string `mapstructure:"users_url"`
	Posts    string `mapstructure:"posts_url"`
	Comments string `mapstructure:"comments_url"`
}

// Open opens the three collections from gocloud URLs. The connection is held
// until Close.
func Open(ctx context.Context, urls URLs, opts ...Option) (*Entities, error) {
	e := &Entities{}
	open := func(name, url string) (*docstore.Collection, error) {
		coll, err := docstore.OpenCollection(ctx, url)
		if err != nil {
			_ = e.Close()
			return nil, errors.Wrapf(err, "open %s collection", name)
		}
		e.closers = append(e.closers, coll)
		return coll, nil
	}

	users, err := open(UsersCollection, urls.Users)
	if err != nil {
		return nil, err
	}
	posts, err := open(PostsCollection, urls.Posts)
	if err != nil {
		return nil, err
	}
	comments, err := open(CommentsCollection, urls.Comments)
	if err != nil {
		return nil, err
	}

	e.Users = NewCollection[model.User](UsersCollection, users, opts...)
	e.Posts = NewCollection[model.Post](PostsCollection, posts, opts...)
	e.Comments = NewCollection[model.Comment](CommentsCollection, comments, opts...)
	return e, nil
}

// OpenMem returns Entities backed by fresh, private in-memory collections.
func OpenMem(opts ...Option) (*Entities, error) {
	e := &Entities{}
	colls := make([]*docstore.Collection, 0, 3)
	for range 3 {
		coll, err := memdocstore.OpenCollection(model.FieldID, nil)
		if err != nil {
			_ = e.Close()
			return nil, errors.Wrap(err, "open memory collection")
		}
		colls = append(colls, coll)
		e.closers = append(e.closers, coll)
	}

	e.Users = NewCollection[model.User](UsersCollection, colls[0], opts...)
	e.Posts = NewCollection[model.Post](PostsCollection, colls[1], opts...)
	e.Comments = NewCollection[model.Comment](CommentsCollection, colls[2], opts...)
	return e, nil
}

// Close releases the underlying collections.
func (e *Entities) Close() error {
	var first error
	for _, c := range e.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}

// Option configures a collection.
type Option func(*options)

type options struct {
	logger             *zap.Logger
	maxConflictRetries int
}

// WithLogger sets the logger used for per-operation debug logs.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxConflictRetries bounds how many times an array update is retried
// after losing a revision race to a concurrent writer.
func WithMaxConflictRetries(n int) Option {
	return func(o *options) { o.maxConflictRetries = n }
}
