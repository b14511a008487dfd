package database

import (
	"context"
	"errors"
)

// ErrNoDocuments is returned by DocumentCollection.FindOne when nothing matches
var ErrNoDocuments = errors.New("no documents in result")

// Operation names used for metrics and logs
const (
	OpFindOne          = "find_one"
	OpFind             = "find"
	OpSave             = "save"
	OpRemove           = "remove"
	OpCollectionExists = "collection_exists"
	OpCreateCollection = "create_collection"
)

// FindOptions narrows a multi-document find. Zero values leave the
// corresponding option unset.
type FindOptions struct {
	Skip  int64
	Limit int64
}

// Cursor iterates over the documents returned by a find
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(out any) error
	Err() error
	Close(ctx context.Context) error
}

// DocumentCollection is a named collection of documents
type DocumentCollection interface {
	Name() string
	// FindOne decodes the first match into out. It returns ErrNoDocuments
	// when the filter matches nothing.
	FindOne(ctx context.Context, filter any, out any) error
	Find(ctx context.Context, filter any, opts FindOptions) (Cursor, error)
	// Save replaces the document stored under id, inserting it when absent.
	Save(ctx context.Context, id any, doc any) error
	// Remove deletes every document matching filter and reports how many
	// were removed.
	Remove(ctx context.Context, filter any) (int64, error)
}

// DocumentDatabase is a named database holding collections
type DocumentDatabase interface {
	Name() string
	CollectionExists(ctx context.Context, name string) (bool, error)
	// CreateCollection creates name. Creating an existing collection is not
	// an error.
	CreateCollection(ctx context.Context, name string) error
	Collection(name string) DocumentCollection
}
