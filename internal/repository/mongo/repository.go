package mongo

import (
	"context"
	"reflect"

	"github.com/gertd/go-pluralize"
	"go.uber.org/zap"

	"github.com/agenttrace/docstore/internal/domain"
	"github.com/agenttrace/docstore/internal/pkg/database"
	apperrors "github.com/agenttrace/docstore/internal/pkg/errors"
	"github.com/agenttrace/docstore/internal/pkg/id"
	"github.com/agenttrace/docstore/internal/pkg/logger"
	"github.com/agenttrace/docstore/internal/validator"
)

// Error messages returned to callers
const (
	MsgNoEntity        = "Entity has to be passed in."
	MsgNoEntityToSave  = "No entity to save passed."
	MsgNoID            = "Entity has no identifier."
	MsgNoIDPassed      = "No id passed."
	MsgInvalidCollName = "Invalid collection name."
)

var pluralizer = pluralize.NewClient()

// CollectionNameFor returns the default collection name for T: the
// pluralized name of its type.
func CollectionNameFor[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return pluralizer.Plural(t.Name())
}

// DocumentRepository stores entities of type T in one collection.
// It is immutable once created and safe for concurrent use.
type DocumentRepository[T domain.Entity] struct {
	db           database.DocumentDatabase
	coll         database.DocumentCollection
	autoValidate bool
	base         *zap.Logger
	log          *zap.Logger
}

// NewDocumentRepository opens a repository for T on db. The collection is
// created when it does not exist yet.
func NewDocumentRepository[T domain.Entity](ctx context.Context, db database.DocumentDatabase, opts ...Option) (*DocumentRepository[T], error) {
	o := options{log: logger.L()}
	for _, opt := range opts {
		opt(&o)
	}

	name := o.collection
	if name == "" {
		name = CollectionNameFor[T]()
	}
	if err := validator.ValidateCollectionName(name); err != nil {
		return nil, apperrors.Validation(MsgInvalidCollName).WithDetail("collection", name)
	}

	r := &DocumentRepository[T]{
		db:           db,
		autoValidate: o.autoValidate,
		base:         o.log,
	}
	r.bind(name)

	exists, err := db.CollectionExists(ctx, name)
	if err != nil {
		return nil, r.driverError("open", err)
	}
	if !exists {
		if err := db.CreateCollection(ctx, name); err != nil {
			return nil, r.driverError("open", err)
		}
		r.log.Info("created collection")
	}

	return r, nil
}

func (r *DocumentRepository[T]) bind(name string) {
	r.coll = r.db.Collection(name)
	r.log = r.base.With(zap.String("database", r.db.Name()), zap.String("collection", name))
}

// In returns a copy of the repository bound to another collection of the same
// database. An empty name returns r.
func (r *DocumentRepository[T]) In(name string) *DocumentRepository[T] {
	if name == "" || name == r.coll.Name() {
		return r
	}
	cp := *r
	cp.bind(name)
	return &cp
}

// Name returns the bound collection name
func (r *DocumentRepository[T]) Name() string {
	return r.coll.Name()
}

// Database returns the database the repository was opened on
func (r *DocumentRepository[T]) Database() database.DocumentDatabase {
	return r.db
}

// Collection returns the bound collection
func (r *DocumentRepository[T]) Collection() database.DocumentCollection {
	return r.coll
}

// GenerateID returns a new ObjectID as a hex string
func (r *DocumentRepository[T]) GenerateID() string {
	return id.NewObjectID()
}

// collection resolves an optional collection name against the bound one
func (r *DocumentRepository[T]) collection(name string) database.DocumentCollection {
	if name == "" || name == r.coll.Name() {
		return r.coll
	}
	return r.db.Collection(name)
}

func (r *DocumentRepository[T]) driverError(operation string, err error) error {
	r.log.Warn("document store operation failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
	return apperrors.Driver(err)
}

// keyOf returns the raw _id value of an entity
func keyOf(entity any, fallback string) any {
	if k, ok := entity.(domain.Keyed); ok {
		if key := k.Key(); key != nil {
			return key
		}
	}
	return fallback
}
