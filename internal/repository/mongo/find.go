package mongo

import (
	"context"
	"errors"
	"iter"

	"github.com/agenttrace/docstore/internal/domain"
	"github.com/agenttrace/docstore/internal/pkg/database"
	apperrors "github.com/agenttrace/docstore/internal/pkg/errors"
	"github.com/agenttrace/docstore/internal/query"
)

// Page limits a multi-document find. Values of zero or less are unset.
type Page struct {
	Skip  int64
	Limit int64
}

// All leaves skip and limit unset
var All = Page{}

func (p Page) options() database.FindOptions {
	return database.FindOptions{Skip: max(p.Skip, 0), Limit: max(p.Limit, 0)}
}

// FindOne returns the first entity matching filter, or nil when nothing
// matches
func (r *DocumentRepository[T]) FindOne(ctx context.Context, filter any) (*T, error) {
	return findOne[T](ctx, r, r.coll, filter)
}

// Find returns the entities matching filter. The sequence runs the query
// each time it is ranged over.
func (r *DocumentRepository[T]) Find(ctx context.Context, filter any, page Page) iter.Seq2[*T, error] {
	return find[T](ctx, r, r.coll, filter, page)
}

// FindAll returns every entity in the collection
func (r *DocumentRepository[T]) FindAll(ctx context.Context) iter.Seq2[*T, error] {
	return r.Find(ctx, query.All(), All)
}

// FindOneFromString returns the first entity matching a shell-syntax query
func (r *DocumentRepository[T]) FindOneFromString(ctx context.Context, q string) (*T, error) {
	filter, err := query.Parse(q)
	if err != nil {
		return nil, err
	}
	return r.FindOne(ctx, filter)
}

// FindFromString returns the entities matching a shell-syntax query. A
// malformed query is reported before any iteration.
func (r *DocumentRepository[T]) FindFromString(ctx context.Context, q string, page Page) (iter.Seq2[*T, error], error) {
	filter, err := query.Parse(q)
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, filter, page), nil
}

// FindFromObject returns the entities matching the fields of obj
func (r *DocumentRepository[T]) FindFromObject(ctx context.Context, obj any, page Page) (iter.Seq2[*T, error], error) {
	filter, err := query.FromObject(obj)
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, filter, page), nil
}

// Load returns the entity stored under the string id
func (r *DocumentRepository[T]) Load(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, apperrors.Validation(MsgNoIDPassed)
	}
	return r.LoadByKey(ctx, id)
}

// LoadByKey returns the entity whose _id equals key. Use it for ObjectID or
// numeric identifiers.
func (r *DocumentRepository[T]) LoadByKey(ctx context.Context, key any) (*T, error) {
	if key == nil {
		return nil, apperrors.Validation(MsgNoIDPassed)
	}
	entity, err := r.FindOne(ctx, query.ByID(key))
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, apperrors.NoMatch()
	}
	return entity, nil
}

// Collect drains seq into a slice, stopping at the first error
func Collect[D any](seq iter.Seq2[*D, error]) ([]*D, error) {
	var out []*D
	for doc, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func findOne[D any, T domain.Entity](ctx context.Context, r *DocumentRepository[T], coll database.DocumentCollection, filter any) (*D, error) {
	doc := new(D)
	if err := coll.FindOne(ctx, filter, doc); err != nil {
		if errors.Is(err, database.ErrNoDocuments) {
			return nil, nil
		}
		return nil, r.driverError(database.OpFindOne, err)
	}
	return doc, nil
}

func find[D any, T domain.Entity](ctx context.Context, r *DocumentRepository[T], coll database.DocumentCollection, filter any, page Page) iter.Seq2[*D, error] {
	return func(yield func(*D, error) bool) {
		cur, err := coll.Find(ctx, filter, page.options())
		if err != nil {
			yield(nil, r.driverError(database.OpFind, err))
			return
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			doc := new(D)
			if err := cur.Decode(doc); err != nil {
				yield(nil, r.driverError(database.OpFind, err))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(nil, r.driverError(database.OpFind, err))
		}
	}
}
