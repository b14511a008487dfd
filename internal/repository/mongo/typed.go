package mongo

import (
	"context"
	"iter"

	"github.com/agenttrace/docstore/internal/domain"
	"github.com/agenttrace/docstore/internal/pkg/database"
	apperrors "github.com/agenttrace/docstore/internal/pkg/errors"
	"github.com/agenttrace/docstore/internal/query"
)

// The functions below read or write documents of a type other than the
// repository's entity. collection selects the collection on the repository's
// database; an empty name uses the repository's own collection, except for
// SaveAs which defaults to the pluralized name of D.

// FindOneAs returns the first match decoded as D, or nil when nothing matches
func FindOneAs[D any, T domain.Entity](ctx context.Context, r *DocumentRepository[T], collection string, filter any) (*D, error) {
	return findOne[D](ctx, r, r.collection(collection), filter)
}

// FindAs returns the matches decoded as D
func FindAs[D any, T domain.Entity](ctx context.Context, r *DocumentRepository[T], collection string, filter any, page Page) iter.Seq2[*D, error] {
	return find[D](ctx, r, r.collection(collection), filter, page)
}

// FindAllAs returns every document of the collection decoded as D
func FindAllAs[D any, T domain.Entity](ctx context.Context, r *DocumentRepository[T], collection string) iter.Seq2[*D, error] {
	return FindAs[D](ctx, r, collection, query.All(), All)
}

// FindOneFromStringAs returns the first match of a shell-syntax query decoded as D
func FindOneFromStringAs[D any, T domain.Entity](ctx context.Context, r *DocumentRepository[T], collection string, q string) (*D, error) {
	filter, err := query.Parse(q)
	if err != nil {
		return nil, err
	}
	return FindOneAs[D](ctx, r, collection, filter)
}

// FindFromStringAs returns the matches of a shell-syntax query decoded as D
func FindFromStringAs[D any, T domain.Entity](ctx context.Context, r *DocumentRepository[T], collection string, q string, page Page) (iter.Seq2[*D, error], error) {
	filter, err := query.Parse(q)
	if err != nil {
		return nil, err
	}
	return FindAs[D](ctx, r, collection, filter, page), nil
}

// FindFromObjectAs returns the matches of a structured query decoded as D
func FindFromObjectAs[D any, T domain.Entity](ctx context.Context, r *DocumentRepository[T], collection string, obj any, page Page) (iter.Seq2[*D, error], error) {
	filter, err := query.FromObject(obj)
	if err != nil {
		return nil, err
	}
	return FindAs[D](ctx, r, collection, filter, page), nil
}

// SaveAs stores doc without validation or lifecycle hooks. A missing id is
// generated when D implements domain.IDSetter and cleared again if the
// store rejects the write.
func SaveAs[D domain.Entity, T domain.Entity](ctx context.Context, r *DocumentRepository[T], collection string, doc *D) error {
	if doc == nil {
		return apperrors.Validation(MsgNoEntityToSave)
	}
	if collection == "" {
		collection = CollectionNameFor[D]()
	}
	restore, err := ensureID(doc, r.GenerateID)
	if err != nil {
		return err
	}

	key := keyOf(any(doc), (*doc).GetID())
	if err := r.collection(collection).Save(ctx, key, doc); err != nil {
		restore()
		return r.driverError(database.OpSave, err)
	}
	return nil
}
