package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/agenttrace/docstore/internal/domain"
	"github.com/agenttrace/docstore/internal/pkg/database"
	apperrors "github.com/agenttrace/docstore/internal/pkg/errors"
	"github.com/agenttrace/docstore/internal/query"
)

// Documents are rendered as relaxed Extended JSON (v2). Field order is kept
// as stored.

// FindOneJSON returns the first match as JSON, or "null" when nothing matches
func (r *DocumentRepository[T]) FindOneJSON(ctx context.Context, filter any) (string, error) {
	var raw bson.Raw
	if err := r.coll.FindOne(ctx, filter, &raw); err != nil {
		if errors.Is(err, database.ErrNoDocuments) {
			return "null", nil
		}
		return "", r.driverError(database.OpFindOne, err)
	}
	return r.toJSON(raw)
}

// FindJSON returns the matches as a JSON array
func (r *DocumentRepository[T]) FindJSON(ctx context.Context, filter any, page Page) (string, error) {
	var b strings.Builder
	b.WriteByte('[')
	n := 0
	for raw, err := range find[bson.Raw](ctx, r, r.coll, filter, page) {
		if err != nil {
			return "", err
		}
		doc, err := r.toJSON(*raw)
		if err != nil {
			return "", err
		}
		if n > 0 {
			b.WriteByte(',')
		}
		b.WriteString(doc)
		n++
	}
	b.WriteByte(']')
	return b.String(), nil
}

// LoadJSON returns the document stored under the string id as JSON
func (r *DocumentRepository[T]) LoadJSON(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", apperrors.Validation(MsgNoIDPassed)
	}
	doc, err := r.FindOneJSON(ctx, query.ByID(id))
	if err != nil {
		return "", err
	}
	if doc == "null" {
		return "", apperrors.NoMatch()
	}
	return doc, nil
}

// SaveFromJSON stores a document given as JSON or shell-syntax text. A
// document without _id, or with a null _id, receives a generated ObjectID
// hex string.
func (r *DocumentRepository[T]) SaveFromJSON(ctx context.Context, text string) (*domain.SaveResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation(MsgNoEntityToSave)
	}

	doc, err := query.ParseDocument(text)
	if err != nil {
		return nil, err
	}

	var key any
	switch i := indexID(doc); {
	case i < 0:
		key = r.GenerateID()
		doc = append(bson.D{{Key: domain.IDField, Value: key}}, doc...)
	case doc[i].Value == nil:
		key = r.GenerateID()
		doc[i].Value = key
	default:
		key = doc[i].Value
	}

	if err := r.coll.Save(ctx, key, doc); err != nil {
		return nil, r.driverError(database.OpSave, err)
	}

	return &domain.SaveResult{ID: domain.IDString(key), OK: true}, nil
}

func (r *DocumentRepository[T]) toJSON(raw bson.Raw) (string, error) {
	out, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return "", apperrors.Internal("document could not be rendered as JSON").WithError(err)
	}
	return string(out), nil
}

// indexID returns the position of the _id element, or -1
func indexID(doc bson.D) int {
	for i, e := range doc {
		if e.Key == domain.IDField {
			return i
		}
	}
	return -1
}
