package mongo

import (
	"context"
	"fmt"

	"github.com/agenttrace/docstore/internal/domain"
	"github.com/agenttrace/docstore/internal/pkg/database"
	apperrors "github.com/agenttrace/docstore/internal/pkg/errors"
	"github.com/agenttrace/docstore/internal/query"
	"github.com/agenttrace/docstore/internal/validator"
)

// Save inserts entity or replaces the stored document with the same id.
//
// An entity without an id receives a generated one when it implements
// domain.IDSetter. BeforeSave runs first and can abort the save; struct
// validation follows when the repository was opened with auto validation,
// and AfterSave runs once the document is stored. A generated id is cleared
// again when the save fails.
func (r *DocumentRepository[T]) Save(ctx context.Context, entity *T) error {
	if entity == nil {
		return apperrors.Validation(MsgNoEntity)
	}

	restore, err := ensureID(entity, r.GenerateID)
	if err != nil {
		return err
	}

	if hook, ok := any(entity).(domain.BeforeSaver); ok {
		if err := hook.BeforeSave(ctx); err != nil {
			restore()
			return fmt.Errorf("before save: %w", err)
		}
	}

	if r.autoValidate {
		if err := validator.ValidateEntity(entity); err != nil {
			restore()
			return apperrors.Validation(err.Error()).WithError(err)
		}
	}

	key := keyOf(any(entity), (*entity).GetID())
	if err := r.coll.Save(ctx, key, entity); err != nil {
		restore()
		return r.driverError(database.OpSave, err)
	}

	if hook, ok := any(entity).(domain.AfterSaver); ok {
		hook.AfterSave(ctx)
	}
	return nil
}

// Delete removes the stored copy of entity. A nil entity is a no-op.
func (r *DocumentRepository[T]) Delete(ctx context.Context, entity *T) error {
	if entity == nil {
		return nil
	}
	id := (*entity).GetID()
	if id == "" {
		return apperrors.Validation(MsgNoID)
	}
	return r.DeleteByKey(ctx, keyOf(any(entity), id))
}

// DeleteByID removes the document stored under the string id. Deleting a
// missing document succeeds.
func (r *DocumentRepository[T]) DeleteByID(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.Validation(MsgNoIDPassed)
	}
	return r.DeleteByKey(ctx, id)
}

// DeleteByKey removes the document whose _id equals key
func (r *DocumentRepository[T]) DeleteByKey(ctx context.Context, key any) error {
	if key == nil {
		return apperrors.Validation(MsgNoIDPassed)
	}
	n, err := r.coll.Remove(ctx, query.ByID(key))
	if err != nil {
		return r.driverError(database.OpRemove, err)
	}
	if n == 0 {
		r.log.Debug("delete matched no document")
	}
	return nil
}

// ensureID assigns a generated id to entities saved without one. The
// returned restore func clears an id assigned here and is a no-op otherwise.
func ensureID[D domain.Entity](entity *D, generate func() string) (restore func(), err error) {
	if (*entity).GetID() != "" {
		return func() {}, nil
	}
	setter, ok := any(entity).(domain.IDSetter)
	if !ok {
		return nil, apperrors.Validation(MsgNoID)
	}
	setter.SetID(generate())
	return func() { setter.SetID("") }, nil
}
