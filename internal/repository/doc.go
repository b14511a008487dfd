// Package repository contains data access implementations for docstore.
//
// Repositories bind an entity type to a collection and provide persistence
// operations for it, delegating query execution to the document store.
//
// # Packages
//
//   - mongo: the generic DocumentRepository over a database.DocumentDatabase
//
// # Opening a repository
//
//	users, err := mongo.NewDocumentRepository[User](ctx, db.Database(""))
//	if err != nil {
//	    return err
//	}
//	u, err := users.Load(ctx, "64b7f0c2e13f4a2b9c0d1e2f")
//
// The collection defaults to the pluralized entity type name and is created
// when missing. Use In to address another collection of the same database.
//
// # Errors
//
// Operations return *errors.AppError values from internal/pkg/errors:
// NOT_FOUND for id lookups without a match, VALIDATION_ERROR for missing
// entities or identifiers, PARSE_ERROR for malformed query text, and
// DRIVER_ERROR for document store failures.
//
// # Thread Safety
//
// Repositories are immutable after creation and safe for concurrent use.
// Connection pools are managed by the driver.
package repository
