// Package id provides identifier generation for docstore.
//
// This package generates:
//   - MongoDB ObjectID hex strings (24 hex characters), the default document id
//   - UUID v4 identifiers, used for request IDs
//
// Every call returns a fresh identifier. All functions are safe for concurrent
// use.
//
// # Validation
//
//	if !id.ValidateObjectID(docID) {
//	    return errors.New("invalid object id")
//	}
package id
