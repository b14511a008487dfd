// Package errors provides application error types for docstore.
//
// This package defines:
//   - AppError type with error classification
//   - Error constructors for common error types
//   - Error type checking helpers
//   - HTTP status code mapping
//   - State, a last-error holder for callers that want it
//
// # Error Types
//
//   - NotFound: No document matched (404)
//   - Validation: Missing or malformed caller input (400)
//   - Driver: The document store reported a failure (500)
//   - Parse: A query or document string could not be parsed (400)
//
// # Usage
//
// Create errors using constructor functions:
//
//	return apperrors.NoMatch()
//	return apperrors.Validation("Entity has to be passed in.")
//
// Check error types:
//
//	if apperrors.IsNotFound(err) {
//	    // Handle not found
//	}
//
// # Error Wrapping
//
// Errors support wrapping with fmt.Errorf:
//
//	return fmt.Errorf("load failed: %w", apperrors.NoMatch())
package errors
