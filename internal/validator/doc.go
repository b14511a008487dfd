// Package validator provides struct validation for docstore.
//
// This package wraps go-playground/validator to provide:
//   - Entity validation for repositories opened with auto validation
//   - Collection name and identifier checks for the HTTP and CLI surfaces
//   - Human-readable error messages
//
// # Usage
//
//	if err := validator.Validate(user); err != nil {
//	    // err is a validator.ValidationErrors
//	}
//
// # Custom Validations
//
// The "collection" and "objectid" tags are registered in init(). The
// validator instance is package-level and thread-safe.
package validator
