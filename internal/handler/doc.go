// Package handler contains the HTTP handlers of the docstore API.
//
// Handlers parse path and query parameters, call a DocumentRepository and
// write its JSON output unchanged. Repository errors are mapped to HTTP
// status codes through the apperrors taxonomy:
//   - NOT_FOUND: 404
//   - VALIDATION_ERROR and PARSE_ERROR: 400
//   - DRIVER_ERROR: 500
//
// # Route Organization
//
//   - /v1/collections/:collection/documents - document CRUD
//   - /v1/ids - identifier generation
//   - /health, /livez, /readyz, /version - probes
//
// All handlers are safe for concurrent use.
package handler
