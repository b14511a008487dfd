package domain

import "context"

// IDField is the document field holding the primary key
const IDField = "_id"

// Entity is a stored record with a string identifier
type Entity interface {
	GetID() string
}

// IDSetter is implemented by entities that accept a generated identifier
// when saved without one
type IDSetter interface {
	SetID(id string)
}

// Keyed is implemented by entities whose _id is not a plain string (an
// ObjectID or a number). Key returns the raw value used in id filters.
type Keyed interface {
	Key() any
}

// BeforeSaver runs before a full save. A non-nil error aborts the save.
type BeforeSaver interface {
	BeforeSave(ctx context.Context) error
}

// AfterSaver runs after a successful full save
type AfterSaver interface {
	AfterSave(ctx context.Context)
}

// SaveResult reports the outcome of a raw document save
type SaveResult struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
