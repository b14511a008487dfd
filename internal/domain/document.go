package domain

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a schemaless entity. It is used where the collection layout is
// not known ahead of time, such as the HTTP and CLI surfaces.
type Document bson.M

// GetID returns the document's _id rendered as a string
func (d Document) GetID() string {
	return IDString(d[IDField])
}

// SetID sets _id to a string identifier
func (d *Document) SetID(id string) {
	if *d == nil {
		*d = Document{}
	}
	(*d)[IDField] = id
}

// Key returns the raw _id value
func (d Document) Key() any {
	return d[IDField]
}

// IDString renders an _id value as a string. ObjectIDs use their hex form.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
