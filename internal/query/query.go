package query

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	apperrors "github.com/agenttrace/docstore/internal/pkg/errors"
)

// Parse messages
const (
	MsgEmptyQuery     = "Query string is empty."
	MsgMalformedQuery = "Malformed query string."
	MsgInvalidObject  = "Query object could not be encoded."
	MsgEmptyDocument  = "Document text is empty."
	MsgMalformedDoc   = "Malformed document."
)

// Parse converts a shell-syntax query string into a filter document
func Parse(s string) (bson.D, error) {
	return parse(s, MsgEmptyQuery, MsgMalformedQuery)
}

// ParseDocument converts shell-syntax or Extended JSON document text into a
// document ready to be stored
func ParseDocument(s string) (bson.D, error) {
	return parse(s, MsgEmptyDocument, MsgMalformedDoc)
}

func parse(s, emptyMsg, malformedMsg string) (bson.D, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, apperrors.Parse(emptyMsg, nil)
	}

	ext, err := normalize(s)
	if err != nil {
		return nil, apperrors.Parse(malformedMsg, err)
	}

	var d bson.D
	if err := bson.UnmarshalExtJSON([]byte(ext), false, &d); err != nil {
		return nil, apperrors.Parse(malformedMsg, err)
	}
	if d == nil {
		d = bson.D{}
	}
	return d, nil
}

// FromObject encodes a structured value into a filter document. Fields
// follow the value's bson tags; a nil value matches everything.
func FromObject(v any) (bson.D, error) {
	switch f := v.(type) {
	case nil:
		return bson.D{}, nil
	case bson.D:
		return f, nil
	}

	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, apperrors.Parse(MsgInvalidObject, err)
	}

	var filter bson.D
	if err := bson.Unmarshal(raw, &filter); err != nil {
		return nil, apperrors.Parse(MsgInvalidObject, err)
	}
	if filter == nil {
		filter = bson.D{}
	}
	return filter, nil
}

// EQ matches documents whose field equals value
func EQ(field string, value any) bson.D {
	return bson.D{{Key: field, Value: value}}
}

// ByID matches the document stored under id
func ByID(id any) bson.D {
	return EQ("_id", id)
}

// All matches every document
func All() bson.D {
	return bson.D{}
}
