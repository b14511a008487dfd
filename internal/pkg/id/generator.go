package id

import (
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectIDLength is the length of an ObjectID hex string (12 bytes)
const ObjectIDLength = 24

// NewObjectID generates a new ObjectID and returns its hex form. ObjectIDs
// embed a timestamp, a per-process random value and a counter, so two calls
// never return the same string.
func NewObjectID() string {
	return primitive.NewObjectID().Hex()
}

// ValidateObjectID validates an ObjectID hex string
func ValidateObjectID(id string) bool {
	if len(id) != ObjectIDLength {
		return false
	}
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// ParseObjectID parses an ObjectID hex string
func ParseObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}

// NewUUID generates a new UUID v4
func NewUUID() string {
	return uuid.New().String()
}

// ValidateUUID validates a UUID format
func ValidateUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ParseUUID parses and validates a UUID string
func ParseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
