package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh 24 hex character object id. The SQL and memory
// stores use the same format so ids are interchangeable between backends.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well formed object id.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
