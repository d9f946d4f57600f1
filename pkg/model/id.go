package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a 24 character hex object id. Every store uses this format.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
