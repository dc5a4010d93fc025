package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore handles group, session and chat record CRUD in MongoDB.
// Collection names mirror the mobile app's original schema.
type MongoStore struct {
	groups   *mongo.Collection
	sessions *mongo.Collection
	messages *mongo.Collection
	files    *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		groups:   db.Collection("Groups"),
		sessions: db.Collection("Sessions"),
		messages: db.Collection("Messages"),
		files:    db.Collection("Files"),
	}
}

// objectID parses a hex record id. An unparseable id cannot refer to any
// stored record, so it maps to ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func mapMongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
