package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a chat message scoped to a group.
type Message struct {
	ID        primitive.ObjectID `json:"id"        bson:"_id,omitempty"`
	GroupID   string             `json:"groupId"   bson:"groupId"`
	SenderID  string             `json:"senderId"  bson:"senderId"`
	Content   string             `json:"content"   bson:"content"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// File is a chat attachment record; the bytes themselves live in the blob
// store under ObjectKey.
type File struct {
	ID          primitive.ObjectID `json:"id"          bson:"_id,omitempty"`
	GroupID     string             `json:"groupId"     bson:"groupId"`
	SenderID    string             `json:"senderId"    bson:"senderId"`
	FileName    string             `json:"fileName"    bson:"fileName"`
	ContentType string             `json:"contentType" bson:"contentType"`
	ObjectKey   string             `json:"-"           bson:"objectKey"`
	Timestamp   time.Time          `json:"timestamp"   bson:"timestamp"`
}
