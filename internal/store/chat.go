package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/models"
)

func (s *MongoStore) InsertMessage(ctx context.Context, m *models.Message) error {
	m.Timestamp = time.Now()
	res, err := s.messages.InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("mongo insert message: %w", err)
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// MessagesByGroup returns a group's messages oldest first.
func (s *MongoStore) MessagesByGroup(ctx context.Context, groupID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := s.messages.Find(ctx, bson.M{"groupId": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *MongoStore) DeleteMessagesByGroup(ctx context.Context, groupID string) error {
	_, err := s.messages.DeleteMany(ctx, bson.M{"groupId": groupID})
	return err
}

func (s *MongoStore) InsertFile(ctx context.Context, f *models.File) error {
	f.Timestamp = time.Now()
	res, err := s.files.InsertOne(ctx, f)
	if err != nil {
		return fmt.Errorf("mongo insert file: %w", err)
	}
	f.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) FileByID(ctx context.Context, id string) (*models.File, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var f models.File
	if err := s.files.FindOne(ctx, bson.M{"_id": oid}).Decode(&f); err != nil {
		return nil, mapMongoErr(err)
	}
	return &f, nil
}

// FilesByGroup returns a group's attachment records oldest first.
func (s *MongoStore) FilesByGroup(ctx context.Context, groupID string) ([]models.File, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := s.files.Find(ctx, bson.M{"groupId": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var files []models.File
	if err := cur.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *MongoStore) DeleteFilesByGroup(ctx context.Context, groupID string) error {
	_, err := s.files.DeleteMany(ctx, bson.M{"groupId": groupID})
	return err
}
