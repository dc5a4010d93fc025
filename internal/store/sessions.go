package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/models"
)

// InsertSession persists a new session, populating its ID.
func (s *MongoStore) InsertSession(ctx context.Context, sess *models.Session) error {
	res, err := s.sessions.InsertOne(ctx, sess)
	if err != nil {
		return fmt.Errorf("mongo insert session: %w", err)
	}
	sess.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) SessionByID(ctx context.Context, id string) (*models.Session, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var sess models.Session
	if err := s.sessions.FindOne(ctx, bson.M{"_id": oid}).Decode(&sess); err != nil {
		return nil, mapMongoErr(err)
	}
	return &sess, nil
}

// SessionsByGroup returns every session scheduled for the given group.
func (s *MongoStore) SessionsByGroup(ctx context.Context, groupID string) ([]models.Session, error) {
	cur, err := s.sessions.Find(ctx, bson.M{"groupId": groupID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sessions []models.Session
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateSession replaces a session's schedulable fields in place and returns
// the updated record.
func (s *MongoStore) UpdateSession(ctx context.Context, id string, sess *models.Session) (*models.Session, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{
		"name":      sess.Name,
		"startDate": sess.StartDate,
		"endDate":   sess.EndDate,
		"startTime": sess.StartTime,
		"endTime":   sess.EndTime,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Session
	if err := s.sessions.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated); err != nil {
		return nil, mapMongoErr(err)
	}
	return &updated, nil
}

// AcceptSession records that username confirmed attendance, at most once.
func (s *MongoStore) AcceptSession(ctx context.Context, id, username string) (*models.Session, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Session
	err = s.sessions.FindOneAndUpdate(ctx, bson.M{"_id": oid},
		bson.M{"$addToSet": bson.M{"acceptedBy": username}}, opts).Decode(&updated)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &updated, nil
}

func (s *MongoStore) DeleteSession(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.sessions.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSessionsByGroup removes all sessions of a group (cascade on group
// deletion).
func (s *MongoStore) DeleteSessionsByGroup(ctx context.Context, groupID string) error {
	_, err := s.sessions.DeleteMany(ctx, bson.M{"groupId": groupID})
	return err
}
