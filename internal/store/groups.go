package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/models"
)

// InsertGroup persists a new group, populating ID, CreatedAt and LastUpdated.
func (s *MongoStore) InsertGroup(ctx context.Context, g *models.Group) error {
	now := time.Now()
	g.CreatedAt = now
	g.LastUpdated = now
	res, err := s.groups.InsertOne(ctx, g)
	if err != nil {
		return fmt.Errorf("mongo insert group: %w", err)
	}
	g.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) GroupByID(ctx context.Context, id string) (*models.Group, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findGroup(ctx, bson.M{"_id": oid})
}

// GroupByName matches the name exactly, case-sensitively.
func (s *MongoStore) GroupByName(ctx context.Context, name string) (*models.Group, error) {
	return s.findGroup(ctx, bson.M{"name": name})
}

// GroupByToken looks a group up by its current QR invite token.
func (s *MongoStore) GroupByToken(ctx context.Context, token string) (*models.Group, error) {
	return s.findGroup(ctx, bson.M{"qrToken": token})
}

func (s *MongoStore) findGroup(ctx context.Context, filter bson.M) (*models.Group, error) {
	var g models.Group
	if err := s.groups.FindOne(ctx, filter).Decode(&g); err != nil {
		return nil, mapMongoErr(err)
	}
	return &g, nil
}

func (s *MongoStore) GroupsByCreator(ctx context.Context, username string) ([]models.Group, error) {
	return s.findGroups(ctx, bson.M{"creator": username})
}

func (s *MongoStore) GroupsByMember(ctx context.Context, username string) ([]models.Group, error) {
	return s.findGroups(ctx, bson.M{"members": username})
}

// SearchPublic returns all Public groups whose name, any subject tag or city
// contains query as a case-insensitive substring. An empty query matches
// every Public group.
func (s *MongoStore) SearchPublic(ctx context.Context, query string) ([]models.Group, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return s.findGroups(ctx, bson.M{
		"privacy": models.PrivacyPublic,
		"$or": bson.A{
			bson.M{"name": pattern},
			bson.M{"subject": pattern},
			bson.M{"city": pattern},
		},
	})
}

func (s *MongoStore) findGroups(ctx context.Context, filter bson.M) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.groups.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// updateGroup applies update to a group and returns the post-update document.
func (s *MongoStore) updateGroup(ctx context.Context, id string, update bson.M) (*models.Group, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	if set, ok := update["$set"].(bson.M); ok {
		set["lastUpdated"] = time.Now()
	} else {
		update["$set"] = bson.M{"lastUpdated": time.Now()}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var g models.Group
	if err := s.groups.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&g); err != nil {
		return nil, mapMongoErr(err)
	}
	return &g, nil
}

// AddRequest appends username to the group's pending requests, at most once.
func (s *MongoStore) AddRequest(ctx context.Context, id, username string) (*models.Group, error) {
	return s.updateGroup(ctx, id, bson.M{"$addToSet": bson.M{"requests": username}})
}

// AcceptRequest moves username from requests to members in a single atomic
// update: afterwards the name is in members and not in requests.
func (s *MongoStore) AcceptRequest(ctx context.Context, id, username string) (*models.Group, error) {
	return s.updateGroup(ctx, id, bson.M{
		"$addToSet": bson.M{"members": username},
		"$pull":     bson.M{"requests": username},
	})
}

// RemoveRequest drops username's pending request.
func (s *MongoStore) RemoveRequest(ctx context.Context, id, username string) (*models.Group, error) {
	return s.updateGroup(ctx, id, bson.M{"$pull": bson.M{"requests": username}})
}

// AddMember adds username to the member list, at most once.
func (s *MongoStore) AddMember(ctx context.Context, id, username string) (*models.Group, error) {
	return s.updateGroup(ctx, id, bson.M{"$addToSet": bson.M{"members": username}})
}

// RemoveMember removes username from the member list atomically, so a
// concurrent join cannot be lost.
func (s *MongoStore) RemoveMember(ctx context.Context, id, username string) (*models.Group, error) {
	return s.updateGroup(ctx, id, bson.M{"$pull": bson.M{"members": username}})
}

// SetQRToken replaces the group's active invite token; any previously issued
// token stops resolving.
func (s *MongoStore) SetQRToken(ctx context.Context, id, token string) (*models.Group, error) {
	return s.updateGroup(ctx, id, bson.M{"$set": bson.M{"qrToken": token}})
}

func (s *MongoStore) DeleteGroup(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.groups.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
