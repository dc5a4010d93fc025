package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group privacy values.
const (
	PrivacyPublic  = "Public"
	PrivacyPrivate = "Private"
)

// Group is a study group stored in the Groups collection.
//
// Creator is an identity string (a username), not a reference; the creator is
// the implicit owner and need not appear in Members. A username is in at most
// one of Members and Requests at a time.
type Group struct {
	ID          primitive.ObjectID `json:"id"          bson:"_id,omitempty"`
	Name        string             `json:"name"        bson:"name"`
	Description string             `json:"description" bson:"description"`
	Subject     []string           `json:"subject"     bson:"subject"`
	Creator     string             `json:"creator"     bson:"creator"`
	Members     []string           `json:"members"     bson:"members"`
	Requests    []string           `json:"requests"    bson:"requests"`
	Privacy     string             `json:"privacy"     bson:"privacy"`
	City        string             `json:"city"        bson:"city"`
	QRToken     string             `json:"-"           bson:"qrToken,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"   bson:"createdAt"`
	LastUpdated time.Time          `json:"lastUpdated" bson:"lastUpdated"`
}

// IsMember reports whether username is in the member list.
func (g *Group) IsMember(username string) bool {
	for _, m := range g.Members {
		if m == username {
			return true
		}
	}
	return false
}

// HasRequest reports whether username has a pending join request.
func (g *Group) HasRequest(username string) bool {
	for _, r := range g.Requests {
		if r == username {
			return true
		}
	}
	return false
}

// CreateGroupRequest is the JSON body for POST /createGroup.
type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Subject     []string `json:"subject"`
	Privacy     string   `json:"privacy"`
	Creator     string   `json:"creator"`
	City        string   `json:"city"`
}
