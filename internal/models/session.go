package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Session is a scheduled study session stored in the Sessions collection.
// Dates are "YYYY-MM-DD", times are "HH:MM"; both are interpreted in local
// time when checking the per-group non-overlap invariant.
type Session struct {
	ID         primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	Name       string             `json:"name"       bson:"name"`
	StartDate  string             `json:"startDate"  bson:"startDate"`
	EndDate    string             `json:"endDate"    bson:"endDate"`
	StartTime  string             `json:"startTime"  bson:"startTime"`
	EndTime    string             `json:"endTime"    bson:"endTime"`
	GroupID    string             `json:"groupId"    bson:"groupId"`
	AcceptedBy []string           `json:"acceptedBy" bson:"acceptedBy"`
}

// SessionRequest is the JSON body for POST /createSession and /editSession.
type SessionRequest struct {
	Name       string   `json:"name"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
	GroupID    string   `json:"groupId"`
	AcceptedBy []string `json:"acceptedBy"`
}
