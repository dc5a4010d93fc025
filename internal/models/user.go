package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Password          string    `json:"-"` // never serialize
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	City              string    `json:"city"`
	ProfilePictureKey string    `json:"profilePictureKey,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// SignUpRequest is the JSON body for POST /signUp.
type SignUpRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	City      string `json:"city"`
}

// SignInRequest is the JSON body for POST /signIn.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
