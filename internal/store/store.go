// Package store provides the persistence backends: PostgreSQL for user
// accounts, MongoDB for groups, sessions and chat records, MinIO for binary
// objects and Redis for cross-instance locking.
package store

import "errors"

// ErrNotFound is returned when a record does not exist. Backends map their
// driver-specific not-found errors to this value so callers can use errors.Is.
var ErrNotFound = errors.New("record not found")
