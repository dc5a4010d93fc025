// Package schedule enforces the per-group session calendar: a group's
// sessions must never overlap in time.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/models"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/timerange"
)

var (
	// ErrInvalidTime marks a candidate whose dates or times cannot be
	// parsed, or whose end does not come after its start.
	ErrInvalidTime = errors.New("invalid session date or time")
	// ErrOverlap marks a candidate that overlaps an existing session of the
	// same group. It is a validation outcome, not a server failure.
	ErrOverlap = errors.New("session overlaps an existing session")
)

// SessionStore defines the session persistence operations the scheduler uses.
type SessionStore interface {
	InsertSession(ctx context.Context, s *models.Session) error
	SessionByID(ctx context.Context, id string) (*models.Session, error)
	SessionsByGroup(ctx context.Context, groupID string) ([]models.Session, error)
	UpdateSession(ctx context.Context, id string, s *models.Session) (*models.Session, error)
	AcceptSession(ctx context.Context, id, username string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// GroupGetter resolves a group id; used to reject sessions for groups that
// do not exist.
type GroupGetter interface {
	GroupByID(ctx context.Context, id string) (*models.Group, error)
}

// GroupLocker serializes writes per group id. The check-then-create below is
// only correct while no other writer can commit between the overlap check and
// the insert.
type GroupLocker interface {
	Acquire(ctx context.Context, groupID string) (func(), error)
}

// Scheduler validates and persists study sessions.
type Scheduler struct {
	sessions SessionStore
	groups   GroupGetter
	locks    GroupLocker
}

func NewScheduler(sessions SessionStore, groups GroupGetter, locks GroupLocker) *Scheduler {
	return &Scheduler{sessions: sessions, groups: groups, locks: locks}
}

// instants converts a candidate's date/time fields to its interval bounds.
func instants(req *models.SessionRequest) (start, end time.Time, err error) {
	start, err = timerange.ToInstant(req.StartDate, req.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	end, err = timerange.ToInstant(req.EndDate, req.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end must be after start", ErrInvalidTime)
	}
	return start, end, nil
}

// checkOverlap compares the candidate interval against every session of the
// group except excludeID. Every sibling must pass; the scan never stops at
// the first non-overlapping one.
func (s *Scheduler) checkOverlap(ctx context.Context, groupID, excludeID string, start, end time.Time) error {
	siblings, err := s.sessions.SessionsByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	for i := range siblings {
		sib := &siblings[i]
		if sib.ID.Hex() == excludeID {
			continue
		}
		sibStart, err := timerange.ToInstant(sib.StartDate, sib.StartTime)
		if err != nil {
			return fmt.Errorf("stored session %s: %w", sib.ID.Hex(), err)
		}
		sibEnd, err := timerange.ToInstant(sib.EndDate, sib.EndTime)
		if err != nil {
			return fmt.Errorf("stored session %s: %w", sib.ID.Hex(), err)
		}
		if timerange.Overlaps(start, end, sibStart, sibEnd) {
			return ErrOverlap
		}
	}
	return nil
}

// Create validates the candidate against all of its group's sessions and
// persists it. The whole check-then-create runs under the group's lock.
func (s *Scheduler) Create(ctx context.Context, req *models.SessionRequest) (*models.Session, error) {
	start, end, err := instants(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.groups.GroupByID(ctx, req.GroupID); err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, req.GroupID)
	if err != nil {
		return nil, fmt.Errorf("acquire group lock: %w", err)
	}
	defer release()

	if err := s.checkOverlap(ctx, req.GroupID, "", start, end); err != nil {
		return nil, err
	}

	sess := &models.Session{
		Name:       req.Name,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		GroupID:    req.GroupID,
		AcceptedBy: req.AcceptedBy,
	}
	if sess.AcceptedBy == nil {
		sess.AcceptedBy = []string{}
	}
	if err := s.sessions.InsertSession(ctx, sess); err != nil {
		return nil, err
	}

	slog.Info("session created", "session_id", sess.ID.Hex(), "group_id", sess.GroupID)
	return sess, nil
}

// Edit re-validates the session's new times against its siblings, excluding
// the session itself, then updates it in place.
func (s *Scheduler) Edit(ctx context.Context, sessionID string, req *models.SessionRequest) (*models.Session, error) {
	start, end, err := instants(req)
	if err != nil {
		return nil, err
	}

	current, err := s.sessions.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, current.GroupID)
	if err != nil {
		return nil, fmt.Errorf("acquire group lock: %w", err)
	}
	defer release()

	if err := s.checkOverlap(ctx, current.GroupID, sessionID, start, end); err != nil {
		return nil, err
	}

	updated, err := s.sessions.UpdateSession(ctx, sessionID, &models.Session{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("session updated", "session_id", sessionID, "group_id", current.GroupID)
	return updated, nil
}

// ListByGroup returns all sessions scheduled for a group.
func (s *Scheduler) ListByGroup(ctx context.Context, groupID string) ([]models.Session, error) {
	sessions, err := s.sessions.SessionsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// Accept records that username will attend the session.
func (s *Scheduler) Accept(ctx context.Context, sessionID, username string) (*models.Session, error) {
	return s.sessions.AcceptSession(ctx, sessionID, username)
}

// Delete removes a session.
func (s *Scheduler) Delete(ctx context.Context, sessionID string) error {
	return s.sessions.DeleteSession(ctx, sessionID)
}
