// Package group manages study-group membership: creation, the join-request
// workflow, QR invite links and directory search.
package group

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/models"
)

var (
	// ErrNameTaken marks an exact, case-sensitive group name collision.
	ErrNameTaken = errors.New("group name taken")
	// ErrNotCreator marks a QR request by anyone but the group's creator.
	ErrNotCreator = errors.New("only the group creator can generate an invite")
)

const qrImageSize = 256

// Store defines the group persistence operations, including the cascade
// deletes run when a group is removed.
type Store interface {
	InsertGroup(ctx context.Context, g *models.Group) error
	GroupByID(ctx context.Context, id string) (*models.Group, error)
	GroupByName(ctx context.Context, name string) (*models.Group, error)
	GroupByToken(ctx context.Context, token string) (*models.Group, error)
	GroupsByCreator(ctx context.Context, username string) ([]models.Group, error)
	GroupsByMember(ctx context.Context, username string) ([]models.Group, error)
	SearchPublic(ctx context.Context, query string) ([]models.Group, error)
	AddRequest(ctx context.Context, id, username string) (*models.Group, error)
	AcceptRequest(ctx context.Context, id, username string) (*models.Group, error)
	RemoveRequest(ctx context.Context, id, username string) (*models.Group, error)
	AddMember(ctx context.Context, id, username string) (*models.Group, error)
	RemoveMember(ctx context.Context, id, username string) (*models.Group, error)
	SetQRToken(ctx context.Context, id, token string) (*models.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	DeleteSessionsByGroup(ctx context.Context, groupID string) error
	DeleteMessagesByGroup(ctx context.Context, groupID string) error
	FilesByGroup(ctx context.Context, groupID string) ([]models.File, error)
	DeleteFilesByGroup(ctx context.Context, groupID string) error
}

// UserDirectory resolves user ids to accounts; used by Search to exclude the
// requester's own groups.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// BlobRemover deletes stored attachment bytes during a group cascade delete.
type BlobRemover interface {
	Remove(ctx context.Context, key string) error
}

// Service implements the membership state machine. Per (group, username) the
// states are NonMember -> Requested -> Member, with a direct
// NonMember -> Member transition through a QR invite token, and
// Member -> NonMember through leave. Decline returns a requester to
// NonMember; re-requesting is allowed.
type Service struct {
	store       Store
	users       UserDirectory
	blobs       BlobRemover
	joinBaseURL string
}

func NewService(store Store, users UserDirectory, blobs BlobRemover, joinBaseURL string) *Service {
	return &Service{store: store, users: users, blobs: blobs, joinBaseURL: joinBaseURL}
}

// Create makes a new group with no members or pending requests.
func (s *Service) Create(ctx context.Context, req *models.CreateGroupRequest) (*models.Group, error) {
	if _, err := s.store.GroupByName(ctx, req.Name); err == nil {
		return nil, ErrNameTaken
	}

	privacy := req.Privacy
	if privacy != models.PrivacyPrivate {
		privacy = models.PrivacyPublic
	}
	g := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		Subject:     req.Subject,
		Creator:     req.Creator,
		Members:     []string{},
		Requests:    []string{},
		Privacy:     privacy,
		City:        req.City,
	}
	if err := s.store.InsertGroup(ctx, g); err != nil {
		return nil, err
	}

	slog.Info("group created", "group_id", g.ID.Hex(), "name", g.Name, "creator", g.Creator)
	return g, nil
}

// SendRequest records a pending join request. A username that is already a
// member or has already requested is left unchanged.
func (s *Service) SendRequest(ctx context.Context, groupID, username string) (*models.Group, error) {
	g, err := s.store.GroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.IsMember(username) || g.HasRequest(username) {
		return g, nil
	}
	return s.store.AddRequest(ctx, groupID, username)
}

// AcceptRequest promotes a requester to member. The move is one atomic
// update: afterwards the username is in members and gone from requests.
func (s *Service) AcceptRequest(ctx context.Context, groupID, username string) (*models.Group, error) {
	g, err := s.store.AcceptRequest(ctx, groupID, username)
	if err != nil {
		return nil, err
	}
	slog.Info("join request accepted", "group_id", groupID, "username", username)
	return g, nil
}

// DeclineRequest drops a pending request; the user may request again later.
func (s *Service) DeclineRequest(ctx context.Context, groupID, username string) (*models.Group, error) {
	return s.store.RemoveRequest(ctx, groupID, username)
}

// Leave removes a member from the group.
func (s *Service) Leave(ctx context.Context, groupID, username string) (*models.Group, error) {
	return s.store.RemoveMember(ctx, groupID, username)
}

// GenerateQRCode mints a new invite token for the group, replacing any prior
// one, and returns a QR image of the join URL as a PNG data URI. Only the
// group's creator may call this.
func (s *Service) GenerateQRCode(ctx context.Context, groupID, requester string) (string, error) {
	g, err := s.store.GroupByID(ctx, groupID)
	if err != nil {
		return "", err
	}
	if g.Creator != requester {
		return "", ErrNotCreator
	}

	token, err := newInviteToken()
	if err != nil {
		return "", err
	}
	if _, err := s.store.SetQRToken(ctx, groupID, token); err != nil {
		return "", err
	}

	joinURL := fmt.Sprintf("%s?token=%s", s.joinBaseURL, url.QueryEscape(token))
	png, err := qrcode.Encode(joinURL, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}

	slog.Info("invite token rotated", "group_id", groupID)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// newInviteToken returns 16 random bytes as a 32-char hex string.
func newInviteToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// JoinByToken adds username to the group holding the token. joined is false
// when the user was already a member; that is not an error.
func (s *Service) JoinByToken(ctx context.Context, token, username string) (g *models.Group, joined bool, err error) {
	g, err = s.store.GroupByToken(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if g.IsMember(username) {
		return g, false, nil
	}

	g, err = s.store.AddMember(ctx, g.ID.Hex(), username)
	if err != nil {
		return nil, false, err
	}
	slog.Info("member joined via invite", "group_id", g.ID.Hex(), "username", username)
	return g, true, nil
}

// Search returns Public groups matching query on name, subject or city,
// excluding groups the requester created or belongs to. The text match comes
// from storage; the membership exclusion is a second, in-memory pass.
func (s *Service) Search(ctx context.Context, query, requesterID string) ([]models.Group, error) {
	user, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.SearchPublic(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}

	groups := []models.Group{}
	for _, g := range candidates {
		if g.Creator == user.Username || g.IsMember(user.Username) {
			continue
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Get returns a single group by id.
func (s *Service) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GroupByID(ctx, groupID)
}

// OwnedBy returns the groups a user created.
func (s *Service) OwnedBy(ctx context.Context, username string) ([]models.Group, error) {
	groups, err := s.store.GroupsByCreator(ctx, username)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// MemberOf returns the groups a user belongs to.
func (s *Service) MemberOf(ctx context.Context, username string) ([]models.Group, error) {
	groups, err := s.store.GroupsByMember(ctx, username)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// Delete removes a group and cascades to its sessions, messages and file
// attachments, including the stored blobs.
func (s *Service) Delete(ctx context.Context, groupID string) error {
	if _, err := s.store.GroupByID(ctx, groupID); err != nil {
		return err
	}

	files, err := s.store.FilesByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := s.blobs.Remove(ctx, f.ObjectKey); err != nil {
			slog.Warn("attachment blob not removed", "group_id", groupID, "key", f.ObjectKey, "error", err)
		}
	}

	if err := s.store.DeleteFilesByGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.store.DeleteMessagesByGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.store.DeleteSessionsByGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}

	slog.Info("group deleted", "group_id", groupID)
	return nil
}
