package group

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/models"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/store"
)

// fakeStore is an in-memory Store mirroring the Mongo update semantics
// ($addToSet, $pull) the service relies on.
type fakeStore struct {
	groups  map[string]*models.Group
	files   map[string][]models.File
	deleted map[string][]string // records cascade calls per group id
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups:  make(map[string]*models.Group),
		files:   make(map[string][]models.File),
		deleted: make(map[string][]string),
	}
}

func (f *fakeStore) InsertGroup(_ context.Context, g *models.Group) error {
	g.ID = primitive.NewObjectID()
	cp := *g
	f.groups[g.ID.Hex()] = &cp
	return nil
}

func (f *fakeStore) GroupByID(_ context.Context, id string) (*models.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeStore) GroupByName(_ context.Context, name string) (*models.Group, error) {
	for _, g := range f.groups {
		if g.Name == name {
			cp := *g
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GroupByToken(_ context.Context, token string) (*models.Group, error) {
	for _, g := range f.groups {
		if g.QRToken != "" && g.QRToken == token {
			cp := *g
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GroupsByCreator(_ context.Context, username string) ([]models.Group, error) {
	var out []models.Group
	for _, g := range f.groups {
		if g.Creator == username {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeStore) GroupsByMember(_ context.Context, username string) ([]models.Group, error) {
	var out []models.Group
	for _, g := range f.groups {
		if g.IsMember(username) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchPublic(_ context.Context, query string) ([]models.Group, error) {
	q := strings.ToLower(query)
	var out []models.Group
	for _, g := range f.groups {
		if g.Privacy != models.PrivacyPublic {
			continue
		}
		hay := strings.ToLower(g.Name + " " + strings.Join(g.Subject, " ") + " " + g.City)
		if strings.Contains(hay, q) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeStore) mutate(id string, fn func(*models.Group)) (*models.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	fn(g)
	cp := *g
	return &cp, nil
}

func addToSet(list []string, v string) []string {
	for _, e := range list {
		if e == v {
			return list
		}
	}
	return append(list, v)
}

func pull(list []string, v string) []string {
	out := list[:0]
	for _, e := range list {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeStore) AddRequest(_ context.Context, id, username string) (*models.Group, error) {
	return f.mutate(id, func(g *models.Group) { g.Requests = addToSet(g.Requests, username) })
}

func (f *fakeStore) AcceptRequest(_ context.Context, id, username string) (*models.Group, error) {
	return f.mutate(id, func(g *models.Group) {
		g.Members = addToSet(g.Members, username)
		g.Requests = pull(g.Requests, username)
	})
}

func (f *fakeStore) RemoveRequest(_ context.Context, id, username string) (*models.Group, error) {
	return f.mutate(id, func(g *models.Group) { g.Requests = pull(g.Requests, username) })
}

func (f *fakeStore) AddMember(_ context.Context, id, username string) (*models.Group, error) {
	return f.mutate(id, func(g *models.Group) { g.Members = addToSet(g.Members, username) })
}

func (f *fakeStore) RemoveMember(_ context.Context, id, username string) (*models.Group, error) {
	return f.mutate(id, func(g *models.Group) { g.Members = pull(g.Members, username) })
}

func (f *fakeStore) SetQRToken(_ context.Context, id, token string) (*models.Group, error) {
	return f.mutate(id, func(g *models.Group) { g.QRToken = token })
}

func (f *fakeStore) DeleteGroup(_ context.Context, id string) error {
	if _, ok := f.groups[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.groups, id)
	return nil
}

func (f *fakeStore) DeleteSessionsByGroup(_ context.Context, groupID string) error {
	f.deleted[groupID] = append(f.deleted[groupID], "sessions")
	return nil
}

func (f *fakeStore) DeleteMessagesByGroup(_ context.Context, groupID string) error {
	f.deleted[groupID] = append(f.deleted[groupID], "messages")
	return nil
}

func (f *fakeStore) FilesByGroup(_ context.Context, groupID string) ([]models.File, error) {
	return f.files[groupID], nil
}

func (f *fakeStore) DeleteFilesByGroup(_ context.Context, groupID string) error {
	f.deleted[groupID] = append(f.deleted[groupID], "files")
	delete(f.files, groupID)
	return nil
}

// fakeUsers resolves user ids to usernames.
type fakeUsers struct {
	byID map[string]string
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	name, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &models.User{ID: id, Username: name}, nil
}

// fakeBlobs records removed object keys.
type fakeBlobs struct {
	removed []string
}

func (f *fakeBlobs) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeUsers, *fakeBlobs) {
	st := newFakeStore()
	users := &fakeUsers{byID: map[string]string{}}
	blobs := &fakeBlobs{}
	return NewService(st, users, blobs, "studygroup://joinGroup"), st, users, blobs
}

func mustCreate(t *testing.T, s *Service, req *models.CreateGroupRequest) *models.Group {
	t.Helper()
	g, err := s.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create(%q): %v", req.Name, err)
	}
	return g
}

func TestCreate_Group(t *testing.T) {
	s, _, _, _ := newTestService()

	g := mustCreate(t, s, &models.CreateGroupRequest{
		Name: "Algebra Crew", Creator: "alice", Subject: []string{"math"}, City: "Cluj",
	})

	if g.ID.IsZero() {
		t.Error("expected assigned group id")
	}
	if len(g.Members) != 0 || len(g.Requests) != 0 {
		t.Errorf("expected empty members/requests, got %v / %v", g.Members, g.Requests)
	}
	if g.Privacy != models.PrivacyPublic {
		t.Errorf("privacy default: got %q, want Public", g.Privacy)
	}
}

func TestCreate_NameTaken(t *testing.T) {
	s, _, _, _ := newTestService()
	mustCreate(t, s, &models.CreateGroupRequest{Name: "Algebra Crew", Creator: "alice"})

	if _, err := s.Create(context.Background(), &models.CreateGroupRequest{Name: "Algebra Crew", Creator: "bob"}); !errors.Is(err, ErrNameTaken) {
		t.Errorf("expected ErrNameTaken, got %v", err)
	}

	// name comparison is case-sensitive
	if _, err := s.Create(context.Background(), &models.CreateGroupRequest{Name: "algebra crew", Creator: "bob"}); err != nil {
		t.Errorf("different-cased name rejected: %v", err)
	}
}

func TestSendRequest_Dedup(t *testing.T) {
	s, _, _, _ := newTestService()
	ctx := context.Background()
	g := mustCreate(t, s, &models.CreateGroupRequest{Name: "G", Creator: "alice"})
	id := g.ID.Hex()

	for i := 0; i < 2; i++ {
		updated, err := s.SendRequest(ctx, id, "bob")
		if err != nil {
			t.Fatalf("SendRequest: %v", err)
		}
		if len(updated.Requests) != 1 || updated.Requests[0] != "bob" {
			t.Errorf("requests = %v, want [bob]", updated.Requests)
		}
	}
}

func TestSendRequest_MemberNoOp(t *testing.T) {
	s, st, _, _ := newTestService()
	ctx := context.Background()
	g := mustCreate(t, s, &models.CreateGroupRequest{Name: "G", Creator: "alice"})
	id := g.ID.Hex()
	st.AddMember(ctx, id, "bob")

	updated, err := s.SendRequest(ctx, id, "bob")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if len(updated.Requests) != 0 {
		t.Errorf("existing member produced a request: %v", updated.Requests)
	}
}

func TestSendRequest_GroupNotFound(t *testing.T) {
	s, _, _, _ := newTestService()
	if _, err := s.SendRequest(context.Background(), primitive.NewObjectID().Hex(), "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAcceptRequest_Atomic(t *testing.T) {
	s, _, _, _ := newTestService()
	ctx := context.Background()
	g := mustCreate(t, s, &models.CreateGroupRequest{Name: "G", Creator: "alice"})
	id := g.ID.Hex()
	s.SendRequest(ctx, id, "bob")

	updated, err := s.AcceptRequest(ctx, id, "bob")
	if err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	if !updated.IsMember("bob") {
		t.Error("bob not in members after accept")
	}
	if updated.HasRequest("bob") {
		t.Error("bob still in requests after accept")
	}
}

func TestDeclineRequest_AllowsReRequest(t *testing.T) {
	s, _, _, _ := newTestService()
	ctx := context.Background()
	g := mustCreate(t, s, &models.CreateGroupRequest{Name: "G", Creator: "alice"})
	id := g.ID.Hex()
	s.SendRequest(ctx, id, "bob")

	updated, err := s.DeclineRequest(ctx, id, "bob")
	if err != nil {
		t.Fatalf("DeclineRequest: %v", err)
	}
	if updated.HasRequest("bob") || updated.IsMember("bob") {
		t.Errorf("decline should return bob to non-member: %+v", updated)
	}

	// declined users may request again
	updated, err = s.SendRequest(ctx, id, "bob")
	if err != nil {
		t.Fatalf("re-request: %v", err)
	}
	if !updated.HasRequest("bob") {
		t.Error("re-request after decline not recorded")
	}
}

func TestLeave(t *testing.T) {
	s, st, _, _ := newTestService()
	ctx := context.Background()
	g := mustCreate(t, s, &models.CreateGroupRequest{Name: "G", Creator: "alice"})
	id := g.ID.Hex()
	st.AddMember(ctx, id, "bob")
	st.AddMember(ctx, id, "carol")

	updated, err := s.Leave(ctx, id, "bob")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if updated.IsMember("bob") {
		t.Error("bob still a member after leave")
	}
	if !updated.IsMember("carol") {
		t.Error("leave removed the wrong member")
	}
}

func TestGenerateQRCode_CreatorOnly(t *testing.T) {
	s, _, _, _ := newTestService()
	ctx := context.Background()
	g := mustCreate(t, s, &models.CreateGroupRequest{Name: "G", Creator: "alice"})
	id := g.ID.Hex()

	if _, err := s.GenerateQRCode(ctx, id, "bob"); !errors.Is(err, ErrNotCreator) {
		t.Errorf("non-creator: expected ErrNotCreator, got %v", err)
	}
	// creator match is exact, no case normalization
	if _, err := s.GenerateQRCode(ctx, id, "Alice"); !errors.Is(err, ErrNotCreator) {
		t.Errorf("cased creator: expected ErrNotCreator, got %v", err)
	}

	dataURI, err := s.GenerateQRCode(ctx, id, "alice")
	if err != nil {
		t.Fatalf("GenerateQRCode: %v", err)
	}
	if !strings.HasPrefix(dataURI, "data:image/png;base64,") {
		t.Errorf("expected PNG data URI, got %.40q", dataURI)
	}
}

func TestGenerateQRCode_TokenFormat(t *testing.T) {
	s, st, _, _ := newTestService()
	ctx := context.Background()
	g := mustCreate(t, s, &models.CreateGroupRequest{Name: "G", Creator: "alice"})
	id := g.ID.Hex()

	if _, err := s.GenerateQRCode(ctx, id, "alice"); err != nil {
		t.Fatalf("GenerateQRCode: %v", err)
	}

	stored, _ := st.GroupByID(ctx, id)
	if len(stored.QRToken) != 32 {
		t.Errorf("token length = %d, want 32", len(stored.QRToken))
	}
	for _, c := range stored.QRToken {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("token %q contains non-hex character %q", stored.QRToken, c)
		}
	}
}

func TestGenerateQRCode_InvalidatesPriorToken(t *testing.T) {
	s, st, _, _ := newTestService()
	ctx := context.Background()
	g := mustCreate(t, s, &models.CreateGroupRequest{Name: "G", Creator: "alice"})
	id := g.ID.Hex()

	if _, err := s.GenerateQRCode(ctx, id, "alice"); err != nil {
		t.Fatalf("GenerateQRCode: %v", err)
	}
	first, _ := st.GroupByID(ctx, id)
	staleToken := first.QRToken

	if _, err := s.GenerateQRCode(ctx, id, "alice"); err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	if _, _, err := s.JoinByToken(ctx, staleToken, "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("stale token join: expected ErrNotFound, got %v", err)
	}
}

func TestJoinByToken(t *testing.T) {
	s, st, _, _ := newTestService()
	ctx := context.Background()
	g := mustCreate(t, s, &models.CreateGroupRequest{Name: "G", Creator: "alice"})
	id := g.ID.Hex()

	if _, err := s.GenerateQRCode(ctx, id, "alice"); err != nil {
		t.Fatalf("GenerateQRCode: %v", err)
	}
	stored, _ := st.GroupByID(ctx, id)
	token := stored.QRToken

	updated, joined, err := s.JoinByToken(ctx, token, "bob")
	if err != nil {
		t.Fatalf("JoinByToken: %v", err)
	}
	if !joined || !updated.IsMember("bob") {
		t.Errorf("join failed: joined=%v members=%v", joined, updated.Members)
	}

	// second join with the same token is a no-op, not an error
	updated, joined, err = s.JoinByToken(ctx, token, "bob")
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if joined {
		t.Error("second join reported success")
	}
	count := 0
	for _, m := range updated.Members {
		if m == "bob" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("bob appears %d times in members, want 1", count)
	}
}

func TestJoinByToken_UnknownToken(t *testing.T) {
	s, _, _, _ := newTestService()
	if _, _, err := s.JoinByToken(context.Background(), "deadbeef", "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	s, st, users, _ := newTestService()
	ctx := context.Background()
	users.byID["u1"] = "bob"

	mustCreate(t, s, &models.CreateGroupRequest{Name: "Linear Algebra", Creator: "alice", Subject: []string{"Math"}, City: "Cluj"})
	mustCreate(t, s, &models.CreateGroupRequest{Name: "Organic Chemistry", Creator: "alice", Subject: []string{"chemistry"}, City: "Iasi"})
	mustCreate(t, s, &models.CreateGroupRequest{Name: "Secret Math Club", Creator: "alice", Subject: []string{"math"}, Privacy: models.PrivacyPrivate})
	mustCreate(t, s, &models.CreateGroupRequest{Name: "Bob's Math Corner", Creator: "bob", Subject: []string{"math"}})
	member := mustCreate(t, s, &models.CreateGroupRequest{Name: "Math Buddies", Creator: "alice", Subject: []string{"math"}})
	st.AddMember(ctx, member.ID.Hex(), "bob")

	groups, err := s.Search(ctx, "math", "u1")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Linear Algebra" {
		names := make([]string, len(groups))
		for i, g := range groups {
			names[i] = g.Name
		}
		t.Errorf("search results = %v, want [Linear Algebra]", names)
	}
}

func TestSearch_CityAndCaseInsensitive(t *testing.T) {
	s, _, users, _ := newTestService()
	users.byID["u1"] = "bob"
	mustCreate(t, s, &models.CreateGroupRequest{Name: "Reading Circle", Creator: "alice", Subject: []string{"literature"}, City: "CLUJ"})

	groups, err := s.Search(context.Background(), "cluj", "u1")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 1 {
		t.Errorf("city match: got %d groups, want 1", len(groups))
	}
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	s, _, users, _ := newTestService()
	users.byID["u1"] = "bob"
	mustCreate(t, s, &models.CreateGroupRequest{Name: "A", Creator: "alice"})
	mustCreate(t, s, &models.CreateGroupRequest{Name: "B", Creator: "alice"})

	groups, err := s.Search(context.Background(), "", "u1")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("empty query: got %d groups, want 2", len(groups))
	}
}

func TestSearch_UnknownRequester(t *testing.T) {
	s, _, _, _ := newTestService()
	if _, err := s.Search(context.Background(), "math", "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_Cascades(t *testing.T) {
	s, st, _, blobs := newTestService()
	ctx := context.Background()
	g := mustCreate(t, s, &models.CreateGroupRequest{Name: "G", Creator: "alice"})
	id := g.ID.Hex()
	st.files[id] = []models.File{
		{GroupID: id, FileName: "notes.pdf", ObjectKey: "files/g/notes"},
		{GroupID: id, FileName: "sheet.png", ObjectKey: "files/g/sheet"},
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := st.GroupByID(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Error("group still present after delete")
	}
	if len(blobs.removed) != 2 {
		t.Errorf("removed %d blobs, want 2", len(blobs.removed))
	}
	for _, kind := range []string{"sessions", "messages", "files"} {
		found := false
		for _, d := range st.deleted[id] {
			if d == kind {
				found = true
			}
		}
		if !found {
			t.Errorf("cascade did not delete %s", kind)
		}
	}
}

func TestDelete_NotFound(t *testing.T) {
	s, _, _, _ := newTestService()
	if err := s.Delete(context.Background(), primitive.NewObjectID().Hex()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
