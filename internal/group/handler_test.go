package group

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func setupGroupServer(t *testing.T) (*httptest.Server, *fakeStore, *fakeUsers) {
	t.Helper()

	svc, st, users, _ := newTestService()
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Post("/createGroup", h.Create)
	r.Post("/sendRequestToJoin", h.SendRequest)
	r.Post("/acceptRequest", h.AcceptRequest)
	r.Post("/declineRequest", h.DeclineRequest)
	r.Post("/leaveGroup", h.Leave)
	r.Post("/generateGroupQRCode", h.GenerateQRCode)
	r.Post("/joinGroup", h.Join)
	r.Get("/searchGroups", h.Search)
	r.Get("/fetchGroup/{groupId}", h.Get)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, st, users
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestHandler_CreateGroup(t *testing.T) {
	server, _, _ := setupGroupServer(t)

	resp, body := postJSON(t, server.URL+"/createGroup", map[string]interface{}{
		"name": "Physics Lab", "creator": "alice", "subject": []string{"physics"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}

	// duplicate name
	resp, body = postJSON(t, server.URL+"/createGroup", map[string]interface{}{
		"name": "Physics Lab", "creator": "bob",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate name status = %d, want 409", resp.StatusCode)
	}
	if body["success"] != false {
		t.Errorf("duplicate name success = %v, want false", body["success"])
	}
}

func TestHandler_GenerateQRCode_Forbidden(t *testing.T) {
	server, st, _ := setupGroupServer(t)

	_, created := postJSON(t, server.URL+"/createGroup", map[string]interface{}{
		"name": "G", "creator": "alice",
	})
	groupID := created["group"].(map[string]interface{})["id"].(string)

	resp, _ := postJSON(t, server.URL+"/generateGroupQRCode", map[string]string{
		"groupId": groupID, "username": "bob",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-creator status = %d, want 403", resp.StatusCode)
	}

	resp, body := postJSON(t, server.URL+"/generateGroupQRCode", map[string]string{
		"groupId": groupID, "username": "alice",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("creator status = %d, want 200", resp.StatusCode)
	}
	if qr, _ := body["qrCode"].(string); len(qr) == 0 {
		t.Error("expected qrCode in response")
	}

	g, _ := st.GroupByID(context.Background(), groupID)
	if g.QRToken == "" {
		t.Error("token not stored on group")
	}
}

func TestHandler_JoinGroup(t *testing.T) {
	server, st, _ := setupGroupServer(t)

	_, created := postJSON(t, server.URL+"/createGroup", map[string]interface{}{
		"name": "G", "creator": "alice",
	})
	groupID := created["group"].(map[string]interface{})["id"].(string)
	postJSON(t, server.URL+"/generateGroupQRCode", map[string]string{"groupId": groupID, "username": "alice"})
	g, _ := st.GroupByID(context.Background(), groupID)

	resp, body := postJSON(t, server.URL+"/joinGroup", map[string]string{"token": g.QRToken, "username": "bob"})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("join: status=%d success=%v", resp.StatusCode, body["success"])
	}

	// already a member: success false, still 200
	resp, body = postJSON(t, server.URL+"/joinGroup", map[string]string{"token": g.QRToken, "username": "bob"})
	if resp.StatusCode != http.StatusOK || body["success"] != false {
		t.Errorf("repeat join: status=%d success=%v, want 200/false", resp.StatusCode, body["success"])
	}

	// unknown token
	resp, _ = postJSON(t, server.URL+"/joinGroup", map[string]string{"token": "0123456789abcdef0123456789abcdef", "username": "carol"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown token status = %d, want 404", resp.StatusCode)
	}
}

func TestHandler_SearchGroups(t *testing.T) {
	server, _, users := setupGroupServer(t)
	users.byID["u1"] = "bob"

	postJSON(t, server.URL+"/createGroup", map[string]interface{}{
		"name": "Calculus Club", "creator": "alice", "subject": []string{"math"},
	})

	resp, err := http.Get(fmt.Sprintf("%s/searchGroups?query=calc&userId=u1", server.URL))
	if err != nil {
		t.Fatalf("GET searchGroups: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Success bool `json:"success"`
		Groups  []struct {
			Name string `json:"name"`
		} `json:"groups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Groups) != 1 || body.Groups[0].Name != "Calculus Club" {
		t.Errorf("groups = %+v, want [Calculus Club]", body.Groups)
	}
}
