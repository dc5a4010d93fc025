package schedule

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupSessionServer(t *testing.T) *httptest.Server {
	t.Helper()

	scheduler, _ := newTestScheduler("g1")
	h := NewHandler(scheduler)

	r := chi.NewRouter()
	r.Post("/createSession", h.Create)
	r.Post("/editSession/{sessionId}", h.Edit)
	r.Get("/fetchSessions/{groupId}", h.List)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func postSession(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
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

func sessionBody(start, end string) map[string]interface{} {
	return map[string]interface{}{
		"name":      "study",
		"startDate": "2025-03-10",
		"endDate":   "2025-03-10",
		"startTime": start,
		"endTime":   end,
		"groupId":   "g1",
	}
}

func TestHandler_CreateSession(t *testing.T) {
	server := setupSessionServer(t)

	resp, body := postSession(t, server.URL+"/createSession", sessionBody("10:00", "11:00"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if body["success"] != true || body["session"] == nil {
		t.Errorf("body = %v, want success with session", body)
	}

	// overlapping candidate is a 400 validation outcome, not a server error
	resp, body = postSession(t, server.URL+"/createSession", sessionBody("10:30", "11:30"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("overlap status = %d, want 400", resp.StatusCode)
	}
	if body["success"] != false {
		t.Errorf("overlap success = %v, want false", body["success"])
	}

	// adjacent candidate passes
	resp, _ = postSession(t, server.URL+"/createSession", sessionBody("11:00", "12:00"))
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("adjacent status = %d, want 201", resp.StatusCode)
	}
}

func TestHandler_CreateSession_InvalidTime(t *testing.T) {
	server := setupSessionServer(t)

	resp, _ := postSession(t, server.URL+"/createSession", sessionBody("nope", "11:00"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_EditSession(t *testing.T) {
	server := setupSessionServer(t)

	_, created := postSession(t, server.URL+"/createSession", sessionBody("10:00", "11:00"))
	id := created["session"].(map[string]interface{})["id"].(string)

	// re-submitting the same times succeeds: the session is excluded from
	// its own overlap check
	resp, _ := postSession(t, server.URL+"/editSession/"+id, sessionBody("10:00", "11:00"))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHandler_EditSession_NotFound(t *testing.T) {
	server := setupSessionServer(t)

	resp, _ := postSession(t, server.URL+"/editSession/"+primitive.NewObjectID().Hex(), sessionBody("10:00", "11:00"))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
