package group

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/models"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/store"
)

// Handler holds the group HTTP handlers.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNameTaken):
		writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "message": "Group name taken!"})
	case errors.Is(err, ErrNotCreator):
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"success": false, "message": "only the group creator can generate an invite"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
	default:
		slog.Error("group request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
	}
}

// membershipRequest is the shared body of the membership endpoints.
type membershipRequest struct {
	GroupID  string `json:"groupId"`
	Username string `json:"username"`
}

func decodeMembership(w http.ResponseWriter, r *http.Request) (membershipRequest, bool) {
	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body"})
		return req, false
	}
	if req.GroupID == "" || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "groupId and username are required"})
		return req, false
	}
	return req, true
}

// Create handles POST /createGroup.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body"})
		return
	}
	if req.Name == "" || req.Creator == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "name and creator are required"})
		return
	}

	g, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "group": g})
}

// SendRequest handles POST /sendRequestToJoin.
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMembership(w, r)
	if !ok {
		return
	}
	g, err := h.service.SendRequest(r.Context(), req.GroupID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "group": g})
}

// AcceptRequest handles POST /acceptRequest.
func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMembership(w, r)
	if !ok {
		return
	}
	g, err := h.service.AcceptRequest(r.Context(), req.GroupID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "group": g})
}

// DeclineRequest handles POST /declineRequest.
func (h *Handler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMembership(w, r)
	if !ok {
		return
	}
	g, err := h.service.DeclineRequest(r.Context(), req.GroupID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "group": g})
}

// Leave handles POST /leaveGroup.
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMembership(w, r)
	if !ok {
		return
	}
	g, err := h.service.Leave(r.Context(), req.GroupID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "group": g})
}

// GenerateQRCode handles POST /generateGroupQRCode.
func (h *Handler) GenerateQRCode(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMembership(w, r)
	if !ok {
		return
	}
	dataURI, err := h.service.GenerateQRCode(r.Context(), req.GroupID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "qrCode": dataURI})
}

// Join handles POST /joinGroup.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body"})
		return
	}
	if req.Token == "" || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "token and username are required"})
		return
	}

	_, joined, err := h.service.JoinByToken(r.Context(), req.Token, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	if !joined {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": "Already a member of this group."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Joined group successfully!"})
}

// Search handles GET /searchGroups?query=&userId=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "userId is required"})
		return
	}

	groups, err := h.service.Search(r.Context(), query, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "groups": groups})
}

// Get handles GET /fetchGroup/{groupId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.Get(r.Context(), chi.URLParam(r, "groupId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "group": g})
}

// OwnedBy handles GET /fetchOwnedGroups/{username}.
func (h *Handler) OwnedBy(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.OwnedBy(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "groups": groups})
}

// MemberOf handles GET /fetchMemberGroups/{username}.
func (h *Handler) MemberOf(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.MemberOf(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "groups": groups})
}

// Delete handles POST /deleteGroup.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID string `json:"groupId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body"})
		return
	}

	if err := h.service.Delete(r.Context(), req.GroupID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Group deleted successfully!"})
}
