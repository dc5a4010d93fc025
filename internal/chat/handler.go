// Package chat provides group messaging and file attachments. Message and
// file records live in MongoDB; attachment bytes live in the blob store.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/models"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/store"
)

const maxAttachmentBytes = 25 << 20

// ChatStore defines the message and file record persistence operations.
type ChatStore interface {
	InsertMessage(ctx context.Context, m *models.Message) error
	MessagesByGroup(ctx context.Context, groupID string) ([]models.Message, error)
	InsertFile(ctx context.Context, f *models.File) error
	FilesByGroup(ctx context.Context, groupID string) ([]models.File, error)
	FileByID(ctx context.Context, id string) (*models.File, error)
}

// FileStore defines the interface for attachment blob storage.
type FileStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Handler holds the chat HTTP handlers.
type Handler struct {
	records ChatStore
	blobs   FileStore
}

func NewHandler(records ChatStore, blobs FileStore) *Handler {
	return &Handler{records: records, blobs: blobs}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// SendMessage handles POST /sendMessage.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID  string `json:"groupId"`
		SenderID string `json:"senderId"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body"})
		return
	}
	if req.GroupID == "" || req.SenderID == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "groupId, senderId, and content are required"})
		return
	}

	msg := &models.Message{GroupID: req.GroupID, SenderID: req.SenderID, Content: req.Content}
	if err := h.records.InsertMessage(r.Context(), msg); err != nil {
		slog.Error("send message failed", "group_id", req.GroupID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "chatMessage": msg})
}

// FetchMessages handles GET /fetchMessages/{groupId}.
func (h *Handler) FetchMessages(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	msgs, err := h.records.MessagesByGroup(r.Context(), groupID)
	if err != nil {
		slog.Error("fetch messages failed", "group_id", groupID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "messages": msgs})
}

// UploadFile handles POST /uploadFile (multipart: groupId, senderId, file).
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid multipart form"})
		return
	}
	groupID := r.FormValue("groupId")
	senderID := r.FormValue("senderId")
	if groupID == "" || senderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "groupId and senderId are required"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	key := fmt.Sprintf("files/%s/%s", groupID, uuid.NewString())
	if err := h.blobs.Put(r.Context(), key, data, contentType); err != nil {
		slog.Error("attachment upload failed", "group_id", groupID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "upload failed"})
		return
	}

	rec := &models.File{
		GroupID:     groupID,
		SenderID:    senderID,
		FileName:    header.Filename,
		ContentType: contentType,
		ObjectKey:   key,
	}
	if err := h.records.InsertFile(r.Context(), rec); err != nil {
		h.blobs.Remove(r.Context(), key)
		slog.Error("attachment record insert failed", "group_id", groupID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "file": rec})
}

// FetchFiles handles GET /fetchFiles/{groupId}.
func (h *Handler) FetchFiles(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	files, err := h.records.FilesByGroup(r.Context(), groupID)
	if err != nil {
		slog.Error("fetch files failed", "group_id", groupID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}
	if files == nil {
		files = []models.File{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "files": files})
}

// DownloadFile handles GET /downloadFile/{fileId}, streaming the blob.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	rec, err := h.records.FileByID(r.Context(), fileID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "file not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}

	data, contentType, err := h.blobs.Get(r.Context(), rec.ObjectKey)
	if err != nil {
		slog.Error("attachment download failed", "file_id", fileID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "download failed"})
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.FileName))
	w.Write(data)
}
