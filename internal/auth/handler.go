package auth

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
	"golang.org/x/crypto/bcrypt"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/models"
	"github.com/simina1505/Study-Group-Organizer-Backend/internal/store"
)

const maxProfilePictureBytes = 5 << 20

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetProfilePicture(ctx context.Context, username, objectKey string) error
}

// FileStore defines the interface for profile picture blob storage.
type FileStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Handler holds the account HTTP handlers.
type Handler struct {
	users UserStore
	blobs FileStore
	jwt   *JWTManager
}

func NewHandler(users UserStore, blobs FileStore, jwt *JWTManager) *Handler {
	return &Handler{users: users, blobs: blobs, jwt: jwt}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// SignUp creates a new user account.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body"})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "username, email, and password are required"})
		return
	}

	if _, err := h.users.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "message": "User already exists!"})
		return
	}
	if _, err := h.users.GetUserByUsername(r.Context(), req.Username); err == nil {
		writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "message": "User already exists!"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		City:      req.City,
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		slog.Error("sign up failed", "username", req.Username, "error", err)
		writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "message": "User already exists!"})
		return
	}

	slog.Info("user created", "username", user.Username)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User created successfully!",
	})
}

// SignIn authenticates a user and returns a JWT.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid request body"})
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "invalid credentials"})
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		slog.Error("token generation failed", "username", user.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "User logged in successfully!",
		"token":    token,
		"username": user.Username,
	})
}

// UploadProfilePicture stores a multipart image in the blob store and records
// its key on the user.
func (h *Handler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProfilePictureBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid multipart form"})
		return
	}
	username := r.FormValue("username")
	if username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "username is required"})
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "picture file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), username)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "user not found"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	key := fmt.Sprintf("avatars/%s/%s", username, uuid.NewString())
	if err := h.blobs.Put(r.Context(), key, data, contentType); err != nil {
		slog.Error("profile picture upload failed", "username", username, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "upload failed"})
		return
	}

	if err := h.users.SetProfilePicture(r.Context(), username, key); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}
	if user.ProfilePictureKey != "" {
		h.blobs.Remove(r.Context(), user.ProfilePictureKey)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Profile picture updated!"})
}

// ProfilePicture streams a user's profile picture from the blob store.
func (h *Handler) ProfilePicture(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.users.GetUserByUsername(r.Context(), username)
	if errors.Is(err, store.ErrNotFound) || (err == nil && user.ProfilePictureKey == "") {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "profile picture not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "internal error"})
		return
	}

	data, contentType, err := h.blobs.Get(r.Context(), user.ProfilePictureKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "download failed"})
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
