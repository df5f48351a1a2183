package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"mazerace/internal/middleware"
	"mazerace/internal/model"
	"mazerace/internal/services/auth"
	"mazerace/internal/storage"
)

// maxUploadBytes caps avatar upload size.
const maxUploadBytes = 5 << 20

// allowedAvatarExts is the avatar file extension allow-list.
var allowedAvatarExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ProfileHandler serves the authenticated player's profile and avatar
// uploads.
type ProfileHandler struct {
	storage   storage.Storage
	uploadDir string
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(st storage.Storage, uploadDir string) *ProfileHandler {
	return &ProfileHandler{storage: st, uploadDir: uploadDir}
}

type profileResponse struct {
	Username string      `json:"username"`
	Avatar   string      `json:"avatar,omitempty"`
	Stats    model.Stats `json:"stats"`
}

// Me handles GET /me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())

	// Re-read so stats settled after login are visible.
	fresh, err := h.storage.GetPlayer(r.Context(), player.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "profile unavailable")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Username: fresh.Username,
		Avatar:   fresh.Avatar,
		Stats:    fresh.Stats,
	})
}

// Upload handles POST /upload: a multipart avatar image, validated by
// extension, stored under the upload dir as <username><ext>.
func (h *ProfileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("picture")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedAvatarExts[ext] {
		writeError(w, http.StatusBadRequest, "invalid file type")
		return
	}

	// Registration enforces the path-safe charset; re-check here so a
	// record written around that path can still never leave the upload dir.
	if !auth.ValidateUsername(player.Username) {
		writeError(w, http.StatusBadRequest, "invalid username")
		return
	}

	// The file is named by the username, never the client filename, and
	// usernames are restricted to a path-safe charset at registration.
	// Re-uploads replace the previous avatar.
	filename := player.Username + ext

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	dst, err := os.Create(filepath.Join(h.uploadDir, filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	if err := h.storage.SetPlayerAvatar(r.Context(), player.Username, filename); err != nil {
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"avatar": fmt.Sprintf("/uploads/%s", filename),
	})
}
