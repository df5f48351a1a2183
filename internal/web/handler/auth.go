package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"mazerace/internal/middleware"
	"mazerace/internal/model"
	"mazerace/internal/services/auth"
)

// tokenMaxAge is the auth cookie lifetime in seconds (7 days).
const tokenMaxAge = 60 * 60 * 24 * 7

// AuthHandler handles registration, login, and logout
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	_, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameExists):
			writeError(w, http.StatusConflict, "username already exists")
		case errors.Is(err, model.ErrInvalidUsername):
			writeError(w, http.StatusBadRequest, "username may only contain letters, digits, underscore, and hyphen")
		case errors.Is(err, model.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "password does not meet security requirements")
		default:
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   tokenMaxAge,
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	if player != nil {
		if err := h.authService.Logout(r.Context(), player.Username); err != nil {
			writeError(w, http.StatusInternalServerError, "logout failed")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
