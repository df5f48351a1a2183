package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"mazerace/internal/middleware"
	"mazerace/internal/services/auth"
	"mazerace/internal/storage"
	"mazerace/internal/transport/ws"
	"mazerace/internal/web/handler"
)

// RouterConfig holds the dependencies for the HTTP router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Storage     storage.Storage
	Gateway     *ws.Gateway
	UploadDir   string
}

// NewRouter creates the HTTP router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(cfg.AuthService)
	profileHandler := handler.NewProfileHandler(cfg.Storage, cfg.UploadDir)

	authMiddleware := middleware.Auth(cfg.AuthService)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Account routes (no auth required)
	r.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// Protected routes
	protected := r.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/me", profileHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/upload", profileHandler.Upload).Methods(http.MethodPost)

	// Real-time entry; the gateway does its own token resolution so it
	// can reject before the upgrade.
	r.Handle("/ws", cfg.Gateway).Methods(http.MethodGet)

	// Uploaded avatars
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Health check endpoint (no auth)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
