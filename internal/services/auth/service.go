package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"mazerace/internal/dependencies/clock"
	"mazerace/internal/model"
	"mazerace/internal/storage"
)

// passwordSpecials is the set of special characters a password may use.
const passwordSpecials = "!@#$%^&()-_="

// maxUsernameLength bounds usernames; the minimum is one character.
const maxUsernameLength = 32

// Service handles registration, login, and bearer-token resolution.
// Tokens are opaque; only their sha256 hash is ever persisted.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "auth")),
	}
}

// Register creates a new player account. The username must match
// [A-Za-z0-9_-]: it names the avatar file on disk, so path separators
// and dot sequences must never get in. The password must be at least 8
// characters with an upper-case letter, a lower-case letter, a digit, and
// a special character, and nothing outside those classes.
func (s *Service) Register(ctx context.Context, username, password string) (*model.Player, error) {
	if !ValidateUsername(username) {
		return nil, model.ErrInvalidUsername
	}
	if !ValidatePassword(password) {
		return nil, model.ErrWeakPassword
	}

	_, err := s.storage.GetPlayer(ctx, username)
	if err == nil {
		return nil, model.ErrUsernameExists
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	player := &model.Player{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player registered", slog.String("username", username))
	return player, nil
}

// Login verifies credentials and issues a fresh bearer token. The raw
// token is returned exactly once; only its hash is stored.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	player, err := s.storage.GetPlayer(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return "", model.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
		return "", model.ErrInvalidCredentials
	}

	token := generateToken()
	if err := s.storage.SetPlayerToken(ctx, username, HashToken(token)); err != nil {
		return "", err
	}

	s.logger.Info("player logged in", slog.String("username", username))
	return token, nil
}

// Logout invalidates the player's current token.
func (s *Service) Logout(ctx context.Context, username string) error {
	return s.storage.SetPlayerToken(ctx, username, "")
}

// ResolveToken maps a bearer token to its player. This is the identity
// resolver for the real-time layer: a pure lookup with no side effects.
func (s *Service) ResolveToken(ctx context.Context, token string) (*model.Player, error) {
	if token == "" {
		return nil, model.ErrInvalidToken
	}
	player, err := s.storage.GetPlayerByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, model.ErrInvalidToken
		}
		return nil, err
	}
	return player, nil
}

// HashToken returns the hex sha256 of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateUsername checks the username charset and length rules without
// touching storage.
func ValidateUsername(username string) bool {
	if len(username) == 0 || len(username) > maxUsernameLength {
		return false
	}
	for _, c := range username {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

// ValidatePassword checks the password rules without touching storage.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, c):
			hasSpecial = true
		default:
			return false
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

// generateToken produces a URL-safe random bearer token
func generateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
