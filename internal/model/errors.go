package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrUsernameExists = errors.New("username already exists")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidUsername    = errors.New("username contains invalid characters")
	ErrWeakPassword       = errors.New("password does not meet requirements")

	// Room errors
	ErrRoomNotFound = errors.New("room not found")
)
