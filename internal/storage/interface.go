package storage

import (
	"context"

	"mazerace/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, username string) (*model.Player, error)
	GetPlayerByTokenHash(ctx context.Context, tokenHash string) (*model.Player, error)
	SetPlayerToken(ctx context.Context, username, tokenHash string) error
	SetPlayerAvatar(ctx context.Context, username, avatar string) error

	// ApplyStatsDelta applies the delta to the player's stats as a single
	// read-modify-write. Implementations must not interleave two deltas
	// for the same player.
	ApplyStatsDelta(ctx context.Context, username string, delta model.StatsDelta) error

	// Room shadow record operations
	SaveRoom(ctx context.Context, room *model.RoomRecord) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.RoomRecord, error)
	AppendRoomPlayer(ctx context.Context, id model.RoomID, username string) error
	DeleteRoom(ctx context.Context, id model.RoomID) error

	// DeleteEmptyRooms removes all shadow records with no recorded
	// players and returns how many were removed.
	DeleteEmptyRooms(ctx context.Context) (int, error)

	// Close releases any underlying resources
	Close() error
}
