package redis

import (
	"fmt"

	"mazerace/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "mazerace"

// playerKey returns the Redis key for a Player
func playerKey(username string) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, username)
}

// tokenIndexKey returns the Redis key for the token_hash -> username index
func tokenIndexKey(tokenHash string) string {
	return fmt.Sprintf("%s:idx:token:%s", keyPrefix, tokenHash)
}

// roomKey returns the Redis key for a room shadow record
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomKeyPattern matches all room shadow record keys
func roomKeyPattern() string {
	return fmt.Sprintf("%s:room:*", keyPrefix)
}
