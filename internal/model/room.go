package model

import "time"

// RoomID identifies a game room.
type RoomID string

// RoomRecord is the durable shadow of a room: its id, the maze seed, and
// every username that has ever taken a seat in it. The player list only
// grows; it is what the outcome resolver attributes statistics against,
// including players who disconnected before the match ended.
type RoomRecord struct {
	ID        RoomID    `json:"id"`
	Seed      int32     `json:"seed"`
	Players   []string  `json:"players"`
	CreatedAt time.Time `json:"created_at"`
}

// HasPlayer reports whether a username is already recorded for the room.
func (r *RoomRecord) HasPlayer(username string) bool {
	for _, p := range r.Players {
		if p == username {
			return true
		}
	}
	return false
}
