// Package transport defines how real-time events reach connected clients.
// The coordinator and presence registry speak only to the Transport
// interface; the websocket gateway under transport/ws is the live
// implementation.
package transport

import (
	"mazerace/internal/model"
)

// ConnID identifies a single live connection for its lifetime.
type ConnID string

// GroupID names a broadcast group. The lobby is one group; each room is
// its own group.
type GroupID string

// LobbyGroup is the group every lobby member belongs to.
const LobbyGroup GroupID = "lobby"

// RoomGroup returns the broadcast group for a room.
func RoomGroup(id model.RoomID) GroupID {
	return GroupID("room:" + string(id))
}

// Transport delivers events to connections. Implementations must preserve
// per-group emission order. Sends to unknown connections or groups are
// silently dropped.
type Transport interface {
	// Send delivers an event to a single connection.
	Send(conn ConnID, event model.Event)

	// Broadcast delivers an event to every member of a group, skipping
	// any connections listed in exclude.
	Broadcast(group GroupID, event model.Event, exclude ...ConnID)

	// Join adds a connection to a group.
	Join(group GroupID, conn ConnID)

	// Leave removes a connection from a group.
	Leave(group GroupID, conn ConnID)
}
