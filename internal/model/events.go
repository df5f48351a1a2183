package model

// EventType names a real-time protocol event.
type EventType string

// Events received from clients
const (
	EventJoinLobby  EventType = "join_lobby"
	EventLeaveLobby EventType = "leave_lobby"
	EventStartGame  EventType = "start_game"
	EventJoinRoom   EventType = "join_room"
	EventMove       EventType = "move"
)

// Events sent to clients
const (
	EventUpdateUserList EventType = "update_user_list"
	EventGameStart      EventType = "game_start"
	EventJoinGameAck    EventType = "join_game_ack"
	EventPlayerJoined   EventType = "player_joined"
	EventUpdatePlayers  EventType = "update_players"
	EventPlayerMoved    EventType = "player_moved"
	EventPlayerWon      EventType = "player_won"
	EventPlayerLeft     EventType = "player_left"
)

// Event is a named message on the real-time protocol.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// ClientEvent is the inbound wire shape. Only the fields relevant to the
// named event type are read; the acting username always comes from the
// resolved identity, never from the payload.
type ClientEvent struct {
	Type EventType `json:"type"`
	Room RoomID    `json:"room,omitempty"`
	Row  int       `json:"row"`
	Col  int       `json:"col"`
}

// UserListPayload is the full online-set snapshot for update_user_list.
type UserListPayload struct {
	Users []string `json:"users"`
}

// GameStartPayload announces a new room to the lobby.
type GameStartPayload struct {
	Room RoomID `json:"room"`
	Seed int32  `json:"seed"`
}

// SeatState is a player's position within a room as sent to clients.
type SeatState struct {
	Username string `json:"username"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Avatar   string `json:"avatar,omitempty"`
}

// JoinGameAckPayload is sent point-to-point to a joining connection and
// lists the players already seated when it joined.
type JoinGameAckPayload struct {
	Room    RoomID      `json:"room"`
	Players []SeatState `json:"players"`
}

// PlayerListPayload is the full seated-username list for update_players.
type PlayerListPayload struct {
	Players []string `json:"players"`
}

// PlayerWonPayload names the winner of a finished match.
type PlayerWonPayload struct {
	Winner string `json:"winner"`
}

// PlayerLeftPayload names a player that left a room.
type PlayerLeftPayload struct {
	Username string `json:"username"`
}
