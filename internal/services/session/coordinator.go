// Package session holds the room directory and the coordinator that
// drives connection lifecycle events against it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"mazerace/internal/dependencies/random"
	"mazerace/internal/maze"
	"mazerace/internal/model"
	"mazerace/internal/services/outcome"
	"mazerace/internal/services/presence"
	"mazerace/internal/storage"
	"mazerace/internal/transport"
)

const (
	// RoomIDLength is the length of generated room identifiers
	RoomIDLength = 6
	// RoomIDAlphabet is the characters used in room ids (avoid confusing chars)
	RoomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Config holds maze geometry shared by every room.
type Config struct {
	MazeRows  int
	MazeCols  int
	GoalCells []maze.Position
}

// DefaultConfig returns the standard 20x20 maze with a single goal cell.
func DefaultConfig() Config {
	return Config{
		MazeRows:  maze.DefaultRows,
		MazeCols:  maze.DefaultCols,
		GoalCells: maze.DefaultGoals(maze.DefaultRows, maze.DefaultCols),
	}
}

// Seat is a player's transient state within one room.
type Seat struct {
	Username string
	Avatar   string
	Row      int
	Col      int
	Conn     transport.ConnID
}

// room is one in-progress match: its maze and seat mapping. All seat
// read-modify-writes for a room happen under its mutex, which also
// covers broadcast emission so delivery order matches mutation order.
type room struct {
	mu     sync.Mutex
	id     model.RoomID
	layout *maze.Layout
	seats  map[string]*Seat
}

// Coordinator orchestrates connect/join/move/disconnect events against
// the presence registry and the room directory.
type Coordinator struct {
	storage   storage.Storage
	transport transport.Transport
	presence  *presence.Registry
	outcome   *outcome.Resolver
	random    random.Random
	logger    *slog.Logger
	cfg       Config

	// mu guards insert/delete on the room map; per-room seat mutation
	// is serialized by each room's own mutex.
	mu    sync.RWMutex
	rooms map[model.RoomID]*room
}

// NewCoordinator creates a Coordinator
func NewCoordinator(
	st storage.Storage,
	t transport.Transport,
	pr *presence.Registry,
	oc *outcome.Resolver,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	if cfg.MazeRows == 0 || cfg.MazeCols == 0 {
		cfg = DefaultConfig()
	}
	return &Coordinator{
		storage:   st,
		transport: t,
		presence:  pr,
		outcome:   oc,
		random:    rnd,
		logger:    logger.With(slog.String("component", "session")),
		cfg:       cfg,
		rooms:     make(map[model.RoomID]*room),
	}
}

// JoinLobby adds the connection's player to lobby presence.
func (c *Coordinator) JoinLobby(conn transport.ConnID, username string) {
	c.presence.JoinLobby(conn, username)
}

// LeaveLobby removes the connection's player from lobby presence.
func (c *Coordinator) LeaveLobby(conn transport.ConnID, username string) {
	c.presence.LeaveLobby(conn, username)
}

// StartGame allocates a room id and maze seed, prunes abandoned shadow
// records, persists the new shadow record, and announces the game to the
// whole lobby group so any member may join. Returns the room id and seed.
func (c *Coordinator) StartGame(ctx context.Context, requested model.RoomID) (model.RoomID, int32) {
	id := requested
	if id == "" {
		id = model.RoomID(c.random.String(RoomIDLength, RoomIDAlphabet))
	}
	seed := c.random.Seed()

	// Lazy pruning: rooms whose shadow record never gained a player are
	// leftovers from games nobody joined.
	if pruned, err := c.storage.DeleteEmptyRooms(ctx); err != nil {
		c.logger.Error("pruning abandoned rooms failed", slog.Any("error", err))
	} else if pruned > 0 {
		c.logger.Info("pruned abandoned rooms", slog.Int("count", pruned))
	}

	record := &model.RoomRecord{ID: id, Seed: seed}
	if err := c.storage.SaveRoom(ctx, record); err != nil {
		// Best effort: the real-time game still starts.
		c.logger.Error("saving room shadow record failed",
			slog.String("room", string(id)),
			slog.Any("error", err))
	}

	c.transport.Broadcast(transport.LobbyGroup, model.Event{
		Type: model.EventGameStart,
		Data: model.GameStartPayload{Room: id, Seed: seed},
	})

	c.logger.Info("game started",
		slog.String("room", string(id)),
		slog.Int("seed", int(seed)))
	return id, seed
}

// JoinRoom seats the player at the maze start cell. The joining
// connection gets a point-to-point ack listing the players already
// seated; the rest of the room gets player_joined; everyone gets the
// full seated-username sync. Joining twice with the same username
// overwrites the seat.
func (c *Coordinator) JoinRoom(ctx context.Context, conn transport.ConnID, player *model.Player, roomID model.RoomID) {
	if player == nil || roomID == "" {
		return
	}

	// Resolve the seed before touching in-memory state; no store I/O
	// happens under the room locks below.
	seed := c.resolveSeed(ctx, roomID)

	rm := c.getOrCreateRoom(roomID, seed)
	group := transport.RoomGroup(roomID)

	rm.mu.Lock()
	start := rm.layout.Start()

	existing := make([]model.SeatState, 0, len(rm.seats))
	for _, seat := range rm.seats {
		if seat.Username == player.Username {
			continue
		}
		existing = append(existing, model.SeatState{
			Username: seat.Username,
			Row:      seat.Row,
			Col:      seat.Col,
			Avatar:   seat.Avatar,
		})
	}

	rm.seats[player.Username] = &Seat{
		Username: player.Username,
		Avatar:   player.Avatar,
		Row:      start.Row,
		Col:      start.Col,
		Conn:     conn,
	}

	// Emission order is load-bearing: ack, then join broadcast, then
	// list sync. The ack is point-to-point so the joiner can render
	// opponents without racing the broadcast.
	c.transport.Join(group, conn)
	c.transport.Send(conn, model.Event{
		Type: model.EventJoinGameAck,
		Data: model.JoinGameAckPayload{Room: roomID, Players: existing},
	})
	c.transport.Broadcast(group, model.Event{
		Type: model.EventPlayerJoined,
		Data: model.SeatState{
			Username: player.Username,
			Row:      start.Row,
			Col:      start.Col,
			Avatar:   player.Avatar,
		},
	}, conn)
	c.transport.Broadcast(group, model.Event{
		Type: model.EventUpdatePlayers,
		Data: model.PlayerListPayload{Players: seatUsernamesLocked(rm)},
	})
	rm.mu.Unlock()

	if err := c.storage.AppendRoomPlayer(ctx, roomID, player.Username); err != nil {
		c.logger.Error("appending player to shadow record failed",
			slog.String("room", string(roomID)),
			slog.String("username", player.Username),
			slog.Any("error", err))
	}

	c.logger.Info("player joined room",
		slog.String("room", string(roomID)),
		slog.String("username", player.Username))
}

// Move revalidates and applies a position change. The client computed
// the candidate cell, but the server owns wall collision: out-of-bounds
// or wall targets are silent no-ops with no broadcast. An accepted move
// is broadcast to the rest of the room, then checked for a win.
func (c *Coordinator) Move(ctx context.Context, username string, roomID model.RoomID, row, col int) {
	c.mu.RLock()
	rm := c.rooms[roomID]
	c.mu.RUnlock()
	if rm == nil {
		return
	}

	rm.mu.Lock()
	seat, ok := rm.seats[username]
	if !ok || rm.layout.IsWall(row, col) {
		rm.mu.Unlock()
		return
	}

	seat.Row = row
	seat.Col = col

	c.transport.Broadcast(transport.RoomGroup(roomID), model.Event{
		Type: model.EventPlayerMoved,
		Data: model.SeatState{Username: username, Row: row, Col: col},
	}, seat.Conn)
	layout := rm.layout
	rm.mu.Unlock()

	c.outcome.Evaluate(ctx, roomID, layout, username, row, col)
}

// Disconnect cleans up everything the connection owned: its lobby
// presence entry and any seat bound to its handle, across all rooms.
// Delivered by the transport like any other event.
func (c *Coordinator) Disconnect(ctx context.Context, conn transport.ConnID, username string) {
	c.presence.LeaveLobby(conn, username)

	c.mu.RLock()
	all := make([]*room, 0, len(c.rooms))
	for _, rm := range c.rooms {
		all = append(all, rm)
	}
	c.mu.RUnlock()

	for _, rm := range all {
		c.removeSeatOwnedBy(rm, conn)
	}
}

// removeSeatOwnedBy drops the seat bound to conn, if any, and notifies
// the remaining members. An emptied room is removed from the directory.
func (c *Coordinator) removeSeatOwnedBy(rm *room, conn transport.ConnID) {
	group := transport.RoomGroup(rm.id)

	rm.mu.Lock()
	var removed string
	for username, seat := range rm.seats {
		if seat.Conn == conn {
			removed = username
			delete(rm.seats, username)
			break
		}
	}
	if removed == "" {
		rm.mu.Unlock()
		return
	}

	c.transport.Leave(group, conn)
	c.transport.Broadcast(group, model.Event{
		Type: model.EventPlayerLeft,
		Data: model.PlayerLeftPayload{Username: removed},
	})
	c.transport.Broadcast(group, model.Event{
		Type: model.EventUpdatePlayers,
		Data: model.PlayerListPayload{Players: seatUsernamesLocked(rm)},
	})
	empty := len(rm.seats) == 0
	rm.mu.Unlock()

	if empty {
		c.mu.Lock()
		if cur, ok := c.rooms[rm.id]; ok && cur == rm {
			delete(c.rooms, rm.id)
		}
		c.mu.Unlock()
	}

	c.logger.Info("player left room",
		slog.String("room", string(rm.id)),
		slog.String("username", removed))
}

// Seats returns a snapshot of the room's seats, or nil if the room is
// not live.
func (c *Coordinator) Seats(roomID model.RoomID) []model.SeatState {
	c.mu.RLock()
	rm := c.rooms[roomID]
	c.mu.RUnlock()
	if rm == nil {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]model.SeatState, 0, len(rm.seats))
	for _, seat := range rm.seats {
		out = append(out, model.SeatState{
			Username: seat.Username,
			Row:      seat.Row,
			Col:      seat.Col,
			Avatar:   seat.Avatar,
		})
	}
	return out
}

// resolveSeed reads the room's seed from the shadow record, creating the
// record if the room was never announced via StartGame.
func (c *Coordinator) resolveSeed(ctx context.Context, roomID model.RoomID) int32 {
	record, err := c.storage.GetRoom(ctx, roomID)
	if err == nil {
		return record.Seed
	}
	if !errors.Is(err, model.ErrRoomNotFound) {
		c.logger.Error("reading room shadow record failed",
			slog.String("room", string(roomID)),
			slog.Any("error", err))
		return 0
	}

	seed := c.random.Seed()
	if err := c.storage.SaveRoom(ctx, &model.RoomRecord{ID: roomID, Seed: seed}); err != nil {
		c.logger.Error("saving room shadow record failed",
			slog.String("room", string(roomID)),
			slog.Any("error", err))
	}
	return seed
}

func (c *Coordinator) getOrCreateRoom(roomID model.RoomID, seed int32) *room {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rm, ok := c.rooms[roomID]; ok {
		return rm
	}
	rm := &room{
		id:     roomID,
		layout: maze.Generate(c.cfg.MazeRows, c.cfg.MazeCols, seed, c.cfg.GoalCells),
		seats:  make(map[string]*Seat),
	}
	c.rooms[roomID] = rm
	return rm
}

// seatUsernamesLocked returns the seated usernames sorted for stable
// output; callers hold rm.mu.
func seatUsernamesLocked(rm *room) []string {
	players := make([]string, 0, len(rm.seats))
	for username := range rm.seats {
		players = append(players, username)
	}
	sort.Strings(players)
	return players
}
