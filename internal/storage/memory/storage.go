package memory

import (
	"context"
	"sync"

	"mazerace/internal/model"
	"mazerace/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players        map[string]*model.Player
	tokenHashIndex map[string]string
	rooms          map[model.RoomID]*model.RoomRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:        make(map[string]*model.Player),
		tokenHashIndex: make(map[string]string),
		rooms:          make(map[model.RoomID]*model.RoomRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *player
	s.players[player.Username] = &cp
	if player.TokenHash != "" {
		s.tokenHashIndex[player.TokenHash] = player.Username
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, username string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) GetPlayerByTokenHash(ctx context.Context, tokenHash string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, ok := s.tokenHashIndex[tokenHash]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := s.players[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) SetPlayerToken(ctx context.Context, username, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[username]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if player.TokenHash != "" {
		delete(s.tokenHashIndex, player.TokenHash)
	}
	player.TokenHash = tokenHash
	if tokenHash != "" {
		s.tokenHashIndex[tokenHash] = username
	}
	return nil
}

func (s *Storage) SetPlayerAvatar(ctx context.Context, username, avatar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[username]
	if !ok {
		return model.ErrPlayerNotFound
	}
	player.Avatar = avatar
	return nil
}

func (s *Storage) ApplyStatsDelta(ctx context.Context, username string, delta model.StatsDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[username]
	if !ok {
		return model.ErrPlayerNotFound
	}
	delta.Apply(&player.Stats)
	return nil
}

// Room shadow record operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.RoomRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *room
	cp.Players = append([]string(nil), room.Players...)
	s.rooms[room.ID] = &cp
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.RoomRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	cp := *room
	cp.Players = append([]string(nil), room.Players...)
	return &cp, nil
}

func (s *Storage) AppendRoomPlayer(ctx context.Context, id model.RoomID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return model.ErrRoomNotFound
	}
	if !room.HasPlayer(username) {
		room.Players = append(room.Players, username)
	}
	return nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Storage) DeleteEmptyRooms(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, room := range s.rooms {
		if len(room.Players) == 0 {
			delete(s.rooms, id)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}
