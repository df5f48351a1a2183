package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"mazerace/internal/model"
)

type StorageSuite struct {
	suite.Suite

	ctx   context.Context
	mini  *miniredis.Miniredis
	store *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.ctx = context.Background()
	s.mini = miniredis.RunT(s.T())

	client := goredis.NewClient(&goredis.Options{Addr: s.mini.Addr()})
	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	s.store = NewWithClient(client, cfg)
}

func (s *StorageSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{Username: "alice", PasswordHash: "hash", TokenHash: "token-hash"}
	s.Require().NoError(s.store.SavePlayer(s.ctx, player))

	got, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
	s.Equal("hash", got.PasswordHash)

	// The token index is written in the same pipeline.
	byToken, err := s.store.GetPlayerByTokenHash(s.ctx, "token-hash")
	s.Require().NoError(err)
	s.Equal("alice", byToken.Username)
}

func (s *StorageSuite) TestGetMissingPlayer() {
	_, err := s.store.GetPlayer(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.store.GetPlayerByTokenHash(s.ctx, "no-such-hash")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestSetPlayerTokenRotatesIndex() {
	s.Require().NoError(s.store.SavePlayer(s.ctx, &model.Player{Username: "alice", TokenHash: "old"}))

	s.Require().NoError(s.store.SetPlayerToken(s.ctx, "alice", "new"))

	_, err := s.store.GetPlayerByTokenHash(s.ctx, "old")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	got, err := s.store.GetPlayerByTokenHash(s.ctx, "new")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)

	s.Require().NoError(s.store.SetPlayerToken(s.ctx, "alice", ""))
	_, err = s.store.GetPlayerByTokenHash(s.ctx, "new")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestSetPlayerAvatar() {
	s.Require().NoError(s.store.SavePlayer(s.ctx, &model.Player{Username: "alice"}))
	s.Require().NoError(s.store.SetPlayerAvatar(s.ctx, "alice", "/uploads/alice.png"))

	got, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("/uploads/alice.png", got.Avatar)
}

func (s *StorageSuite) TestApplyStatsDelta() {
	s.Require().NoError(s.store.SavePlayer(s.ctx, &model.Player{
		Username: "alice",
		Stats:    model.Stats{Experience: 80},
	}))

	delta := model.StatsDelta{Wins: 1, GamesPlayed: 1, Experience: 30, LevelThreshold: 100}
	s.Require().NoError(s.store.ApplyStatsDelta(s.ctx, "alice", delta))

	got, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Stats{Wins: 1, GamesPlayed: 1, Experience: 10, Level: 1}, got.Stats)
}

func (s *StorageSuite) TestApplyStatsDeltaMissingPlayer() {
	err := s.store.ApplyStatsDelta(s.ctx, "ghost", model.StatsDelta{Wins: 1})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	record := &model.RoomRecord{ID: "ROOM01", Seed: 42, Players: []string{"alice"}}
	s.Require().NoError(s.store.SaveRoom(s.ctx, record))

	got, err := s.store.GetRoom(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.Equal(int32(42), got.Seed)
	s.Equal([]string{"alice"}, got.Players)

	// Shadow records carry a TTL so abandoned rooms expire on their own.
	s.Greater(s.mini.TTL("mazerace:room:ROOM01"), time.Duration(0))
}

func (s *StorageSuite) TestRoomRecordExpires() {
	s.Require().NoError(s.store.SaveRoom(s.ctx, &model.RoomRecord{ID: "ROOM01", Seed: 1}))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.store.GetRoom(s.ctx, "ROOM01")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestAppendRoomPlayerDeduplicates() {
	s.Require().NoError(s.store.SaveRoom(s.ctx, &model.RoomRecord{ID: "ROOM01", Seed: 1}))

	s.Require().NoError(s.store.AppendRoomPlayer(s.ctx, "ROOM01", "alice"))
	s.Require().NoError(s.store.AppendRoomPlayer(s.ctx, "ROOM01", "bob"))
	s.Require().NoError(s.store.AppendRoomPlayer(s.ctx, "ROOM01", "alice"))

	got, err := s.store.GetRoom(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.Equal([]string{"alice", "bob"}, got.Players)
}

func (s *StorageSuite) TestAppendRoomPlayerMissingRoom() {
	err := s.store.AppendRoomPlayer(s.ctx, "GHOST1", "alice")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoom() {
	s.Require().NoError(s.store.SaveRoom(s.ctx, &model.RoomRecord{ID: "ROOM01"}))
	s.Require().NoError(s.store.DeleteRoom(s.ctx, "ROOM01"))

	_, err := s.store.GetRoom(s.ctx, "ROOM01")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteEmptyRooms() {
	s.Require().NoError(s.store.SaveRoom(s.ctx, &model.RoomRecord{ID: "EMPTY1"}))
	s.Require().NoError(s.store.SaveRoom(s.ctx, &model.RoomRecord{ID: "EMPTY2"}))
	s.Require().NoError(s.store.SaveRoom(s.ctx, &model.RoomRecord{ID: "LIVE01", Players: []string{"alice"}}))
	// Player keys must not be touched by the room scan.
	s.Require().NoError(s.store.SavePlayer(s.ctx, &model.Player{Username: "alice"}))

	removed, err := s.store.DeleteEmptyRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, removed)

	_, err = s.store.GetRoom(s.ctx, "LIVE01")
	s.NoError(err)
	_, err = s.store.GetPlayer(s.ctx, "alice")
	s.NoError(err)
}
