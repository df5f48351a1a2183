package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mazerace/internal/model"
)

type StorageSuite struct {
	suite.Suite

	ctx   context.Context
	store *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()
}

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{Username: "alice", PasswordHash: "hash"}
	s.Require().NoError(s.store.SavePlayer(s.ctx, player))

	got, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
	s.Equal("hash", got.PasswordHash)
}

func (s *StorageSuite) TestGetPlayerReturnsCopy() {
	s.Require().NoError(s.store.SavePlayer(s.ctx, &model.Player{Username: "alice"}))

	got, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	got.Avatar = "mutated"

	again, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(again.Avatar)
}

func (s *StorageSuite) TestGetMissingPlayer() {
	_, err := s.store.GetPlayer(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestTokenIndexFollowsSetPlayerToken() {
	s.Require().NoError(s.store.SavePlayer(s.ctx, &model.Player{Username: "alice"}))
	s.Require().NoError(s.store.SetPlayerToken(s.ctx, "alice", "hash-1"))

	got, err := s.store.GetPlayerByTokenHash(s.ctx, "hash-1")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)

	// Rotating the token drops the old index entry.
	s.Require().NoError(s.store.SetPlayerToken(s.ctx, "alice", "hash-2"))
	_, err = s.store.GetPlayerByTokenHash(s.ctx, "hash-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	// Clearing the token logs the player out.
	s.Require().NoError(s.store.SetPlayerToken(s.ctx, "alice", ""))
	_, err = s.store.GetPlayerByTokenHash(s.ctx, "hash-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestSetPlayerTokenForMissingPlayer() {
	err := s.store.SetPlayerToken(s.ctx, "ghost", "hash")
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
	s.Require().NoError(s.store.SavePlayer(s.ctx, &model.Player{Username: "alice"}))

	delta := model.StatsDelta{Wins: 1, GamesPlayed: 1, Experience: 30, LevelThreshold: 100}
	s.Require().NoError(s.store.ApplyStatsDelta(s.ctx, "alice", delta))
	s.Require().NoError(s.store.ApplyStatsDelta(s.ctx, "alice", delta))

	got, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Stats{Wins: 2, GamesPlayed: 2, Experience: 60}, got.Stats)
}

func (s *StorageSuite) TestApplyStatsDeltaLevelsUpAtThreshold() {
	s.Require().NoError(s.store.SavePlayer(s.ctx, &model.Player{
		Username: "alice",
		Stats:    model.Stats{Experience: 95},
	}))

	delta := model.StatsDelta{Losses: 1, GamesPlayed: 1, Experience: 10, LevelThreshold: 100}
	s.Require().NoError(s.store.ApplyStatsDelta(s.ctx, "alice", delta))

	got, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, got.Stats.Level)
	s.Equal(5, got.Stats.Experience)
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	record := &model.RoomRecord{ID: "ROOM01", Seed: 42, Players: []string{"alice"}}
	s.Require().NoError(s.store.SaveRoom(s.ctx, record))

	got, err := s.store.GetRoom(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.Equal(int32(42), got.Seed)
	s.Equal([]string{"alice"}, got.Players)

	_, err = s.store.GetRoom(s.ctx, "GHOST1")
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

	removed, err := s.store.DeleteEmptyRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, removed)

	_, err = s.store.GetRoom(s.ctx, "LIVE01")
	s.NoError(err)
}
