// Package outcome evaluates win conditions and settles durable statistics.
package outcome

import (
	"context"
	"log/slog"

	"mazerace/internal/maze"
	"mazerace/internal/model"
	"mazerace/internal/storage"
	"mazerace/internal/transport"
)

// Config tunes the experience awards and leveling threshold.
type Config struct {
	WinExperience  int
	LossExperience int
	LevelThreshold int
}

// DefaultConfig returns the standard award values.
func DefaultConfig() Config {
	return Config{
		WinExperience:  30,
		LossExperience: 10,
		LevelThreshold: 100,
	}
}

// Resolver decides whether a move ends the match and, if so, emits the
// terminal event and settles statistics for everyone ever seated in the
// room.
type Resolver struct {
	storage   storage.Storage
	transport transport.Transport
	logger    *slog.Logger
	cfg       Config
}

// NewResolver creates a Resolver
func NewResolver(st storage.Storage, t transport.Transport, cfg Config, logger *slog.Logger) *Resolver {
	if cfg.LevelThreshold == 0 {
		cfg = DefaultConfig()
	}
	return &Resolver{
		storage:   st,
		transport: t,
		logger:    logger.With(slog.String("component", "outcome")),
		cfg:       cfg,
	}
}

// Evaluate checks whether the position just reached is a goal cell. On a
// win it broadcasts player_won to the whole room exactly once, then
// updates statistics best-effort: the broadcast is never blocked or
// rolled back by a storage failure. Returns true when the move won.
func (r *Resolver) Evaluate(ctx context.Context, roomID model.RoomID, layout *maze.Layout, winner string, row, col int) bool {
	if layout == nil || !layout.IsGoal(row, col) {
		return false
	}

	// Real-time first: clients learn the result even if bookkeeping fails.
	r.transport.Broadcast(transport.RoomGroup(roomID), model.Event{
		Type: model.EventPlayerWon,
		Data: model.PlayerWonPayload{Winner: winner},
	})

	r.logger.Info("match won",
		slog.String("room", string(roomID)),
		slog.String("winner", winner))

	r.settleStats(ctx, roomID, winner)
	return true
}

// settleStats attributes the result to every username the shadow record
// has ever seen, not just the currently-connected seats.
func (r *Resolver) settleStats(ctx context.Context, roomID model.RoomID, winner string) {
	record, err := r.storage.GetRoom(ctx, roomID)
	if err != nil {
		r.logger.Error("stats skipped: shadow record unavailable",
			slog.String("room", string(roomID)),
			slog.Any("error", err))
		return
	}

	for _, username := range record.Players {
		delta := model.StatsDelta{
			GamesPlayed:    1,
			LevelThreshold: r.cfg.LevelThreshold,
		}
		if username == winner {
			delta.Wins = 1
			delta.Experience = r.cfg.WinExperience
		} else {
			delta.Losses = 1
			delta.Experience = r.cfg.LossExperience
		}

		if err := r.storage.ApplyStatsDelta(ctx, username, delta); err != nil {
			r.logger.Error("stats update failed",
				slog.String("room", string(roomID)),
				slog.String("username", username),
				slog.Any("error", err))
		}
	}
}
