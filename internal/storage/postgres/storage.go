package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"mazerace/internal/model"
	"mazerace/internal/storage"
)

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens a connection pool against databaseURL and ensures the schema
// exists.
func New(databaseURL string) (*Storage, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing database handle (for testing)
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			username      TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			token_hash    TEXT NOT NULL DEFAULT '',
			avatar        TEXT NOT NULL DEFAULT '',
			wins          INT  NOT NULL DEFAULT 0,
			losses        INT  NOT NULL DEFAULT 0,
			games_played  INT  NOT NULL DEFAULT 0,
			experience    INT  NOT NULL DEFAULT 0,
			level         INT  NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS players_token_hash_idx
			ON players (token_hash) WHERE token_hash <> '';
		CREATE TABLE IF NOT EXISTS rooms (
			id         TEXT PRIMARY KEY,
			seed       INT NOT NULL,
			players    TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (
			username, password_hash, token_hash, avatar,
			wins, losses, games_played, experience, level, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			token_hash    = EXCLUDED.token_hash,
			avatar        = EXCLUDED.avatar,
			wins          = EXCLUDED.wins,
			losses        = EXCLUDED.losses,
			games_played  = EXCLUDED.games_played,
			experience    = EXCLUDED.experience,
			level         = EXCLUDED.level`,
		player.Username, player.PasswordHash, player.TokenHash, player.Avatar,
		player.Stats.Wins, player.Stats.Losses, player.Stats.GamesPlayed,
		player.Stats.Experience, player.Stats.Level, player.CreatedAt,
	)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, username string) (*model.Player, error) {
	return s.scanPlayer(s.db.QueryRowContext(ctx, `
		SELECT username, password_hash, token_hash, avatar,
			wins, losses, games_played, experience, level, created_at
		FROM players WHERE username = $1`, username))
}

func (s *Storage) GetPlayerByTokenHash(ctx context.Context, tokenHash string) (*model.Player, error) {
	if tokenHash == "" {
		return nil, model.ErrPlayerNotFound
	}
	return s.scanPlayer(s.db.QueryRowContext(ctx, `
		SELECT username, password_hash, token_hash, avatar,
			wins, losses, games_played, experience, level, created_at
		FROM players WHERE token_hash = $1`, tokenHash))
}

func (s *Storage) scanPlayer(row *sql.Row) (*model.Player, error) {
	var p model.Player
	err := row.Scan(
		&p.Username, &p.PasswordHash, &p.TokenHash, &p.Avatar,
		&p.Stats.Wins, &p.Stats.Losses, &p.Stats.GamesPlayed,
		&p.Stats.Experience, &p.Stats.Level, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Storage) SetPlayerToken(ctx context.Context, username, tokenHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET token_hash = $2 WHERE username = $1`,
		username, tokenHash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Storage) SetPlayerAvatar(ctx context.Context, username, avatar string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET avatar = $2 WHERE username = $1`,
		username, avatar)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Storage) ApplyStatsDelta(ctx context.Context, username string, delta model.StatsDelta) error {
	// Single statement so concurrent deltas never interleave. The level
	// threshold is applied once, mirroring model.StatsDelta.Apply.
	res, err := s.db.ExecContext(ctx, `
		UPDATE players SET
			wins         = wins + $2,
			losses       = losses + $3,
			games_played = games_played + $4,
			level = CASE WHEN $6 > 0 AND experience + $5 >= $6
				THEN level + 1 ELSE level END,
			experience = CASE WHEN $6 > 0 AND experience + $5 >= $6
				THEN experience + $5 - $6 ELSE experience + $5 END
		WHERE username = $1`,
		username, delta.Wins, delta.Losses, delta.GamesPlayed,
		delta.Experience, delta.LevelThreshold)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Room shadow record operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.RoomRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, seed, players, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET
			seed = EXCLUDED.seed,
			players = EXCLUDED.players`,
		string(room.ID), room.Seed, pq.Array(room.Players), room.CreatedAt)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.RoomRecord, error) {
	var room model.RoomRecord
	var players []string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, seed, players, created_at FROM rooms WHERE id = $1`,
		string(id)).Scan(&room.ID, &room.Seed, pq.Array(&players), &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}
	room.Players = players
	return &room, nil
}

func (s *Storage) AppendRoomPlayer(ctx context.Context, id model.RoomID, username string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE rooms SET players = CASE
			WHEN $2 = ANY(players) THEN players
			ELSE array_append(players, $2)
		END WHERE id = $1`,
		string(id), username)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrRoomNotFound
	}
	return nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, string(id))
	return err
}

func (s *Storage) DeleteEmptyRooms(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM rooms WHERE cardinality(players) = 0`)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}
