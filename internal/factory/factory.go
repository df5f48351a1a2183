// Package factory wires the application's services together.
package factory

import (
	"fmt"
	"io"
	"log/slog"

	"mazerace/internal/config"
	"mazerace/internal/dependencies/clock"
	"mazerace/internal/dependencies/random"
	"mazerace/internal/maze"
	"mazerace/internal/services/auth"
	"mazerace/internal/services/outcome"
	"mazerace/internal/services/presence"
	"mazerace/internal/services/session"
	"mazerace/internal/storage"
	"mazerace/internal/storage/memory"
	"mazerace/internal/storage/postgres"
	redisstorage "mazerace/internal/storage/redis"
	"mazerace/internal/transport/ws"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Real-time transport
	Hub     *ws.Hub
	Gateway *ws.Gateway

	// Services
	AuthService *auth.Service
	Presence    *presence.Registry
	Outcome     *outcome.Resolver
	Coordinator *session.Coordinator
}

// New creates a new application with all dependencies wired
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(cfg, store, clock.New(), random.New(), logger), nil
}

// NewWithDependencies creates an App with the given dependencies
// (useful for testing).
func NewWithDependencies(cfg config.Config, store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	return newWithDependencies(cfg, store, clk, rnd, logger)
}

func newWithDependencies(cfg config.Config, store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	hub := ws.NewHub(logger)

	authService := auth.New(store, clk, logger)
	presenceRegistry := presence.NewRegistry(hub, logger)
	outcomeResolver := outcome.NewResolver(store, hub, outcome.Config{
		WinExperience:  cfg.WinExperience,
		LossExperience: cfg.LossExperience,
		LevelThreshold: cfg.LevelThreshold,
	}, logger)

	sessionCfg := session.Config{
		MazeRows:  cfg.Maze.Rows,
		MazeCols:  cfg.Maze.Cols,
		GoalCells: cfg.Maze.Goals,
	}
	if len(sessionCfg.GoalCells) == 0 {
		sessionCfg.GoalCells = maze.DefaultGoals(sessionCfg.MazeRows, sessionCfg.MazeCols)
	}

	coordinator := session.NewCoordinator(
		store, hub, presenceRegistry, outcomeResolver, rnd, sessionCfg, logger)
	gateway := ws.NewGateway(hub, authService, coordinator, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Hub:         hub,
		Gateway:     gateway,
		AuthService: authService,
		Presence:    presenceRegistry,
		Outcome:     outcomeResolver,
		Coordinator: coordinator,
	}
}

func newStorage(cfg config.Config) (storage.Storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		return redisstorage.New(redisCfg)
	case config.StoragePostgres:
		return postgres.New(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("invalid storage backend %q", cfg.Storage)
	}
}
