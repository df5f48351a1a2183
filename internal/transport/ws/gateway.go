package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"mazerace/internal/middleware"
	"mazerace/internal/model"
	"mazerace/internal/services/auth"
	"mazerace/internal/services/session"
	"mazerace/internal/transport"
)

// Gateway accepts websocket upgrades, binds each connection to a
// resolved identity, and dispatches inbound events to the coordinator.
type Gateway struct {
	hub         *Hub
	auth        *auth.Service
	coordinator *session.Coordinator
	logger      *slog.Logger
}

// NewGateway creates a Gateway
func NewGateway(hub *Hub, authService *auth.Service, coordinator *session.Coordinator, logger *slog.Logger) *Gateway {
	return &Gateway{
		hub:         hub,
		auth:        authService,
		coordinator: coordinator,
		logger:      logger.With(slog.String("component", "ws-gateway")),
	}
}

// ServeHTTP upgrades the connection. Unauthenticated connects are
// rejected at the transport level before the upgrade; everything after
// that follows the fail-closed no-op policy inside the coordinator.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	player, err := g.auth.ResolveToken(r.Context(), middleware.ExtractToken(r))
	if err != nil {
		g.logger.Info("ws connection rejected: unauthenticated",
			slog.String("remote", r.RemoteAddr))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		g.logger.Warn("ws accept failed", slog.Any("error", err))
		return
	}

	id := transport.ConnID(uuid.NewString())
	client := NewClient(id, player.Username, conn, g.logger)

	g.hub.Register(client)
	go client.WritePump(r.Context())

	g.readLoop(r, client, player)
}

// readLoop pumps inbound events until the socket drops, then delivers
// the disconnect like any other event. Cleanup runs on a fresh context:
// the request context is already canceled by the time the socket closes.
func (g *Gateway) readLoop(r *http.Request, client *Client, player *model.Player) {
	ctx := r.Context()
	defer func() {
		g.hub.Unregister(client)
		g.coordinator.Disconnect(context.Background(), client.ID(), player.Username)
	}()

	for {
		event, err := client.ReadEvent(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, ctx.Err()) {
				return
			}
			g.logger.Debug("ws read failed",
				slog.String("username", player.Username),
				slog.Any("error", err))
			return
		}

		g.dispatch(ctx, client, player, event)
	}
}

func (g *Gateway) dispatch(ctx context.Context, client *Client, player *model.Player, event model.ClientEvent) {
	conn := client.ID()

	switch event.Type {
	case model.EventJoinLobby:
		g.coordinator.JoinLobby(conn, player.Username)
	case model.EventLeaveLobby:
		g.coordinator.LeaveLobby(conn, player.Username)
	case model.EventStartGame:
		g.coordinator.StartGame(ctx, event.Room)
	case model.EventJoinRoom:
		g.coordinator.JoinRoom(ctx, conn, player, event.Room)
	case model.EventMove:
		g.coordinator.Move(ctx, player.Username, event.Room, event.Row, event.Col)
	default:
		g.logger.Debug("ws unknown event dropped",
			slog.String("type", string(event.Type)),
			slog.String("username", player.Username))
	}
}
