// Package ws is the live websocket implementation of the transport layer.
package ws

import (
	"log/slog"
	"sync"
	"time"

	"mazerace/internal/model"
	"mazerace/internal/transport"
)

// Hub tracks connected clients and their group memberships, and fans
// events out to them. Enqueueing is synchronous under the hub lock so
// delivery order per group matches emission order; the per-client send
// buffer decouples slow sockets, dropping when full rather than
// blocking the emitter.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[transport.ConnID]*Client
	groups  map[transport.GroupID]map[transport.ConnID]*Client
}

// Ensure Hub implements Transport
var _ transport.Transport = (*Hub)(nil)

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With(slog.String("component", "ws")),
		clients: make(map[transport.ConnID]*Client),
		groups:  make(map[transport.GroupID]map[transport.ConnID]*Client),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client registered",
		slog.String("conn", string(client.id)),
		slog.String("username", client.username),
		slog.Int("total_clients", total))
}

// Unregister removes a client from the hub and every group, and closes
// its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)
	for group, members := range h.groups {
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	close(client.send)
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client unregistered",
		slog.String("conn", string(client.id)),
		slog.String("username", client.username),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", total))
}

// Send delivers an event to one connection. Unknown connections are
// silently dropped. Enqueueing happens under the read lock so it can
// never race a channel close in Unregister.
func (h *Hub) Send(conn transport.ConnID, event model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client := h.clients[conn]
	if client == nil {
		return
	}
	h.enqueue(client, event)
}

// Broadcast delivers an event to every member of a group except the
// excluded connections. Unknown groups are silently dropped.
func (h *Hub) Broadcast(group transport.GroupID, event model.Event, exclude ...transport.ConnID) {
	h.mu.RLock()
	defer h.mu.RUnlock()

outer:
	for id, client := range h.groups[group] {
		for _, ex := range exclude {
			if id == ex {
				continue outer
			}
		}
		h.enqueue(client, event)
	}
}

// Join adds a connection to a group. Unknown connections are ignored.
func (h *Hub) Join(group transport.GroupID, conn transport.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[conn]
	if !ok {
		return
	}
	if h.groups[group] == nil {
		h.groups[group] = make(map[transport.ConnID]*Client)
	}
	h.groups[group][conn] = client
}

// Leave removes a connection from a group.
func (h *Hub) Leave(group transport.GroupID, conn transport.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// GroupSize returns the number of connections in a group.
func (h *Hub) GroupSize(group transport.GroupID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) enqueue(client *Client, event model.Event) {
	select {
	case client.send <- event:
	default:
		h.logger.Warn("ws message dropped - client buffer full",
			slog.String("conn", string(client.id)),
			slog.String("username", client.username),
			slog.String("event", string(event.Type)))
	}
}
