// Package presence tracks lobby-level online membership, independent of
// room seating.
package presence

import (
	"log/slog"
	"sort"
	"sync"

	"mazerace/internal/model"
	"mazerace/internal/transport"
)

// Registry is the set of currently-online usernames. A username has at
// most one entry regardless of how many connections it holds. Every
// mutation broadcasts the full snapshot, never a delta, so clients
// converge even if they miss an event.
type Registry struct {
	transport transport.Transport
	logger    *slog.Logger

	mu     sync.Mutex
	online map[string]struct{}
}

// NewRegistry creates an empty presence registry
func NewRegistry(t transport.Transport, logger *slog.Logger) *Registry {
	return &Registry{
		transport: t,
		logger:    logger.With(slog.String("component", "presence")),
		online:    make(map[string]struct{}),
	}
}

// JoinLobby idempotently adds the username to the online set, joins the
// connection to the lobby group, and broadcasts the snapshot. The
// broadcast is emitted under the registry lock so snapshots reach the
// transport in mutation order; transport calls never block on I/O.
func (r *Registry) JoinLobby(conn transport.ConnID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.online[username] = struct{}{}
	r.transport.Join(transport.LobbyGroup, conn)
	snapshot := r.snapshotLocked()
	r.broadcast(snapshot)
	r.logger.Debug("lobby joined",
		slog.String("username", username),
		slog.Int("online", len(snapshot)))
}

// LeaveLobby idempotently removes the username, leaves the lobby group,
// and broadcasts the snapshot. Removing an unknown username is a no-op
// mutation but still broadcasts.
func (r *Registry) LeaveLobby(conn transport.ConnID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.online, username)
	r.transport.Leave(transport.LobbyGroup, conn)
	snapshot := r.snapshotLocked()
	r.broadcast(snapshot)
	r.logger.Debug("lobby left",
		slog.String("username", username),
		slog.Int("online", len(snapshot)))
}

// Online returns the current snapshot, sorted for stable output.
func (r *Registry) Online() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// IsOnline reports whether the username is in the online set.
func (r *Registry) IsOnline(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.online[username]
	return ok
}

func (r *Registry) snapshotLocked() []string {
	users := make([]string, 0, len(r.online))
	for u := range r.online {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

func (r *Registry) broadcast(snapshot []string) {
	r.transport.Broadcast(transport.LobbyGroup, model.Event{
		Type: model.EventUpdateUserList,
		Data: model.UserListPayload{Users: snapshot},
	})
}
