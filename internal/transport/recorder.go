package transport

import (
	"sync"

	"mazerace/internal/model"
)

// Delivery is one recorded transport operation.
type Delivery struct {
	// Conn is set for point-to-point sends.
	Conn ConnID
	// Group is set for broadcasts.
	Group   GroupID
	Event   model.Event
	Exclude []ConnID
}

// Recorder is a Transport that records every operation in emission order.
// Used by service tests to assert on broadcast side effects without a
// live gateway.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
	groups     map[GroupID]map[ConnID]struct{}
}

// Ensure Recorder implements Transport
var _ Transport = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		groups: make(map[GroupID]map[ConnID]struct{}),
	}
}

// Send records a point-to-point delivery.
func (r *Recorder) Send(conn ConnID, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, Delivery{Conn: conn, Event: event})
}

// Broadcast records a group delivery.
func (r *Recorder) Broadcast(group GroupID, event model.Event, exclude ...ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, Delivery{
		Group:   group,
		Event:   event,
		Exclude: append([]ConnID(nil), exclude...),
	})
}

// Join records group membership.
func (r *Recorder) Join(group GroupID, conn ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.groups[group] == nil {
		r.groups[group] = make(map[ConnID]struct{})
	}
	r.groups[group][conn] = struct{}{}
}

// Leave removes group membership.
func (r *Recorder) Leave(group GroupID, conn ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups[group], conn)
}

// Deliveries returns all recorded operations in order.
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Delivery(nil), r.deliveries...)
}

// DeliveriesOfType returns recorded operations carrying the given event type.
func (r *Recorder) DeliveriesOfType(t model.EventType) []Delivery {
	var out []Delivery
	for _, d := range r.Deliveries() {
		if d.Event.Type == t {
			out = append(out, d)
		}
	}
	return out
}

// InGroup reports whether a connection is currently a member of a group.
func (r *Recorder) InGroup(group GroupID, conn ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.groups[group][conn]
	return ok
}

// Clear drops all recorded deliveries, keeping group membership.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = nil
}
