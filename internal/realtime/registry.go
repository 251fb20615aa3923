// Package realtime implements the room membership and message fan-out
// subsystem: a registry of live subscribers per room, a connection handle
// over one WebSocket, and a worker-pool dispatcher that delivers payloads
// to subscribers without blocking the publisher.
package realtime

import "sync"

// Subscriber is a live connection as the registry sees it. The registry
// never owns a subscriber's lifetime; the transport layer that created the
// connection does. Deliver must not block.
type Subscriber interface {
	ID() string
	Deliver(payload []byte) error
}

// Registry maps room identifiers to the set of currently subscribed
// connections, keyed by connection ID. All methods are safe for concurrent
// use; the mutex is held only for map mutation, never across a network
// write. State is purely in-memory and rebuilt from zero on restart.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Subscriber
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]Subscriber)}
}

// Subscribe registers sub under roomID. Re-subscribing the same connection
// to the same room is a no-op. The room entry is created lazily.
func (r *Registry) Subscribe(roomID string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.rooms[roomID]
	if !ok {
		subs = make(map[string]Subscriber)
		r.rooms[roomID] = subs
	}
	subs[sub.ID()] = sub
}

// Unsubscribe removes the connection from roomID. Removing the last
// subscriber deletes the room entry entirely; unknown rooms or connections
// are a no-op.
func (r *Registry) Unsubscribe(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(subs, connID)
	if len(subs) == 0 {
		delete(r.rooms, roomID)
	}
}

// SubscribersOf returns a snapshot of the current subscribers of roomID.
// The snapshot reflects one consistent point in time; subscriptions racing
// with the call may or may not be included.
func (r *Registry) SubscribersOf(roomID string) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.rooms[roomID]
	out := make([]Subscriber, 0, len(subs))
	for _, s := range subs {
		out = append(out, s)
	}
	return out
}

// Rooms returns the number of rooms with at least one subscriber.
func (r *Registry) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
