package hub

import (
	"slices"

	"github.com/color-craze/client/src/service"
)

// OnMount registers a callback run after a room is mounted.
func (h *Hub) OnMount(cb func(code string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMount = append(h.onMount, cb)
}

// OnUnmount registers a callback run after a room is unmounted.
func (h *Hub) OnUnmount(cb func(code string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUnmount = append(h.onUnmount, cb)
}

// Get returns the session of code.
func (h *Hub) Get(code string) (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[code]
	return s, ok
}

// Codes returns mounted room codes in mount order.
func (h *Hub) Codes() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.order)
}

// Count returns the number of mounted rooms.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Snapshots returns one snapshot per mounted room, in mount order.
func (h *Hub) Snapshots() []service.Snapshot {
	h.mu.RLock()
	sessions := make([]Session, 0, len(h.order))
	for _, code := range h.order {
		sessions = append(sessions, h.sessions[code])
	}
	h.mu.RUnlock()

	out := make([]service.Snapshot, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Snapshot())
	}
	return out
}
