package hub

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/color-craze/client/src/service"
	"github.com/rs/zerolog"
)

// ErrDuplicateRoom is returned when a room code is already mounted.
var ErrDuplicateRoom = errors.New("room already mounted")

// Session is a mounted room view managed by the hub.
type Session interface {
	Code() string
	Mount(ctx context.Context)
	Unmount()
	Snapshot() service.Snapshot
	Reconnecting() bool
	Move(direction string) error
	SetInput(left, right, jump bool) error
}

// Hub tracks the room sessions of one process. Each session keeps its own
// connection; the hub only owns their lifecycles.
type Hub struct {
	mu        sync.RWMutex
	sessions  map[string]Session
	order     []string
	onMount   []func(code string)
	onUnmount []func(code string)
	logger    zerolog.Logger
}

// New creates an empty Hub.
func New(logger zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]Session),
		logger:   logger.With().Str("component", "hub").Logger(),
	}
}

// Mount registers s and mounts it.
func (h *Hub) Mount(ctx context.Context, s Session) error {
	code := s.Code()
	h.mu.Lock()
	if _, ok := h.sessions[code]; ok {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateRoom, code)
	}
	h.sessions[code] = s
	h.order = append(h.order, code)
	cbs := slices.Clone(h.onMount)
	h.mu.Unlock()

	s.Mount(ctx)
	h.logger.Info().Str("code", code).Msg("room mounted")
	for _, cb := range cbs {
		cb(code)
	}
	return nil
}

// Unmount tears down the session of code. It reports false for unknown codes.
func (h *Hub) Unmount(code string) bool {
	h.mu.Lock()
	s, ok := h.sessions[code]
	if ok {
		delete(h.sessions, code)
		h.order = slices.DeleteFunc(h.order, func(c string) bool { return c == code })
	}
	cbs := slices.Clone(h.onUnmount)
	h.mu.Unlock()
	if !ok {
		return false
	}

	s.Unmount()
	h.logger.Info().Str("code", code).Msg("room unmounted")
	for _, cb := range cbs {
		cb(code)
	}
	return true
}

// Close unmounts every session, newest first.
func (h *Hub) Close() {
	codes := h.Codes()
	slices.Reverse(codes)
	for _, code := range codes {
		h.Unmount(code)
	}
}
