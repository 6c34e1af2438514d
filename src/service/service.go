package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/color-craze/client/src/render"
	"github.com/color-craze/client/src/room"
	"github.com/color-craze/client/src/timer"
	"github.com/color-craze/client/src/transport"
	"github.com/color-craze/client/src/types"
	"github.com/rs/zerolog"
)

// Outbound destinations.
const (
	MoveDestination  = "/app/move"
	InputDestination = "/app/arena/input"
)

var (
	// ErrNotMounted is returned by input calls outside Mount/Unmount.
	ErrNotMounted = errors.New("session not mounted")
	// ErrInvalidDirection is returned by Move for anything but UP, DOWN, LEFT, RIGHT.
	ErrInvalidDirection = errors.New("invalid direction")
)

// GameFetcher loads the REST snapshot of a room.
type GameFetcher interface {
	GetGame(ctx context.Context, code string) (*room.StateMessage, error)
}

// Config configures a Session.
type Config struct {
	Code      string
	PlayerID  string
	Transport transport.Options

	// TickInterval drives countdown recomputation. Defaults to one second.
	TickInterval time.Duration
	Now          func() time.Time
	ThemePicker  room.ThemePicker

	// OnUpdate receives every new snapshot, on the session goroutine.
	OnUpdate func(Snapshot)
}

// Session is one mounted room view. It exclusively owns its connection, the
// reducer, the countdowns, and the frame builder. Inbound messages and clock
// ticks are applied one at a time on the session goroutine.
type Session struct {
	code     string
	playerID string
	cfg      Config
	logger   zerolog.Logger

	client  *transport.Client
	rest    GameFetcher
	decoder *room.Decoder
	reducer *room.Reducer
	clocks  *timer.Clocks
	builder *render.Builder

	inbox    chan room.Message
	stop     chan struct{}
	loopDone chan struct{}
	alive    atomic.Bool
	ready    atomic.Int64 // successful handshakes

	mountOnce   sync.Once
	unmountOnce sync.Once
	cancel      context.CancelFunc

	inputMu   sync.Mutex
	lastInput *InputPayload

	snapMu sync.RWMutex
	snap   Snapshot
}

// New creates an unmounted session. rest may be nil.
func New(cfg Config, rest GameFetcher, logger zerolog.Logger) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var opts []room.Option
	if cfg.ThemePicker != nil {
		opts = append(opts, room.WithThemePicker(cfg.ThemePicker))
	}
	s := &Session{
		code:     cfg.Code,
		playerID: cfg.PlayerID,
		cfg:      cfg,
		logger:   logger.With().Str("component", "session").Str("code", cfg.Code).Logger(),
		rest:     rest,
		decoder:  room.NewDecoder(logger),
		reducer:  room.NewReducer(cfg.Code, logger, opts...),
		clocks:   timer.NewClocks(),
		builder:  render.NewBuilder(),
		inbox:    make(chan room.Message, 64),
		stop:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}

	topts := cfg.Transport
	onAuth := topts.OnAuthError
	topts.OnAuthError = func(err error) {
		if !s.alive.Load() {
			return
		}
		s.logger.Error().Err(err).Msg("connection refused credentials")
		if onAuth != nil {
			onAuth(err)
		}
	}
	s.client = transport.New(topts, logger)
	s.publish()
	return s
}

// Code returns the room code.
func (s *Session) Code() string { return s.code }

// Mount loads the REST snapshot (best effort), subscribes the room topics,
// starts the session goroutine, and connects.
func (s *Session) Mount(ctx context.Context) {
	s.mountOnce.Do(func() {
		select {
		case <-s.stop:
			return
		default:
		}
		s.alive.Store(true)
		lifetime, cancel := context.WithCancel(context.Background())
		s.cancel = cancel

		if s.rest != nil {
			if msg, err := s.rest.GetGame(ctx, s.code); err != nil {
				s.logger.Warn().Err(err).Msg("initial snapshot unavailable")
			} else {
				s.apply(msg)
			}
		}

		for _, kind := range []room.Kind{room.KindState, room.KindMove, room.KindArena, room.KindEnd} {
			s.client.Subscribe(room.Destination(s.code, kind), s.handler(kind))
		}

		go s.loop()
		s.client.Connect(func() { s.onReady(lifetime) })
		s.logger.Info().Msg("mounted")
	})
}

// Unmount stops the clocks, disconnects, and waits for the session goroutine.
// No snapshot update or handler runs after it returns. Safe to call twice.
func (s *Session) Unmount() {
	s.unmountOnce.Do(func() {
		mounted := s.alive.Swap(false)
		if s.cancel != nil {
			s.cancel()
		}
		s.client.Disconnect()
		close(s.stop)
		if mounted {
			<-s.loopDone
		}
		s.clocks.Stop()
		s.logger.Info().Msg("unmounted")
	})
}

// Move publishes a legacy grid move.
func (s *Session) Move(direction string) error {
	dir := strings.ToUpper(strings.TrimSpace(direction))
	switch dir {
	case "UP", "DOWN", "LEFT", "RIGHT":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
	if !s.alive.Load() {
		return ErrNotMounted
	}
	return s.client.Publish(MoveDestination, MovePayload{Code: s.code, PlayerID: s.playerID, Direction: dir})
}

// SetInput publishes the arena key state when it differs from the last one
// sent. Nothing is buffered while disconnected.
func (s *Session) SetInput(left, right, jump bool) error {
	if !s.alive.Load() {
		return ErrNotMounted
	}
	in := InputPayload{Code: s.code, PlayerID: s.playerID, Left: left, Right: right, Jump: jump}

	s.inputMu.Lock()
	defer s.inputMu.Unlock()
	if s.lastInput != nil && *s.lastInput == in {
		return nil
	}
	s.lastInput = &in
	return s.client.Publish(InputDestination, in)
}

// Reconnecting reports whether a mounted session is waiting for its socket.
func (s *Session) Reconnecting() bool {
	return s.alive.Load() && !s.client.Connected()
}

// MovePayload is the body sent to /app/move.
type MovePayload struct {
	Code      string `json:"code"`
	PlayerID  string `json:"playerId"`
	Direction string `json:"direction"`
}

// InputPayload is the body sent to /app/arena/input.
type InputPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Left     bool   `json:"left"`
	Right    bool   `json:"right"`
	Jump     bool   `json:"jump"`
}

func (s *Session) handler(kind room.Kind) types.Handler {
	return func(f types.Frame) error {
		if !s.alive.Load() {
			return nil
		}
		msg, err := s.decoder.Decode(kind, f.Body)
		if err != nil {
			return err
		}
		s.post(msg)
		return nil
	}
}

func (s *Session) onReady(ctx context.Context) {
	if !s.alive.Load() {
		return
	}
	n := s.ready.Add(1)
	s.logger.Info().Int64("handshakes", n).Msg("room connected")
	if n > 1 && s.rest != nil {
		go s.resync(ctx)
	}
}

// resync replays the REST snapshot after a reconnect to cover messages
// published while the socket was down.
func (s *Session) resync(ctx context.Context) {
	msg, err := s.rest.GetGame(ctx, s.code)
	if err != nil {
		s.logger.Warn().Err(err).Msg("resync failed")
		return
	}
	s.post(msg)
}

func (s *Session) post(msg room.Message) {
	select {
	case s.inbox <- msg:
	case <-s.stop:
	}
}
