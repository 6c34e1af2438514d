package transport

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/color-craze/client/src/types"
	"github.com/rs/zerolog"
)

var errSendBufferFull = errors.New("transport: send buffer full")

// session is one underlying socket of a logical Client. A new session is
// created for every (re)connection.
type session struct {
	conn     types.Conn
	send     chan []byte
	done     chan struct{}
	once     sync.Once
	lastRead atomic.Int64
	logger   zerolog.Logger
}

func newSession(conn types.Conn, logger zerolog.Logger) *session {
	s := &session{
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		logger: logger,
	}
	s.touch()
	return s
}

func (s *session) touch() {
	s.lastRead.Store(time.Now().UnixNano())
}

func (s *session) idleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastRead.Load()))
}

// enqueue hands a frame to the write pump without blocking.
func (s *session) enqueue(data []byte) error {
	select {
	case <-s.done:
		return ErrNotConnected
	default:
	}
	select {
	case s.send <- data:
		return nil
	case <-s.done:
		return ErrNotConnected
	default:
		return errSendBufferFull
	}
}

// writePump writes queued frames and outgoing heart-beats, and closes the
// socket when nothing has been read for twice the expected incoming interval.
func (s *session) writePump(sendEvery, expectEvery time.Duration) {
	defer s.close()

	var beat, check <-chan time.Time
	if sendEvery > 0 {
		t := time.NewTicker(sendEvery)
		defer t.Stop()
		beat = t.C
	}
	if expectEvery > 0 {
		t := time.NewTicker(expectEvery)
		defer t.Stop()
		check = t.C
	}

	for {
		select {
		case data := <-s.send:
			if err := s.conn.WriteMessage(data); err != nil {
				s.logger.Warn().Err(err).Msg("write failed")
				return
			}
		case <-beat:
			if err := s.conn.WriteMessage(heartbeatPayload); err != nil {
				s.logger.Warn().Err(err).Msg("heart-beat write failed")
				return
			}
		case now := <-check:
			if idle := s.idleFor(now); idle > 2*expectEvery {
				s.logger.Warn().Dur("idle", idle).Msg("heart-beat timeout, closing socket")
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
