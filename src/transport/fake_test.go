package transport

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/color-craze/client/src/types"
	"github.com/go-stomp/stomp/v3/frame"
	"github.com/stretchr/testify/require"
)

var errClosed = errors.New("connection closed")

// fakeConn implements types.Conn with in-memory channels.
type fakeConn struct {
	toClient chan []byte
	toServer chan []byte
	closed   chan struct{}
	once     sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		toClient: make(chan []byte, 64),
		toServer: make(chan []byte, 64),
		closed:   make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case b := <-f.toClient:
		return b, nil
	case <-f.closed:
		return nil, errClosed
	}
}

func (f *fakeConn) WriteMessage(data []byte) error {
	cp := append([]byte(nil), data...)
	select {
	case <-f.closed:
		return errClosed
	default:
	}
	select {
	case f.toServer <- cp:
		return nil
	case <-f.closed:
		return errClosed
	}
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

// brokerSession is the server side of one dialed socket.
type brokerSession struct {
	conn    *fakeConn
	header  http.Header
	frames  chan *frame.Frame
	beats   atomic.Int32
}

// fakeBroker answers CONNECT and records every other client frame.
type fakeBroker struct {
	mu        sync.Mutex
	dials     int
	reject    string
	heartBeat string
	sessions  chan *brokerSession
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{heartBeat: "0,0", sessions: make(chan *brokerSession, 16)}
}

func (b *fakeBroker) Dial(_ string, header http.Header) (types.Conn, error) {
	b.mu.Lock()
	b.dials++
	b.mu.Unlock()

	bs := &brokerSession{
		conn:   newFakeConn(),
		header: header.Clone(),
		frames: make(chan *frame.Frame, 64),
	}
	go b.serve(bs)
	b.sessions <- bs
	return bs.conn, nil
}

func (b *fakeBroker) dialCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

func (b *fakeBroker) serve(bs *brokerSession) {
	for {
		select {
		case raw := <-bs.conn.toServer:
			frames, err := decodeFrames(raw)
			if err != nil {
				continue
			}
			if len(frames) == 0 {
				bs.beats.Add(1)
				continue
			}
			f := frames[0]
			if f.Command == frame.CONNECT {
				b.mu.Lock()
				reject, hb := b.reject, b.heartBeat
				b.mu.Unlock()
				var reply *frame.Frame
				if reject != "" {
					reply = frame.New(frame.ERROR, hdrMessage, reject)
				} else {
					reply = frame.New(frame.CONNECTED, "version", stompVersion, hdrHeartBeat, hb)
				}
				data, _ := encodeFrame(reply)
				bs.conn.toClient <- data
			}
			bs.frames <- f
		case <-bs.conn.closed:
			return
		}
	}
}

func (b *fakeBroker) next(t *testing.T) *brokerSession {
	t.Helper()
	select {
	case bs := <-b.sessions:
		return bs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dial")
		return nil
	}
}

func (bs *brokerSession) expect(t *testing.T, command string) *frame.Frame {
	t.Helper()
	select {
	case f := <-bs.frames:
		require.Equal(t, command, f.Command)
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", command)
		return nil
	}
}

func (bs *brokerSession) expectNone(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case f := <-bs.frames:
		t.Fatalf("unexpected %s frame to %q", f.Command, f.Header.Get(hdrDestination))
	case <-time.After(within):
	}
}

func (bs *brokerSession) deliver(t *testing.T, subscription, destination, body string) {
	t.Helper()
	f := frame.New(frame.MESSAGE,
		hdrSubscription, subscription,
		hdrDestination, destination,
		hdrMessageID, "m-1",
	)
	f.Body = []byte(body)
	data, err := encodeFrame(f)
	require.NoError(t, err)
	bs.conn.toClient <- data
}
