package service

import (
	"bytes"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/stretchr/testify/require"

	"github.com/color-craze/client/src/types"
)

var errClosed = errors.New("connection closed")

type pipeConn struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func (p *pipeConn) ReadMessage() ([]byte, error) {
	select {
	case b := <-p.in:
		return b, nil
	case <-p.closed:
		return nil, errClosed
	}
}

func (p *pipeConn) WriteMessage(data []byte) error {
	select {
	case p.out <- append([]byte(nil), data...):
		return nil
	case <-p.closed:
		return errClosed
	}
}

func (p *pipeConn) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

// broker is a minimal STOMP server: it accepts CONNECT, remembers
// subscriptions of the current socket, and records SEND frames.
type broker struct {
	mu      sync.Mutex
	conn    *pipeConn
	subs    map[string][]string // destination -> subscription ids
	dials   int
	sent    chan *frame.Frame
	subbed  chan string
}

func newBroker() *broker {
	return &broker{sent: make(chan *frame.Frame, 64), subbed: make(chan string, 64)}
}

func (b *broker) Dial(string, http.Header) (types.Conn, error) {
	c := &pipeConn{in: make(chan []byte, 64), out: make(chan []byte, 64), closed: make(chan struct{})}
	b.mu.Lock()
	b.conn = c
	b.subs = make(map[string][]string)
	b.dials++
	b.mu.Unlock()
	go b.serve(c)
	return c, nil
}

func (b *broker) serve(c *pipeConn) {
	for {
		select {
		case raw := <-c.out:
			if len(bytes.TrimSpace(raw)) == 0 {
				continue
			}
			f, err := frame.NewReader(bytes.NewReader(raw)).Read()
			if err != nil || f == nil {
				continue
			}
			switch f.Command {
			case frame.CONNECT:
				c.in <- encode(frame.New(frame.CONNECTED, "version", "1.2", "heart-beat", "0,0"))
			case frame.SUBSCRIBE:
				dest := f.Header.Get("destination")
				b.mu.Lock()
				b.subs[dest] = append(b.subs[dest], f.Header.Get("id"))
				b.mu.Unlock()
				b.subbed <- dest
			case frame.SEND:
				b.sent <- f
			}
		case <-c.closed:
			return
		}
	}
}

func encode(f *frame.Frame) []byte {
	var buf bytes.Buffer
	_ = frame.NewWriter(&buf).Write(f)
	return buf.Bytes()
}

// waitSubscribed blocks until n SUBSCRIBE frames have arrived.
func (b *broker) waitSubscribed(t *testing.T, n int) []string {
	t.Helper()
	var got []string
	for len(got) < n {
		select {
		case d := <-b.subbed:
			got = append(got, d)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d subscriptions", len(got), n)
		}
	}
	return got
}

func (b *broker) deliver(t *testing.T, destination, body string) {
	t.Helper()
	b.mu.Lock()
	c, ids := b.conn, b.subs[destination]
	b.mu.Unlock()
	require.NotEmpty(t, ids, "no subscription for %s", destination)
	for _, id := range ids {
		f := frame.New(frame.MESSAGE, "subscription", id, "destination", destination, "message-id", "m")
		f.Body = []byte(body)
		c.in <- encode(f)
	}
}

func (b *broker) drop() {
	b.mu.Lock()
	c := b.conn
	b.mu.Unlock()
	c.Close()
}

func (b *broker) dialCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

func (b *broker) nextSend(t *testing.T) *frame.Frame {
	t.Helper()
	select {
	case f := <-b.sent:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SEND")
		return nil
	}
}
