package types

import "net/http"

// Frame is an inbound message delivered to a subscription handler.
type Frame struct {
	Destination  string            `json:"destination"`
	Subscription string            `json:"subscription"`
	Headers      map[string]string `json:"headers,omitempty"`
	Body         []byte            `json:"body"`
}

// Handler handles frames arriving on a subscribed destination.
// A returned error is logged and the frame dropped; the subscription stays active.
type Handler func(f Frame) error

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Dialer opens a new underlying socket. The transport calls it once per
// connection attempt so that reconnects always get a fresh Conn.
type Dialer interface {
	Dial(url string, header http.Header) (Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(url string, header http.Header) (Conn, error)

// Dial calls f(url, header).
func (f DialerFunc) Dial(url string, header http.Header) (Conn, error) {
	return f(url, header)
}
