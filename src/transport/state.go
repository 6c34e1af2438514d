package transport

import (
	"errors"
	"fmt"
)

// State is the lifecycle state of a logical connection.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrNotConnected is returned by Publish when the connection is not established.
// Outbound messages are never queued across a disconnect.
var ErrNotConnected = errors.New("transport: not connected")

// AuthError reports a rejected handshake: a STOMP ERROR frame received before
// CONNECTED, or an HTTP 401/403 on the websocket upgrade.
type AuthError struct {
	Message string
	Detail  string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("transport: handshake rejected: %s (%s)", e.Message, e.Detail)
	}
	return "transport: handshake rejected: " + e.Message
}
