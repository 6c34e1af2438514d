package transport

import (
	"net/http"
	"time"

	"github.com/color-craze/client/src/types"
	"github.com/fasthttp/websocket"
)

// WebsocketDialer dials the raw websocket transport of a SockJS endpoint.
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
	ReadBufferSize   int
	WriteBufferSize  int
}

// Dial opens a websocket speaking the STOMP 1.2 subprotocol.
func (d WebsocketDialer) Dial(url string, header http.Header) (types.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
		ReadBufferSize:   d.ReadBufferSize,
		WriteBufferSize:  d.WriteBufferSize,
		Subprotocols:     []string{"v12.stomp"},
	}
	conn, resp, err := dialer.Dial(url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, &AuthError{Message: resp.Status, Detail: err.Error()}
		}
		return nil, err
	}
	return &websocketConn{conn}, nil
}

// websocketConn wraps fasthttp/websocket.Conn to satisfy types.Conn.
type websocketConn struct {
	conn *websocket.Conn
}

func (w *websocketConn) ReadMessage() ([]byte, error) {
	_, data, err := w.conn.ReadMessage()
	return data, err
}

func (w *websocketConn) WriteMessage(data []byte) error {
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *websocketConn) Close() error { return w.conn.Close() }
