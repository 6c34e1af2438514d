package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/color-craze/client/src/types"
	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultReconnectDelay is the fixed pause between reconnect attempts.
	DefaultReconnectDelay = 2 * time.Second
	// DefaultHeartbeat is the recommended heart-beat interval in both directions.
	DefaultHeartbeat        = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	URL    string
	Host   string       // STOMP host header, defaults to the URL host
	Dialer types.Dialer // socket factory, defaults to WebsocketDialer

	// ConnectHeaders is evaluated on every connection attempt, so a refreshed
	// credential is picked up by the next reconnect.
	ConnectHeaders func() map[string]string

	ReconnectDelay    time.Duration
	HeartbeatIncoming time.Duration // 0 disables
	HeartbeatOutgoing time.Duration // 0 disables
	HandshakeTimeout  time.Duration

	OnAuthError      func(err error)
	OnTransportError func(err error)
	OnStateChange    func(s State)
}

// Client is one logical STOMP connection. It survives socket loss by
// reconnecting with a fixed delay and replaying every registered subscription.
//
// Callbacks run serially on the connection's read goroutine.
type Client struct {
	ID     string
	opts   Options
	logger zerolog.Logger

	mu      sync.Mutex
	state   State
	subs    []*Subscription
	current *session
	headers map[string]string
	onReady func()
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
}

// New creates a disconnected Client.
func New(opts Options, logger zerolog.Logger) *Client {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if opts.Dialer == nil {
		opts.Dialer = WebsocketDialer{HandshakeTimeout: opts.HandshakeTimeout}
	}
	if opts.Host == "" {
		if u, err := url.Parse(opts.URL); err == nil {
			opts.Host = u.Hostname()
		}
	}
	id := uuid.New().String()
	done := make(chan struct{})
	close(done)
	return &Client{
		ID:   id,
		opts: opts,
		logger: logger.With().
			Str("component", "transport").
			Str("connection_id", id).
			Logger(),
		done: done,
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether the handshake has completed on the current socket.
func (c *Client) Connected() bool { return c.State() == StateConnected }

// Done is closed once the connection goroutine has exited after Disconnect.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Connect starts the connection loop. onReady runs after every successful
// handshake, reconnections included, once subscriptions have been replayed.
func (c *Client) Connect(onReady func()) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		c.logger.Debug().Msg("connect ignored, already active")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.closed = false
	c.onReady = onReady
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go c.run(ctx, done)
}

// Disconnect tears down the socket, cancels any pending reconnect, and drops
// all subscriptions. No callback starts after Disconnect returns.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.closed = true
	cancel := c.cancel
	c.cancel = nil
	s := c.current
	c.current = nil
	c.subs = nil
	prev := c.state
	c.state = StateDisconnected
	cb := c.opts.OnStateChange
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if s != nil {
		s.close()
	}
	if prev != StateDisconnected {
		c.logger.Info().Msg("disconnected")
		if cb != nil {
			cb(StateDisconnected)
		}
	}
}

// Subscribe registers handler for destination. Calls are additive: subscribing
// twice to the same destination yields two independent subscriptions.
func (c *Client) Subscribe(destination string, handler types.Handler) *Subscription {
	return c.SubscribeHeaders(destination, handler, nil)
}

// SubscribeHeaders is Subscribe with extra SUBSCRIBE headers.
func (c *Client) SubscribeHeaders(destination string, handler types.Handler, headers map[string]string) *Subscription {
	sub := &Subscription{
		ID:          uuid.New().String(),
		Destination: destination,
		Headers:     maps.Clone(headers),
		handler:     handler,
		client:      c,
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	active := c.state == StateConnected && c.current != nil
	if active {
		if err := c.sendSubscribe(c.current, sub); err != nil {
			c.logger.Warn().Err(err).Str("destination", destination).Msg("subscribe failed, will replay on reconnect")
		}
	}
	c.mu.Unlock()

	c.logger.Debug().
		Str("destination", destination).
		Str("subscription", sub.ID).
		Bool("active", active).
		Msg("subscribed")
	return sub
}

// Publish sends payload as JSON to destination. It fails with ErrNotConnected
// instead of buffering when no socket is connected.
func (c *Client) Publish(destination string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", destination, err)
	}

	c.mu.Lock()
	s := c.current
	connected := c.state == StateConnected && s != nil
	headers := c.headers
	c.mu.Unlock()

	if !connected {
		return ErrNotConnected
	}
	data, err := encodeFrame(sendFrame(destination, body, headers))
	if err != nil {
		return err
	}
	return s.enqueue(data)
}

func (c *Client) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		c.setState(StateConnecting)
		err := c.connectOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		c.report(err)
		c.logger.Warn().Dur("delay", c.opts.ReconnectDelay).Msg("socket closed, reconnecting")

		t := time.NewTimer(c.opts.ReconnectDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (c *Client) connectOnce(ctx context.Context) error {
	headers := c.resolveHeaders()
	httpHeader := http.Header{}
	for k, v := range headers {
		httpHeader.Set(k, v)
	}

	conn, err := c.opts.Dialer.Dial(c.opts.URL, httpHeader)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.opts.URL, err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	s := newSession(conn, c.logger)
	defer s.close()

	connected, err := c.handshake(s, headers)
	if err != nil {
		return err
	}
	sendEvery, expectEvery := negotiateHeartBeat(
		c.opts.HeartbeatOutgoing, c.opts.HeartbeatIncoming, connected.Header.Get(hdrHeartBeat))

	if !c.activate(s, headers) {
		return nil
	}
	defer c.deactivate(s)

	go s.writePump(sendEvery, expectEvery)

	c.logger.Info().
		Dur("heartbeat_out", sendEvery).
		Dur("heartbeat_in", expectEvery).
		Msg("connected")
	c.ready()

	return c.readLoop(s)
}

func (c *Client) handshake(s *session, headers map[string]string) (*frame.Frame, error) {
	data, err := encodeFrame(connectFrame(c.opts.Host, c.opts.HeartbeatOutgoing, c.opts.HeartbeatIncoming, headers))
	if err != nil {
		return nil, err
	}
	if err := s.conn.WriteMessage(data); err != nil {
		return nil, fmt.Errorf("write CONNECT: %w", err)
	}

	timer := time.AfterFunc(c.opts.HandshakeTimeout, s.close)
	defer timer.Stop()

	for {
		raw, err := s.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("await CONNECTED: %w", err)
		}
		frames, err := decodeFrames(raw)
		for _, f := range frames {
			switch f.Command {
			case frame.CONNECTED:
				return f, nil
			case frame.ERROR:
				return nil, &AuthError{Message: f.Header.Get(hdrMessage), Detail: string(f.Body)}
			default:
				c.logger.Debug().Str("command", f.Command).Msg("ignoring frame before CONNECTED")
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

// activate installs s as the live socket and replays subscriptions in
// registration order. It reports false if Disconnect won the race.
func (c *Client) activate(s *session, headers map[string]string) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.current = s
	c.headers = headers
	c.state = StateConnected
	for _, sub := range c.subs {
		if err := c.sendSubscribe(s, sub); err != nil {
			c.logger.Warn().Err(err).Str("destination", sub.Destination).Msg("replay subscribe failed")
		}
	}
	replayed := len(c.subs)
	cb := c.opts.OnStateChange
	c.mu.Unlock()

	c.logger.Debug().Int("subscriptions", replayed).Msg("subscriptions replayed")
	if cb != nil {
		cb(StateConnected)
	}
	return true
}

func (c *Client) deactivate(s *session) {
	c.mu.Lock()
	if c.current == s {
		c.current = nil
	}
	c.mu.Unlock()
	c.setState(StateConnecting)
}

func (c *Client) ready() {
	c.mu.Lock()
	cb := c.onReady
	closed := c.closed
	c.mu.Unlock()
	if closed || cb == nil {
		return
	}
	if err := safeCall(func() error { cb(); return nil }); err != nil {
		c.logger.Error().Err(err).Msg("onReady failed")
	}
}

func (c *Client) readLoop(s *session) error {
	for {
		raw, err := s.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		s.touch()

		frames, err := decodeFrames(raw)
		for _, f := range frames {
			switch f.Command {
			case frame.MESSAGE:
				c.dispatch(f)
			case frame.ERROR:
				return fmt.Errorf("server error: %s", f.Header.Get(hdrMessage))
			default:
				c.logger.Debug().Str("command", f.Command).Msg("ignoring frame")
			}
		}
		if err != nil {
			c.logger.Warn().Err(err).Msg("dropping malformed frame")
		}
	}
}

func (c *Client) dispatch(f *frame.Frame) {
	id := f.Header.Get(hdrSubscription)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	idx := slices.IndexFunc(c.subs, func(s *Subscription) bool { return s.ID == id })
	var sub *Subscription
	if idx >= 0 {
		sub = c.subs[idx]
	}
	c.mu.Unlock()

	if sub == nil {
		c.logger.Debug().Str("subscription", id).Msg("message for unknown subscription")
		return
	}

	msg := types.Frame{
		Destination:  f.Header.Get(hdrDestination),
		Subscription: id,
		Headers: map[string]string{
			hdrMessageID:   f.Header.Get(hdrMessageID),
			hdrContentType: f.Header.Get(hdrContentType),
		},
		Body: f.Body,
	}
	if msg.Destination == "" {
		msg.Destination = sub.Destination
	}
	if err := safeCall(func() error { return sub.handler(msg) }); err != nil {
		c.logger.Error().Err(err).Str("destination", msg.Destination).Msg("handler error, frame dropped")
	}
}

// sendSubscribe must be called with c.mu held.
func (c *Client) sendSubscribe(s *session, sub *Subscription) error {
	headers := maps.Clone(c.headers)
	if headers == nil {
		headers = make(map[string]string, len(sub.Headers))
	}
	maps.Copy(headers, sub.Headers)
	data, err := encodeFrame(subscribeFrame(sub.ID, sub.Destination, headers))
	if err != nil {
		return err
	}
	return s.enqueue(data)
}

func (c *Client) resolveHeaders() map[string]string {
	if c.opts.ConnectHeaders == nil {
		return map[string]string{}
	}
	h := c.opts.ConnectHeaders()
	if h == nil {
		return map[string]string{}
	}
	return maps.Clone(h)
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	if c.closed || c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	cb := c.opts.OnStateChange
	c.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

func (c *Client) report(err error) {
	if err == nil {
		return
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		c.logger.Error().Err(err).Msg("authentication rejected")
		if cb := c.opts.OnAuthError; cb != nil {
			cb(err)
		}
		return
	}
	c.logger.Warn().Err(err).Msg("transport error")
	if cb := c.opts.OnTransportError; cb != nil {
		cb(err)
	}
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
