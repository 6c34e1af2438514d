package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/color-craze/client/src/room"
)

// DefaultTimeout bounds a single REST call.
const DefaultTimeout = 10 * time.Second

// TokenSource supplies the bearer credential for each request.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Client calls the game server's REST endpoints. State-mutating calls are
// never retried.
type Client struct {
	base    string
	tokens  TokenSource
	http    *fasthttp.Client
	timeout time.Duration
	decoder *room.Decoder
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying fasthttp client.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a Client for base (e.g. http://localhost:8080). tokens may be nil
// for anonymous calls.
func New(base string, tokens TokenSource, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(base, "/"),
		tokens:  tokens,
		http:    &fasthttp.Client{Name: "colorcraze-client"},
		timeout: DefaultTimeout,
		logger:  logger.With().Str("component", "rest").Logger(),
	}
	c.decoder = room.NewDecoder(logger)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreatedGame is the response of CreateGame.
type CreatedGame struct {
	Code string `json:"code"`
}

// JoinRequest is the body of JoinGame. Color and Avatar are optional.
type JoinRequest struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Color    string `json:"color,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// PlayerUpdate is the body of UpdatePlayer; only set fields are changed.
type PlayerUpdate struct {
	PlayerID string `json:"playerId"`
	Color    string `json:"color,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// GetGame fetches the room snapshot, shaped like a state topic message.
func (c *Client) GetGame(ctx context.Context, code string) (*room.StateMessage, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, gamePath(code), nil)
	if err != nil {
		return nil, err
	}
	return c.decoder.DecodeState(body)
}

// GetGameLite fetches the reduced snapshot (status and players only).
func (c *Client) GetGameLite(ctx context.Context, code string) (*room.StateMessage, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, gamePath(code, "lite"), nil)
	if err != nil {
		return nil, err
	}
	return c.decoder.DecodeState(body)
}

// CreateGame opens a new room.
func (c *Client) CreateGame(ctx context.Context) (*CreatedGame, error) {
	body, err := c.do(ctx, fasthttp.MethodPost, "/api/games", nil)
	if err != nil {
		return nil, err
	}
	var out CreatedGame
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return &out, nil
}

// JoinGame adds a player to a waiting room.
func (c *Client) JoinGame(ctx context.Context, code string, req JoinRequest) error {
	_, err := c.do(ctx, fasthttp.MethodPost, gamePath(code, "join"), req)
	return err
}

// UpdatePlayer changes color or avatar while the room is waiting.
func (c *Client) UpdatePlayer(ctx context.Context, code string, upd PlayerUpdate) error {
	_, err := c.do(ctx, fasthttp.MethodPost, gamePath(code, "player"), upd)
	return err
}

// UpdateTheme asks the server to use theme for the next match.
func (c *Client) UpdateTheme(ctx context.Context, code string, theme room.Theme) error {
	_, err := c.do(ctx, fasthttp.MethodPost, gamePath(code, "theme"), map[string]string{"theme": string(theme)})
	return err
}

// RestartGame resets an ended room for a new match.
func (c *Client) RestartGame(ctx context.Context, code string) error {
	_, err := c.do(ctx, fasthttp.MethodPost, gamePath(code, "restart"), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
		}
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	body := append([]byte(nil), resp.Body()...)
	if status < 200 || status > 299 {
		return nil, newError(method, path, status, body)
	}
	return body, nil
}

func gamePath(code string, parts ...string) string {
	p := "/api/games/" + url.PathEscape(code)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}
