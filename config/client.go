package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/color-craze/client/src/auth"
)

// ClientConfig holds connection and runtime settings of the client.
type ClientConfig struct {
	WSURL            string `json:"ws_url"`
	APIURL           string `json:"api_url"`
	ProductionOrigin string `json:"production_origin"`
	EndpointPath     string `json:"endpoint_path"`

	ReconnectDelayMs int `json:"reconnect_delay_ms"`
	HeartbeatInMs    int `json:"heartbeat_in_ms"`
	HeartbeatOutMs   int `json:"heartbeat_out_ms"`
	RESTTimeoutMs    int `json:"rest_timeout_ms"`
	ReadBufferSize   int `json:"read_buffer_size"`
	WriteBufferSize  int `json:"write_buffer_size"`

	StatusAddr      string `json:"status_addr"`
	IdentityFile    string `json:"identity_file"`
	IdentityBackend string `json:"identity_backend"` // "file" or "redis"
	LogLevel        string `json:"log_level"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		EndpointPath:     "/color-craze/ws",
		ReconnectDelayMs: 2000,
		HeartbeatInMs:    5000,
		HeartbeatOutMs:   5000,
		RESTTimeoutMs:    10000,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		StatusAddr:       "127.0.0.1:7070",
		IdentityFile:     defaultIdentityFile(),
		IdentityBackend:  "file",
		LogLevel:         "info",
	}
}

// FromEnv loads configuration from CC_* environment variables. Missing or
// invalid values keep their defaults.
func FromEnv() *ClientConfig {
	cfg := DefaultConfig()

	setString(&cfg.WSURL, "CC_WS_URL")
	setString(&cfg.APIURL, "CC_API_URL")
	setString(&cfg.ProductionOrigin, "CC_PROD_ORIGIN")
	setString(&cfg.EndpointPath, "CC_ENDPOINT_PATH")
	setString(&cfg.StatusAddr, "CC_STATUS_ADDR")
	setString(&cfg.IdentityFile, "CC_IDENTITY_FILE")
	setString(&cfg.IdentityBackend, "CC_IDENTITY_BACKEND")
	setString(&cfg.LogLevel, "CC_LOG_LEVEL")

	setInt(&cfg.ReconnectDelayMs, "CC_RECONNECT_DELAY_MS", 1)
	setInt(&cfg.HeartbeatInMs, "CC_HEARTBEAT_IN_MS", 0)
	setInt(&cfg.HeartbeatOutMs, "CC_HEARTBEAT_OUT_MS", 0)
	setInt(&cfg.RESTTimeoutMs, "CC_REST_TIMEOUT_MS", 1)
	setInt(&cfg.ReadBufferSize, "CC_WS_READ_BUFFER", 1)
	setInt(&cfg.WriteBufferSize, "CC_WS_WRITE_BUFFER", 1)
	return cfg
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// APIBase is the HTTP base of the REST endpoints.
func (c *ClientConfig) APIBase() string {
	return auth.ResolveBase(c.APIURL, c.ProductionOrigin)
}

// WebSocketURL is the dial URL of the broker endpoint. CC_WS_URL overrides
// the REST base.
func (c *ClientConfig) WebSocketURL() (string, error) {
	base := c.WSURL
	if base == "" {
		base = c.APIBase()
	}
	return auth.WebSocketURL(auth.ResolveBase(base, ""), c.EndpointPath)
}

func (c *ClientConfig) ReconnectDelay() time.Duration { return ms(c.ReconnectDelayMs) }
func (c *ClientConfig) HeartbeatIncoming() time.Duration { return ms(c.HeartbeatInMs) }
func (c *ClientConfig) HeartbeatOutgoing() time.Duration { return ms(c.HeartbeatOutMs) }
func (c *ClientConfig) RESTTimeout() time.Duration { return ms(c.RESTTimeoutMs) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func defaultIdentityFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".colorcraze-identity.json"
	}
	return filepath.Join(dir, "colorcraze", "identity.json")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string, minimum int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n >= minimum {
		*dst = n
	}
}
