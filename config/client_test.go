package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "/color-craze/ws", cfg.EndpointPath)
	assert.Equal(t, 2*time.Second, cfg.ReconnectDelay())
	assert.Equal(t, 5*time.Second, cfg.HeartbeatIncoming())
	assert.Equal(t, 5*time.Second, cfg.HeartbeatOutgoing())
	assert.Equal(t, 10*time.Second, cfg.RESTTimeout())
	assert.Equal(t, "127.0.0.1:7070", cfg.StatusAddr)
	assert.Equal(t, "http://localhost:8080", cfg.APIBase())

	url, err := cfg.WebSocketURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/color-craze/ws/websocket", url)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CC_API_URL", "https://api.example.com/")
	t.Setenv("CC_RECONNECT_DELAY_MS", "500")
	t.Setenv("CC_HEARTBEAT_IN_MS", "0")
	t.Setenv("CC_HEARTBEAT_OUT_MS", "abc")
	t.Setenv("CC_REST_TIMEOUT_MS", "-4")
	t.Setenv("CC_LOG_LEVEL", "debug")

	cfg := FromEnv()
	assert.Equal(t, 500*time.Millisecond, cfg.ReconnectDelay())
	assert.Equal(t, time.Duration(0), cfg.HeartbeatIncoming())
	assert.Equal(t, 5*time.Second, cfg.HeartbeatOutgoing())
	assert.Equal(t, 10*time.Second, cfg.RESTTimeout())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://api.example.com", cfg.APIBase())

	url, err := cfg.WebSocketURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/color-craze/ws/websocket", url)
}

func TestWebSocketURLOverride(t *testing.T) {
	t.Setenv("CC_API_URL", "https://api.example.com")
	t.Setenv("CC_WS_URL", "http://ws.example.com:9000")
	t.Setenv("CC_ENDPOINT_PATH", "game/ws/")

	url, err := FromEnv().WebSocketURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://ws.example.com:9000/game/ws/websocket", url)
}

func TestProductionOrigin(t *testing.T) {
	t.Setenv("CC_PROD_ORIGIN", "https://color-craze.example.app")
	assert.Equal(t, "https://color-craze.example.app", FromEnv().APIBase())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CC_STATUS_ADDR=0.0.0.0:9999\n"), 0o600))
	t.Setenv("CC_STATUS_ADDR", "")
	os.Unsetenv("CC_STATUS_ADDR")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "0.0.0.0:9999", FromEnv().StatusAddr)
}
