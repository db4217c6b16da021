package config

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultPlayerAddr = "localhost:8080"
	defaultPlayerPort = "8080"
	defaultListenAddr = ":9000"
)

// Overrides carries command-line values that take precedence over the
// environment. Empty fields are ignored.
type Overrides struct {
	PlayerAddr string
	ListenAddr string
}

// AppConfig holds application configuration
type AppConfig struct {
	logger     *zap.Logger
	playerAddr string
	listenAddr string
}

// NewAppConfig creates a new application configuration instance
func NewAppConfig(logger *zap.Logger, ov Overrides) *AppConfig {
	playerAddr := ov.PlayerAddr
	if playerAddr == "" {
		playerAddr = os.Getenv("VLCBRIDGE_VLC_ADDR")
	}
	if playerAddr == "" {
		playerAddr = defaultPlayerAddr
	}
	playerAddr = normalizeAddr(playerAddr)

	listenAddr := ov.ListenAddr
	if listenAddr == "" {
		listenAddr = os.Getenv("VLCBRIDGE_HTTP_ADDR")
	}
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	logger.Info("Configuration loaded",
		zap.String("playerAddr", playerAddr),
		zap.String("listenAddr", listenAddr))

	return &AppConfig{
		logger:     logger,
		playerAddr: playerAddr,
		listenAddr: listenAddr,
	}
}

// normalizeAddr appends the default control port when the address
// carries no port at all
func normalizeAddr(addr string) string {
	if strings.Contains(addr, ":") {
		return addr
	}
	return addr + ":" + defaultPlayerPort
}

// PlayerAddr returns the host:port of the remote player's control interface
func (c *AppConfig) PlayerAddr() string {
	return c.playerAddr
}

// ListenAddr returns the address the HTTP interface binds to
func (c *AppConfig) ListenAddr() string {
	return c.listenAddr
}
