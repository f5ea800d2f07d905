package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	// File paths
	DBPath string

	// Server settings
	ServerHost string
	ServerPort int
	APIKey     string

	// Upstream news API settings
	NewsAPIBaseURL  string
	NewsAPIKey      string
	Country         string
	UpstreamTimeout time.Duration

	// Log settings
	LogLevel zerolog.Level
}

// DefaultConfig returns an initial configuration with hardcoded defaults.
func DefaultConfig() *Config {
	logLevel, _ := zerolog.ParseLevel(DefaultLogLevel)

	return &Config{
		DBPath:          DefaultDBPath(),
		ServerHost:      DefaultServerHost,
		ServerPort:      DefaultServerPort,
		APIKey:          GetEnvString("NEWSDECK_API_KEY", ""),
		NewsAPIBaseURL:  DefaultNewsAPIBaseURL,
		NewsAPIKey:      GetEnvString("NEWSDECK_NEWSAPI_KEY", ""),
		Country:         GetEnvString("NEWSDECK_COUNTRY", DefaultCountry),
		UpstreamTimeout: time.Duration(DefaultUpstreamTimeoutSec) * time.Second,
		LogLevel:        logLevel,
	}
}

// DefaultDBPath resolves the bookmark database location under the
// platform application-data directory. Falls back to the working
// directory when the platform provides none.
func DefaultDBPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultDBFileName
	}
	return filepath.Join(base, DefaultAppDirName, DefaultDBFileName)
}

// ListenAddr returns the formatted listen address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
