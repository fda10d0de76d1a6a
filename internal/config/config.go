package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings, resolved from environment variables.
type Config struct {
	// Addr is the listen address for the HTTP/WebSocket server.
	Addr string

	// HubAPIURL is the base URL of the identity hub, e.g. http://localhost:8000/api.
	HubAPIURL string

	// DatabaseURL selects the Postgres store when set; empty means in-memory.
	DatabaseURL string

	// SweepInterval is the scheduler tick for lifecycle sweeps.
	SweepInterval time.Duration

	// ResyncInterval is how often connected parties are re-checked
	// against the identity hub for privilege drift.
	ResyncInterval time.Duration

	// LogLevel is the logrus level name (debug, info, warn, error).
	LogLevel string
}

// Load resolves configuration from the environment with defaults.
func Load() Config {
	return Config{
		Addr:           addrFromEnv(),
		HubAPIURL:      envOr("HUB_API_URL", "http://localhost:8000/api"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SweepInterval:  durationOr("SWEEP_INTERVAL", time.Second),
		ResyncInterval: durationOr("RESYNC_INTERVAL", 30*time.Second),
		LogLevel:       envOr("LOG_LEVEL", "info"),
	}
}

// addrFromEnv returns the listen address from PORT or defaults to ":8080".
func addrFromEnv() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationOr reads a duration from the environment, accepting either a
// Go duration string ("5s") or a bare number of seconds.
func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
