// Package main is the entry point for the gitbot-link server.
//
// main's job is kept minimal:
// 1. Read configuration from environment variables
// 2. Create the logger
// 3. Start the server
//
// All actual logic lives in internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/gitbot-link/internal/server"
)

func main() {
	logger := newLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// OAuth configuration. Both are required for /auth to redirect, but the
	// server still starts without them (see server.Config).
	//   GITHUB_CLIENT_ID   → the OAuth App's client id
	//   BACKEND_BASE_URL   → e.g. https://bot.example.com (its /callback is the
	//                        OAuth App's registered callback URL)
	clientID := os.Getenv("GITHUB_CLIENT_ID")
	backendBaseURL := os.Getenv("BACKEND_BASE_URL")

	// LINK_STATE_SECRET enables signed link state. Share it with the backend so
	// its /callback can verify the state GitHub echoes back. Use:
	//   LINK_STATE_SECRET=$(openssl rand -hex 32)
	stateSecret := os.Getenv("LINK_STATE_SECRET")
	if stateSecret == "" {
		logger.Warn("LINK_STATE_SECRET not set — link state will not be signed")
	}

	var stateTTL time.Duration
	if ttlStr := os.Getenv("LINK_STATE_TTL"); ttlStr != "" {
		var err error
		stateTTL, err = time.ParseDuration(ttlStr)
		if err != nil {
			logger.Error("invalid LINK_STATE_TTL value", slog.String("value", ttlStr))
			os.Exit(1)
		}
	}

	// DB_PATH enables the link journal (an operator audit trail, no tokens).
	dbPath := os.Getenv("DB_PATH")
	if dbPath != "" && dbPath != ":memory:" {
		dbDir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	cfg := server.Config{
		Port:           port,
		GitHubClientID: clientID,
		BackendBaseURL: backendBaseURL,
		StateSecret:    stateSecret,
		StateTTL:       stateTTL,
		DBPath:         dbPath,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds the process logger.
// LOG_LEVEL: debug | info (default) | warn | error.
// LOG_FORMAT: text (default) | json.
func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
