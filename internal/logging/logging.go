// Package logging builds the zap loggers shared by the CLI and the HTTP service.
package logging

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// LevelDebug selects the development logger.
	LevelDebug = "debug"
	// LevelInfo selects the production logger.
	LevelInfo = "info"
)

// NewLogger returns a development logger for the debug level and a production logger otherwise.
func NewLogger(level string) (*zap.Logger, error) {
	switch NormalizeLevel(level) {
	case LevelDebug:
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}

// NormalizeLevel lowercases the level and falls back to info when it is blank.
func NormalizeLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "" {
		return LevelInfo
	}
	return normalized
}
