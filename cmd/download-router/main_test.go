package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			setupLogging(tt.level)
			assert.True(t, slog.Default().Enabled(context.Background(), tt.enabled))
		})
	}
}

func TestCommandTree(t *testing.T) {
	assert.Equal(t, "serve", serveCmd().Use)
	assert.Equal(t, "stats", statsCmd().Use)

	rules := rulesCmd()
	require.Equal(t, "rules", rules.Use)

	names := make([]string, 0, 2)
	for _, sub := range rules.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "list")
	assert.Contains(t, names, "add")
}
