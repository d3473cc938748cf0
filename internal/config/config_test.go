package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
	}{
		{
			name: "valid config",
			envVars: map[string]string{
				"SERVER_PORT":   "8080",
				"LOG_LEVEL":     "info",
				"DOWNLOADS_DIR": "/downloads",
			},
			wantErr: false,
		},
		{
			name:    "defaults applied",
			envVars: map[string]string{},
			wantErr: false,
		},
		{
			name: "invalid log level",
			envVars: map[string]string{
				"LOG_LEVEL": "verbose",
			},
			wantErr: true,
		},
		{
			name: "relative downloads dir rejected",
			envVars: map[string]string{
				"DOWNLOADS_DIR": "downloads",
			},
			wantErr: true,
		},
		{
			name: "invalid companion url rejected",
			envVars: map[string]string{
				"COMPANION_URL": "not-a-url",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			cfg, err := Load()

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			// Verify defaults
			if _, exists := tt.envVars["SERVER_PORT"]; !exists {
				require.Equal(t, "8080", cfg.ServerPort)
			}
			if _, exists := tt.envVars["LOG_LEVEL"]; !exists {
				require.Equal(t, "info", cfg.LogLevel)
			}
			if _, exists := tt.envVars["COMPANION_URL"]; !exists {
				require.Equal(t, "http://127.0.0.1:8721", cfg.CompanionURL)
			}
			if _, exists := tt.envVars["WATCH_DOWNLOADS"]; !exists {
				require.True(t, cfg.WatchDownloads)
			}
		})
	}
}

func TestValidateCleansDownloadsDir(t *testing.T) {
	cfg := &Config{
		LogLevel:     "info",
		CompanionURL: "http://127.0.0.1:8721",
		DownloadsDir: "/downloads/../downloads/",
	}

	require.NoError(t, cfg.Validate())
	require.Equal(t, "/downloads", cfg.DownloadsDir)
}
