package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/brokemate/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, StoreFile, cfg.Session.Store)
	assert.Equal(t, filepath.Join("/data", "brokemate", "session.json"), cfg.Session.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("HOME", "/home/user")

	tests := []struct {
		values  map[string]any
		check   func(t *testing.T, cfg Config)
		name    string
		wantErr bool
	}{
		{
			name:   "trailing slash trimmed",
			values: map[string]any{"api.base_url": "https://api.example.com/"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
			},
		},
		{
			name:   "sqlite default path",
			values: map[string]any{"session.store": "SQLite"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, StoreSQLite, cfg.Session.Store)
				assert.Equal(t, filepath.Join("/data", "brokemate", "session.db"), cfg.Session.Path)
			},
		},
		{
			name:   "explicit path expanded",
			values: map[string]any{"session.path": "~/tokens/brokemate.json"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "/home/user/tokens/brokemate.json", cfg.Session.Path)
			},
		},
		{
			name:   "duration string",
			values: map[string]any{"api.timeout": "5s"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 5*time.Second, cfg.API.Timeout)
			},
		},
		{name: "relative url", values: map[string]any{"api.base_url": "localhost:8000"}, wantErr: true},
		{name: "ftp url", values: map[string]any{"api.base_url": "ftp://example.com"}, wantErr: true},
		{name: "zero timeout", values: map[string]any{"api.timeout": "0s"}, wantErr: true},
		{name: "unknown store", values: map[string]any{"session.store": "keychain"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.values {
				v.Set(k, val)
			}
			cfg, err := Load(v)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadSheets(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-client")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "env-secret")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "env-refresh")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")

	v := viper.New()
	v.Set("sheets.client_id", "viper-client")
	v.Set("sheets.batch_size", 50)

	cfg, err := LoadSheets(v)
	require.NoError(t, err)
	assert.Equal(t, "viper-client", cfg.ClientID)
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "env-refresh", cfg.RefreshToken)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, "Brokemate Expenses", cfg.SpreadsheetName)
	assert.True(t, cfg.EnableFormatting)
}

func TestLoadSheetsMissingAuth(t *testing.T) {
	for _, key := range []string{"CLIENT_ID", "CLIENT_SECRET", "REFRESH_TOKEN", "SERVICE_ACCOUNT_PATH"} {
		t.Setenv("GOOGLE_SHEETS_"+key, "")
	}

	_, err := LoadSheets(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authentication method configured")
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/user")
	t.Setenv("BROKEMATE_TEST_DIR", "/var/lib")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: "/home/user"},
		{input: "~/x/y", want: "/home/user/x/y"},
		{input: "$BROKEMATE_TEST_DIR/brokemate", want: "/var/lib/brokemate"},
		{input: "/abs/path", want: "/abs/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}
