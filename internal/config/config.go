package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/brokemate/internal/common"
	"github.com/spf13/viper"
)

// Credential store kinds.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Defaults.
const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	DefaultTimeout = 30 * time.Second
	appName        = "brokemate"
)

// Config is the resolved client configuration.
type Config struct {
	Logging LoggingConfig
	API     APIConfig
	Session SessionConfig
}

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig selects where the credential is persisted.
type SessionConfig struct {
	Store string
	Path  string
}

// LoggingConfig mirrors the --log-level and --log-format flags.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("session.store", StoreFile)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("sheets.spreadsheet_name", "Brokemate Expenses")
	v.SetDefault("sheets.time_zone", "Asia/Kolkata")
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("api.base_url")), "/"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Session: SessionConfig{
			Store: strings.ToLower(strings.TrimSpace(v.GetString("session.store"))),
			Path:  ExpandPath(v.GetString("session.path")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if cfg.Session.Path == "" {
		cfg.Session.Path = DefaultSessionPath(cfg.Session.Store)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: api.base_url %q must be an absolute http(s) URL", common.ErrInvalidConfig, c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}
	switch c.Session.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("%w: session.store %q (want %s or %s)", common.ErrInvalidConfig, c.Session.Store, StoreFile, StoreSQLite)
	}
	return nil
}

// DataDir returns the directory holding local state.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(ExpandPath("~"), ".local", "share", appName)
}

// ConfigDir returns the directory searched for config.yaml.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(ExpandPath("~"), ".config", appName)
}

// DefaultSessionPath returns the credential location for a store kind.
func DefaultSessionPath(store string) string {
	if store == StoreSQLite {
		return filepath.Join(DataDir(), "session.db")
	}
	return filepath.Join(DataDir(), "session.json")
}
