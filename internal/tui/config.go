package tui

import (
	"log/slog"

	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/tui/themes"
	"github.com/Veraticus/brokemate/internal/view"
)

// Config holds TUI configuration.
type Config struct {
	Store         ExpenseStore
	Advisor       Advisor
	Logger        *slog.Logger
	Theme         themes.Theme
	MarkdownStyle string
	Width         int
	Height        int
	AltScreen     bool
	View          view.View
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:         themes.Default,
		MarkdownStyle: cli.MarkdownDark,
		Width:         100,
		Height:        30,
		AltScreen:     true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithMarkdownStyle selects the glamour style for AI answers.
func WithMarkdownStyle(style string) Option {
	return func(c *Config) {
		c.MarkdownStyle = style
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}

// WithView sets the view shown first.
func WithView(v view.View) Option {
	return func(c *Config) {
		c.View = v
	}
}
