package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/common"
	"github.com/Veraticus/brokemate/internal/config"
	"github.com/Veraticus/brokemate/internal/tui"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// rootOptions carries the state shared by every subcommand of one invocation.
type rootOptions struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "brokemate",
		Short: "💸 Personal expense tracker with an AI advisor",
		Long: `brokemate: a terminal client for the Brokemate expense tracker.

Record what you spend, flag the good and the avoidable, and ask the
advisor where the money went.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.initConfig(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: $HOME/.config/brokemate/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("api-url", "", "backend base URL (overrides api.base_url)")

	// Bind flags to viper
	_ = opts.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = opts.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(loginCmd(opts))
	rootCmd.AddCommand(registerCmd(opts))
	rootCmd.AddCommand(logoutCmd(opts))
	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(editCmd(opts))
	rootCmd.AddCommand(deleteCmd(opts))
	rootCmd.AddCommand(flagCmd(opts))
	rootCmd.AddCommand(summaryCmd(opts))
	rootCmd.AddCommand(analyzeCmd(opts))
	rootCmd.AddCommand(chatCmd(opts))
	rootCmd.AddCommand(reportCmd(opts))
	rootCmd.AddCommand(importCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	rootCmd.AddCommand(tuiCmd(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	handler := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := handler.HandleInterrupts(context.Background(), "Nothing was sent to the backend after this point.")

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if handler.WasInterrupted() && errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) initConfig(cmd *cobra.Command) error {
	// Load .env for local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	v := o.v
	if o.cfgFile != "" {
		v.SetConfigFile(o.cfgFile)
	} else {
		v.AddConfigPath(config.ConfigDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Environment variables
	v.SetEnvPrefix("BROKEMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if url, _ := cmd.Flags().GetString("api-url"); url != "" {
		v.Set("api.base_url", url)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	o.cfg = cfg

	if err := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.Debug("configuration loaded",
		"config_file", filepath.Base(v.ConfigFileUsed()),
		"base_url", cfg.API.BaseURL,
		"session_store", cfg.Session.Store)
	return nil
}

// reportError prints err the way a user should see it.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, cli.FormatError(describeError(err))) //nolint:errcheck // best effort on stderr
}

func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrNotAuthenticated):
		return "You are not logged in. Run `brokemate login` first."
	case errors.Is(err, tui.ErrSessionExpired), common.IsCredentialInvalid(err):
		return "Your session has expired. Run `brokemate login` to sign in again."
	default:
		return common.UserMessage(err)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "brokemate %s\n", version) //nolint:errcheck // user-facing output
		},
	}
}
