package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/brokemate/internal/advisor"
	"github.com/Veraticus/brokemate/internal/api"
	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/config"
	"github.com/Veraticus/brokemate/internal/expense"
	"github.com/Veraticus/brokemate/internal/session"
	"github.com/spf13/cobra"
)

// app wires the client components for one command.
type app struct {
	out      io.Writer
	logger   *slog.Logger
	client   *api.Client
	session  *session.Manager
	store    *expense.Store
	advisor  *advisor.Advisor
	prompter *cli.Prompter
	closers  []io.Closer
}

func (o *rootOptions) newApp(cmd *cobra.Command) (*app, error) {
	logger := slog.Default()

	client, err := api.NewClient(api.Config{
		BaseURL: o.cfg.API.BaseURL,
		Timeout: o.cfg.API.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		out:      cmd.OutOrStdout(),
		logger:   logger,
		client:   client,
		prompter: cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
	}

	credentials, err := a.openCredentialStore(o.cfg.Session)
	if err != nil {
		return nil, err
	}

	a.session, err = session.NewManager(credentials, client, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = expense.NewStore(client, a.session, logger)
	a.session.OnChange(func(state session.State, _ session.Reason) {
		if state == session.StateAnonymous {
			a.store.Reset()
		}
	})
	a.advisor = advisor.New(client, a.session, logger)
	return a, nil
}

func (a *app) openCredentialStore(cfg config.SessionConfig) (session.CredentialStore, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		store, err := session.OpenSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		return session.NewFileStore(cfg.Path), nil
	}
}

// Close releases the resources held by the app.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// withApp runs fn with a freshly wired app and closes it afterwards.
func (o *rootOptions) withApp(fn func(*cobra.Command, []string, *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := o.newApp(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := a.Close(); closeErr != nil {
				slog.Error("failed to close session store", "error", closeErr)
			}
		}()
		return fn(cmd, args, a)
	}
}

func (a *app) println(args ...any) {
	fmt.Fprintln(a.out, args...) //nolint:errcheck // user-facing output
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...) //nolint:errcheck // user-facing output
}
