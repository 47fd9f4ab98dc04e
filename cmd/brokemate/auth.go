package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/session"
	"github.com/spf13/cobra"
)

func loginCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Long: `Log in to the Brokemate backend. The access token is stored locally
so later commands run without asking again.`,
		Args: cobra.NoArgs,
		RunE: opts.withApp(runLogin),
	}

	cmd.Flags().StringP("username", "u", "", "account username (prompted when empty)")

	return cmd
}

func runLogin(cmd *cobra.Command, _ []string, a *app) error {
	ctx := cmd.Context()

	username, password, err := a.credentials(ctx, cmd)
	if err != nil {
		return err
	}

	if _, err := a.session.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	a.println(cli.FormatSuccess(fmt.Sprintf("Logged in as %s", username)))
	return nil
}

func registerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE:  opts.withApp(runRegister),
	}

	cmd.Flags().StringP("username", "u", "", "account username (prompted when empty)")
	cmd.Flags().Bool("login", false, "log in right after registering")

	return cmd
}

func runRegister(cmd *cobra.Command, _ []string, a *app) error {
	ctx := cmd.Context()
	login, _ := cmd.Flags().GetBool("login")

	username, password, err := a.credentials(ctx, cmd)
	if err != nil {
		return err
	}

	if !login {
		if err := a.session.Register(ctx, username, password); err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		a.println(cli.FormatSuccess(fmt.Sprintf("Account %s created. Run `brokemate login` to sign in.", username)))
		return nil
	}

	if _, err := a.session.RegisterAndLogin(ctx, username, password); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	a.println(cli.FormatSuccess(fmt.Sprintf("Account %s created and logged in", username)))
	return nil
}

// credentials reads the username from --username or a prompt, and the password from a prompt.
func (a *app) credentials(ctx context.Context, cmd *cobra.Command) (string, string, error) {
	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		var err error
		if username, err = a.prompter.Ask(ctx, "Username", ""); err != nil {
			return "", "", err
		}
	}
	password, err := a.prompter.AskSecret(ctx, "Password")
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(_ *cobra.Command, _ []string, a *app) error {
			if a.session.State() == session.StateAnonymous {
				a.println(cli.FormatInfo("Not logged in"))
				return nil
			}
			if err := a.session.Logout(); err != nil {
				return fmt.Errorf("failed to log out: %w", err)
			}
			a.println(cli.FormatSuccess("Logged out"))
			return nil
		}),
	}
}

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show the session state",
		Args:    cobra.NoArgs,
		RunE: opts.withApp(func(_ *cobra.Command, _ []string, a *app) error {
			a.printf("Backend:  %s\n", opts.cfg.API.BaseURL)
			a.printf("Session:  %s\n", a.session.State())
			a.printf("Store:    %s\n", a.session.Location())
			return nil
		}),
	}
}
