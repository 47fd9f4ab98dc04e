package main

import (
	"errors"

	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/tui"
	"github.com/Veraticus/brokemate/internal/view"
	"github.com/spf13/cobra"
)

func tuiCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive expense tracker",
		Long: `Open the interactive expense tracker.

Tab cycles between the Expenses, Summary, Analysis and Chat views. Press ?
for all key bindings.`,
		Args: cobra.NoArgs,
		RunE: opts.withApp(runTUI),
	}

	cmd.Flags().Bool("no-alt-screen", false, "draw inline instead of using the alternate screen")
	cmd.Flags().String("view", "expenses", "view to open first: expenses, summary, analysis or chat")
	cmd.Flags().Bool("plain", false, "render advisor answers without colors")

	return cmd
}

func runTUI(cmd *cobra.Command, _ []string, a *app) error {
	name, _ := cmd.Flags().GetString("view")
	first, err := view.ParseView(name)
	if err != nil {
		return err
	}
	if _, err := a.session.Token(); err != nil {
		return err
	}

	noAlt, _ := cmd.Flags().GetBool("no-alt-screen")
	plain, _ := cmd.Flags().GetBool("plain")

	style := cli.MarkdownDark
	if plain {
		style = cli.MarkdownPlain
	}

	err = tui.Run(cmd.Context(), a.store, a.advisor, a.session,
		tui.WithLogger(a.logger),
		tui.WithMarkdownStyle(style),
		tui.WithAltScreen(!noAlt),
		tui.WithView(first),
	)
	if errors.Is(err, tui.ErrSessionExpired) {
		a.println(cli.FormatWarning("Your session has ended. Run `brokemate login` to sign in again."))
		return nil
	}
	return err
}
