package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/packlist"
	"github.com/aretw0/packlist/pkg/session"
)

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [LIST]",
		Short: "Print your lists, or one list, every time they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.signedIn(ctx, func(app *packlist.App, st session.State) error {
				listID := ""
				if len(args) == 1 {
					l, err := resolveList(st, args[0])
					if err != nil {
						return err
					}
					listID = l.ID
					app.Session.SelectList(listID)
				}
				return watchState(ctx, cmd, app, listID)
			})
		},
	}
}

func watchState(ctx context.Context, cmd *cobra.Command, app *packlist.App, listID string) error {
	out := cmd.OutOrStdout()
	sub := app.Session.Watch(ctx)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			if !st.SignedIn() {
				fmt.Fprintln(out, "signed out")
				return nil
			}
			if st.Error != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), st.Error)
			}
			if listID == "" {
				renderSummaries(out, st.Lists)
			} else if l, ok := st.FindList(listID); ok {
				renderList(out, l)
			} else {
				fmt.Fprintln(out, "list deleted")
				return nil
			}
			fmt.Fprintln(out)
		}
	}
}
