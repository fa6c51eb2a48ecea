package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/packlist"
	"github.com/aretw0/packlist/pkg/session"
)

func newSignUpCmd(c *cli) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(password, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()

			return c.withApp(ctx, func(app *packlist.App, _ session.State) error {
				if err := app.Session.SignUp(ctx, email, pw); err != nil {
					return sessionError(app, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s\n", app.Auth.Current().Label())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSignInCmd(c *cli) *cobra.Command {
	var email, password string
	var federated bool

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password or a federated provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !federated && email == "" {
				return fmt.Errorf("--email is required unless --provider is set")
			}
			var pw string
			if !federated {
				var err error
				if pw, err = readPassword(password, cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
					return err
				}
			}
			ctx, cancel := c.context(cmd)
			defer cancel()

			return c.withApp(ctx, func(app *packlist.App, _ session.State) error {
				var err error
				if federated {
					err = app.Session.SignInWithProvider(ctx)
				} else {
					err = app.Session.SignIn(ctx, email, pw)
				}
				if err != nil {
					return sessionError(app, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", app.Auth.Current().Label())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	cmd.Flags().BoolVar(&federated, "provider", false, "Use the configured federated provider")
	return cmd
}

func newSignOutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			return c.withApp(ctx, func(app *packlist.App, st session.State) error {
				if !st.SignedIn() {
					fmt.Fprintln(cmd.OutOrStdout(), "Already signed out")
					return nil
				}
				if err := app.Session.SignOut(ctx); err != nil {
					return sessionError(app, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newWhoAmICmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			return c.withApp(ctx, func(app *packlist.App, st session.State) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, st.Identity.Label())
				if st.SignedIn() {
					fmt.Fprintf(out, "key: %s\n", st.Identity.Key)
				}
				return nil
			})
		},
	}
}
