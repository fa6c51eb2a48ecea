package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/aretw0/packlist"
	"github.com/aretw0/packlist/internal/platform"
	"github.com/aretw0/packlist/pkg/session"
)

const configTemplate = `{
  // Storage adapter: "fs", "sqlite" or "memory".
  "adapter": %q,
  // Document format of the fs adapter: "json" or "yaml".
  "format": %q,
  "app_id": %q,
}
`

func newInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a data root in the current directory",
		Long: `Create the .packlist system directory and a commented .packlist.json
in --root, or in the current directory when --root is not set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.rootFlag == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				c.root = cwd
			}
			if err := os.MkdirAll(filepath.Join(c.root, platform.DefaultSystemDir), 0o755); err != nil {
				return fmt.Errorf("create system directory: %w", err)
			}

			cfgFile := filepath.Join(c.root, platform.ConfigFileName)
			if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
				content := fmt.Sprintf(configTemplate, c.cfg.Adapter, c.cfg.Format, c.cfg.AppID)
				if err := atomic.WriteFile(cfgFile, strings.NewReader(content)); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
			}

			ctx, cancel := c.context(cmd)
			defer cancel()
			return c.withApp(ctx, func(app *packlist.App, _ session.State) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Initialized packlist in", app.Root)
				return nil
			})
		},
	}
}

func newListsCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "lists",
		Aliases: []string{"ls"},
		Short:   "List your packing lists",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			return c.signedIn(ctx, func(app *packlist.App, st session.State) error {
				if asJSON {
					return writeJSON(cmd, st.Lists)
				}
				renderSummaries(cmd.OutOrStdout(), st.Lists)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newCreateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := joinArgs(args)
			if name == "" {
				return fmt.Errorf("list name cannot be empty")
			}
			ctx, cancel := c.context(cmd)
			defer cancel()

			return c.signedIn(ctx, func(app *packlist.App, st session.State) error {
				l, err := app.Session.CreateList(ctx, name)
				if err != nil {
					return sessionError(app, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created list %q (%s)\n", l.Name, l.ID)
				return nil
			})
		},
	}
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete LIST",
		Short: "Delete a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			return c.signedIn(ctx, func(app *packlist.App, st session.State) error {
				l, err := resolveList(st, args[0])
				if err != nil {
					return err
				}
				if err := app.Session.DeleteList(ctx, l.ID); err != nil {
					return sessionError(app, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted list %q\n", l.Name)
				return nil
			})
		},
	}
}

func newShowCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show LIST",
		Short: "Show the items and categories of a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			return c.signedIn(ctx, func(app *packlist.App, st session.State) error {
				l, err := resolveList(st, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, l)
				}
				renderList(cmd.OutOrStdout(), l)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of packlist",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "packlist version %s\n", strings.TrimSpace(packlist.Version))
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
