package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/packlist"
	"github.com/aretw0/packlist/internal/platform"
	"github.com/aretw0/packlist/pkg/session"
)

// cli carries the global flags and what PersistentPreRunE derives from them.
type cli struct {
	rootFlag   string
	configPath string
	adapter    string
	format     string
	verbose    bool
	timeout    time.Duration

	root   string
	cfg    packlist.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:   "packlist",
		Short: "Packing lists with categories, shared across your devices",
		Long: `packlist keeps packing lists per account. A list holds items and
categories of items; any list can be imported into another as a new category.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.rootFlag, "root", os.Getenv("PACKLIST_ROOT"), "Data root (default: nearest directory with .packlist, else the current directory)")
	flags.StringVar(&c.configPath, "config", "", "Explicit config file (JSON with comments)")
	flags.StringVar(&c.adapter, "adapter", "", "Storage adapter: fs, sqlite or memory")
	flags.StringVar(&c.format, "format", "", "Document format of the fs adapter: json or yaml")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.DurationVar(&c.timeout, "timeout", 10*time.Second, "Timeout of a single command")

	cmd.AddCommand(
		newInitCmd(c),
		newSignUpCmd(c),
		newSignInCmd(c),
		newSignOutCmd(c),
		newWhoAmICmd(c),
		newListsCmd(c),
		newCreateCmd(c),
		newDeleteCmd(c),
		newShowCmd(c),
		newAddCmd(c),
		newCategoryCmd(c),
		newCheckCmd(c),
		newRemoveCmd(c),
		newCollapseCmd(c),
		newImportCmd(c),
		newWatchCmd(c),
		newVersionCmd(),
	)
	return cmd
}

// setup resolves the data root and the configuration, then installs the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	root, err := c.resolveRoot()
	if err != nil {
		return err
	}
	c.root = root

	cfg, err := packlist.LoadConfig(root, c.configPath, packlist.Config{
		Adapter: c.adapter,
		Format:  c.format,
	}, os.Environ())
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, err := platform.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(c.logger)
	return nil
}

func (c *cli) resolveRoot() (string, error) {
	if c.rootFlag != "" {
		return c.rootFlag, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	root, err := packlist.FindRoot(cwd)
	if errors.Is(err, platform.ErrRootNotFound) {
		return cwd, nil
	}
	return root, err
}

// context returns the command context bounded by --timeout.
func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), c.timeout)
}

// withApp opens the app, waits until the identity and its lists are known
// and runs fn against that first state.
func (c *cli) withApp(ctx context.Context, fn func(app *packlist.App, st session.State) error) error {
	opts := append(c.cfg.Options(), packlist.WithLogger(c.logger))
	app, err := packlist.New(c.root, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			c.logger.Warn("close failed", "error", err)
		}
	}()

	if err := app.Start(ctx); err != nil {
		return err
	}
	st, err := app.Session.WaitReady(ctx)
	if err != nil {
		return fmt.Errorf("waiting for session: %w", err)
	}
	if st.Error != "" {
		return errors.New(st.Error)
	}
	return fn(app, st)
}

// signedIn runs fn only when an identity is signed in.
func (c *cli) signedIn(ctx context.Context, fn func(app *packlist.App, st session.State) error) error {
	return c.withApp(ctx, func(app *packlist.App, st session.State) error {
		if !st.SignedIn() {
			return errNotSignedIn
		}
		return fn(app, st)
	})
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
