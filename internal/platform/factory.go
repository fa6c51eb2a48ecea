package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/introspection"

	"github.com/aretw0/packlist/pkg/adapters/fs"
	"github.com/aretw0/packlist/pkg/adapters/memory"
	"github.com/aretw0/packlist/pkg/adapters/sqlite"
	"github.com/aretw0/packlist/pkg/auth"
	"github.com/aretw0/packlist/pkg/core"
	"github.com/aretw0/packlist/pkg/packlist"
	"github.com/aretw0/packlist/pkg/session"
)

// App is the composed application: document store, identity provider, list
// store and session, all rooted at one data directory.
type App struct {
	Root    string
	Repo    core.Repository
	Service *core.Service
	Auth    *auth.Local
	Lists   *packlist.Store
	Session *session.Session

	adapter string
	appID   string
	logger  *slog.Logger
}

// New builds an App rooted at root. Documents go where the selected adapter
// puts them; accounts and the session token live in <root>/<system dir>/auth.
//
//	app, err := platform.New("./trip", platform.WithAdapter("sqlite"))
func New(root string, opts ...Option) (*App, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	o := applyOptions(opts)
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	repo, err := initRepository(abs, o)
	if err != nil {
		return nil, err
	}

	local := auth.NewLocal(auth.LocalConfig{
		Dir:       filepath.Join(abs, o.systemDir, "auth"),
		Federated: o.federated,
		Logger:    o.logger.With("component", "auth"),
	})
	if err := local.Initialize(context.Background()); err != nil {
		closeRepository(repo)
		return nil, fmt.Errorf("initialize auth: %w", err)
	}

	svc := core.NewService(repo, o.logger)
	lists := packlist.NewStore(svc, o.appID)

	o.logger.Debug("app ready", "root", abs, "adapter", o.adapter, "app_id", o.appID)

	return &App{
		Root:    abs,
		Repo:    repo,
		Service: svc,
		Auth:    local,
		Lists:   lists,
		Session: session.New(local, lists, o.logger.With("component", "session")),
		adapter: o.adapter,
		appID:   o.appID,
		logger:  o.logger,
	}, nil
}

// Start starts the session. It follows the identity provider until Close.
func (a *App) Start(ctx context.Context) error {
	return a.Session.Start(ctx)
}

// Close stops the session first, then releases the identity provider and the
// repository concurrently.
func (a *App) Close() error {
	if err := a.Session.Close(); err != nil {
		a.logger.Warn("session close failed", "error", err)
	}

	var g errgroup.Group
	g.Go(a.Auth.Close)
	g.Go(func() error {
		if c, ok := a.Repo.(io.Closer); ok {
			return c.Close()
		}
		return nil
	})
	return g.Wait()
}

func initRepository(root string, o *options) (core.Repository, error) {
	repo := o.repository
	if repo == nil {
		switch o.adapter {
		case AdapterFS:
			repo = fs.NewRepository(fs.Config{
				Path:         root,
				SystemDir:    o.systemDir,
				Format:       o.format,
				ReadOnly:     o.readOnly,
				Strict:       o.strict,
				EventBuffer:  o.eventBuffer,
				Logger:       o.logger.With("component", "fs"),
				ErrorHandler: o.errorHandler,
			})
		case AdapterSQLite:
			repo = sqlite.NewRepository(sqlite.Config{
				Path:        filepath.Join(root, o.systemDir, "data.sqlite"),
				EventBuffer: o.eventBuffer,
				Logger:      o.logger.With("component", "sqlite"),
			})
		case AdapterMemory:
			repo = memory.NewRepository(o.eventBuffer)
		default:
			return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
		}
	}

	if err := repo.Initialize(context.Background()); err != nil {
		closeRepository(repo)
		return nil, fmt.Errorf("initialize %s repository: %w", o.adapter, err)
	}
	return repo, nil
}

func closeRepository(repo core.Repository) {
	if c, ok := repo.(io.Closer); ok {
		_ = c.Close()
	}
}

// AppState exposes the composition for observability.
type AppState struct {
	Root       string `json:"root"`
	Adapter    string `json:"adapter"`
	AppID      string `json:"app_id"`
	Repository any    `json:"repository,omitempty"`
	Service    any    `json:"service"`
	Auth       any    `json:"auth"`
	Session    any    `json:"session"`
}

// State implements introspection.Introspectable.
func (a *App) State() any {
	st := AppState{
		Root:    a.Root,
		Adapter: a.adapter,
		AppID:   a.appID,
		Service: a.Service.State(),
		Auth:    a.Auth.State(),
		Session: a.Session.State(),
	}
	if in, ok := a.Repo.(introspection.Introspectable); ok {
		st.Repository = in.State()
	}
	return st
}

// ComponentType implements introspection.Component.
func (a *App) ComponentType() string {
	return "app"
}

var (
	_ introspection.Introspectable = (*App)(nil)
	_ introspection.Component      = (*App)(nil)
)
