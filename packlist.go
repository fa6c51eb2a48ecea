package packlist

import (
	"log/slog"

	"github.com/aretw0/packlist/internal/platform"
	"github.com/aretw0/packlist/pkg/auth"
	"github.com/aretw0/packlist/pkg/core"
	model "github.com/aretw0/packlist/pkg/packlist"
)

// --- Types ---

// App is the composed application returned by New.
type App = platform.App

// Config is the file-level configuration (see LoadConfig).
type Config = platform.Config

// List is a named packing list.
type List = model.List

// Node is an entry of a list: an Item or a Category.
type Node = model.Node

// Item is a checkable leaf entry.
type Item = model.Item

// Category is a collapsible group of items.
type Category = model.Category

// --- Configuration ---

// Option defines a functional option for configuring an App.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository injects a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter selects the storage adapter by name ("fs", "sqlite", "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithAppID sets the application namespace of the list collections.
func WithAppID(id string) Option {
	return platform.WithAppID(id)
}

// WithFormat selects the fs document format ("json" or "yaml").
func WithFormat(format string) Option {
	return platform.WithFormat(format)
}

// WithSystemDir sets the hidden directory name (default ".packlist").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithEventBuffer sets the size of each watch channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithReadOnly opens the document store read-only.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithStrict keeps JSON numbers as json.Number in the fs adapter.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithFederated registers the authenticator used by federated sign-in.
func WithFederated(f auth.Federated) Option {
	return platform.WithFederated(f)
}

// WithWatcherErrorHandler receives runtime failures of the fs watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New composes an App rooted at root. Call Start before driving the session.
func New(root string, opts ...Option) (*App, error) {
	return platform.New(root, opts...)
}

// LoadConfig resolves defaults, the global and project config files, an
// explicit config file and overrides, in increasing precedence.
func LoadConfig(root, configPath string, overrides Config, env []string) (Config, error) {
	cfg, _, err := platform.LoadConfig(root, configPath, overrides, env)
	return cfg, err
}

// FindRoot looks upwards from startDir for a data root.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// --- Tree operations ---

// ImportAsCategory merges the items of source into target as a single new
// category named after source.
// Nested categories of source are flattened into plain items.
func ImportAsCategory(source, target List) (Category, []Node) {
	return model.ImportAsCategory(source, target)
}
