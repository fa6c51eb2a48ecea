package platform

import (
	"log/slog"

	"github.com/aretw0/packlist/pkg/auth"
	"github.com/aretw0/packlist/pkg/core"
)

const (
	// DefaultAppID namespaces every collection path when no app id is configured.
	DefaultAppID = "default-trip-packer-app-v2"
	// DefaultSystemDir is the hidden directory that marks a data root.
	DefaultSystemDir = ".packlist"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
	AdapterMemory = "memory"
)

// options holds the internal configuration for an App.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	adapter      string
	appID        string
	format       string
	systemDir    string
	eventBuffer  int
	readOnly     bool
	strict       bool
	federated    auth.Federated
	errorHandler func(error)
}

// Option defines a functional option for configuring an App.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   AdapterFS,
		appID:     DefaultAppID,
		format:    "json",
		systemDir: DefaultSystemDir,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a storage adapter. The adapter named by WithAdapter
// is then ignored.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default), "sqlite"
// or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		if name != "" {
			o.adapter = name
		}
	}
}

// WithAppID sets the application namespace of the list collections.
func WithAppID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.appID = id
		}
	}
}

// WithFormat selects the document format of the fs adapter ("json" or "yaml").
func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

// WithSystemDir sets the hidden directory name. Defaults to ".packlist".
func WithSystemDir(name string) Option {
	return func(o *options) {
		if name != "" {
			o.systemDir = name
		}
	}
}

// WithEventBuffer sets the size of each watch channel.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithReadOnly opens the document store read-only. Writes return core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithStrict makes the fs serializers keep numbers as json.Number.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithFederated registers the authenticator used by federated sign-in.
func WithFederated(f auth.Federated) Option {
	return func(o *options) {
		o.federated = f
	}
}

// WithWatcherErrorHandler receives runtime failures of the fs watcher, which
// are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
