package fs

import (
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path        string     `json:"path"`
	SystemDir   string     `json:"system_dir"`
	Format      string     `json:"format"`
	CacheSize   int        `json:"cache_size"`
	ReadOnly    bool       `json:"read_only"`
	Strict      bool       `json:"strict"`
	Serializers []string   `json:"serializers"`
	Watchers    int        `json:"watchers"`
	LastEvent   *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	serializers := make([]string, 0, len(r.serializers))
	for ext := range r.serializers {
		serializers = append(serializers, ext)
	}
	slices.Sort(serializers)

	return RepositoryState{
		Path:        r.Path,
		SystemDir:   r.config.SystemDir,
		Format:      r.config.Format,
		CacheSize:   r.cache.Len(),
		ReadOnly:    r.config.ReadOnly,
		Strict:      r.config.Strict,
		Serializers: serializers,
		Watchers:    r.watchers,
		LastEvent:   r.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) watcherStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers++
}

func (r *Repository) watcherStopped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers--
}

func (r *Repository) recordEvent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastEvent = &now
}
