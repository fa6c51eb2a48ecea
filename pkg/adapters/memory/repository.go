// Package memory implements core.Repository in process memory. It backs tests
// and the "memory" adapter of the CLI, where nothing outlives the process.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/google/uuid"

	"github.com/aretw0/packlist/pkg/core"
	"github.com/aretw0/packlist/pkg/stream"
)

// Repository keeps documents in nested maps guarded by a mutex.
type Repository struct {
	mu          sync.RWMutex
	collections map[string]map[string]core.Document
	last        time.Time
	events      *stream.Broadcaster[core.Event]
	eventBuffer int
}

// NewRepository creates an empty in-memory repository. eventBuffer sizes each
// Watch channel (default 100).
func NewRepository(eventBuffer int) *Repository {
	if eventBuffer <= 0 {
		eventBuffer = 100
	}
	return &Repository{
		collections: make(map[string]map[string]core.Document),
		events:      stream.NewBroadcaster[core.Event](eventBuffer),
		eventBuffer: eventBuffer,
	}
}

func (r *Repository) Initialize(ctx context.Context) error {
	return nil
}

func (r *Repository) Add(ctx context.Context, collection string, fields core.Fields) (core.Document, error) {
	if err := core.ValidateCollection(collection); err != nil {
		return core.Document{}, err
	}

	r.mu.Lock()
	now := time.Now().UTC()
	if !now.After(r.last) {
		now = r.last.Add(time.Nanosecond)
	}
	r.last = now

	doc := core.Document{ID: uuid.NewString(), Fields: core.StripReserved(fields), CreatedAt: now}
	docs, ok := r.collections[collection]
	if !ok {
		docs = make(map[string]core.Document)
		r.collections[collection] = docs
	}
	docs[doc.ID] = doc
	r.mu.Unlock()

	r.publish(core.EventCreate, collection, doc.ID)
	return doc.Clone(), nil
}

func (r *Repository) Get(ctx context.Context, collection, id string) (core.Document, error) {
	if err := core.ValidateCollection(collection); err != nil {
		return core.Document{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.collections[collection][id]
	if !ok {
		return core.Document{}, fmt.Errorf("%w: %s/%s", core.ErrNotFound, collection, id)
	}
	return doc.Clone(), nil
}

func (r *Repository) List(ctx context.Context, collection string) ([]core.Document, error) {
	if err := core.ValidateCollection(collection); err != nil {
		return nil, err
	}

	r.mu.RLock()
	docs := make([]core.Document, 0, len(r.collections[collection]))
	for _, doc := range r.collections[collection] {
		docs = append(docs, doc.Clone())
	}
	r.mu.RUnlock()

	core.SortDocuments(docs)
	return docs, nil
}

func (r *Repository) Update(ctx context.Context, collection, id string, fields core.Fields) error {
	if err := core.ValidateCollection(collection); err != nil {
		return err
	}

	r.mu.Lock()
	doc, ok := r.collections[collection][id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s/%s", core.ErrNotFound, collection, id)
	}
	doc.Fields = core.MergeFields(doc.Fields, core.StripReserved(fields))
	r.collections[collection][id] = doc
	r.mu.Unlock()

	r.publish(core.EventModify, collection, id)
	return nil
}

func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	if err := core.ValidateCollection(collection); err != nil {
		return err
	}

	r.mu.Lock()
	if _, ok := r.collections[collection][id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s/%s", core.ErrNotFound, collection, id)
	}
	delete(r.collections[collection], id)
	r.mu.Unlock()

	r.publish(core.EventDelete, collection, id)
	return nil
}

// Watch reports every change made to collection through this repository.
func (r *Repository) Watch(ctx context.Context, collection string) (<-chan core.Event, error) {
	if err := core.ValidateCollection(collection); err != nil {
		return nil, err
	}
	all := r.events.Subscribe(ctx)
	return stream.Filter(ctx, all, r.eventBuffer, func(e core.Event) bool {
		return e.Collection == collection
	}), nil
}

// Close ends every active Watch.
func (r *Repository) Close() error {
	r.events.Close()
	return nil
}

func (r *Repository) publish(t core.EventType, collection, id string) {
	r.events.Publish(core.Event{Type: t, Collection: collection, ID: id, Timestamp: time.Now().Unix()})
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Collections int `json:"collections"`
	Documents   int `json:"documents"`
	Watchers    int `json:"watchers"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := 0
	for _, c := range r.collections {
		docs += len(c)
	}
	return RepositoryState{Collections: len(r.collections), Documents: docs, Watchers: r.events.Len()}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var (
	_ core.Repository              = (*Repository)(nil)
	_ core.Watchable               = (*Repository)(nil)
	_ introspection.Introspectable = (*Repository)(nil)
	_ introspection.Component      = (*Repository)(nil)
)
