package fs

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/packlist/pkg/core"
)

// Watch observes a collection directory and emits an event per document
// change until ctx is done. The returned channel is closed when watching stops.
func (r *Repository) Watch(ctx context.Context, collection string) (<-chan core.Event, error) {
	if err := r.checkCollection(collection); err != nil {
		return nil, err
	}

	dir := r.collectionDir(collection)
	if r.config.ReadOnly {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, collection)
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create collection directory: %w", err)
	}

	events := make(chan core.Event, r.config.EventBuffer)
	w := newWatchWorker(r, collection, dir, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}
