// Package typed provides a generic, type-safe view over a core.Service
// collection. Document fields are converted to and from T through its JSON
// representation.
package typed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/packlist/pkg/core"
	"github.com/aretw0/packlist/pkg/stream"
)

// ErrFeedClosed is returned by a Watch subscription when the repository
// stops reporting changes before the subscription is closed.
var ErrFeedClosed = errors.New("change feed closed")

// DocumentModel wraps the raw core.Document with typed data.
type DocumentModel[T any] struct {
	ID        string
	CreatedAt time.Time
	Data      T
}

// Collection gives typed access to the documents stored under one path.
type Collection[T any] struct {
	svc  *core.Service
	path string
}

// NewCollection creates a typed collection bound to path.
func NewCollection[T any](svc *core.Service, path string) *Collection[T] {
	return &Collection[T]{svc: svc, path: path}
}

// Path returns the collection path.
func (c *Collection[T]) Path() string {
	return c.path
}

// Add stores data as a new document.
func (c *Collection[T]) Add(ctx context.Context, data T) (*DocumentModel[T], error) {
	fields, err := ToFields(data)
	if err != nil {
		return nil, err
	}
	doc, err := c.svc.AddDocument(ctx, c.path, fields)
	if err != nil {
		return nil, err
	}
	return fromCore[T](doc)
}

// Get retrieves a document and unmarshals it.
func (c *Collection[T]) Get(ctx context.Context, id string) (*DocumentModel[T], error) {
	doc, err := c.svc.GetDocument(ctx, c.path, id)
	if err != nil {
		return nil, err
	}
	return fromCore[T](doc)
}

// List returns all documents converted to the typed model, oldest first.
func (c *Collection[T]) List(ctx context.Context) ([]*DocumentModel[T], error) {
	docs, err := c.svc.ListDocuments(ctx, c.path)
	if err != nil {
		return nil, err
	}

	result := make([]*DocumentModel[T], 0, len(docs))
	for _, d := range docs {
		model, err := fromCore[T](d)
		if err != nil {
			return nil, fmt.Errorf("failed to process document %s: %w", d.ID, err)
		}
		result = append(result, model)
	}
	return result, nil
}

// Patch merges the given fields into a stored document, leaving the others
// untouched.
func (c *Collection[T]) Patch(ctx context.Context, id string, fields core.Fields) error {
	return c.svc.UpdateDocument(ctx, c.path, id, fields)
}

// Delete removes a document by ID.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.svc.DeleteDocument(ctx, c.path, id)
}

// Watch emits the full, ordered content of the collection once immediately
// and again after every change. Bursts of changes are folded into a single
// reload.
func (c *Collection[T]) Watch(ctx context.Context) (*stream.Subscription[[]*DocumentModel[T]], error) {
	if err := core.ValidateCollection(c.path); err != nil {
		return nil, err
	}
	if !c.svc.CanWatch() {
		return nil, core.ErrWatchUnsupported
	}

	return stream.Start(ctx, func(ctx context.Context, emit func([]*DocumentModel[T])) error {
		// Subscribe before the first read so no change is missed in between.
		events, err := c.svc.Watch(ctx, c.path)
		if err != nil {
			return err
		}

		docs, err := c.List(ctx)
		if err != nil {
			return err
		}
		emit(docs)

		for {
			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-events:
				if !ok {
					if ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("watch %s: %w", c.path, ErrFeedClosed)
				}
				if !drain(events) {
					if ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("watch %s: %w", c.path, ErrFeedClosed)
				}

				docs, err := c.List(ctx)
				if err != nil {
					return err
				}
				emit(docs)
			}
		}
	}), nil
}

// drain discards events already queued. It reports false if the channel was closed.
func drain(events <-chan core.Event) bool {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// ToFields converts v to document fields through its JSON form.
func ToFields(v any) (core.Fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}

	var fields core.Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to convert typed data to fields: %w", err)
	}
	if fields == nil {
		fields = core.Fields{}
	}
	return fields, nil
}

func fromCore[T any](doc core.Document) (*DocumentModel[T], error) {
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("fields marshal failed: %w", err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}

	return &DocumentModel[T]{
		ID:        doc.ID,
		CreatedAt: doc.CreatedAt,
		Data:      v,
	}, nil
}
