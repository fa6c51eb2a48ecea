package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Service handles the business rules around a Repository: input validation,
// stripping of store-owned fields on update and watch bookkeeping.
type Service struct {
	repo   Repository
	logger *slog.Logger

	mu      sync.RWMutex
	watches int
}

// NewService creates a new Service. A nil logger discards output.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// Repository returns the underlying storage adapter.
func (s *Service) Repository() Repository {
	return s.repo
}

// AddDocument creates a document. Reserved fields in the payload are ignored.
func (s *Service) AddDocument(ctx context.Context, collection string, fields Fields) (Document, error) {
	if err := ValidateCollection(collection); err != nil {
		return Document{}, err
	}
	doc, err := s.repo.Add(ctx, collection, StripReserved(fields))
	if err != nil {
		return Document{}, fmt.Errorf("add document to %s: %w", collection, err)
	}
	s.logger.Debug("document added", "collection", collection, "id", doc.ID)
	return doc, nil
}

// GetDocument retrieves a document.
func (s *Service) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	if err := ValidateCollection(collection); err != nil {
		return Document{}, err
	}
	if err := ValidateID(id); err != nil {
		return Document{}, err
	}
	return s.repo.Get(ctx, collection, id)
}

// ListDocuments retrieves all documents of a collection in creation order.
func (s *Service) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, collection)
}

// UpdateDocument sends a partial update. The document ID and the creation
// timestamp are removed from fields before the store merges them.
func (s *Service) UpdateDocument(ctx context.Context, collection, id string, fields Fields) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, collection, id, StripReserved(fields)); err != nil {
		return fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}
	s.logger.Debug("document updated", "collection", collection, "id", id)
	return nil
}

// DeleteDocument removes a document.
func (s *Service) DeleteDocument(ctx context.Context, collection, id string) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	s.logger.Debug("document deleted", "collection", collection, "id", id)
	return nil
}

// CanWatch reports whether the repository supports change events.
func (s *Service) CanWatch() bool {
	_, ok := s.repo.(Watchable)
	return ok
}

// Watch observes changes in a collection if the repository supports it.
// The returned channel is closed when ctx is done.
func (s *Service) Watch(ctx context.Context, collection string) (<-chan Event, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, ErrWatchUnsupported
	}

	events, err := w.Watch(ctx, collection)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.watches++
	s.mu.Unlock()
	context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.watches--
		s.mu.Unlock()
	})

	s.logger.Debug("watch started", "collection", collection)
	return events, nil
}
