package core

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Repository defines the contract for storing and retrieving documents.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism (filesystem, SQLite, memory).
type Repository interface {
	// Initialize ensures the underlying storage is ready (directories, schema).
	Initialize(ctx context.Context) error

	// Add creates a document in collection. The store assigns the ID and the
	// creation timestamp.
	Add(ctx context.Context, collection string, fields Fields) (Document, error)

	// Get retrieves a document by its ID.
	Get(ctx context.Context, collection, id string) (Document, error)

	// List returns every document of collection ordered by creation time.
	List(ctx context.Context, collection string) ([]Document, error)

	// Update merges fields into an existing document. Named fields are
	// overwritten, others are kept.
	Update(ctx context.Context, collection, id string, fields Fields) error

	// Delete removes a document by its ID.
	Delete(ctx context.Context, collection, id string) error
}

// Watchable is implemented by repositories that can report changes.
type Watchable interface {
	// Watch emits an Event for every change observed in collection until ctx
	// is done, then closes the channel.
	Watch(ctx context.Context, collection string) (<-chan Event, error)
}

// ValidateCollection checks that path is a relative, slash-separated
// collection path without empty or dot segments.
func ValidateCollection(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, path)
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `\`) {
			return fmt.Errorf("%w: %q", ErrInvalidCollection, path)
		}
	}
	return nil
}

// ValidateID checks that id can be used as a document identifier.
func ValidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid document ID %q", id)
	}
	return nil
}

// StripReserved returns a copy of fields without the store-owned keys.
func StripReserved(fields Fields) Fields {
	out := maps.Clone(fields)
	if out == nil {
		out = make(Fields)
	}
	delete(out, FieldID)
	delete(out, FieldCreatedAt)
	return out
}

// MergeFields returns base overwritten by every field of patch.
func MergeFields(base, patch Fields) Fields {
	out := maps.Clone(base)
	if out == nil {
		out = make(Fields, len(patch))
	}
	maps.Copy(out, patch)
	return out
}

// SortDocuments orders docs by creation time, then by ID.
func SortDocuments(docs []Document) {
	slices.SortStableFunc(docs, func(a, b Document) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
