// Package fs implements core.Repository on top of the local filesystem.
//
// Each collection is a directory below the repository root and each document
// a single file named after its ID (e.g. "artifacts/app/users/u1/lists/<id>.json").
// Writes are atomic (temp file + rename) and changes are observed with fsnotify.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/aretw0/packlist/pkg/core"
)

// DocumentPattern matches the file names the repository treats as documents.
const DocumentPattern = "*.{json,yaml,yml}"

// Repository implements core.Repository using the filesystem.
type Repository struct {
	Path        string
	config      Config
	serializers map[string]Serializer
	cache       *cache

	mu            sync.RWMutex
	watchers      int
	lastEvent     *time.Time
	lastCreatedAt time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	SystemDir    string // e.g. ".packlist", never listed as a collection
	Format       string // "json" (default) or "yaml"
	ReadOnly     bool
	Strict       bool          // parse JSON numbers as json.Number
	EventBuffer  int           // size of each Watch channel (default 100)
	Debounce     time.Duration // coalescing window for watch events (default 50ms)
	Logger       *slog.Logger
	ErrorHandler func(error) // receives runtime watcher failures
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".packlist"
	}
	if config.Format == "" {
		config.Format = "json"
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 100
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Repository{
		Path:        config.Path,
		config:      config,
		serializers: DefaultSerializers(config.Strict),
		cache:       newCache(),
	}
}

// Initialize performs the necessary setup for the repository (mkdir).
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Join(r.Path, r.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Add creates a new document file with a generated ID.
func (r *Repository) Add(ctx context.Context, collection string, fields core.Fields) (core.Document, error) {
	if r.config.ReadOnly {
		return core.Document{}, core.ErrReadOnly
	}
	if err := r.checkCollection(collection); err != nil {
		return core.Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}

	doc := core.Document{
		ID:        uuid.NewString(),
		Fields:    core.StripReserved(fields),
		CreatedAt: r.nextCreatedAt(),
	}
	if err := r.write(collection, doc, r.ext()); err != nil {
		return core.Document{}, err
	}
	return doc, nil
}

// Get retrieves a document from the filesystem.
func (r *Repository) Get(ctx context.Context, collection, id string) (core.Document, error) {
	if err := r.checkCollection(collection); err != nil {
		return core.Document{}, err
	}
	fullPath, ext, err := r.locate(collection, id)
	if err != nil {
		return core.Document{}, err
	}
	return r.read(fullPath, ext, id)
}

// List scans a collection directory for all documents.
//
// Strategy:
//  1. Read the directory entries (no recursion: sub-directories are other collections).
//  2. For each file matching DocumentPattern, check the cache (mtime + size).
//  3. Cache miss: full parse, then update the cache.
//  4. Prune cache entries for files that disappeared and sort by creation time.
func (r *Repository) List(ctx context.Context, collection string) ([]core.Document, error) {
	if err := r.checkCollection(collection); err != nil {
		return nil, err
	}

	dir := r.collectionDir(collection)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []core.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}

	docs := make([]core.Document, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ok, _ := doublestar.Match(DocumentPattern, name); !ok {
			continue
		}

		ext := filepath.Ext(name)
		id := strings.TrimSuffix(name, ext)
		if seen[id] {
			// Same ID stored in two formats: the first one wins.
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // Removed while scanning
		}

		rel := path.Join(collection, name)
		seen[id] = true

		if doc, hit := r.cache.Get(rel, info.ModTime(), info.Size()); hit {
			docs = append(docs, doc)
			continue
		}

		doc, err := r.read(filepath.Join(dir, name), ext, id)
		if err != nil {
			r.config.Logger.Warn("skipping unreadable document", "path", rel, "error", err)
			continue
		}
		r.cache.Set(rel, doc, info.ModTime(), info.Size())
		docs = append(docs, doc)
	}

	r.cache.Prune(collection, func(rel string) bool {
		name := path.Base(rel)
		return seen[strings.TrimSuffix(name, path.Ext(name))]
	})

	core.SortDocuments(docs)
	return docs, nil
}

// Update merges fields into an existing document, keeping its format.
func (r *Repository) Update(ctx context.Context, collection, id string, fields core.Fields) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := r.checkCollection(collection); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, ext, err := r.locate(collection, id)
	if err != nil {
		return err
	}
	doc, err := r.read(fullPath, ext, id)
	if err != nil {
		return err
	}

	doc.Fields = core.MergeFields(doc.Fields, core.StripReserved(fields))
	return r.write(collection, doc, ext)
}

// Delete removes a document file.
func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := r.checkCollection(collection); err != nil {
		return err
	}

	fullPath, ext, err := r.locate(collection, id)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.ErrNotFound
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}
	r.cache.Delete(path.Join(collection, id+ext))
	return nil
}

func (r *Repository) checkCollection(collection string) error {
	if err := core.ValidateCollection(collection); err != nil {
		return err
	}
	if first, _, _ := strings.Cut(collection, "/"); first == r.config.SystemDir {
		return fmt.Errorf("%w: %q is reserved", core.ErrInvalidCollection, r.config.SystemDir)
	}
	return nil
}

func (r *Repository) collectionDir(collection string) string {
	return filepath.Join(r.Path, filepath.FromSlash(collection))
}

func (r *Repository) ext() string {
	if r.config.Format == "yaml" || r.config.Format == "yml" {
		return ".yaml"
	}
	return ".json"
}

// locate finds the file backing id, preferring the configured format.
func (r *Repository) locate(collection, id string) (string, string, error) {
	if err := core.ValidateID(id); err != nil {
		return "", "", err
	}

	dir := r.collectionDir(collection)
	candidates := []string{r.ext(), ".json", ".yaml", ".yml"}
	for _, ext := range candidates {
		fullPath := filepath.Join(dir, id+ext)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, ext, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s/%s", core.ErrNotFound, collection, id)
}

func (r *Repository) read(fullPath, ext, id string) (core.Document, error) {
	s, ok := r.serializers[ext]
	if !ok {
		return core.Document{}, fmt.Errorf("no serializer for %s", ext)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
		}
		return core.Document{}, err
	}
	defer f.Close()

	doc, err := s.Parse(f)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse document %s: %w", id, err)
	}
	doc.ID = id
	return doc, nil
}

func (r *Repository) write(collection string, doc core.Document, ext string) error {
	s, ok := r.serializers[ext]
	if !ok {
		return fmt.Errorf("no serializer for %s", ext)
	}

	dir := r.collectionDir(collection)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := s.Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(dir, doc.ID+ext), data); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	r.cache.Delete(path.Join(collection, doc.ID+ext))
	return nil
}

// nextCreatedAt returns a strictly increasing creation timestamp so that
// documents added in quick succession keep their insertion order.
func (r *Repository) nextCreatedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if !now.After(r.lastCreatedAt) {
		now = r.lastCreatedAt.Add(time.Nanosecond)
	}
	r.lastCreatedAt = now
	return now
}
