// Package sqlite implements core.Repository on a single SQLite database file
// using the pure-Go modernc.org/sqlite driver.
//
// Every document is a row of the documents table with its fields stored as a
// JSON object. Watch reports the changes made through the same Repository
// value; writes from other processes are not observed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/google/uuid"

	"github.com/aretw0/packlist/pkg/core"
	"github.com/aretw0/packlist/pkg/stream"

	_ "modernc.org/sqlite"
)

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path        string // database file, created on Initialize
	EventBuffer int
	Logger      *slog.Logger
}

// Repository implements core.Repository on SQLite.
type Repository struct {
	config Config
	events *stream.Broadcaster[core.Event]

	mu   sync.Mutex
	db   *sql.DB
	last time.Time
}

// NewRepository creates a repository. The database is opened by Initialize.
func NewRepository(config Config) *Repository {
	if config.EventBuffer <= 0 {
		config.EventBuffer = 100
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Repository{
		config: config,
		events: stream.NewBroadcaster[core.Event](config.EventBuffer),
	}
}

// Initialize opens the database and applies the schema.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return nil
	}
	if dir := filepath.Dir(r.config.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", r.config.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.config.Path, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	r.db = db
	r.config.Logger.Debug("sqlite repository ready", "path", r.config.Path)
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			fields_json TEXT NOT NULL,
			created_at_unixns INTEGER NOT NULL,
			PRIMARY KEY(collection, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(collection, created_at_unixns, id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (r *Repository) conn() (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil, errors.New("sqlite repository not initialized")
	}
	return r.db, nil
}

func (r *Repository) Add(ctx context.Context, collection string, fields core.Fields) (core.Document, error) {
	if err := core.ValidateCollection(collection); err != nil {
		return core.Document{}, err
	}
	db, err := r.conn()
	if err != nil {
		return core.Document{}, err
	}

	doc := core.Document{ID: uuid.NewString(), Fields: core.StripReserved(fields), CreatedAt: r.nextCreatedAt()}
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to encode fields: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO documents(collection, id, fields_json, created_at_unixns) VALUES(?, ?, ?, ?)`,
		collection, doc.ID, string(data), doc.CreatedAt.UnixNano())
	if err != nil {
		return core.Document{}, fmt.Errorf("insert %s: %w", collection, err)
	}

	r.publish(core.EventCreate, collection, doc.ID)
	return doc, nil
}

func (r *Repository) Get(ctx context.Context, collection, id string) (core.Document, error) {
	if err := core.ValidateCollection(collection); err != nil {
		return core.Document{}, err
	}
	db, err := r.conn()
	if err != nil {
		return core.Document{}, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, fields_json, created_at_unixns FROM documents WHERE collection = ? AND id = ?`,
		collection, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, fmt.Errorf("%w: %s/%s", core.ErrNotFound, collection, id)
	}
	return doc, err
}

func (r *Repository) List(ctx context.Context, collection string) ([]core.Document, error) {
	if err := core.ValidateCollection(collection); err != nil {
		return nil, err
	}
	db, err := r.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, fields_json, created_at_unixns FROM documents WHERE collection = ? ORDER BY created_at_unixns, id`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []core.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *Repository) Update(ctx context.Context, collection, id string, fields core.Fields) error {
	if err := core.ValidateCollection(collection); err != nil {
		return err
	}
	db, err := r.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT id, fields_json, created_at_unixns FROM documents WHERE collection = ? AND id = ?`,
		collection, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", core.ErrNotFound, collection, id)
	}
	if err != nil {
		return err
	}

	merged := core.MergeFields(doc.Fields, core.StripReserved(fields))
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET fields_json = ? WHERE collection = ? AND id = ?`,
		string(data), collection, id); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	r.publish(core.EventModify, collection, id)
	return nil
}

func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	if err := core.ValidateCollection(collection); err != nil {
		return err
	}
	db, err := r.conn()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s/%s", core.ErrNotFound, collection, id)
	}

	r.publish(core.EventDelete, collection, id)
	return nil
}

// Watch reports the changes made to collection through r.
func (r *Repository) Watch(ctx context.Context, collection string) (<-chan core.Event, error) {
	if err := core.ValidateCollection(collection); err != nil {
		return nil, err
	}
	all := r.events.Subscribe(ctx)
	return stream.Filter(ctx, all, r.config.EventBuffer, func(e core.Event) bool {
		return e.Collection == collection
	}), nil
}

// Close ends every Watch and closes the database.
func (r *Repository) Close() error {
	r.events.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (core.Document, error) {
	var (
		id      string
		data    string
		created int64
	)
	if err := s.Scan(&id, &data, &created); err != nil {
		return core.Document{}, err
	}

	fields := core.Fields{}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return core.Document{}, fmt.Errorf("corrupt document %s: %w", id, err)
	}
	return core.Document{ID: id, Fields: fields, CreatedAt: time.Unix(0, created).UTC()}, nil
}

func (r *Repository) nextCreatedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if !now.After(r.last) {
		now = r.last.Add(time.Nanosecond)
	}
	r.last = now
	return now
}

func (r *Repository) publish(t core.EventType, collection, id string) {
	r.events.Publish(core.Event{Type: t, Collection: collection, ID: id, Timestamp: time.Now().Unix()})
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path     string `json:"path"`
	Open     bool   `json:"open"`
	Watchers int    `json:"watchers"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RepositoryState{Path: r.config.Path, Open: r.db != nil, Watchers: r.events.Len()}
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
