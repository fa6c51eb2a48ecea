package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/packlist/pkg/core"
)

type watchWorker struct {
	repo       *Repository
	collection string
	dir        string
	events     chan core.Event
	watcher    *fsnotify.Watcher
	debouncer  *debouncer
}

func newWatchWorker(repo *Repository, collection, dir string, events chan core.Event) *watchWorker {
	return &watchWorker{
		repo:       repo,
		collection: collection,
		dir:        dir,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.collection, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.repo.config.Debounce)
	w.repo.watcherStarted()

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		w.reportError(fmt.Errorf("watcher %s: %w", w.collection, err))
	}))
	return nil
}

// run is the main loop of the worker. Cleanup order matters: stop the
// debouncer before closing events so no timer sends on a closed channel.
func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		_ = w.watcher.Close()
		w.debouncer.stopAndWait(5 * time.Second)
		w.repo.watcherStopped()
		close(w.events)

		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)

			// Full stack only when debug logging is enabled.
			if w.repo.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.repo.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.repo.config.Logger.Error("watcher panic", "error", err)
			}
		}
	}()

	return w.mainEventLoop(ctx)
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.handleWatcherError(ctx, wErr)
		}
	}
}

// processFilesystemEvent filters, maps and debounces a single fsnotify event.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) bool {
	w.repo.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if filepath.Dir(event.Name) != w.dir {
		return false
	}
	name := filepath.Base(event.Name)
	if ok, _ := doublestar.Match(DocumentPattern, name); !ok {
		return false
	}

	eType := mapEventType(event)
	if eType == "" {
		return false
	}

	w.sendEvent(ctx, core.Event{
		Type:       eType,
		Collection: w.collection,
		ID:         strings.TrimSuffix(name, filepath.Ext(name)),
		Timestamp:  time.Now().Unix(),
	})
	return true
}

// sendEvent enqueues an event via the debouncer, protecting against channel closure during shutdown.
func (w *watchWorker) sendEvent(ctx context.Context, event core.Event) {
	w.debouncer.add(event, func(e core.Event) {
		defer func() {
			_ = recover()
		}()
		select {
		case w.events <- e:
			w.repo.recordEvent()
		case <-ctx.Done():
		}
	})
}

// handleWatcherError reports an fsnotify error. On overflow some changes were
// lost, so subscribers are told to reload the whole collection.
func (w *watchWorker) handleWatcherError(ctx context.Context, err error) {
	w.repo.config.Logger.Error("fsnotify error", "collection", w.collection, "error", err)
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		w.sendEvent(ctx, core.Event{
			Type:       core.EventModify,
			Collection: w.collection,
			Timestamp:  time.Now().Unix(),
		})
	}
	w.reportError(err)
}

func (w *watchWorker) reportError(err error) {
	if w.repo.config.ErrorHandler != nil {
		w.repo.config.ErrorHandler(err)
		return
	}
	w.repo.config.Logger.Error("watcher failure", "error", err)
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}
