// Package session ties an identity provider and a list store together into
// the state a front-end renders: who is signed in, their lists, the selected
// list and the last error. Every change is published as a new State.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"

	"github.com/aretw0/packlist/pkg/auth"
	"github.com/aretw0/packlist/pkg/packlist"
	"github.com/aretw0/packlist/pkg/stream"
)

// ListStore is the persistence the session needs. *packlist.Store satisfies it.
type ListStore interface {
	Create(ctx context.Context, owner, name string) (packlist.List, error)
	Update(ctx context.Context, owner string, l packlist.List) error
	Delete(ctx context.Context, owner, id string) error
	Watch(ctx context.Context, owner string) (*stream.Subscription[[]packlist.List], error)
}

// Session holds the state of one user-facing session.
type Session struct {
	auth   auth.Provider
	lists  ListStore
	logger *slog.Logger

	changes *stream.Broadcaster[State]

	mu      sync.Mutex
	state   State
	running bool
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// The active list subscription, the identity it belongs to and a
	// generation bumped every time it is replaced. Snapshots from an older
	// generation are dropped.
	listSub *stream.Subscription[[]packlist.List]
	listKey string
	gen     uint64
}

// New creates a session. A nil logger discards output.
func New(provider auth.Provider, lists ListStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		auth:    provider,
		lists:   lists,
		logger:  logger,
		changes: stream.NewBroadcaster[State](16),
	}
}

// Start subscribes to the identity provider. The session follows every
// sign-in and sign-out until Close is called or ctx is done.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	identities := s.auth.Watch(s.runCtx)
	s.spawn(func(ctx context.Context) error {
		defer identities.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case id, ok := <-identities.Updates():
				if !ok {
					if err := identities.Err(); err != nil {
						s.logger.Error("identity stream ended", "error", err)
						return err
					}
					return nil
				}
				s.onIdentity(ctx, id)
			}
		}
	})
	return nil
}

// Close releases every subscription and waits for background work to end.
func (s *Session) Close() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	old := s.detachLocked()
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	if old != nil {
		_ = old.Close()
	}
	s.wg.Wait()
	s.changes.Close()
	return nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Watch delivers the current state and then every change. Slow consumers
// only see the most recent state.
func (s *Session) Watch(ctx context.Context) *stream.Subscription[State] {
	return stream.Start(ctx, func(ctx context.Context, emit func(State)) error {
		changes := s.changes.Subscribe(ctx)
		emit(s.Snapshot())
		for {
			select {
			case <-ctx.Done():
				return nil
			case st, ok := <-changes:
				if !ok {
					return nil
				}
				emit(st)
			}
		}
	})
}

// WaitFor blocks until cond holds for the session state and returns that state.
func (s *Session) WaitFor(ctx context.Context, cond func(State) bool) (State, error) {
	sub := s.Watch(ctx)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		case st, ok := <-sub.Updates():
			if !ok {
				if err := ctx.Err(); err != nil {
					return s.Snapshot(), err
				}
				return s.Snapshot(), ErrNotRunning
			}
			if cond(st) {
				return st, nil
			}
		}
	}
}

// WaitReady waits until the identity is known and, when signed in, the first
// list snapshot has arrived.
func (s *Session) WaitReady(ctx context.Context) (State, error) {
	return s.WaitFor(ctx, func(st State) bool {
		return st.AuthReady && !st.LoadingLists
	})
}

func (s *Session) onIdentity(ctx context.Context, id *auth.Identity) {
	key := ""
	if id != nil {
		key = id.Key
	}

	s.mu.Lock()
	s.state.Identity = id
	s.state.AuthReady = true
	s.state.AuthError = ""

	if key == s.listKey && (key == "" || s.listSub != nil) {
		s.publishLocked()
		s.mu.Unlock()
		return
	}

	old := s.detachLocked()
	s.listKey = key
	s.state.LoadingLists = key != ""
	gen := s.gen
	s.publishLocked()
	s.mu.Unlock()

	// The previous subscription is released before the next one is opened.
	if old != nil {
		_ = old.Close()
	}
	if key != "" {
		s.subscribeLists(ctx, gen, key)
	}
}

func (s *Session) subscribeLists(ctx context.Context, gen uint64, key string) {
	sub, err := s.lists.Watch(ctx, key)
	if err != nil {
		s.logger.Error("list subscription failed", "identity", key, "error", err)
		s.mu.Lock()
		if s.gen == gen {
			s.state.LoadingLists = false
			s.state.Error = MsgLoadFailed
			s.publishLocked()
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		_ = sub.Close()
		return
	}
	s.listSub = sub
	s.mu.Unlock()

	started := s.spawn(func(ctx context.Context) error {
		for lists := range sub.Updates() {
			s.applyLists(gen, lists)
		}
		if err := sub.Err(); err != nil {
			s.logger.Error("list subscription ended", "identity", key, "error", err)
			s.mu.Lock()
			if s.gen == gen {
				s.state.LoadingLists = false
				s.state.Error = MsgLoadFailed
				s.publishLocked()
			}
			s.mu.Unlock()
		}
		return nil
	})
	if !started {
		_ = sub.Close()
	}
}

func (s *Session) applyLists(gen uint64, lists []packlist.List) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return
	}
	s.state.Lists = lists
	s.state.LoadingLists = false
	s.publishLocked()
}

// resync replays the provider's current identity onto the state.
func (s *Session) resync() {
	s.mu.Lock()
	running, ctx := s.running, s.runCtx
	s.mu.Unlock()
	if !running {
		return
	}
	s.onIdentity(ctx, s.auth.Current())
}

// detachLocked forgets the active list subscription and returns it so the
// caller can close it outside the lock.
func (s *Session) detachLocked() *stream.Subscription[[]packlist.List] {
	old := s.listSub
	s.listSub = nil
	s.listKey = ""
	s.gen++
	s.state.Lists = nil
	s.state.CurrentListID = ""
	s.state.LoadingLists = false
	return old
}

func (s *Session) publishLocked() {
	s.changes.Publish(s.state.clone())
}

// spawn runs fn in the background while the session is running.
func (s *Session) spawn(fn func(ctx context.Context) error) bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	ctx := s.runCtx
	s.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer s.wg.Done()
		return fn(ctx)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("session worker failed", "error", err)
	}))
	return true
}

// closeAsync releases sub without blocking the caller.
func (s *Session) closeAsync(sub *stream.Subscription[[]packlist.List]) {
	if sub == nil {
		return
	}
	s.mu.Lock()
	running := s.running
	var ctx context.Context
	if running {
		s.wg.Add(1)
		ctx = context.WithoutCancel(s.runCtx)
	}
	s.mu.Unlock()

	if !running {
		_ = sub.Close()
		return
	}
	lifecycle.Go(ctx, func(context.Context) error {
		defer s.wg.Done()
		return sub.Close()
	})
}

func (s *Session) setError(msg string, err error) {
	if err != nil {
		s.logger.Error(msg, "error", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = msg
	s.publishLocked()
}

func (s *Session) setAuthError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AuthError = msg
	s.publishLocked()
}

// owner returns the key of the signed-in identity.
func (s *Session) owner() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Identity == nil {
		return "", false
	}
	return s.state.Identity.Key, true
}

func blank(name string) bool {
	return strings.TrimSpace(name) == ""
}

// SessionState exposes internal state for observability.
type SessionState struct {
	Running    bool   `json:"running"`
	Identity   string `json:"identity"`
	Lists      int    `json:"lists"`
	Generation uint64 `json:"generation"`
	Watchers   int    `json:"watchers"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionState{
		Running:    s.running,
		Identity:   s.state.Identity.Label(),
		Lists:      len(s.state.Lists),
		Generation: s.gen,
		Watchers:   s.changes.Len(),
	}
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "session"
}

var (
	_ introspection.Introspectable = (*Session)(nil)
	_ introspection.Component      = (*Session)(nil)
	_ ListStore                    = (*packlist.Store)(nil)
)
