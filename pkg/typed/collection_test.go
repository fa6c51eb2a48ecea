package typed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/packlist/pkg/adapters/fs"
	"github.com/aretw0/packlist/pkg/adapters/memory"
	"github.com/aretw0/packlist/pkg/core"
	"github.com/aretw0/packlist/pkg/typed"
)

type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

func setupService(t *testing.T) *core.Service {
	t.Helper()

	repo := fs.NewRepository(fs.Config{Path: t.TempDir(), Debounce: 10 * time.Millisecond})
	if err := repo.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	return core.NewService(repo, nil)
}

func TestTypedCollection(t *testing.T) {
	ctx := context.Background()
	users := typed.NewCollection[UserProfile](setupService(t), "users")

	alice, err := users.Add(ctx, UserProfile{Name: "Alice", Email: "alice@example.com", Age: 30})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if alice.ID == "" {
		t.Fatal("expected generated ID")
	}

	retrieved, err := users.Get(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.Data.Name != "Alice" || retrieved.Data.Age != 30 {
		t.Errorf("unexpected data %+v", retrieved.Data)
	}

	if err := users.Patch(ctx, alice.ID, core.Fields{"age": 31}); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}

	if _, err := users.Add(ctx, UserProfile{Name: "Bob", Age: 25}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	list, err := users.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list))
	}
	if list[0].Data.Name != "Alice" || list[0].Data.Age != 31 {
		t.Errorf("expected updated Alice first, got %+v", list[0].Data)
	}

	if err := users.Patch(ctx, alice.ID, core.Fields{"email": "new@example.com"}); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	patched, _ := users.Get(ctx, alice.ID)
	if patched.Data.Email != "new@example.com" || patched.Data.Name != "Alice" {
		t.Errorf("unexpected patched data %+v", patched.Data)
	}

	if err := users.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := users.Get(ctx, alice.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPatchMissingDocument(t *testing.T) {
	users := typed.NewCollection[UserProfile](setupService(t), "users")
	if err := users.Patch(context.Background(), "ghost", core.Fields{"age": 1}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := users.Patch(context.Background(), "", core.Fields{"age": 1}); !errors.Is(err, core.ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
}

func TestTypedWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for name, svc := range map[string]*core.Service{
		"fs":     setupService(t),
		"memory": core.NewService(memory.NewRepository(0), nil),
	} {
		t.Run(name, func(t *testing.T) {
			users := typed.NewCollection[UserProfile](svc, "users")
			sub, err := users.Watch(ctx)
			if err != nil {
				t.Fatalf("Watch failed: %v", err)
			}
			defer sub.Close()

			waitLen := func(n int) {
				t.Helper()
				timeout := time.After(3 * time.Second)
				for {
					select {
					case docs := <-sub.Updates():
						if len(docs) == n {
							return
						}
					case <-timeout:
						t.Fatalf("timed out waiting for %d documents", n)
					}
				}
			}

			waitLen(0)
			if _, err := users.Add(ctx, UserProfile{Name: "Carol"}); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
			waitLen(1)
		})
	}
}

type nonWatchable struct{ core.Repository }

func TestWatchUnsupported(t *testing.T) {
	svc := core.NewService(nonWatchable{memory.NewRepository(0)}, nil)
	users := typed.NewCollection[UserProfile](svc, "users")

	if _, err := users.Watch(context.Background()); !errors.Is(err, core.ErrWatchUnsupported) {
		t.Errorf("expected ErrWatchUnsupported, got %v", err)
	}
}
