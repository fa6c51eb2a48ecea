package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/packlist/pkg/adapters/sqlite"
	"github.com/aretw0/packlist/pkg/core"
)

func newRepo(t *testing.T) (*sqlite.Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".packlist", "data.sqlite")
	repo := sqlite.NewRepository(sqlite.Config{Path: path})
	require.NoError(t, repo.Initialize(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })
	return repo, path
}

func TestNotInitialized(t *testing.T) {
	repo := sqlite.NewRepository(sqlite.Config{Path: filepath.Join(t.TempDir(), "x.sqlite")})
	_, err := repo.List(context.Background(), "lists")
	assert.Error(t, err)
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	a, err := repo.Add(ctx, "users/u1/lists", core.Fields{"name": "Camping", "items": []any{}})
	require.NoError(t, err)
	b, err := repo.Add(ctx, "users/u1/lists", core.Fields{"name": "Beach"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "users/u1/lists", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camping", got.Fields["name"])
	assert.True(t, got.CreatedAt.Equal(a.CreatedAt))

	require.NoError(t, repo.Update(ctx, "users/u1/lists", a.ID, core.Fields{
		"items": []any{map[string]any{"id": "i1", "type": "item", "name": "Tent", "checked": false}},
	}))
	got, err = repo.Get(ctx, "users/u1/lists", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camping", got.Fields["name"])
	assert.Len(t, got.Fields["items"], 1)

	docs, err := repo.List(ctx, "users/u1/lists")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, []string{a.ID, b.ID}, []string{docs[0].ID, docs[1].ID})

	other, err := repo.List(ctx, "users/u2/lists")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, repo.Delete(ctx, "users/u1/lists", a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, "users/u1/lists", a.ID), core.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, "users/u1/lists", a.ID, core.Fields{}), core.ErrNotFound)
	_, err = repo.Get(ctx, "users/u1/lists", a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t)

	doc, err := repo.Add(ctx, "lists", core.Fields{"name": "Kept"})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened := sqlite.NewRepository(sqlite.Config{Path: path})
	require.NoError(t, reopened.Initialize(ctx))
	defer reopened.Close()

	got, err := reopened.Get(ctx, "lists", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kept", got.Fields["name"])
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo, _ := newRepo(t)

	events, err := repo.Watch(ctx, "lists")
	require.NoError(t, err)

	doc, err := repo.Add(ctx, "lists", core.Fields{"name": "New"})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "lists", doc.ID))

	var got []core.EventType
	for len(got) < 2 {
		select {
		case e := <-events:
			assert.Equal(t, doc.ID, e.ID)
			got = append(got, e.Type)
		case <-time.After(time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	assert.Equal(t, []core.EventType{core.EventCreate, core.EventDelete}, got)
}
