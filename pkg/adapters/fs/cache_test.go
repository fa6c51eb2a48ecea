package fs

import (
	"testing"
	"time"

	"github.com/aretw0/packlist/pkg/core"
)

func TestCache(t *testing.T) {
	now := time.Now()
	doc := core.Document{ID: "a", Fields: core.Fields{"name": "A"}}

	t.Run("Hit and Stale", func(t *testing.T) {
		c := newCache()
		c.Set("lists/a.json", doc, now, 10)

		got, ok := c.Get("lists/a.json", now, 10)
		if !ok || got.Fields["name"] != "A" {
			t.Fatalf("expected cache hit, got %v %v", got, ok)
		}
		if _, ok := c.Get("lists/a.json", now.Add(time.Second), 10); ok {
			t.Error("expected miss on newer mtime")
		}
		if _, ok := c.Get("lists/a.json", now, 11); ok {
			t.Error("expected miss on size change")
		}
	})

	t.Run("Returned Document Is a Copy", func(t *testing.T) {
		c := newCache()
		c.Set("lists/a.json", doc, now, 10)

		got, _ := c.Get("lists/a.json", now, 10)
		got.Fields["name"] = "changed"

		again, _ := c.Get("lists/a.json", now, 10)
		if again.Fields["name"] != "A" {
			t.Error("cache entry was mutated through a returned document")
		}
	})

	t.Run("Prune Only Direct Children", func(t *testing.T) {
		c := newCache()
		c.Set("lists/a.json", doc, now, 1)
		c.Set("lists/b.json", doc, now, 1)
		c.Set("lists/sub/c.json", doc, now, 1)
		c.Set("other/d.json", doc, now, 1)

		c.Prune("lists", func(rel string) bool { return rel == "lists/a.json" })

		if c.Len() != 3 {
			t.Errorf("expected 3 entries after prune, got %d", c.Len())
		}
		if _, ok := c.Get("lists/b.json", now, 1); ok {
			t.Error("lists/b.json should have been pruned")
		}
	})
}
