package packlist_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/packlist/pkg/packlist"
)

func sample() []packlist.Node {
	return []packlist.Node{
		packlist.Item{ID: "tent", Name: "Tent", Checked: true},
		packlist.Category{ID: "kitchen", Name: "Kitchen", Items: []packlist.Item{
			{ID: "pan", Name: "Pan"},
			{ID: "stove", Name: "Stove", Checked: true},
		}},
		packlist.Category{ID: "clothes", Name: "Clothes", Items: []packlist.Item{
			{ID: "socks", Name: "Socks"},
		}},
	}
}

func TestAddItem(t *testing.T) {
	before := sample()
	snapshot := packlist.CloneNodes(before)

	after := packlist.AddItem(before, "  Lamp  ")
	require.Len(t, after, len(before)+1)
	assert.Empty(t, cmp.Diff(snapshot, packlist.Nodes(before)), "input must not change")
	assert.Empty(t, cmp.Diff(before, after[:len(before)]), "existing nodes keep order and identity")

	added, ok := after[len(after)-1].(packlist.Item)
	require.True(t, ok)
	assert.Equal(t, "Lamp", added.Name)
	assert.False(t, added.Checked)
	assert.NotEmpty(t, added.ID)
}

func TestAddBlankNamesAreNoOps(t *testing.T) {
	for _, name := range []string{"", " ", "\t\n"} {
		assert.Len(t, packlist.AddItem(sample(), name), 3)
		assert.Len(t, packlist.AddCategory(sample(), name), 3)
		assert.Empty(t, cmp.Diff(sample(), packlist.AddItemToCategory(sample(), "kitchen", name)))
	}
}

func TestAddCategory(t *testing.T) {
	after := packlist.AddCategory(nil, "Toiletries")
	require.Len(t, after, 1)

	c, ok := after[0].(packlist.Category)
	require.True(t, ok)
	assert.Equal(t, "Toiletries", c.Name)
	assert.False(t, c.Checked)
	assert.False(t, c.IsCollapsed)
	assert.NotNil(t, c.Items)
	assert.Empty(t, c.Items)
}

func TestAddItemToCategory(t *testing.T) {
	before := sample()
	after := packlist.AddItemToCategory(before, "kitchen", "Knife")

	kitchen, ok := packlist.FindCategory(after, "kitchen")
	require.True(t, ok)
	require.Len(t, kitchen.Items, 3)
	assert.Equal(t, "Knife", kitchen.Items[2].Name)

	assert.Empty(t, cmp.Diff(before[2], after[2]), "other categories untouched")
	original, _ := packlist.FindCategory(before, "kitchen")
	assert.Len(t, original.Items, 2, "input category must not change")

	assert.Empty(t, cmp.Diff(before, packlist.AddItemToCategory(before, "missing", "Knife")))
	assert.Empty(t, cmp.Diff(before, packlist.AddItemToCategory(before, "tent", "Knife")), "items are not categories")
}

func TestToggleCheck(t *testing.T) {
	t.Run("top-level item round trip", func(t *testing.T) {
		before := sample()
		once := packlist.ToggleCheck(before, "tent", "")
		assert.False(t, once[0].IsChecked())
		assert.Empty(t, cmp.Diff(before[1:], once[1:]), "siblings untouched")
		assert.Empty(t, cmp.Diff(before, packlist.ToggleCheck(once, "tent", "")))
	})

	t.Run("category does not cascade", func(t *testing.T) {
		after := packlist.ToggleCheck(sample(), "kitchen", "")
		kitchen, _ := packlist.FindCategory(after, "kitchen")
		assert.True(t, kitchen.Checked)
		assert.False(t, kitchen.Items[0].Checked)
		assert.True(t, kitchen.Items[1].Checked)
	})

	t.Run("item inside category", func(t *testing.T) {
		before := sample()
		after := packlist.ToggleCheck(before, "pan", "kitchen")

		kitchen, _ := packlist.FindCategory(after, "kitchen")
		assert.True(t, kitchen.Items[0].Checked)
		assert.True(t, kitchen.Items[1].Checked)
		assert.False(t, kitchen.Checked)

		original, _ := packlist.FindCategory(before, "kitchen")
		assert.False(t, original.Items[0].Checked, "input must not change")
	})

	t.Run("unknown ids", func(t *testing.T) {
		before := sample()
		assert.Empty(t, cmp.Diff(before, packlist.ToggleCheck(before, "nope", "")))
		assert.Empty(t, cmp.Diff(before, packlist.ToggleCheck(before, "nope", "kitchen")))
		assert.Empty(t, cmp.Diff(before, packlist.ToggleCheck(before, "pan", "clothes")))
	})
}

func TestDelete(t *testing.T) {
	t.Run("top-level category with children", func(t *testing.T) {
		after := packlist.Delete(sample(), "kitchen", "")
		require.Len(t, after, 2)
		assert.Equal(t, "tent", after[0].NodeID())
		assert.Equal(t, "clothes", after[1].NodeID())
		_, _, found := packlist.Find(after, "pan")
		assert.False(t, found)
	})

	t.Run("item inside category", func(t *testing.T) {
		before := sample()
		after := packlist.Delete(before, "pan", "kitchen")
		kitchen, _ := packlist.FindCategory(after, "kitchen")
		require.Len(t, kitchen.Items, 1)
		assert.Equal(t, "stove", kitchen.Items[0].ID)

		original, _ := packlist.FindCategory(before, "kitchen")
		assert.Len(t, original.Items, 2)
	})

	t.Run("unknown ids are no-ops", func(t *testing.T) {
		before := sample()
		assert.Empty(t, cmp.Diff(before, packlist.Delete(before, "nope", "")))
		assert.Empty(t, cmp.Diff(before, packlist.Delete(before, "nope", "kitchen")))
		assert.Empty(t, cmp.Diff(before, packlist.Delete(before, "pan", "missing")))
	})
}

func TestToggleCollapse(t *testing.T) {
	before := sample()
	once := packlist.ToggleCollapse(before, "kitchen")

	kitchen, _ := packlist.FindCategory(once, "kitchen")
	clothes, _ := packlist.FindCategory(once, "clothes")
	assert.True(t, kitchen.IsCollapsed)
	assert.False(t, clothes.IsCollapsed)
	assert.Empty(t, cmp.Diff(before, packlist.ToggleCollapse(once, "kitchen")))

	assert.Empty(t, cmp.Diff(before, packlist.ToggleCollapse(before, "tent")), "items have no collapse flag")
}

func TestFindAndCount(t *testing.T) {
	items := sample()

	n, cat, ok := packlist.Find(items, "stove")
	require.True(t, ok)
	assert.Equal(t, "kitchen", cat)
	assert.Equal(t, "Stove", n.NodeName())

	checked, total := packlist.CountChecked(items)
	assert.Equal(t, 2, checked)
	assert.Equal(t, 4, total)
}

func TestCloneNodes(t *testing.T) {
	items := sample()
	clone := packlist.CloneNodes(items)
	require.Empty(t, cmp.Diff(items, []packlist.Node(clone)))

	kitchen := clone[1].(packlist.Category)
	kitchen.Items[0].Name = "Wok"
	assert.Equal(t, "Pan", items[1].(packlist.Category).Items[0].Name, "clone shares no category items")

	assert.Nil(t, packlist.CloneNodes(nil))
}

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := packlist.NewID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
