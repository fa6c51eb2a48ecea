package packlist_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/packlist/pkg/packlist"
)

func camping() packlist.List {
	return packlist.List{
		ID:   "src",
		Name: "Camping",
		Items: packlist.Nodes{
			packlist.Item{ID: "1", Name: "Tent", Checked: true},
			packlist.Category{ID: "2", Name: "Cooking", IsCollapsed: true, Items: []packlist.Item{
				{ID: "3", Name: "Pan"},
			}},
		},
	}
}

func TestImportAsCategory(t *testing.T) {
	source := camping()
	snapshot := packlist.CloneNodes(source.Items)
	target := packlist.List{ID: "dst", Name: "Trip", Items: packlist.Nodes{}}

	cat, items := packlist.ImportAsCategory(source, target)

	require.Len(t, items, 1)
	assert.Equal(t, cat, items[0])
	assert.Equal(t, "Camping", cat.Name)
	assert.False(t, cat.Checked)
	assert.False(t, cat.IsCollapsed)

	require.Len(t, cat.Items, 2)
	assert.Equal(t, "Tent", cat.Items[0].Name)
	assert.True(t, cat.Items[0].Checked)
	assert.Equal(t, "Pan", cat.Items[1].Name)
	assert.False(t, cat.Items[1].Checked)

	for _, id := range []string{cat.ID, cat.Items[0].ID, cat.Items[1].ID} {
		assert.NotContains(t, []string{"1", "2", "3"}, id, "ids are regenerated")
	}

	assert.Empty(t, cmp.Diff(snapshot, source.Items), "source must not change")
	assert.Empty(t, target.Items, "target must not change")
}

func TestImportTwiceAppendsTwoCategories(t *testing.T) {
	target := packlist.List{Name: "Trip", Items: packlist.Nodes{packlist.Item{ID: "x", Name: "Map"}}}

	first, items := packlist.ImportAsCategory(camping(), target)
	target.Items = items
	second, items := packlist.ImportAsCategory(camping(), target)

	require.Len(t, items, 3)
	assert.Equal(t, "x", items[0].NodeID())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestImportNames(t *testing.T) {
	source := packlist.List{Name: "Odd", Items: packlist.Nodes{
		packlist.Item{ID: "a", Name: ""},
		packlist.Item{ID: "b", Name: "   "},
		packlist.Item{ID: "c", Name: "  Rope "},
		packlist.Category{ID: "d", Name: "", Items: []packlist.Item{{ID: "e", Name: ""}, {ID: "f", Name: " "}}},
	}}

	cat, _ := packlist.ImportAsCategory(source, packlist.List{})

	var names []string
	for _, it := range cat.Items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{packlist.UnnamedItem, "Rope", packlist.UnnamedItem}, names)
	assert.Equal(t, "Odd", cat.Name)

	for _, blank := range []string{"", "   "} {
		cat, _ := packlist.ImportAsCategory(packlist.List{Name: blank}, packlist.List{})
		assert.Equal(t, packlist.UnnamedList, cat.Name, "source name %q", blank)
	}
}

func TestImportEmptySource(t *testing.T) {
	cat, items := packlist.ImportAsCategory(packlist.List{Name: "Empty"}, packlist.List{})
	require.Len(t, items, 1)
	assert.NotNil(t, cat.Items)
	assert.Empty(t, cat.Items)
}
