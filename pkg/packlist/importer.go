package packlist

import (
	"slices"
	"strings"
)

const (
	// UnnamedItem replaces the empty name of an imported item.
	UnnamedItem = "Unnamed Item"
	// UnnamedList names the category of an imported list whose name is blank.
	UnnamedList = "Unnamed List"
)

// ImportAsCategory copies source into a new category named after it and
// returns that category together with target's items plus the category
// appended at the end. Every copied node gets a fresh id.
//
// Categories of source are flattened: their items become direct items of the
// new category and the category itself (name and flags) is dropped. A blank
// source name becomes UnnamedList. Items whose name is blank after defaulting
// are skipped. Neither list is modified.
func ImportAsCategory(source, target List) (Category, []Node) {
	name := strings.TrimSpace(source.Name)
	if name == "" {
		name = UnnamedList
	}
	cat := Category{
		ID:    NewID(),
		Name:  name,
		Items: []Item{},
	}

	for _, n := range source.Items {
		switch n := n.(type) {
		case Item:
			cat.Items = appendImported(cat.Items, n)
		case Category:
			for _, child := range n.Items {
				cat.Items = appendImported(cat.Items, child)
			}
		}
	}

	items := append(slices.Clone([]Node(target.Items)), cat)
	return cat, items
}

func appendImported(dst []Item, src Item) []Item {
	name := src.Name
	if name == "" {
		name = UnnamedItem
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return dst
	}
	return append(dst, Item{ID: NewID(), Name: name, Checked: src.Checked})
}
