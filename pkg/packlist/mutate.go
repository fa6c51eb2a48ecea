package packlist

import (
	"slices"
	"strings"
)

// The operations below never modify their input. Each returns a new
// top-level slice; a category that changes gets a new Items slice, every
// other node is shared with the input.

// AddItem appends a new unchecked item. A blank name leaves the list unchanged.
func AddItem(items []Node, name string) []Node {
	out := slices.Clone(items)
	name = strings.TrimSpace(name)
	if name == "" {
		return out
	}
	return append(out, Item{ID: NewID(), Name: name})
}

// AddCategory appends a new empty, expanded category. A blank name leaves
// the list unchanged.
func AddCategory(items []Node, name string) []Node {
	out := slices.Clone(items)
	name = strings.TrimSpace(name)
	if name == "" {
		return out
	}
	return append(out, Category{ID: NewID(), Name: name, Items: []Item{}})
}

// AddItemToCategory appends a new item to the top-level category categoryID.
func AddItemToCategory(items []Node, categoryID, name string) []Node {
	out := slices.Clone(items)
	name = strings.TrimSpace(name)
	if name == "" {
		return out
	}

	i, c, ok := findCategory(out, categoryID)
	if !ok {
		return out
	}
	c.Items = append(slices.Clone(c.Items), Item{ID: NewID(), Name: name})
	out[i] = c
	return out
}

// ToggleCheck flips the checked flag of a node. With a categoryID the node
// is an item of that category, otherwise it is a top-level item or category.
// Checking a category does not check its items.
func ToggleCheck(items []Node, nodeID, categoryID string) []Node {
	out := slices.Clone(items)

	if categoryID != "" {
		i, c, ok := findCategory(out, categoryID)
		if !ok {
			return out
		}
		j := slices.IndexFunc(c.Items, func(it Item) bool { return it.ID == nodeID })
		if j < 0 {
			return out
		}
		c.Items = slices.Clone(c.Items)
		c.Items[j].Checked = !c.Items[j].Checked
		out[i] = c
		return out
	}

	for i, n := range out {
		if n.NodeID() != nodeID {
			continue
		}
		switch n := n.(type) {
		case Item:
			n.Checked = !n.Checked
			out[i] = n
		case Category:
			n.Checked = !n.Checked
			out[i] = n
		}
		break
	}
	return out
}

// Delete removes a node. With a categoryID it removes an item of that
// category, otherwise a top-level node together with any children.
// Unknown ids are ignored.
func Delete(items []Node, nodeID, categoryID string) []Node {
	out := slices.Clone(items)

	if categoryID != "" {
		i, c, ok := findCategory(out, categoryID)
		if !ok {
			return out
		}
		j := slices.IndexFunc(c.Items, func(it Item) bool { return it.ID == nodeID })
		if j < 0 {
			return out
		}
		c.Items = slices.Delete(slices.Clone(c.Items), j, j+1)
		out[i] = c
		return out
	}

	i := slices.IndexFunc(out, func(n Node) bool { return n.NodeID() == nodeID })
	if i < 0 {
		return out
	}
	return slices.Delete(out, i, i+1)
}

// ToggleCollapse flips the collapsed flag of the top-level category
// categoryID. Items and unknown ids are ignored.
func ToggleCollapse(items []Node, categoryID string) []Node {
	out := slices.Clone(items)
	i, c, ok := findCategory(out, categoryID)
	if !ok {
		return out
	}
	c.IsCollapsed = !c.IsCollapsed
	out[i] = c
	return out
}

// Find looks a node up by id at the top level and inside categories. For a
// nested item it also returns the id of its category.
func Find(items []Node, id string) (node Node, categoryID string, ok bool) {
	for _, n := range items {
		if n.NodeID() == id {
			return n, "", true
		}
	}
	for _, n := range items {
		c, isCat := n.(Category)
		if !isCat {
			continue
		}
		for _, it := range c.Items {
			if it.ID == id {
				return it, c.ID, true
			}
		}
	}
	return nil, "", false
}

// FindCategory returns the top-level category with the given id.
func FindCategory(items []Node, id string) (Category, bool) {
	_, c, ok := findCategory(items, id)
	return c, ok
}

func findCategory(items []Node, id string) (int, Category, bool) {
	for i, n := range items {
		if c, ok := n.(Category); ok && c.ID == id {
			return i, c, true
		}
	}
	return -1, Category{}, false
}

// CountChecked reports packing progress over leaf items: top-level items and
// the items of every category.
func CountChecked(items []Node) (checked, total int) {
	count := func(it Item) {
		total++
		if it.Checked {
			checked++
		}
	}
	for _, n := range items {
		switch n := n.(type) {
		case Item:
			count(n)
		case Category:
			for _, it := range n.Items {
				count(it)
			}
		}
	}
	return checked, total
}

// CloneNodes returns a deep copy of items.
func CloneNodes(items []Node) Nodes {
	if items == nil {
		return nil
	}
	out := make(Nodes, len(items))
	for i, n := range items {
		if c, ok := n.(Category); ok {
			c.Items = slices.Clone(c.Items)
			out[i] = c
			continue
		}
		out[i] = n
	}
	return out
}
