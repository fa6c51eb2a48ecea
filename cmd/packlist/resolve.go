package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/packlist"
	"github.com/aretw0/packlist/pkg/session"
)

// resolveList finds a list by id, then by exact (trimmed) name.
func resolveList(st session.State, ref string) (packlist.List, error) {
	if l, ok := st.FindList(ref); ok {
		return l, nil
	}
	ref = strings.TrimSpace(ref)
	var found []packlist.List
	for _, l := range st.Lists {
		if l.Name == ref {
			found = append(found, l)
		}
	}
	switch len(found) {
	case 0:
		return packlist.List{}, fmt.Errorf("%w: %s", errListNotFound, ref)
	case 1:
		return found[0], nil
	}
	return packlist.List{}, fmt.Errorf("%w: %d lists named %q", errAmbiguous, len(found), ref)
}

// resolveCategory finds a top-level category by id or exact name.
func resolveCategory(items []packlist.Node, ref string) (packlist.Category, error) {
	var cats []packlist.Category
	for _, n := range items {
		if c, ok := n.(packlist.Category); ok {
			cats = append(cats, c)
		}
	}
	c, err := match(cats, ref)
	if err != nil {
		return packlist.Category{}, fmt.Errorf("category: %w", err)
	}
	return c, nil
}

// resolveNode returns the id of a node and of its category. With an empty
// categoryRef the node is looked up among the top-level nodes.
func resolveNode(items []packlist.Node, ref, categoryRef string) (string, string, error) {
	if categoryRef == "" {
		n, err := match(items, ref)
		if err != nil {
			return "", "", err
		}
		return n.NodeID(), "", nil
	}

	c, err := resolveCategory(items, categoryRef)
	if err != nil {
		return "", "", err
	}
	it, err := match(c.Items, ref)
	if err != nil {
		return "", "", err
	}
	return it.ID, c.ID, nil
}

func match[N packlist.Node](nodes []N, ref string) (N, error) {
	var zero N
	for _, n := range nodes {
		if n.NodeID() == ref {
			return n, nil
		}
	}
	ref = strings.TrimSpace(ref)
	var found []N
	for _, n := range nodes {
		if n.NodeName() == ref {
			found = append(found, n)
		}
	}
	switch len(found) {
	case 0:
		return zero, fmt.Errorf("%w: %s", errNodeNotFound, ref)
	case 1:
		return found[0], nil
	}
	return zero, fmt.Errorf("%w: %d entries named %q", errAmbiguous, len(found), ref)
}
