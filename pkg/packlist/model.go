// Package packlist holds the packing-list domain: lists of items and
// categories, the pure operations that edit them and the import engine that
// copies one list into another as a new category.
//
// A list is a two-level tree. Top-level nodes are either an Item or a
// Category, and a Category only ever contains Items, which the type system
// enforces through Category.Items being []Item.
package packlist

import (
	"time"

	"github.com/google/uuid"
)

// NodeType is the discriminator stored in the "type" field of every node.
type NodeType string

const (
	TypeItem     NodeType = "item"
	TypeCategory NodeType = "sublist"
)

// Node is an entry of a list: an Item or a Category.
type Node interface {
	NodeID() string
	NodeName() string
	NodeType() NodeType
	IsChecked() bool
	isNode()
}

// Item is a leaf entry with a name and a checked flag.
type Item struct {
	ID      string
	Name    string
	Checked bool
}

func (i Item) NodeID() string     { return i.ID }
func (i Item) NodeName() string   { return i.Name }
func (i Item) NodeType() NodeType { return TypeItem }
func (i Item) IsChecked() bool    { return i.Checked }
func (Item) isNode()              {}

// Category groups Items under a name. IsCollapsed is a display flag.
type Category struct {
	ID          string
	Name        string
	Checked     bool
	IsCollapsed bool
	Items       []Item
}

func (c Category) NodeID() string     { return c.ID }
func (c Category) NodeName() string   { return c.Name }
func (c Category) NodeType() NodeType { return TypeCategory }
func (c Category) IsChecked() bool    { return c.Checked }
func (Category) isNode()              {}

// List is a named, ordered collection of nodes owned by one identity.
// The owner is implied by where the list is stored.
type List struct {
	ID        string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Items     Nodes     `json:"items" yaml:"items"`
	CreatedAt time.Time `json:"createdAt,omitzero" yaml:"createdAt,omitempty"`
}

// NewID returns a fresh random identifier for a node.
func NewID() string {
	return uuid.NewString()
}
