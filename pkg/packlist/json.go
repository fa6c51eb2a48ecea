package packlist

import (
	"bytes"
	"encoding/json"
)

// Nodes is the ordered content of a list. It knows how to encode the Node
// union with its "type" discriminator.
type Nodes []Node

// wireNode is the stored shape shared by items and categories.
type wireNode struct {
	ID          string            `json:"id" yaml:"id"`
	Type        NodeType          `json:"type,omitempty" yaml:"type"`
	Name        string            `json:"name" yaml:"name"`
	Checked     bool              `json:"checked" yaml:"checked"`
	IsCollapsed bool              `json:"isCollapsed,omitempty" yaml:"isCollapsed,omitempty"`
	Items       []json.RawMessage `json:"items,omitempty" yaml:"-"`
}

func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string   `json:"id"`
		Type    NodeType `json:"type"`
		Name    string   `json:"name"`
		Checked bool     `json:"checked"`
	}{i.ID, TypeItem, i.Name, i.Checked})
}

// UnmarshalJSON decodes any node as an Item, keeping only its id, name and
// checked flag. A nested category therefore never survives decoding.
func (i *Item) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*i = Item{ID: w.ID, Name: w.Name, Checked: w.Checked}
	return nil
}

func (c Category) MarshalJSON() ([]byte, error) {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(struct {
		ID          string   `json:"id"`
		Type        NodeType `json:"type"`
		Name        string   `json:"name"`
		Checked     bool     `json:"checked"`
		IsCollapsed bool     `json:"isCollapsed"`
		Items       []Item   `json:"items"`
	}{c.ID, TypeCategory, c.Name, c.Checked, c.IsCollapsed, items})
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	cat, err := categoryFromWire(w)
	if err != nil {
		return err
	}
	*c = cat
	return nil
}

func categoryFromWire(w wireNode) (Category, error) {
	c := Category{ID: w.ID, Name: w.Name, Checked: w.Checked, IsCollapsed: w.IsCollapsed, Items: []Item{}}
	for _, raw := range w.Items {
		if isNull(raw) {
			continue
		}
		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			return Category{}, err
		}
		c.Items = append(c.Items, item)
	}
	return c, nil
}

func (n Nodes) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Node(n))
}

// UnmarshalJSON decodes leniently: a missing type means item, missing flags
// mean false and a missing items array means no children.
func (n *Nodes) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*n = Nodes{}
		return nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	out := make(Nodes, 0, len(raws))
	for _, raw := range raws {
		if isNull(raw) {
			continue
		}
		var w wireNode
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		if w.Type == TypeCategory {
			c, err := categoryFromWire(w)
			if err != nil {
				return err
			}
			out = append(out, c)
			continue
		}
		out = append(out, Item{ID: w.ID, Name: w.Name, Checked: w.Checked})
	}
	*n = out
	return nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// MarshalYAML renders the item with the same field names as JSON.
func (i Item) MarshalYAML() (any, error) {
	return wireNode{ID: i.ID, Type: TypeItem, Name: i.Name, Checked: i.Checked}, nil
}

// MarshalYAML renders the category with the same field names as JSON.
func (c Category) MarshalYAML() (any, error) {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	return struct {
		ID          string   `yaml:"id"`
		Type        NodeType `yaml:"type"`
		Name        string   `yaml:"name"`
		Checked     bool     `yaml:"checked"`
		IsCollapsed bool     `yaml:"isCollapsed"`
		Items       []Item   `yaml:"items"`
	}{c.ID, TypeCategory, c.Name, c.Checked, c.IsCollapsed, items}, nil
}
