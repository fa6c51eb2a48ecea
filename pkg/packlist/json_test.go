package packlist_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/packlist/pkg/packlist"
)

func TestNodesWireShape(t *testing.T) {
	items := packlist.Nodes{
		packlist.Item{ID: "1", Name: "Tent", Checked: true},
		packlist.Category{ID: "2", Name: "Cooking"},
	}

	data, err := json.Marshal(items)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"1","type":"item","name":"Tent","checked":true},
		{"id":"2","type":"sublist","name":"Cooking","checked":false,"isCollapsed":false,"items":[]}
	]`, string(data))

	var decoded packlist.Nodes
	require.NoError(t, json.Unmarshal(data, &decoded))
	want := packlist.Nodes{
		packlist.Item{ID: "1", Name: "Tent", Checked: true},
		packlist.Category{ID: "2", Name: "Cooking", Items: []packlist.Item{}},
	}
	assert.Empty(t, cmp.Diff(want, decoded))
}

func TestNodesLenientDecode(t *testing.T) {
	raw := `[
		{"id":"a","name":"No type"},
		null,
		{"id":"b","type":"sublist","name":"Deep","items":[
			{"id":"c","type":"sublist","name":"Nested","checked":true,"items":[{"id":"d","name":"Lost"}]}
		]},
		{"id":"e","type":"sublist","name":"Bare"}
	]`

	var nodes packlist.Nodes
	require.NoError(t, json.Unmarshal([]byte(raw), &nodes))

	want := packlist.Nodes{
		packlist.Item{ID: "a", Name: "No type"},
		packlist.Category{ID: "b", Name: "Deep", Items: []packlist.Item{{ID: "c", Name: "Nested", Checked: true}}},
		packlist.Category{ID: "e", Name: "Bare", Items: []packlist.Item{}},
	}
	assert.Empty(t, cmp.Diff(want, nodes))
}

func TestListJSON(t *testing.T) {
	var l packlist.List
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","name":"Trip","items":null}`), &l))
	assert.NotNil(t, l.Items)

	data, err := json.Marshal(packlist.List{Name: "Empty"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Empty","items":[]}`, string(data))
}

func TestNodesYAML(t *testing.T) {
	data, err := yaml.Marshal(packlist.List{Name: "Trip", Items: packlist.Nodes{
		packlist.Category{ID: "c", Name: "Kitchen", Items: []packlist.Item{{ID: "i", Name: "Pan"}}},
	}})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "type: sublist")
	assert.Contains(t, out, "isCollapsed: false")
	assert.Contains(t, out, "name: Pan")
}
