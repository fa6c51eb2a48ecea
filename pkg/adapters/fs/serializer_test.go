package fs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/packlist/pkg/core"
)

func TestJSONSerializer(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 42, time.UTC)
	doc := core.Document{ID: "x", Fields: core.Fields{"name": "Trip", "id": "x"}, CreatedAt: created}

	s := NewJSONSerializer(false)
	data, err := s.Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if strings.Contains(string(data), `"id"`) {
		t.Errorf("id must not be serialized: %s", data)
	}

	got, err := s.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected %v, got %v", created, got.CreatedAt)
	}
	if _, ok := got.Fields[core.FieldCreatedAt]; ok {
		t.Error("createdAt must not leak into fields")
	}
}

func TestJSONSerializerStrict(t *testing.T) {
	s := NewJSONSerializer(true)
	got, err := s.Parse(strings.NewReader(`{"big": 9007199254740993}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if n, ok := got.Fields["big"].(json.Number); !ok || n.String() != "9007199254740993" {
		t.Errorf("expected json.Number, got %T %v", got.Fields["big"], got.Fields["big"])
	}
}

func TestYAMLSerializer(t *testing.T) {
	s := NewYAMLSerializer()

	t.Run("Unquoted Timestamp", func(t *testing.T) {
		got, err := s.Parse(strings.NewReader("name: Hike\ncreatedAt: 2024-05-01T12:00:00Z\nitems:\n  - id: a\n    name: Boots\n"))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if got.CreatedAt.Year() != 2024 {
			t.Errorf("unexpected createdAt %v", got.CreatedAt)
		}
		items, ok := got.Fields["items"].([]any)
		if !ok || len(items) != 1 {
			t.Fatalf("unexpected items %#v", got.Fields["items"])
		}
		if _, ok := items[0].(map[string]any); !ok {
			t.Errorf("expected normalized map, got %T", items[0])
		}
	})

	t.Run("Invalid Timestamp", func(t *testing.T) {
		if _, err := s.Parse(strings.NewReader("createdAt: yesterday\n")); err == nil {
			t.Error("expected error for invalid createdAt")
		}
	})
}
