package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/packlist/pkg/core"
)

// Serializer defines how to read and write a specific file format.
//
// The document ID is the file name and is never part of the payload; the
// creation time is stored under core.FieldCreatedAt.
type Serializer interface {
	// Parse reads from r and returns a Document without its ID.
	Parse(r io.Reader) (core.Document, error)
	// Serialize converts the Document to bytes.
	Serialize(doc core.Document) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers keyed by extension.
func DefaultSerializers(strict bool) map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(strict),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// --- JSON Serializer ---

// JSONSerializer handles reading and writing JSON files.
type JSONSerializer struct {
	// Strict enables strict number parsing (as json.Number) to avoid precision loss.
	Strict bool
}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer(strict bool) *JSONSerializer {
	return &JSONSerializer{Strict: strict}
}

func (s *JSONSerializer) Parse(r io.Reader) (core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Document{}, err
	}

	var payload map[string]any
	decoder := json.NewDecoder(bytes.NewReader(data))
	if s.Strict {
		decoder.UseNumber()
	}
	if err := decoder.Decode(&payload); err != nil {
		return core.Document{}, fmt.Errorf("invalid json: %w", err)
	}
	return fromPayload(payload)
}

func (s *JSONSerializer) Serialize(doc core.Document) ([]byte, error) {
	return json.MarshalIndent(toPayload(doc), "", "  ")
}

// --- YAML Serializer ---

// YAMLSerializer handles reading and writing YAML files.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Parse(r io.Reader) (core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Document{}, err
	}

	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return core.Document{}, fmt.Errorf("invalid yaml: %w", err)
	}
	normalized, _ := recursiveNormalize(payload).(map[string]any)
	return fromPayload(normalized)
}

func (s *YAMLSerializer) Serialize(doc core.Document) ([]byte, error) {
	return yaml.Marshal(toPayload(doc))
}

func toPayload(doc core.Document) map[string]any {
	payload := maps.Clone(map[string]any(doc.Fields))
	if payload == nil {
		payload = make(map[string]any)
	}
	delete(payload, core.FieldID)
	if !doc.CreatedAt.IsZero() {
		payload[core.FieldCreatedAt] = doc.CreatedAt.UTC().Format(time.RFC3339Nano)
	} else {
		delete(payload, core.FieldCreatedAt)
	}
	return payload
}

func fromPayload(payload map[string]any) (core.Document, error) {
	if payload == nil {
		payload = make(map[string]any)
	}

	doc := core.Document{}
	switch v := payload[core.FieldCreatedAt].(type) {
	case nil:
	case time.Time:
		doc.CreatedAt = v.UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return core.Document{}, fmt.Errorf("invalid %s: %w", core.FieldCreatedAt, err)
		}
		doc.CreatedAt = t.UTC()
	default:
		return core.Document{}, fmt.Errorf("invalid %s: unexpected type %T", core.FieldCreatedAt, v)
	}

	delete(payload, core.FieldCreatedAt)
	delete(payload, core.FieldID)
	doc.Fields = core.Fields(payload)
	return doc, nil
}

// recursiveNormalize converts the map[any]any values YAML may produce into
// map[string]any so documents look the same whatever their on-disk format.
func recursiveNormalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = recursiveNormalize(val)
		}
		return out
	case map[string]any:
		for k, val := range t {
			t[k] = recursiveNormalize(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = recursiveNormalize(val)
		}
		return t
	default:
		return v
	}
}
