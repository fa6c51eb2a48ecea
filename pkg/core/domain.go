// Package core defines the document-store contract the rest of the module is
// built on: schemaless documents grouped in slash-separated collections,
// created with store-assigned identifiers and timestamps, merged on update
// and observable through change events.
package core

import (
	"fmt"
	"maps"
	"time"
)

// Fields represents the named values stored in a document.
type Fields map[string]any

// Reserved field names. They are owned by the store and never written from a
// caller's payload.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
)

// Document is the central entity of the store.
// Its ID is assigned by the store and unique within its collection.
type Document struct {
	ID        string
	Fields    Fields
	CreatedAt time.Time
}

// Clone returns a copy of the document whose top-level field map can be
// modified without affecting d.
func (d Document) Clone() Document {
	d.Fields = maps.Clone(d.Fields)
	if d.Fields == nil {
		d.Fields = make(Fields)
	}
	return d
}

// EventType represents the type of change in a collection.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in a collection. An empty ID means the whole
// collection may have changed and should be reloaded.
type Event struct {
	Type       EventType
	Collection string
	ID         string
	Timestamp  int64 // Unix timestamp
}

func (e Event) String() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s", e.Type, e.Collection)
	}
	return fmt.Sprintf("%s %s/%s", e.Type, e.Collection, e.ID)
}
