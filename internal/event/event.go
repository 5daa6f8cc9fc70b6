// Package event defines the change-event model consumed by the merge core:
// immutable facts about single-entity changes, the update-operator
// provenance they may carry, and commutativity analysis over operators.
//
// Events are produced by an upstream log and consumed read-only here;
// nothing in this package mutates an event after construction.
package event

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/verso/internal/ir"
)

// Op identifies the kind of change an event records.
type Op string

const (
	OpCreate    Op = "CREATE"
	OpUpdate    Op = "UPDATE"
	OpDelete    Op = "DELETE"
	OpRelCreate Op = "REL_CREATE"
	OpRelDelete Op = "REL_DELETE"
)

// IsCreate reports whether the op introduces an entity or relationship.
func (o Op) IsCreate() bool { return o == OpCreate || o == OpRelCreate }

// IsDelete reports whether the op removes an entity or relationship.
func (o Op) IsDelete() bool { return o == OpDelete || o == OpRelDelete }

// Valid reports whether o is one of the five known ops.
func (o Op) Valid() bool {
	switch o {
	case OpCreate, OpUpdate, OpDelete, OpRelCreate, OpRelDelete:
		return true
	}
	return false
}

// Event is an immutable fact about one entity change.
//
// Target is a "<namespace>:<localId>" key (e.g. "posts:p1"). Before and
// After are the entity states around the change; either may be absent
// (nil). After may carry an embedded "_ops" object recording which update
// operators produced it; see ExtractOps.
type Event struct {
	ID       string   `json:"id"`
	TS       int64    `json:"ts"` // milliseconds
	Op       Op       `json:"op"`
	Target   string   `json:"target"`
	Before   ir.Value `json:"before,omitempty"`
	After    ir.Value `json:"after,omitempty"`
	Actor    string   `json:"actor"`
	Metadata ir.Value `json:"metadata,omitempty"`
}

// NewID returns a time-sortable event id (UUIDv7). Falls back to a random
// UUIDv4 if the monotonic source fails, which preserves uniqueness at the
// cost of sortability.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// UnmarshalJSON decodes an event, routing the JSON-like payload fields
// through the ir value model.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		TS       int64           `json:"ts"`
		Op       Op              `json:"op"`
		Target   string          `json:"target"`
		Before   json.RawMessage `json:"before"`
		After    json.RawMessage `json:"after"`
		Actor    string          `json:"actor"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.ID = raw.ID
	e.TS = raw.TS
	e.Op = raw.Op
	e.Target = raw.Target
	e.Actor = raw.Actor

	var err error
	if e.Before, err = decodePayload(raw.Before); err != nil {
		return fmt.Errorf("event %s: before: %w", raw.ID, err)
	}
	if e.After, err = decodePayload(raw.After); err != nil {
		return fmt.Errorf("event %s: after: %w", raw.ID, err)
	}
	if e.Metadata, err = decodePayload(raw.Metadata); err != nil {
		return fmt.Errorf("event %s: metadata: %w", raw.ID, err)
	}
	return nil
}

// decodePayload maps a missing JSON field to an absent (nil) value and an
// explicit null to ir.Null.
func decodePayload(raw json.RawMessage) (ir.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return ir.FromJSON(raw)
}

// ParseLog decodes a JSON array of events.
func ParseLog(data []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parse event log: %w", err)
	}
	for i, ev := range events {
		if !ev.Op.Valid() {
			return nil, fmt.Errorf("event log[%d] (%s): unknown op %q", i, ev.ID, ev.Op)
		}
	}
	return events, nil
}
