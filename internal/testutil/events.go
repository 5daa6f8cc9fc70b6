// Package testutil provides event builders for tests: real sortable IDs,
// a fixed actor, and payloads expressed as ir values.
package testutil

import (
	"github.com/roach88/verso/internal/event"
	"github.com/roach88/verso/internal/ir"
)

// Actor is the actor stamped on all built events.
const Actor = "test"

// Create builds a CREATE event.
func Create(target string, ts int64, after ir.Value) event.Event {
	return event.Event{
		ID:     event.NewID(),
		TS:     ts,
		Op:     event.OpCreate,
		Target: target,
		After:  after,
		Actor:  Actor,
	}
}

// Update builds an UPDATE event.
func Update(target string, ts int64, before, after ir.Value) event.Event {
	return event.Event{
		ID:     event.NewID(),
		TS:     ts,
		Op:     event.OpUpdate,
		Target: target,
		Before: before,
		After:  after,
		Actor:  Actor,
	}
}

// Delete builds a DELETE event.
func Delete(target string, ts int64, before ir.Value) event.Event {
	return event.Event{
		ID:     event.NewID(),
		TS:     ts,
		Op:     event.OpDelete,
		Target: target,
		Before: before,
		Actor:  Actor,
	}
}

// WithOps embeds operator provenance into an after-state object.
func WithOps(after ir.Object, ops event.UpdateOps) ir.Object {
	out := make(ir.Object, len(after)+1)
	for k, v := range after {
		out[k] = v
	}
	raw := make(ir.Object, len(ops))
	for opName, fields := range ops {
		fo := make(ir.Object, len(fields))
		for field, v := range fields {
			fo[field] = v
		}
		raw[opName] = fo
	}
	out["_ops"] = raw
	return out
}
