// Package merge implements the event-stream merge core: field-level
// conflict detection between two divergent streams, a pluggable
// resolution-strategy framework, and deterministic stream merging.
//
// Conflicts are data, not errors: nothing in this package fails because
// two streams disagree.
package merge

import (
	"sort"

	"github.com/roach88/verso/internal/event"
	"github.com/roach88/verso/internal/ir"
)

// ConflictType classifies a detected divergence.
type ConflictType string

const (
	// ConcurrentUpdate: both sides changed the same field to different
	// values. Reported per field.
	ConcurrentUpdate ConflictType = "concurrent_update"

	// DeleteUpdate: one side deleted the entity the other side changed.
	// Reported once per target, whole-entity.
	DeleteUpdate ConflictType = "delete_update"

	// CreateCreate: both sides created the same target with different
	// states. Reported once per target, whole-entity.
	CreateCreate ConflictType = "create_create"
)

// Conflict is a genuine divergence between two sides' latest state for a
// shared target. Field is set only for ConcurrentUpdate. Values may be
// absent (nil): the deleting side of a DeleteUpdate has no value, and
// CreateCreate has no base.
type Conflict struct {
	Type       ConflictType `json:"type"`
	Target     string       `json:"target"`
	Field      string       `json:"field,omitempty"`
	OurValue   ir.Value     `json:"our_value,omitempty"`
	TheirValue ir.Value     `json:"their_value,omitempty"`
	BaseValue  ir.Value     `json:"base_value,omitempty"`
	OurEvent   *event.Event `json:"our_event,omitempty"`
	TheirEvent *event.Event `json:"their_event,omitempty"`
	Resolved   bool         `json:"resolved"`
}

// opsFieldKey is the provenance side-channel embedded in after-states.
// It is never diffed as entity data.
const opsFieldKey = "_ops"

// DetectConflicts compares the latest event per target from two divergent
// streams and reports typed conflicts. Targets present on only one side
// never conflict. A single target may yield several ConcurrentUpdate
// conflicts, one per differing non-commutative field, in sorted field
// order; output is ordered by target.
func DetectConflicts(ours, theirs []event.Event) []Conflict {
	ourLatest := latestByTarget(ours)
	theirLatest := latestByTarget(theirs)

	var shared []string
	for target := range ourLatest {
		if _, ok := theirLatest[target]; ok {
			shared = append(shared, target)
		}
	}
	sort.Strings(shared)

	var conflicts []Conflict
	for _, target := range shared {
		conflicts = append(conflicts, classify(target, ourLatest[target], theirLatest[target])...)
	}
	return conflicts
}

// latestByTarget keeps the event with the maximum TS per target;
// ties break last-seen-wins, which is deterministic for a given input.
func latestByTarget(events []event.Event) map[string]*event.Event {
	latest := make(map[string]*event.Event)
	for i := range events {
		ev := &events[i]
		if cur, ok := latest[ev.Target]; !ok || ev.TS >= cur.TS {
			latest[ev.Target] = ev
		}
	}
	return latest
}

func classify(target string, ours, theirs *event.Event) []Conflict {
	switch {
	case ours.Op.IsDelete() && theirs.Op.IsDelete():
		// Deleting twice is idempotent.
		return nil

	case ours.Op.IsDelete() || theirs.Op.IsDelete():
		return []Conflict{{
			Type:       DeleteUpdate,
			Target:     target,
			OurValue:   ours.After,
			TheirValue: theirs.After,
			BaseValue:  commonBase(ours, theirs),
			OurEvent:   ours,
			TheirEvent: theirs,
		}}

	case ours.Op.IsCreate() && theirs.Op.IsCreate():
		if ir.Equal(ours.After, theirs.After) {
			return nil
		}
		return []Conflict{{
			Type:       CreateCreate,
			Target:     target,
			OurValue:   ours.After,
			TheirValue: theirs.After,
			OurEvent:   ours,
			TheirEvent: theirs,
		}}

	default:
		return fieldConflicts(target, ours, theirs)
	}
}

// fieldConflicts diffs two after-states field by field, suppressing fields
// whose concurrent operations are commutative (safe to combine by the
// caller, hence not a genuine conflict).
func fieldConflicts(target string, ours, theirs *event.Event) []Conflict {
	ourState := ir.AsObject(ours.After)
	theirState := ir.AsObject(theirs.After)

	ourOps := event.ExtractOps(ours.After)
	theirOps := event.ExtractOps(theirs.After)
	haveOps := len(ourOps) > 0 && len(theirOps) > 0

	var conflicts []Conflict
	for _, field := range unionFields(ourState, theirState) {
		ourVal := ourState.Get(field)
		theirVal := theirState.Get(field)
		if ir.Equal(ourVal, theirVal) {
			continue
		}
		if haveOps && event.FieldCommutative(ourOps, theirOps, field) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type:       ConcurrentUpdate,
			Target:     target,
			Field:      field,
			OurValue:   ourVal,
			TheirValue: theirVal,
			BaseValue:  baseField(ours, theirs, field),
			OurEvent:   ours,
			TheirEvent: theirs,
		})
	}
	return conflicts
}

func unionFields(a, b ir.Object) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	delete(seen, opsFieldKey)

	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// commonBase picks the shared before-state, preferring ours.
func commonBase(ours, theirs *event.Event) ir.Value {
	if ours.Before != nil {
		return ours.Before
	}
	return theirs.Before
}

// baseField looks a field up in either side's before-state, ours first.
func baseField(ours, theirs *event.Event, field string) ir.Value {
	if v := ir.AsObject(ours.Before).Get(field); v != nil {
		return v
	}
	return ir.AsObject(theirs.Before).Get(field)
}
