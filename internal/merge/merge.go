package merge

import (
	"sort"

	"github.com/roach88/verso/internal/event"
	"github.com/roach88/verso/internal/ir"
)

// Options configures a stream merge. A nil Strategy leaves all detected
// conflicts unresolved.
type Options struct {
	Strategy Strategy
}

// Stats summarizes one merge. FromOurs/FromTheirs are pre-dedup input
// counts.
type Stats struct {
	FromOurs              int `json:"from_ours"`
	FromTheirs            int `json:"from_theirs"`
	EntitiesProcessed     int `json:"entities_processed"`
	EntitiesWithConflicts int `json:"entities_with_conflicts"`
}

// Result is the outcome of merging two event streams. Success is true iff
// zero conflicts remain unresolved.
type Result struct {
	Success     bool          `json:"success"`
	Events      []event.Event `json:"merged_events"`
	Conflicts   []Conflict    `json:"conflicts,omitempty"`
	Resolutions []Resolution  `json:"resolved,omitempty"`
	Stats       Stats         `json:"stats"`
}

// MergeStreams merges two divergent event streams into one: duplicate
// CREATEs collapse to a single copy, conflicts are detected (and resolved
// when a strategy is supplied), and the union is ordered ascending by
// timestamp with a stable sort. Conflicting data never produces an error.
func MergeStreams(ours, theirs []event.Event, opts Options) Result {
	result := Result{
		Stats: Stats{
			FromOurs:   len(ours),
			FromTheirs: len(theirs),
		},
	}

	merged := make([]event.Event, 0, len(ours)+len(theirs))
	merged = append(merged, ours...)
	for _, ev := range theirs {
		if isDuplicateCreate(ev, ours) {
			continue
		}
		merged = append(merged, ev)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].TS < merged[j].TS
	})
	result.Events = merged

	result.Conflicts = DetectConflicts(ours, theirs)
	if opts.Strategy != nil && len(result.Conflicts) > 0 {
		result.Resolutions = ResolveAll(result.Conflicts, opts.Strategy)
		for i := range result.Conflicts {
			result.Conflicts[i].Resolved = !result.Resolutions[i].RequiresManual
		}
	}

	unresolved := 0
	for _, c := range result.Conflicts {
		if !c.Resolved {
			unresolved++
		}
	}
	result.Success = unresolved == 0

	result.Stats.EntitiesProcessed = countTargets(ours, theirs)
	result.Stats.EntitiesWithConflicts = countConflictTargets(result.Conflicts)
	return result
}

// isDuplicateCreate reports whether ev is a CREATE that also appears in
// the other stream with the same target and a deep-equal after-state.
func isDuplicateCreate(ev event.Event, other []event.Event) bool {
	if !ev.Op.IsCreate() {
		return false
	}
	for i := range other {
		if other[i].Op == ev.Op && other[i].Target == ev.Target && ir.Equal(other[i].After, ev.After) {
			return true
		}
	}
	return false
}

func countTargets(ours, theirs []event.Event) int {
	targets := make(map[string]struct{})
	for _, ev := range ours {
		targets[ev.Target] = struct{}{}
	}
	for _, ev := range theirs {
		targets[ev.Target] = struct{}{}
	}
	return len(targets)
}

func countConflictTargets(conflicts []Conflict) int {
	targets := make(map[string]struct{})
	for _, c := range conflicts {
		targets[c.Target] = struct{}{}
	}
	return len(targets)
}
