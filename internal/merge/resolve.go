package merge

import (
	"github.com/roach88/verso/internal/ir"
)

// StrategyManualResolved labels resolutions completed by ApplyManual.
const StrategyManualResolved = "manual-resolved"

// ResolveAll applies one strategy to every conflict, preserving order.
func ResolveAll(conflicts []Conflict, s Strategy) []Resolution {
	resolutions := make([]Resolution, len(conflicts))
	for i := range conflicts {
		resolutions[i] = s.Resolve(&conflicts[i])
	}
	return resolutions
}

// ResolveByType dispatches each conflict to the strategy mapped for its
// type; unmapped types use def, or manual when def is nil.
func ResolveByType(conflicts []Conflict, byType map[ConflictType]Strategy, def Strategy) []Resolution {
	if def == nil {
		def = Manual()
	}
	resolutions := make([]Resolution, len(conflicts))
	for i := range conflicts {
		s, ok := byType[conflicts[i].Type]
		if !ok {
			s = def
		}
		resolutions[i] = s.Resolve(&conflicts[i])
	}
	return resolutions
}

// AllResolved reports whether no resolution still requires manual
// intervention.
func AllResolved(resolutions []Resolution) bool {
	for _, r := range resolutions {
		if r.RequiresManual {
			return false
		}
	}
	return true
}

// Unresolved filters to the resolutions still requiring manual
// intervention.
func Unresolved(resolutions []Resolution) []Resolution {
	var out []Resolution
	for _, r := range resolutions {
		if r.RequiresManual {
			out = append(out, r)
		}
	}
	return out
}

// ApplyManual feeds a human decision back into a resolution: the hook by
// which an external UI or operator completes a manual-flagged conflict.
func ApplyManual(r Resolution, value ir.Value) Resolution {
	r.ResolvedValue = value
	r.Strategy = StrategyManualResolved
	r.RequiresManual = false
	return r
}
