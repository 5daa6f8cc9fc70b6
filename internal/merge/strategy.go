package merge

import (
	"github.com/roach88/verso/internal/ir"
)

// Resolution is the outcome of applying a strategy to one conflict.
// RequiresManual=true implies ResolvedValue is absent.
type Resolution struct {
	ResolvedValue  ir.Value  `json:"resolved_value,omitempty"`
	Strategy       string    `json:"strategy"`
	RequiresManual bool      `json:"requires_manual_resolution"`
	Conflict       *Conflict `json:"conflict,omitempty"`
}

// Strategy maps a conflict to a resolution. Built-in strategies come from
// Named and the composable builders below; arbitrary policies plug in via
// Custom.
type Strategy interface {
	Name() string
	Resolve(c *Conflict) Resolution
}

// Named strategy tokens accepted by Named (and the CLI).
const (
	StrategyOurs   = "ours"
	StrategyTheirs = "theirs"
	StrategyLatest = "latest"
	StrategyManual = "manual"
)

// UnknownStrategyError reports an unrecognized strategy token. Its message
// is string-matched by callers and must stay stable.
type UnknownStrategyError struct {
	Token string
}

func (e *UnknownStrategyError) Error() string {
	return "Unknown resolution strategy: " + e.Token
}

// Named returns the built-in strategy for a token, or UnknownStrategyError.
func Named(token string) (Strategy, error) {
	switch token {
	case StrategyOurs:
		return Ours(), nil
	case StrategyTheirs:
		return Theirs(), nil
	case StrategyLatest:
		return Latest(), nil
	case StrategyManual:
		return Manual(), nil
	default:
		return nil, &UnknownStrategyError{Token: token}
	}
}

type strategyFunc struct {
	name string
	fn   func(c *Conflict) Resolution
}

func (s *strategyFunc) Name() string { return s.name }

func (s *strategyFunc) Resolve(c *Conflict) Resolution {
	r := s.fn(c)
	if r.Strategy == "" {
		r.Strategy = s.name
	}
	if r.Conflict == nil {
		r.Conflict = c
	}
	return r
}

// Custom wraps an arbitrary resolver function. An empty name is reported
// as "custom"; the function may set its own Strategy label on the result.
func Custom(name string, fn func(c *Conflict) Resolution) Strategy {
	if name == "" {
		name = "custom"
	}
	return &strategyFunc{name: name, fn: fn}
}

// Ours resolves every conflict to our side's value.
func Ours() Strategy {
	return &strategyFunc{name: StrategyOurs, fn: func(c *Conflict) Resolution {
		return Resolution{ResolvedValue: c.OurValue}
	}}
}

// Theirs resolves every conflict to their side's value.
func Theirs() Strategy {
	return &strategyFunc{name: StrategyTheirs, fn: func(c *Conflict) Resolution {
		return Resolution{ResolvedValue: c.TheirValue}
	}}
}

// Latest resolves to the value from whichever event has the greater
// timestamp; a tie goes to ours.
func Latest() Strategy {
	return &strategyFunc{name: StrategyLatest, fn: func(c *Conflict) Resolution {
		if c.TheirEvent != nil && (c.OurEvent == nil || c.TheirEvent.TS > c.OurEvent.TS) {
			return Resolution{ResolvedValue: c.TheirValue}
		}
		return Resolution{ResolvedValue: c.OurValue}
	}}
}

// Manual flags every conflict for human resolution.
func Manual() Strategy {
	return &strategyFunc{name: StrategyManual, fn: func(c *Conflict) Resolution {
		return Resolution{RequiresManual: true}
	}}
}

// Fallback evaluates strategies in order and returns the first resolution
// not requiring manual intervention; if all require manual, the last
// result is returned.
func Fallback(strategies ...Strategy) Strategy {
	return &strategyFunc{name: "fallback", fn: func(c *Conflict) Resolution {
		var last Resolution
		for _, s := range strategies {
			last = s.Resolve(c)
			if !last.RequiresManual {
				return last
			}
		}
		if len(strategies) == 0 {
			return Manual().Resolve(c)
		}
		return last
	}}
}

// FieldBased dispatches by conflict field. Unmapped fields fall back to
// def, or manual when def is nil.
func FieldBased(byField map[string]Strategy, def Strategy) Strategy {
	if def == nil {
		def = Manual()
	}
	return &strategyFunc{name: "field-based", fn: func(c *Conflict) Resolution {
		if s, ok := byField[c.Field]; ok {
			return s.Resolve(c)
		}
		return def.Resolve(c)
	}}
}

// Preference picks ours when the predicate holds for (our, their), else
// theirs.
func Preference(pred func(our, their ir.Value) bool) Strategy {
	return &strategyFunc{name: "preference", fn: func(c *Conflict) Resolution {
		if pred(c.OurValue, c.TheirValue) {
			return Resolution{ResolvedValue: c.OurValue, Strategy: "preference"}
		}
		return Resolution{ResolvedValue: c.TheirValue, Strategy: "preference"}
	}}
}

// NonNull picks the non-null side when exactly one of the values is
// null/absent; otherwise defaults to ours.
func NonNull() Strategy {
	return &strategyFunc{name: "non-null", fn: func(c *Conflict) Resolution {
		ourNull := ir.IsNullish(c.OurValue)
		theirNull := ir.IsNullish(c.TheirValue)
		if ourNull && !theirNull {
			return Resolution{ResolvedValue: c.TheirValue}
		}
		return Resolution{ResolvedValue: c.OurValue}
	}}
}

// Concatenate joins two string values with sep; non-string values require
// manual resolution.
func Concatenate(sep string) Strategy {
	return &strategyFunc{name: "concatenate", fn: func(c *Conflict) Resolution {
		our, ourOK := c.OurValue.(ir.String)
		their, theirOK := c.TheirValue.(ir.String)
		if !ourOK || !theirOK {
			return Resolution{RequiresManual: true}
		}
		return Resolution{ResolvedValue: our + ir.String(sep) + their}
	}}
}

// ArrayMerge concatenates ours with any their-elements not already
// present, preserving order; non-array values require manual resolution.
func ArrayMerge() Strategy {
	return &strategyFunc{name: "array-merge", fn: func(c *Conflict) Resolution {
		our, ourOK := c.OurValue.(ir.Array)
		their, theirOK := c.TheirValue.(ir.Array)
		if !ourOK || !theirOK {
			return Resolution{RequiresManual: true}
		}
		merged := make(ir.Array, len(our), len(our)+len(their))
		copy(merged, our)
		for _, elem := range their {
			present := false
			for _, have := range merged {
				if ir.Equal(have, elem) {
					present = true
					break
				}
			}
			if !present {
				merged = append(merged, elem)
			}
		}
		return Resolution{ResolvedValue: merged}
	}}
}
