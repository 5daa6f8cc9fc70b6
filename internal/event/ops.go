package event

import (
	"github.com/roach88/verso/internal/ir"
)

// Update operator names, following the usual document-store vocabulary.
const (
	OpSet      = "$set"
	OpInc      = "$inc"
	OpUnset    = "$unset"
	OpPush     = "$push"
	OpPull     = "$pull"
	OpAddToSet = "$addToSet"
	OpMin      = "$min"
	OpMax      = "$max"
)

// FieldOps maps field name to the operator's per-field payload.
type FieldOps map[string]ir.Value

// UpdateOps maps operator name to its per-field payloads. It records which
// operators produced an update's after-state and is used only for
// commutativity analysis and combination, never for applying changes.
type UpdateOps map[string]FieldOps

// accumulative operators are order-independent with themselves: applying
// two of the same kind to a field yields the same result in either order.
var accumulative = map[string]bool{
	OpInc:      true,
	OpMin:      true,
	OpMax:      true,
	OpAddToSet: true,
}

// ExtractOps returns the operator provenance embedded in an after-state
// under the "_ops" key, or an empty set when absent or malformed.
func ExtractOps(after ir.Value) UpdateOps {
	obj := ir.AsObject(after)
	if obj == nil {
		return UpdateOps{}
	}
	raw := ir.AsObject(obj.Get("_ops"))
	if raw == nil {
		return UpdateOps{}
	}

	ops := make(UpdateOps, len(raw))
	for opName, payload := range raw {
		fields := ir.AsObject(payload)
		if fields == nil {
			continue
		}
		fo := make(FieldOps, len(fields))
		for field, v := range fields {
			fo[field] = v
		}
		ops[opName] = fo
	}
	return ops
}

// AffectedFields returns the union of field keys across all operators.
func AffectedFields(ops UpdateOps) map[string]struct{} {
	fields := make(map[string]struct{})
	for _, fo := range ops {
		for field := range fo {
			fields[field] = struct{}{}
		}
	}
	return fields
}

// operatorsOn returns the operator names that touch field.
func operatorsOn(ops UpdateOps, field string) []string {
	var names []string
	for opName, fo := range ops {
		if _, ok := fo[field]; ok {
			names = append(names, opName)
		}
	}
	return names
}

// FieldCommutative reports whether the two sides' operations on a single
// field can be combined without loss. A field touched by only one side is
// always safe. A shared field is safe only when both sides touch it via
// the same single accumulative operator ($inc, $min, $max, $addToSet):
// mixing operator kinds, $set/$unset, $push, and unknown operators all
// make order observable.
func FieldCommutative(a, b UpdateOps, field string) bool {
	aOps := operatorsOn(a, field)
	bOps := operatorsOn(b, field)
	if len(aOps) == 0 || len(bOps) == 0 {
		return true
	}

	union := make(map[string]struct{}, len(aOps)+len(bOps))
	for _, op := range aOps {
		union[op] = struct{}{}
	}
	for _, op := range bOps {
		union[op] = struct{}{}
	}
	if len(union) != 1 {
		return false
	}
	return accumulative[aOps[0]]
}

// Commutative reports whether two operator sets can be combined without
// loss: every field touched by both sides must be field-commutative.
// Disjoint field sets and empty operator sets are always commutative.
// Symmetric: Commutative(a, b) == Commutative(b, a).
func Commutative(a, b UpdateOps) bool {
	bFields := AffectedFields(b)
	for field := range AffectedFields(a) {
		if _, shared := bFields[field]; !shared {
			continue
		}
		if !FieldCommutative(a, b, field) {
			return false
		}
	}
	return true
}

// CombineOps merges two operator sets that have already passed a
// commutativity check: $inc payloads sum per field, $min/$max take the
// pointwise extreme, $addToSet unions its element arrays preserving
// first-seen order, and everything else unions field maps (fields assumed
// disjoint, second side wins on overlap).
func CombineOps(a, b UpdateOps) UpdateOps {
	out := make(UpdateOps)
	for opName, fo := range a {
		combined := make(FieldOps, len(fo))
		for field, v := range fo {
			combined[field] = v
		}
		out[opName] = combined
	}

	for opName, fo := range b {
		existing, ok := out[opName]
		if !ok {
			combined := make(FieldOps, len(fo))
			for field, v := range fo {
				combined[field] = v
			}
			out[opName] = combined
			continue
		}
		for field, bv := range fo {
			av, shared := existing[field]
			if !shared {
				existing[field] = bv
				continue
			}
			switch opName {
			case OpInc:
				existing[field] = addNumeric(av, bv)
			case OpMin:
				existing[field] = pickExtreme(av, bv, false)
			case OpMax:
				existing[field] = pickExtreme(av, bv, true)
			case OpAddToSet:
				existing[field] = unionEach(av, bv)
			default:
				existing[field] = bv
			}
		}
	}
	return out
}

// addNumeric sums two numeric payloads, staying integral when both are.
func addNumeric(a, b ir.Value) ir.Value {
	ai, aIsInt := a.(ir.Int)
	bi, bIsInt := b.(ir.Int)
	if aIsInt && bIsInt {
		return ir.Int(int64(ai) + int64(bi))
	}
	af, aOK := toFloat(a)
	bf, bOK := toFloat(b)
	if !aOK || !bOK {
		return b
	}
	return ir.Float(af + bf)
}

// pickExtreme returns the larger (max=true) or smaller payload by numeric
// comparison; non-numeric payloads keep the first side's value.
func pickExtreme(a, b ir.Value, max bool) ir.Value {
	af, aOK := toFloat(a)
	bf, bOK := toFloat(b)
	if !aOK || !bOK {
		return a
	}
	if (max && bf > af) || (!max && bf < af) {
		return b
	}
	return a
}

func toFloat(v ir.Value) (float64, bool) {
	switch n := v.(type) {
	case ir.Int:
		return float64(n), true
	case ir.Float:
		return float64(n), true
	default:
		return 0, false
	}
}

// unionEach merges two $addToSet payloads. Payloads are either a bare
// value (a one-element add) or an object carrying an "$each" array; the
// result always uses the "$each" form, de-duplicated in first-seen order.
func unionEach(a, b ir.Value) ir.Value {
	merged := appendUnique(nil, eachElements(a))
	merged = appendUnique(merged, eachElements(b))
	return ir.Object{"$each": merged}
}

func eachElements(v ir.Value) ir.Array {
	if obj := ir.AsObject(v); obj != nil {
		if arr, ok := obj.Get("$each").(ir.Array); ok {
			return arr
		}
	}
	if arr, ok := v.(ir.Array); ok {
		return arr
	}
	if v == nil {
		return nil
	}
	return ir.Array{v}
}

func appendUnique(dst ir.Array, src ir.Array) ir.Array {
	for _, elem := range src {
		found := false
		for _, have := range dst {
			if ir.Equal(have, elem) {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, elem)
		}
	}
	return dst
}
