package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verso/internal/ir"
)

func ops(pairs ...any) UpdateOps {
	out := make(UpdateOps)
	for i := 0; i < len(pairs); i += 2 {
		opName := pairs[i].(string)
		fields := pairs[i+1].(FieldOps)
		out[opName] = fields
	}
	return out
}

func TestCommutative(t *testing.T) {
	tests := []struct {
		name string
		a, b UpdateOps
		want bool
	}{
		{
			"disjoint_fields",
			ops(OpSet, FieldOps{"title": ir.String("x")}),
			ops(OpSet, FieldOps{"body": ir.String("y")}),
			true,
		},
		{
			"both_empty",
			UpdateOps{}, UpdateOps{},
			true,
		},
		{
			"empty_vs_set",
			UpdateOps{},
			ops(OpSet, FieldOps{"title": ir.String("x")}),
			true,
		},
		{
			"inc_inc_same_field",
			ops(OpInc, FieldOps{"views": ir.Int(1)}),
			ops(OpInc, FieldOps{"views": ir.Int(2)}),
			true,
		},
		{
			"min_min_same_field",
			ops(OpMin, FieldOps{"low": ir.Int(3)}),
			ops(OpMin, FieldOps{"low": ir.Int(1)}),
			true,
		},
		{
			"max_max_same_field",
			ops(OpMax, FieldOps{"high": ir.Int(3)}),
			ops(OpMax, FieldOps{"high": ir.Int(9)}),
			true,
		},
		{
			"addtoset_addtoset_same_field",
			ops(OpAddToSet, FieldOps{"tags": ir.Object{"$each": ir.Array{ir.String("a")}}}),
			ops(OpAddToSet, FieldOps{"tags": ir.Object{"$each": ir.Array{ir.String("b")}}}),
			true,
		},
		{
			"min_vs_max_same_field",
			ops(OpMin, FieldOps{"n": ir.Int(1)}),
			ops(OpMax, FieldOps{"n": ir.Int(2)}),
			false,
		},
		{
			"inc_vs_set_same_field",
			ops(OpInc, FieldOps{"views": ir.Int(1)}),
			ops(OpSet, FieldOps{"views": ir.Int(100)}),
			false,
		},
		{
			"set_vs_set_same_field",
			ops(OpSet, FieldOps{"title": ir.String("a")}),
			ops(OpSet, FieldOps{"title": ir.String("b")}),
			false,
		},
		{
			"unset_vs_inc_same_field",
			ops(OpUnset, FieldOps{"views": ir.Bool(true)}),
			ops(OpInc, FieldOps{"views": ir.Int(1)}),
			false,
		},
		{
			"push_vs_push_same_field",
			ops(OpPush, FieldOps{"items": ir.Int(1)}),
			ops(OpPush, FieldOps{"items": ir.Int(2)}),
			false,
		},
		{
			"push_vs_addtoset_same_field",
			ops(OpPush, FieldOps{"items": ir.Int(1)}),
			ops(OpAddToSet, FieldOps{"items": ir.Int(2)}),
			false,
		},
		{
			"unknown_operator_same_field",
			ops("$mul", FieldOps{"n": ir.Int(2)}),
			ops("$mul", FieldOps{"n": ir.Int(3)}),
			false,
		},
		{
			"one_side_double_operator",
			ops(OpInc, FieldOps{"n": ir.Int(1)}, OpMin, FieldOps{"n": ir.Int(5)}),
			ops(OpInc, FieldOps{"n": ir.Int(2)}),
			false,
		},
		{
			"conflicting_and_disjoint_mixed",
			ops(OpSet, FieldOps{"title": ir.String("a"), "body": ir.String("b")}),
			ops(OpSet, FieldOps{"title": ir.String("c")}),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Commutative(tt.a, tt.b))
			assert.Equal(t, tt.want, Commutative(tt.b, tt.a), "Commutative must be symmetric")
		})
	}
}

func TestFieldCommutative(t *testing.T) {
	a := ops(OpInc, FieldOps{"views": ir.Int(1)}, OpSet, FieldOps{"title": ir.String("a")})
	b := ops(OpInc, FieldOps{"views": ir.Int(2)}, OpSet, FieldOps{"title": ir.String("b")})

	assert.True(t, FieldCommutative(a, b, "views"))
	assert.False(t, FieldCommutative(a, b, "title"))
	assert.True(t, FieldCommutative(a, b, "untouched"))
}

func TestCombineOpsInc(t *testing.T) {
	a := ops(OpInc, FieldOps{"views": ir.Int(1), "likes": ir.Int(5)})
	b := ops(OpInc, FieldOps{"views": ir.Int(2)})

	combined := CombineOps(a, b)
	assert.True(t, ir.Equal(ir.Int(3), combined[OpInc]["views"]))
	assert.True(t, ir.Equal(ir.Int(5), combined[OpInc]["likes"]))
}

func TestCombineOpsIncMixedNumeric(t *testing.T) {
	a := ops(OpInc, FieldOps{"score": ir.Int(1)})
	b := ops(OpInc, FieldOps{"score": ir.Float(0.5)})

	combined := CombineOps(a, b)
	assert.True(t, ir.Equal(ir.Float(1.5), combined[OpInc]["score"]))
}

func TestCombineOpsSetUnion(t *testing.T) {
	a := ops(OpSet, FieldOps{"title": ir.String("x")})
	b := ops(OpSet, FieldOps{"body": ir.String("y")})

	combined := CombineOps(a, b)
	assert.True(t, ir.Equal(ir.String("x"), combined[OpSet]["title"]))
	assert.True(t, ir.Equal(ir.String("y"), combined[OpSet]["body"]))
}

func TestCombineOpsMinMax(t *testing.T) {
	a := ops(OpMin, FieldOps{"low": ir.Int(3)}, OpMax, FieldOps{"high": ir.Int(3)})
	b := ops(OpMin, FieldOps{"low": ir.Int(1)}, OpMax, FieldOps{"high": ir.Int(9)})

	combined := CombineOps(a, b)
	assert.True(t, ir.Equal(ir.Int(1), combined[OpMin]["low"]))
	assert.True(t, ir.Equal(ir.Int(9), combined[OpMax]["high"]))
}

func TestCombineOpsAddToSet(t *testing.T) {
	a := ops(OpAddToSet, FieldOps{"tags": ir.Object{"$each": ir.Array{ir.String("tech"), ir.String("go")}}})
	b := ops(OpAddToSet, FieldOps{"tags": ir.Object{"$each": ir.Array{ir.String("go"), ir.String("web")}}})

	combined := CombineOps(a, b)
	payload := ir.AsObject(combined[OpAddToSet]["tags"])
	require.NotNil(t, payload)
	want := ir.Array{ir.String("tech"), ir.String("go"), ir.String("web")}
	assert.True(t, ir.Equal(want, payload.Get("$each")))
}

func TestCombineOpsAddToSetBareValues(t *testing.T) {
	a := ops(OpAddToSet, FieldOps{"tags": ir.String("tech")})
	b := ops(OpAddToSet, FieldOps{"tags": ir.String("tech")})

	combined := CombineOps(a, b)
	payload := ir.AsObject(combined[OpAddToSet]["tags"])
	require.NotNil(t, payload)
	assert.True(t, ir.Equal(ir.Array{ir.String("tech")}, payload.Get("$each")))
}

func TestAffectedFields(t *testing.T) {
	u := ops(
		OpSet, FieldOps{"title": ir.String("x")},
		OpInc, FieldOps{"views": ir.Int(1)},
	)
	fields := AffectedFields(u)
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "views")

	assert.Empty(t, AffectedFields(UpdateOps{}))
}

func TestExtractOps(t *testing.T) {
	after := ir.Object{
		"title": ir.String("x"),
		"_ops": ir.Object{
			"$set": ir.Object{"title": ir.String("x")},
			"$inc": ir.Object{"views": ir.Int(1)},
		},
	}
	extracted := ExtractOps(after)
	require.Len(t, extracted, 2)
	assert.True(t, ir.Equal(ir.String("x"), extracted[OpSet]["title"]))
	assert.True(t, ir.Equal(ir.Int(1), extracted[OpInc]["views"]))
}

func TestExtractOpsAbsent(t *testing.T) {
	assert.Empty(t, ExtractOps(nil))
	assert.Empty(t, ExtractOps(ir.String("not an object")))
	assert.Empty(t, ExtractOps(ir.Object{"title": ir.String("x")}))
	assert.Empty(t, ExtractOps(ir.Object{"_ops": ir.String("malformed")}))
}
