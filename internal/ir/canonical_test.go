package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"null", Null{}, `null`},
		{"absent", nil, `null`},
		{"true", Bool(true), `true`},
		{"int", Int(-42), `-42`},
		{"integral_float", Float(2.0), `2`},
		{"fractional_float", Float(1.5), `1.5`},
		{"string", String("a"), `"a"`},
		{"html_not_escaped", String("<a>&</a>"), `"<a>&</a>"`},
		{"control_escaped", String("a\nb"), `"a\nb"`},
		{"array", Array{Int(1), String("x")}, `[1,"x"]`},
		{"object_sorted", Object{"b": Int(2), "a": Int(1)}, `{"a":1,"b":2}`},
		{"nested", Object{"o": Object{"y": Int(2), "x": Int(1)}}, `{"o":{"x":1,"y":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	obj := Object{"z": Int(1), "a": Int(2), "m": Array{String("x")}}
	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonicalIntegralFormsAgree(t *testing.T) {
	a, err := MarshalCanonical(Float(2.0))
	require.NoError(t, err)
	b, err := MarshalCanonical(Int(2))
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(Float(math.Inf(1)))
	require.Error(t, err)
	_, err = MarshalCanonical(Float(math.NaN()))
	require.Error(t, err)
}

func TestSortedKeysUTF16Order(t *testing.T) {
	// U+1D7D6 encodes as the surrogate pair D835 DFD6 in UTF-16, so it
	// sorts before U+FB33 (code unit FB33). UTF-8 byte order would put
	// U+FB33 (EF AC B3) before U+1D7D6 (F0 9D 9F 96).
	obj := Object{"\U0001D7D6": Int(1), "דּ": Int(2)}
	keys := obj.SortedKeys()
	require.Len(t, keys, 2)
	assert.Equal(t, "\U0001D7D6", keys[0])
	assert.Equal(t, "דּ", keys[1])
}
