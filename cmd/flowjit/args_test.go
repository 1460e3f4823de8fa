package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
)

func TestParseArgs(t *testing.T) {
	types := []flowjit.Type{flowjit.Integer, flowjit.Float, flowjit.Boolean, flowjit.Vector, flowjit.Color}
	got, err := parseArgs(types, []string{"-7", "1.5", "true", "1, 2,3", "0,0.5,1,1"})
	require.NoError(t, err)
	assert.Equal(t, []any{
		int32(-7),
		float32(1.5),
		true,
		[3]float32{1, 2, 3},
		[4]float32{0, 0.5, 1, 1},
	}, got)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name  string
		types []flowjit.Type
		args  []string
		msg   string
	}{
		{"count", []flowjit.Type{flowjit.Integer}, nil, "function takes 1 arguments, got 0"},
		{"int overflow", []flowjit.Type{flowjit.Integer}, []string{"4294967296"}, "argument 0 (Integer)"},
		{"not a float", []flowjit.Type{flowjit.Float}, []string{"x"}, "invalid syntax"},
		{"lanes", []flowjit.Type{flowjit.Vector}, []string{"1,2"}, "want 3 comma separated components, got 2"},
		{"object", []flowjit.Type{flowjit.Object}, []string{"cube"}, errUnsupportedArg.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.types, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err := parseArgs([]flowjit.Type{flowjit.Object}, []string{"cube"})
	assert.True(t, errors.Is(err, errUnsupportedArg))
}

func TestParseArg_AnyVectorLength(t *testing.T) {
	v, err := parseArg(ir.VectorType{Len: 2}, "1.5,-2")
	require.NoError(t, err)
	assert.Equal(t, [2]float32{1.5, -2}, v)

	v, err = parseArg(ir.VectorType{Len: 4}, "1,2,3,4")
	require.NoError(t, err)
	assert.Equal(t, [4]float32{1, 2, 3, 4}, v)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "160", formatValue(int32(160)))
	assert.Equal(t, "1,2.5,3", formatValue([3]float32{1, 2.5, 3}))
	assert.Equal(t, "nil", formatValue(ir.Handle{}))
	assert.Equal(t, "[4 5]", formatValue(ir.NewList(ir.Int32, int32(4), int32(5))))
}
