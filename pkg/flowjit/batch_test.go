package flowjit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
	"github.com/randalmurphal/flowjit/pkg/flowjit/nodes"
)

func TestCompileAll(t *testing.T) {
	d := newDiamond()
	var reqs []flowjit.Request
	for i := range 6 {
		reqs = append(reqs, flowjit.Request{
			Name:    fmt.Sprintf("Diamond%d", i),
			Graph:   d.g,
			Inputs:  d.inputs(),
			Outputs: d.outputs(),
		})
	}
	reqs = append(reqs, flowjit.Request{
		Name:    "Left",
		Graph:   d.g,
		Inputs:  d.inputs(),
		Outputs: flowjit.NewSocketSet(d.addA.Output(0)),
		Options: []flowjit.Option{flowjit.WithOptLevel(ir.OptNone)},
	})

	out, err := flowjit.CompileAll(context.Background(), reqs, 2)
	require.NoError(t, err)
	require.Len(t, out, len(reqs))
	for i, c := range out {
		defer c.Release()
		assert.Equal(t, reqs[i].Name, c.Name())
	}

	res, err := out[3].Call(int32(10), int32(25), int32(100))
	require.NoError(t, err)
	assert.Equal(t, []any{int32(160)}, res)

	res, err = out[6].Call(int32(10), int32(25), int32(100))
	require.NoError(t, err)
	assert.Equal(t, []any{int32(35)}, res)
	assert.Contains(t, out[6].Key(), "-O0-")
}

func TestCompileAll_FailureReleasesEverything(t *testing.T) {
	d := newDiamond()
	broken := flowjit.NewGraph()
	in := broken.AddNode(nodes.Input(flowjit.Integer))

	reqs := []flowjit.Request{
		{Name: "Good", Graph: d.g, Inputs: d.inputs(), Outputs: d.outputs()},
		{Name: "Broken", Graph: broken, Outputs: flowjit.NewSocketSet(in.Output(0))},
	}

	out, err := flowjit.CompileAll(context.Background(), reqs, 1)
	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, nodes.ErrUnboundInput))
	assert.Contains(t, err.Error(), "compile Broken: ")
}

func TestCompileAll_Cancelled(t *testing.T) {
	d := newDiamond()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := flowjit.CompileAll(ctx, []flowjit.Request{
		{Name: "Diamond", Graph: d.g, Inputs: d.inputs(), Outputs: d.outputs()},
	}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileAll_Empty(t *testing.T) {
	out, err := flowjit.CompileAll(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, out)
}
