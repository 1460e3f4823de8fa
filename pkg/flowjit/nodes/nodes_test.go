package nodes_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
	"github.com/randalmurphal/flowjit/pkg/flowjit/nodes"
)

// compileBinary compiles op with both operands as graph inputs.
func compileBinary(t *testing.T, op *flowjit.Node) *flowjit.Callable {
	t.Helper()
	g := flowjit.NewGraph()
	id := g.AddNode(op)
	c, err := g.GenerateCallable("op",
		flowjit.NewSocketSet(id.Input(0), id.Input(1)),
		flowjit.NewSocketSet(id.Output(0)))
	require.NoError(t, err)
	t.Cleanup(c.Release)
	return c
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		name string
		node *flowjit.Node
		a, b int32
		want int32
	}{
		{"add", nodes.AddInt(), 2, 3, 5},
		{"sub", nodes.SubInt(), 2, 3, -1},
		{"mul", nodes.MulInt(), -4, 6, -24},
		{"div truncates", nodes.DivInt(), -7, 2, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := compileBinary(t, tt.node).Call(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, []any{tt.want}, out)
		})
	}
}

func TestDivInt_ByZeroTraps(t *testing.T) {
	_, err := compileBinary(t, nodes.DivInt()).Call(int32(1), int32(0))
	var trap *ir.TrapError
	require.True(t, errors.As(err, &trap))
	assert.Equal(t, "DivInt[0]", trap.Origin)
}

func TestFloatArithmetic(t *testing.T) {
	out, err := compileBinary(t, nodes.AddFloat()).Call(float32(1.5), float32(2.25))
	require.NoError(t, err)
	assert.Equal(t, []any{float32(3.75)}, out)

	out, err = compileBinary(t, nodes.MulFloat()).Call(float32(1.5), float32(-2))
	require.NoError(t, err)
	assert.Equal(t, []any{float32(-3)}, out)
}

func TestConstants(t *testing.T) {
	g := flowjit.NewGraph()
	i := g.AddNode(nodes.IntConst(42))
	f := g.AddNode(nodes.FloatConst(0.5))

	c, err := g.GenerateCallable("consts", nil, flowjit.NewSocketSet(i.Output(0), f.Output(0)))
	require.NoError(t, err)
	defer c.Release()

	out, err := c.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{int32(42), float32(0.5)}, out)
	assert.Equal(t, "IntConst(42)", g.Node(i).Name())
	assert.Equal(t, "FloatConst(0.5)", g.Node(f).Name())
}

func TestIntRef_ReadsAtCallTime(t *testing.T) {
	cell := ir.NewCell(ir.Int32, int32(1))
	g := flowjit.NewGraph()
	ref := g.AddNode(nodes.IntRef(cell))
	x := g.AddNode(nodes.Input(flowjit.Integer))
	sum := g.AddNode(nodes.AddInt())
	g.MustLink(ref.Output(0), sum.Input(0)).
		MustLink(x.Output(0), sum.Input(1))

	c, err := g.GenerateCallable("ref", flowjit.NewSocketSet(x.Output(0)), flowjit.NewSocketSet(sum.Output(0)))
	require.NoError(t, err)
	defer c.Release()

	var f func(int32) int32
	require.NoError(t, c.FunctionPointer(&f))
	assert.Equal(t, int32(11), f(10))
	require.NoError(t, cell.Set(int32(5)))
	assert.Equal(t, int32(15), f(10))
}

func TestIntRef_PanicsOnWrongCell(t *testing.T) {
	assert.PanicsWithValue(t, "nodes: IntRef needs an i32 cell", func() {
		nodes.IntRef(ir.NewCell(ir.Int64, int64(0)))
	})
	assert.Panics(t, func() { nodes.IntRef(nil) })
}

func TestSelectInt(t *testing.T) {
	g := flowjit.NewGraph()
	a := g.AddNode(nodes.Input(flowjit.Integer))
	b := g.AddNode(nodes.Input(flowjit.Integer))
	less := g.AddNode(nodes.LessInt())
	sel := g.AddNode(nodes.SelectInt())
	g.MustLink(a.Output(0), less.Input(0)).
		MustLink(b.Output(0), less.Input(1)).
		MustLink(less.Output(0), sel.Input(0)).
		MustLink(b.Output(0), sel.Input(1)).
		MustLink(a.Output(0), sel.Input(2))

	c, err := g.GenerateCallable("max",
		flowjit.NewSocketSet(a.Output(0), b.Output(0)),
		flowjit.NewSocketSet(sel.Output(0)))
	require.NoError(t, err)
	defer c.Release()

	var max func(int32, int32) int32
	require.NoError(t, c.FunctionPointer(&max))

	tests := []struct {
		a, b, want int32
	}{
		{1, 2, 2},
		{9, -4, 9},
		{3, 3, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, max(tt.a, tt.b), "max(%d, %d)", tt.a, tt.b)
	}
	assert.Contains(t, c.PrintCode(), "select.join:")
	assert.Contains(t, c.PrintCode(), "phi i32")
}

func TestVectorNodes(t *testing.T) {
	g := flowjit.NewGraph()
	x := g.AddNode(nodes.Input(flowjit.Float))
	combine := g.AddNode(nodes.CombineVector())
	offset := g.AddNode(nodes.Input(flowjit.Vector))
	add := g.AddNode(nodes.AddVector())
	split := g.AddNode(nodes.SeparateVector())
	g.MustLink(x.Output(0), combine.Input(0)).
		MustLink(x.Output(0), combine.Input(1)).
		MustLink(x.Output(0), combine.Input(2)).
		MustLink(combine.Output(0), add.Input(0)).
		MustLink(offset.Output(0), add.Input(1)).
		MustLink(add.Output(0), split.Input(0))

	c, err := g.GenerateCallable("vec",
		flowjit.NewSocketSet(x.Output(0), offset.Output(0)),
		flowjit.NewSocketSet(split.Output(2), add.Output(0)))
	require.NoError(t, err)
	defer c.Release()

	out, err := c.Call(float32(1), [3]float32{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []any{float32(4), [3]float32{2, 3, 4}}, out)
}

func TestInput_MustBeBound(t *testing.T) {
	g := flowjit.NewGraph()
	in := g.AddNode(nodes.Input(flowjit.Integer))

	_, err := g.GenerateCallable("unbound", nil, flowjit.NewSocketSet(in.Output(0)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, nodes.ErrUnboundInput))

	var ge *flowjit.GenerateError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "Input[0]", ge.NodeName)
}

func TestCatalog(t *testing.T) {
	cat := nodes.Catalog()
	assert.True(t, cat.Frozen())
	assert.Equal(t, []string{
		"AddFloat", "AddInt", "AddVector", "CombineVector", "DivInt", "Input",
		"LessInt", "MulFloat", "MulInt", "SelectInt", "SeparateVector", "SubInt",
	}, cat.Keys())

	n, err := nodes.New("Input", nodes.Params{Type: flowjit.Color})
	require.NoError(t, err)
	assert.Same(t, flowjit.Color, n.Outputs()[0].Type)

	_, err = nodes.New("Input", nodes.Params{})
	assert.Error(t, err)

	n, err = nodes.New("MulInt", nodes.Params{})
	require.NoError(t, err)
	assert.Equal(t, "MulInt", n.Name())

	_, err = nodes.New("Nope", nodes.Params{})
	assert.EqualError(t, err, `unknown node kind "Nope"`)
}
