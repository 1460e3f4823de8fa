package flowjit_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
	"github.com/randalmurphal/flowjit/pkg/flowjit/nodes"
)

// diamond is in1, in2 -> addA; in2, in3 -> addB; addA, addB -> addC.
type diamond struct {
	g                *flowjit.Graph
	in1, in2, in3    flowjit.NodeID
	addA, addB, addC flowjit.NodeID
}

func newDiamond() *diamond {
	g := flowjit.NewGraph()
	d := &diamond{g: g}
	d.in1 = g.AddNode(nodes.Input(flowjit.Integer))
	d.in2 = g.AddNode(nodes.Input(flowjit.Integer))
	d.in3 = g.AddNode(nodes.Input(flowjit.Integer))
	d.addA = g.AddNode(nodes.AddInt())
	d.addB = g.AddNode(nodes.AddInt())
	d.addC = g.AddNode(nodes.AddInt())
	g.MustLink(d.in1.Output(0), d.addA.Input(0)).
		MustLink(d.in2.Output(0), d.addA.Input(1)).
		MustLink(d.in2.Output(0), d.addB.Input(0)).
		MustLink(d.in3.Output(0), d.addB.Input(1)).
		MustLink(d.addA.Output(0), d.addC.Input(0)).
		MustLink(d.addB.Output(0), d.addC.Input(1))
	return d
}

func (d *diamond) inputs() *flowjit.SocketSet {
	return flowjit.NewSocketSet(d.in1.Output(0), d.in2.Output(0), d.in3.Output(0))
}

func (d *diamond) outputs() *flowjit.SocketSet {
	return flowjit.NewSocketSet(d.addC.Output(0))
}

func (d *diamond) compile(t *testing.T, opts ...flowjit.Option) *flowjit.Callable {
	t.Helper()
	c, err := d.g.GenerateCallable("Diamond", d.inputs(), d.outputs(), opts...)
	require.NoError(t, err)
	t.Cleanup(c.Release)
	return c
}

// intNode builds an Integer -> Integer node from strategy.
func intNode(name string, strategy flowjit.Strategy) *flowjit.Node {
	return flowjit.NewNode(name,
		[]flowjit.SocketInfo{flowjit.Socket("In", flowjit.Integer)},
		[]flowjit.SocketInfo{flowjit.Socket("Out", flowjit.Integer)},
		strategy)
}

// passThrough returns its input unchanged.
func passThrough(name string) *flowjit.Node {
	return intNode(name, flowjit.ValueFunc(func(_ *ir.Builder, in []ir.Value) ([]ir.Value, error) {
		return in, nil
	}))
}

// chain links one pass-through node per name behind an Input node and
// returns the ids in order, the Input first.
func chain(g *flowjit.Graph, names ...string) []flowjit.NodeID {
	ids := []flowjit.NodeID{g.AddNode(nodes.Input(flowjit.Integer))}
	for _, name := range names {
		id := g.AddNode(passThrough(name))
		g.MustLink(ids[len(ids)-1].Output(0), id.Input(0))
		ids = append(ids, id)
	}
	return ids
}

func fmtHex(v uint64) string { return fmt.Sprintf("%016x", v) }
