package flowjit_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/nodes"
)

func TestDot_RequiredSubgraph(t *testing.T) {
	d := newDiamond()
	out, err := d.g.Dot(d.inputs(), d.outputs())
	require.NoError(t, err)

	want := `digraph flowjit {
  rankdir=LR;
  node [shape=record];
  n3 [label="{{<i0> A|<i1> B}|AddInt[3]|{<o0> Result}}"];
  n4 [label="{{<i0> A|<i1> B}|AddInt[4]|{<o0> Result}}"];
  n5 [label="{{<i0> A|<i1> B}|AddInt[5]|{<o0> Result}}"];
  n3:o0 -> n5:i0;
  n4:o0 -> n5:i1;
}
`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("dot mismatch (-want +got):\n%s", diff)
	}
}

func TestDotFormat_AllNodes(t *testing.T) {
	d := newDiamond()
	all := make([]flowjit.NodeID, d.g.NodeCount())
	for i := range all {
		all[i] = flowjit.NodeID(i)
	}

	out := d.g.DotFormat(all)
	assert.Contains(t, out, `n0 [label="{Input[0]|{<o0> Value}}"];`)
	assert.Contains(t, out, "n1:o0 -> n3:i1;")
	assert.Contains(t, out, "n1:o0 -> n4:i0;")
	assert.Equal(t, out, d.g.DotFormat(all), "rendering is a pure function of the graph")
}

func TestDotFormat_Escapes(t *testing.T) {
	g := flowjit.NewGraph()
	id := g.AddNode(flowjit.NewNode(`a|b{c}"d"`, nil,
		[]flowjit.SocketInfo{flowjit.Socket("<out>", flowjit.Integer)},
		nodes.IntConst(1).Strategy()))

	out := g.DotFormat([]flowjit.NodeID{id})
	assert.Contains(t, out, `n0 [label="{a\|b\{c\}\"d\"[0]|{<o0> \<out\>}}"];`)
}

func TestDot_ResolveError(t *testing.T) {
	d := newDiamond()
	_, err := d.g.Dot(nil, d.outputs())
	assert.ErrorIs(t, err, flowjit.ErrUnresolvedInput)
}
