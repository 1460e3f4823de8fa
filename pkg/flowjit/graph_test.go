package flowjit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/nodes"
)

func TestGraph_LinkErrors(t *testing.T) {
	g := flowjit.NewGraph()
	i := g.AddNode(nodes.Input(flowjit.Integer))
	f := g.AddNode(nodes.Input(flowjit.Float))
	add := g.AddNode(nodes.AddInt())

	tests := []struct {
		name     string
		from, to flowjit.AnySocket
		sentinel error
		msg      string
	}{
		{
			name:     "type mismatch",
			from:     f.Output(0),
			to:       add.Input(0),
			sentinel: flowjit.ErrTypeMismatch,
			msg:      "link Input[1].Value -> AddInt[2].A: Float vs Integer",
		},
		{
			name:     "input to input",
			from:     add.Input(1),
			to:       add.Input(0),
			sentinel: flowjit.ErrInvalidLink,
		},
		{
			name:     "output to output",
			from:     i.Output(0),
			to:       add.Output(0),
			sentinel: flowjit.ErrInvalidLink,
		},
		{
			name:     "unknown source node",
			from:     flowjit.NodeID(9).Output(0),
			to:       add.Input(0),
			sentinel: flowjit.ErrUnknownSocket,
			msg:      "link source socket 9.out[0]",
		},
		{
			name:     "unknown target index",
			from:     i.Output(0),
			to:       add.Input(2),
			sentinel: flowjit.ErrUnknownSocket,
			msg:      "link target socket 2.in[2]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Link(tt.from, tt.to)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
			assert.Empty(t, g.Links(), "rejected link must leave the graph unchanged")
		})
	}
}

func TestGraph_SingleWriter(t *testing.T) {
	g := flowjit.NewGraph()
	a := g.AddNode(nodes.Input(flowjit.Integer))
	b := g.AddNode(nodes.Input(flowjit.Integer))
	add := g.AddNode(nodes.AddInt())

	require.NoError(t, g.Link(a.Output(0), add.Input(0)))
	before := g.Links()

	err := g.Link(b.Output(0), add.Input(0))
	var mw *flowjit.MultipleWritersError
	require.True(t, errors.As(err, &mw))
	assert.Equal(t, "AddInt[2].A", mw.Input)
	assert.Equal(t, "Input[0].Value", mw.Existing)
	assert.Equal(t, "Input[1].Value", mw.Rejected)

	assert.Equal(t, before, g.Links())
	origin, ok := g.Origin(add.Input(0))
	require.True(t, ok)
	assert.Equal(t, a.Output(0), origin)
	assert.Empty(t, g.Targets(b.Output(0)))
}

func TestGraph_FanOut(t *testing.T) {
	g := flowjit.NewGraph()
	a := g.AddNode(nodes.Input(flowjit.Integer))
	add := g.AddNode(nodes.AddInt())
	g.MustLink(a.Output(0), add.Input(1)).
		MustLink(a.Output(0), add.Input(0))

	assert.Equal(t, []flowjit.AnySocket{add.Input(1), add.Input(0)}, g.Targets(a.Output(0)))
	assert.Equal(t, []flowjit.Link{
		{From: a.Output(0), To: add.Input(1)},
		{From: a.Output(0), To: add.Input(0)},
	}, g.Links())
}

func TestGraph_MustLinkPanics(t *testing.T) {
	g := flowjit.NewGraph()
	f := g.AddNode(nodes.Input(flowjit.Float))
	add := g.AddNode(nodes.AddInt())

	assert.PanicsWithValue(t,
		"flowjit: link Input[0].Value -> AddInt[1].A: Float vs Integer: socket types differ",
		func() { g.MustLink(f.Output(0), add.Input(0)) })
}

func TestGraph_Accessors(t *testing.T) {
	g := flowjit.NewGraph()
	add := g.AddNode(nodes.AddInt())

	assert.Equal(t, 1, g.NodeCount())
	assert.Nil(t, g.Node(5))
	assert.Nil(t, g.Node(-1))
	assert.Equal(t, "AddInt[0]", g.NodeName(add))
	assert.Equal(t, "?[7]", g.NodeName(7))
	assert.Equal(t, "AddInt[0].Result", g.SocketName(add.Output(0)))
	assert.Equal(t, "0.in[4]", g.SocketName(add.Input(4)))

	info, ok := g.SocketInfo(add.Input(1))
	require.True(t, ok)
	assert.Equal(t, "B", info.Name)
	assert.Same(t, flowjit.Integer, info.Type)

	assert.True(t, g.Contains(add.Output(0)))
	assert.False(t, g.Contains(add.Output(1)))
	assert.False(t, g.Contains(flowjit.AnySocket{Node: add, Index: -1}))
}

func TestGraph_AddNilPanics(t *testing.T) {
	assert.PanicsWithValue(t, "flowjit: cannot add nil node", func() {
		flowjit.NewGraph().AddNode(nil)
	})
}

func TestNewNode_Panics(t *testing.T) {
	pass := passThrough("ok").Strategy()

	tests := []struct {
		name string
		fn   func()
		want string
	}{
		{"empty name", func() { flowjit.NewNode("", nil, nil, pass) }, "flowjit: node name cannot be empty"},
		{"nil strategy", func() { flowjit.NewNode("n", nil, nil, nil) }, "flowjit: node n has no strategy"},
		{"nil value func", func() { flowjit.NewNode("n", nil, nil, flowjit.ValueFunc(nil)) }, "flowjit: node n has no strategy"},
		{"nil flow func", func() { flowjit.NewNode("n", nil, nil, flowjit.FlowFunc(nil)) }, "flowjit: node n has no strategy"},
		{
			"untyped input",
			func() { flowjit.NewNode("n", []flowjit.SocketInfo{{Name: "x"}}, nil, pass) },
			"flowjit: input x of node n has no type",
		},
		{
			"untyped output",
			func() { flowjit.NewNode("n", nil, []flowjit.SocketInfo{{Name: "y"}}, pass) },
			"flowjit: output y of node n has no type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PanicsWithValue(t, tt.want, tt.fn)
		})
	}
}

func TestNode_Accessors(t *testing.T) {
	n := nodes.SelectInt()
	assert.Equal(t, "SelectInt", n.Name())
	assert.Equal(t, 1, n.InputIndex("True"))
	assert.Equal(t, 0, n.OutputIndex("Result"))
	assert.Equal(t, -1, n.InputIndex("Missing"))
	assert.IsType(t, flowjit.FlowFunc(nil), n.Strategy())

	ins := n.Inputs()
	ins[0].Name = "changed"
	assert.Equal(t, "Condition", n.Inputs()[0].Name, "Inputs must return a copy")
}

func TestSocketSet(t *testing.T) {
	a, b := flowjit.NodeID(0).Output(0), flowjit.NodeID(1).Input(2)
	s := flowjit.NewSocketSet(b, a, b)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []flowjit.AnySocket{b, a}, s.Elements())
	assert.Equal(t, a, s.At(1))
	assert.Equal(t, 0, s.IndexOf(b))
	assert.Equal(t, -1, s.IndexOf(flowjit.NodeID(3).Output(0)))
	assert.True(t, s.Contains(a))
	assert.Equal(t, "1.in[2]", b.String())

	var empty *flowjit.SocketSet
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Contains(a))
	assert.Nil(t, empty.Elements())
}

func TestTypeTable(t *testing.T) {
	tt := flowjit.NewTypeTable()
	meters := tt.Register("Meters", flowjit.Float.IR())
	seconds := tt.Register("Seconds", flowjit.Float.IR())

	assert.NotSame(t, meters, seconds, "equal representations are still distinct types")
	assert.Equal(t, []string{"Meters", "Seconds"}, tt.Names())
	got, ok := tt.Lookup("Meters")
	require.True(t, ok)
	assert.Same(t, meters, got)

	assert.Panics(t, func() { tt.Register("Meters", flowjit.Float.IR()) })
	assert.PanicsWithValue(t, "flowjit: type name cannot be empty", func() { tt.Register("", flowjit.Float.IR()) })

	tt.Freeze()
	assert.Panics(t, func() { tt.Register("Hours", flowjit.Float.IR()) })
	assert.PanicsWithValue(t, "flowjit: unknown type Hours", func() { tt.MustLookup("Hours") })
}

func TestStandardTypes(t *testing.T) {
	std := flowjit.StandardTypes()
	assert.Same(t, std, flowjit.StandardTypes())
	assert.Len(t, std.Names(), 12)
	assert.Same(t, flowjit.Integer, std.MustLookup("Integer"))
	assert.Equal(t, "i32", flowjit.Integer.IR().String())
	assert.Equal(t, "<4 x f32>", flowjit.Color.IR().String())

	list, ok := flowjit.ListOf(flowjit.Vector)
	require.True(t, ok)
	assert.Equal(t, "Vector List", list.Name())
	assert.Equal(t, "list<<3 x f32>>", list.IR().String())

	_, ok = flowjit.ListOf(list)
	assert.False(t, ok)
	assert.Panics(t, func() { std.Register("Extra", flowjit.Float.IR()) })
}
