package graphfile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/graphfile"
	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
	"github.com/randalmurphal/flowjit/pkg/flowjit/loaders"
)

func TestParseFile_Diamond(t *testing.T) {
	f, err := graphfile.ParseFile("testdata/diamond.hcl")
	require.NoError(t, err)

	assert.Equal(t, "Diamond", f.Name)
	assert.Equal(t, 6, f.Graph.NodeCount())
	assert.Len(t, f.Graph.Links(), 6)
	assert.Equal(t, flowjit.NodeID(3), f.Nodes["addA"])
	assert.Equal(t, 3, f.Inputs.Len())
	assert.Equal(t, f.Nodes["addC"].Output(0), f.Outputs.At(0))

	c, err := f.Compile(context.Background())
	require.NoError(t, err)
	defer c.Release()

	var diamond func(int32, int32, int32) int32
	require.NoError(t, c.FunctionPointer(&diamond))
	assert.Equal(t, int32(160), diamond(10, 25, 100))
}

func TestParseFile_QuotedReferencesAndValues(t *testing.T) {
	f, err := graphfile.ParseFile("testdata/clamp.hcl")
	require.NoError(t, err)
	assert.Equal(t, "Integer(100)", f.Graph.Node(f.Nodes["limit"]).Name())

	c, err := f.Compile(context.Background(), flowjit.WithOptLevel(ir.OptNone))
	require.NoError(t, err)
	defer c.Release()

	var clamp func(int32) int32
	require.NoError(t, c.FunctionPointer(&clamp))
	assert.Equal(t, int32(7), clamp(7))
	assert.Equal(t, int32(100), clamp(250))
}

func TestParse_ObjectsThroughLoaders(t *testing.T) {
	type camera struct{}
	cam := &camera{}
	p := &graphfile.Parser{Loaders: loaders.NewTable(loaders.Objects{"cam": cam})}

	f, err := p.Parse([]byte(`
name    = "Camera"
outputs = [c.Value]

node "c" {
  kind  = "value"
  type  = "Object"
  value = "cam"
}
`), "camera.hcl")
	require.NoError(t, err)
	assert.Equal(t, 0, f.Inputs.Len())

	c, err := f.Compile(context.Background())
	require.NoError(t, err)
	defer c.Release()
	out, err := c.Call()
	require.NoError(t, err)
	assert.Same(t, cam, out[0].(ir.Handle).Pointer())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{
			name: "syntax",
			src:  `name = `,
			msg:  "graph file bad.hcl",
		},
		{
			name: "missing outputs",
			src:  `name = "f"`,
			msg:  `Missing required argument`,
		},
		{
			name: "unknown kind",
			src: `
name    = "f"
outputs = []
node "a" { kind = "Teleport" }
`,
			msg: `unknown node kind "Teleport"`,
		},
		{
			name: "unknown type",
			src: `
name    = "f"
outputs = []
node "a" {
  kind = "Input"
  type = "Quaternion"
}
`,
			msg: `unknown type "Quaternion"`,
		},
		{
			name: "bad value",
			src: `
name    = "f"
outputs = []
node "a" {
  kind  = "value"
  type  = "Integer"
  value = "many"
}
`,
			msg: "Invalid node value",
		},
		{
			name: "duplicate node",
			src: `
name    = "f"
outputs = []
node "a" { kind = "AddInt" }
node "a" { kind = "AddInt" }
`,
			msg: `node labeled "a" is already defined`,
		},
		{
			name: "unknown node in reference",
			src: `
name    = "f"
outputs = [ghost.Value]
`,
			msg: `There is no node labeled "ghost"`,
		},
		{
			name: "unknown socket",
			src: `
name    = "f"
outputs = [a.Sum]
node "a" { kind = "AddInt" }
`,
			msg: `Node "a" (AddInt) has no socket "Sum"`,
		},
		{
			name: "malformed reference",
			src: `
name    = "f"
outputs = ["a"]
node "a" { kind = "AddInt" }
`,
			msg: "node.Socket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graphfile.Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			var de *graphfile.DiagnosticsError
			require.True(t, errors.As(err, &de), "got %T: %v", err, err)
			assert.Equal(t, "bad.hcl", de.Filename)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_LinkErrorsKeepTheirType(t *testing.T) {
	_, err := graphfile.Parse([]byte(`
name    = "f"
outputs = [sum.Result]

node "x" {
  kind = "Input"
  type = "Float"
}
node "sum" { kind = "AddInt" }

link {
  from = x.Value
  to   = sum.A
}
`), "mismatch.hcl")
	require.Error(t, err)
	assert.ErrorIs(t, err, flowjit.ErrTypeMismatch)
	assert.Contains(t, err.Error(), "mismatch.hcl:")
}

func TestParse_LinkTargetIsAlwaysAnInput(t *testing.T) {
	f, err := graphfile.Parse([]byte(`
name    = "split"
inputs  = [v.Value]
outputs = [sep.X, comb.Vector]

node "v" {
  kind = "Input"
  type = "Vector"
}
node "sep"  { kind = "SeparateVector" }
node "comb" { kind = "CombineVector" }

link {
  from = v.Value
  to   = sep.Vector
}
link {
  from = sep.Z
  to   = comb.X
}
link {
  from = sep.Y
  to   = comb.Y
}
link {
  from = sep.X
  to   = comb.Z
}
`), "split.hcl")
	require.NoError(t, err)

	c, err := f.Compile(context.Background())
	require.NoError(t, err)
	defer c.Release()
	out, err := c.Call([3]float32{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []any{float32(1), [3]float32{3, 2, 1}}, out)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := graphfile.ParseFile("testdata/nope.hcl")
	assert.Error(t, err)
}
