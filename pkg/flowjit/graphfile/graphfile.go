package graphfile

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/loaders"
	"github.com/randalmurphal/flowjit/pkg/flowjit/nodes"
)

// DiagnosticsError reports a file that could not be parsed or decoded.
type DiagnosticsError struct {
	Filename string
	Diags    hcl.Diagnostics
}

// Error implements the error interface.
func (e *DiagnosticsError) Error() string {
	return fmt.Sprintf("graph file %s: %s", e.Filename, e.Diags.Error())
}

// File is a decoded graph file.
type File struct {
	Name    string
	Graph   *flowjit.Graph
	Inputs  *flowjit.SocketSet
	Outputs *flowjit.SocketSet
	// Nodes maps node labels to their ids in Graph.
	Nodes map[string]flowjit.NodeID
}

// Compile compiles the file's outputs from its inputs.
func (f *File) Compile(ctx context.Context, opts ...flowjit.Option) (*flowjit.Callable, error) {
	return flowjit.Compile(ctx, f.Graph, f.Name, f.Inputs, f.Outputs, opts...)
}

// Parser reads graph files. The zero Parser uses the standard socket types
// and loaders.
type Parser struct {
	// Types resolves type names. Defaults to flowjit.StandardTypes().
	Types *flowjit.TypeTable
	// Loaders builds "value" nodes. Defaults to loaders.NewTable(nil).
	Loaders *loaders.Table
}

type fileSchema struct {
	Name    string         `hcl:"name"`
	Inputs  hcl.Expression `hcl:"inputs,optional"`
	Outputs hcl.Expression `hcl:"outputs"`
	Nodes   []nodeSchema   `hcl:"node,block"`
	Links   []linkSchema   `hcl:"link,block"`
}

type nodeSchema struct {
	ID    string         `hcl:"id,label"`
	Kind  string         `hcl:"kind"`
	Type  string         `hcl:"type,optional"`
	Value hcl.Expression `hcl:"value,optional"`
}

type linkSchema struct {
	From hcl.Expression `hcl:"from"`
	To   hcl.Expression `hcl:"to"`
}

// ParseFile reads and decodes the file at path with the zero Parser.
func ParseFile(path string) (*File, error) {
	return (&Parser{}).ParseFile(path)
}

// Parse decodes src with the zero Parser. filename is used in diagnostics.
func Parse(src []byte, filename string) (*File, error) {
	return (&Parser{}).Parse(src, filename)
}

// ParseFile reads and decodes the file at path.
func (p *Parser) ParseFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	return p.Parse(src, path)
}

// Parse decodes src. Link errors from the graph (type mismatches, second
// writers) are returned wrapped, so errors.Is works on them.
func (p *Parser) Parse(src []byte, filename string) (*File, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, &DiagnosticsError{Filename: filename, Diags: diags}
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return nil, &DiagnosticsError{Filename: filename, Diags: diags}
	}

	b := &builder{
		p:     p,
		g:     flowjit.NewGraph(),
		nodes: make(map[string]flowjit.NodeID, len(schema.Nodes)),
	}
	if err := b.build(&schema); err != nil {
		if d, ok := err.(hcl.Diagnostics); ok {
			return nil, &DiagnosticsError{Filename: filename, Diags: d}
		}
		return nil, err
	}
	return &File{
		Name:    schema.Name,
		Graph:   b.g,
		Inputs:  b.inputs,
		Outputs: b.outputs,
		Nodes:   b.nodes,
	}, nil
}

type builder struct {
	p       *Parser
	g       *flowjit.Graph
	nodes   map[string]flowjit.NodeID
	inputs  *flowjit.SocketSet
	outputs *flowjit.SocketSet
}

func (b *builder) types() *flowjit.TypeTable {
	if b.p.Types != nil {
		return b.p.Types
	}
	return flowjit.StandardTypes()
}

func (b *builder) loaders() *loaders.Table {
	if b.p.Loaders != nil {
		return b.p.Loaders
	}
	return loaders.NewTable(nil)
}

func (b *builder) build(s *fileSchema) error {
	var values *loaders.Table
	for _, ns := range s.Nodes {
		if _, dup := b.nodes[ns.ID]; dup {
			return hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Duplicate node",
				Detail:   fmt.Sprintf("A node labeled %q is already defined.", ns.ID),
				Subject:  ns.Value.Range().Ptr(),
			}}
		}
		var n *flowjit.Node
		var err error
		if ns.Kind == "value" {
			if values == nil {
				values = b.loaders()
			}
			n, err = b.value(ns, values)
		} else {
			n, err = b.catalogNode(ns)
		}
		if err != nil {
			return err
		}
		b.nodes[ns.ID] = b.g.AddNode(n)
	}

	for _, ls := range s.Links {
		from, diags := b.socket(ls.From, true)
		if diags.HasErrors() {
			return diags
		}
		to, diags := b.socket(ls.To, false)
		if diags.HasErrors() {
			return diags
		}
		if err := b.g.Link(from, to); err != nil {
			return fmt.Errorf("%s: %w", ls.From.Range(), err)
		}
	}

	var diags hcl.Diagnostics
	if b.inputs, diags = b.socketSet(s.Inputs); diags.HasErrors() {
		return diags
	}
	if b.outputs, diags = b.socketSet(s.Outputs); diags.HasErrors() {
		return diags
	}
	return nil
}

func (b *builder) value(ns nodeSchema, values *loaders.Table) (*flowjit.Node, error) {
	v, diags := ns.Value.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	n, err := values.Load(ns.Type, v)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid node value",
			Detail:   fmt.Sprintf("Node %q: %v.", ns.ID, err),
			Subject:  ns.Value.Range().Ptr(),
		}}
	}
	return n, nil
}

func (b *builder) catalogNode(ns nodeSchema) (*flowjit.Node, error) {
	var params nodes.Params
	if ns.Type != "" {
		t, ok := b.types().Lookup(ns.Type)
		if !ok {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unknown type",
				Detail:   fmt.Sprintf("Node %q uses unknown type %q.", ns.ID, ns.Type),
				Subject:  ns.Value.Range().Ptr(),
			}}
		}
		params.Type = t
	}
	n, err := nodes.New(ns.Kind, params)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid node",
			Detail:   fmt.Sprintf("Node %q: %v.", ns.ID, err),
			Subject:  ns.Value.Range().Ptr(),
		}}
	}
	return n, nil
}

// socketSet decodes a list of socket references; null is the empty set.
func (b *builder) socketSet(expr hcl.Expression) (*flowjit.SocketSet, hcl.Diagnostics) {
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		if v, vd := expr.Value(nil); !vd.HasErrors() && v.IsNull() {
			return flowjit.NewSocketSet(), nil
		}
		return nil, diags
	}
	sockets := make([]flowjit.AnySocket, 0, len(items))
	for _, item := range items {
		s, diags := b.socket(item, true)
		if diags.HasErrors() {
			return nil, diags
		}
		sockets = append(sockets, s)
	}
	return flowjit.NewSocketSet(sockets...), nil
}

// socket resolves a node.Socket reference. With preferOutput an output
// socket of that name wins over an input socket; otherwise only inputs
// are considered.
func (b *builder) socket(expr hcl.Expression, preferOutput bool) (flowjit.AnySocket, hcl.Diagnostics) {
	rng := expr.Range()
	bad := func(detail string) (flowjit.AnySocket, hcl.Diagnostics) {
		return flowjit.AnySocket{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid socket reference",
			Detail:   detail,
			Subject:  &rng,
		}}
	}

	trav, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() {
		v, vd := expr.Value(nil)
		if vd.HasErrors() || v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
			return bad("A socket reference must have the form node.Socket.")
		}
		trav, diags = hclsyntax.ParseTraversalAbs([]byte(v.AsString()), rng.Filename, rng.Start)
		if diags.HasErrors() {
			return bad(fmt.Sprintf("%q is not of the form node.Socket.", v.AsString()))
		}
	}
	if len(trav) != 2 {
		return bad("A socket reference must have the form node.Socket.")
	}
	attr, ok := trav[1].(hcl.TraverseAttr)
	if !ok {
		return bad("A socket reference must have the form node.Socket.")
	}

	nodeID, socketName := trav.RootName(), attr.Name
	id, ok := b.nodes[nodeID]
	if !ok {
		return bad(fmt.Sprintf("There is no node labeled %q.", nodeID))
	}
	n := b.g.Node(id)
	if preferOutput {
		if i := n.OutputIndex(socketName); i >= 0 {
			return id.Output(i), nil
		}
	}
	if i := n.InputIndex(socketName); i >= 0 {
		return id.Input(i), nil
	}
	return bad(fmt.Sprintf("Node %q (%s) has no socket %q.", nodeID, n.Name(), socketName))
}
