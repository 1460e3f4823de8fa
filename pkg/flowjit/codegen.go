package flowjit

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
	"github.com/randalmurphal/flowjit/pkg/flowjit/observability"
)

// generator emits the body of one function. It owns the builder, so one
// generator serves exactly one compilation.
type generator struct {
	g      *Graph
	b      *ir.Builder
	cfg    *compileConfig
	log    *slog.Logger
	inputs *SocketSet
	values map[AnySocket]ir.Value
}

// generate binds one parameter per input socket, emits every resolved node
// in order and returns the values of outputs.
func generate(ctx context.Context, g *Graph, res *Resolution, inputs, outputs *SocketSet, fn *ir.Function, cfg *compileConfig) error {
	gen := &generator{
		g:      g,
		b:      ir.NewBuilder(fn),
		cfg:    cfg,
		log:    observability.EnrichLogger(cfg.logger, cfg.compileID, fn.Name()),
		inputs: inputs,
		values: make(map[AnySocket]ir.Value, len(res.Sockets)),
	}
	for i, s := range inputs.Elements() {
		gen.values[s] = fn.Param(i)
	}

	for _, id := range res.Nodes {
		if err := gen.node(ctx, id); err != nil {
			return err
		}
	}

	gen.b.SetOrigin("")
	results := make([]ir.Value, outputs.Len())
	for i, s := range outputs.Elements() {
		results[i] = gen.valueOf(s)
	}
	gen.b.Ret(results...)
	return nil
}

// valueOf returns the generated value flowing through s. A missing value
// means the resolver ordering is broken, which is a bug in this package.
func (gen *generator) valueOf(s AnySocket) ir.Value {
	if v, ok := gen.values[s]; ok {
		return v
	}
	if !s.IsOutput {
		if from, ok := gen.g.Origin(s); ok {
			if v, ok := gen.values[from]; ok {
				return v
			}
		}
	}
	panic(&InvariantError{Msg: "no generated value for " + gen.g.SocketName(s)})
}

func (gen *generator) node(ctx context.Context, id NodeID) (err error) {
	n := gen.g.Node(id)
	name := gen.g.NodeName(id)

	args := make([]ir.Value, len(n.inputs))
	for i := range n.inputs {
		args[i] = gen.valueOf(id.Input(i))
	}

	_, span := gen.cfg.spans.StartNodeSpan(ctx, n.name)
	defer func() {
		gen.cfg.spans.EndSpanWithError(span, err)
		gen.cfg.metrics.RecordNodeGeneration(ctx, n.name, err)
	}()

	gen.b.SetOrigin(name)
	outs, err := gen.invoke(n, args)
	if err != nil {
		return &GenerateError{Node: id, NodeName: name, Err: err}
	}
	if len(outs) != len(n.outputs) {
		return &GenerateError{Node: id, NodeName: name,
			Err: fmt.Errorf("%w: declared %d, got %d", ErrOutputArity, len(n.outputs), len(outs))}
	}
	for i, v := range outs {
		want := n.outputs[i].Type.IR()
		if isNilValue(v) || v.Type() != want {
			return &GenerateError{Node: id, NodeName: name,
				Err: fmt.Errorf("%w: output %s must be %s, got %s", ErrOutputType, n.outputs[i].Name, want, typeName(v))}
		}
		// A declared input keeps its parameter even when the node that
		// owns the socket is generated for its other outputs.
		if out := id.Output(i); !gen.inputs.Contains(out) {
			gen.values[out] = v
		}
	}

	observability.LogNodeGenerated(gen.log, name, len(outs))
	return nil
}

// invoke runs the node's strategy and moves the builder to wherever the
// strategy says emission continues.
func (gen *generator) invoke(n *Node, args []ir.Value) (outs []ir.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			outs = nil
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()

	before := gen.b.InsertBlock()
	switch s := n.strategy.(type) {
	case ValueFunc:
		outs, err = s(gen.b, args)
		if err != nil {
			return nil, err
		}
		if after := gen.b.InsertBlock(); after != before {
			return nil, fmt.Errorf("%w: value node moved emission from %s to %s",
				ErrInsertPointMoved, before.Name(), after.Name())
		}
	case FlowFunc:
		var next *ir.Block
		outs, next, err = s(gen.b, args)
		if err != nil {
			return nil, err
		}
		if next == nil || next.Function() != gen.b.Function() {
			return nil, fmt.Errorf("%w: flow node returned no block of this function", ErrInsertPointMoved)
		}
		gen.b.SetInsertPoint(next)
	default:
		return nil, fmt.Errorf("unsupported strategy %T", s)
	}
	return outs, nil
}

func isNilValue(v ir.Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *ir.Instr:
		return x == nil
	case *ir.Param:
		return x == nil
	}
	return false
}

func typeName(v ir.Value) string {
	if isNilValue(v) || v.Type() == nil {
		return "nothing"
	}
	return v.Type().String()
}
