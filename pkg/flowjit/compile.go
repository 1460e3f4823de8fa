package flowjit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/flowjit/pkg/flowjit/codestore"
	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
	"github.com/randalmurphal/flowjit/pkg/flowjit/observability"
)

// GenerateCallable compiles the part of g needed to compute outputs from
// inputs into a Callable named name. See Compile.
func (g *Graph) GenerateCallable(name string, inputs, outputs *SocketSet, opts ...Option) (*Callable, error) {
	return Compile(context.Background(), g, name, inputs, outputs, opts...)
}

// Compile resolves the required subgraph, generates code for every
// required node in order, and finalizes the function.
//
// Errors are those of Resolve, a *GenerateError for a failing node strategy
// and a *CodegenVerificationError when the backend rejects the generated
// code. No Callable is returned on error. ctx carries tracing spans and is
// checked once before work starts; compilation itself never blocks.
func Compile(ctx context.Context, g *Graph, name string, inputs, outputs *SocketSet, opts ...Option) (c *Callable, err error) {
	if name == "" {
		panic("flowjit: function name cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := defaultCompileConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.compileID == "" {
		cfg.compileID = uuid.NewString()
	}

	start := time.Now()
	elapsed := observability.TimedOperation()
	observability.LogCompileStart(cfg.logger, cfg.compileID, name, inputs.Len(), outputs.Len())

	ctx, span := cfg.spans.StartCompileSpan(ctx, name, cfg.compileID)
	defer func() {
		cfg.spans.EndSpanWithError(span, err)
		nodes := 0
		if c != nil {
			nodes = c.nodes
		}
		cfg.metrics.RecordCompile(ctx, name, time.Since(start), nodes, err)
		if err != nil {
			observability.LogCompileError(cfg.logger, cfg.compileID, name, err, elapsed())
		} else {
			observability.LogCompileComplete(cfg.logger, cfg.compileID, name, elapsed(), nodes)
		}
	}()

	return compile(ctx, g, name, inputs, outputs, &cfg)
}

func compile(ctx context.Context, g *Graph, name string, inputs, outputs *SocketSet, cfg *compileConfig) (*Callable, error) {
	res, err := Resolve(g, inputs, outputs)
	if err != nil {
		return nil, err
	}
	cfg.spans.AddSpanEvent(ctx, "resolved", attribute.Int("nodes", len(res.Nodes)))

	in := socketTypes(g, inputs)
	out := socketTypes(g, outputs)
	fn := ir.NewFunction(name, irTypes(in), irTypes(out))
	if err := generate(ctx, g, res, inputs, outputs, fn, cfg); err != nil {
		return nil, err
	}

	exe, err := ir.Finalize(fn, ir.Options{OptLevel: cfg.optLevel})
	if err != nil {
		var ve *ir.VerifyError
		if errors.As(err, &ve) {
			return nil, &CodegenVerificationError{Function: name, Node: ve.Origin, Err: ve}
		}
		return nil, fmt.Errorf("finalize %s: %w", name, err)
	}

	key := codeKey(name, cfg.optLevel, fingerprint(g, res, inputs, outputs))
	if cfg.store != nil {
		recordCode(ctx, cfg, key, name, exe.Code())
	}

	return &Callable{
		name:    name,
		inputs:  in,
		outputs: out,
		exe:     exe,
		key:     key,
		nodes:   len(res.Nodes),
	}, nil
}

// recordCode saves the dump in the code store. Store failures are logged
// and never fail the compilation.
func recordCode(ctx context.Context, cfg *compileConfig, key, name, code string) {
	drifted, err := codestore.Record(cfg.store, key, name, code)
	if err != nil {
		observability.LogCodeStoreError(cfg.logger, name, "record", err)
		return
	}
	if drifted {
		observability.LogCodeDrift(cfg.logger, name, key)
		cfg.metrics.RecordCodeDrift(ctx, name)
	}
}

func socketTypes(g *Graph, set *SocketSet) []Type {
	types := make([]Type, set.Len())
	for i, s := range set.Elements() {
		info, _ := g.SocketInfo(s)
		types[i] = info.Type
	}
	return types
}

func irTypes(types []Type) []ir.Type {
	out := make([]ir.Type, len(types))
	for i, t := range types {
		out[i] = t.IR()
	}
	return out
}
