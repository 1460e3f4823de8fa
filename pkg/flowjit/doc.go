/*
Package flowjit compiles dataflow graphs into callable functions.

A Graph holds appearances of Nodes. Each Node has ordered, typed input and
output sockets and a Strategy that emits the node's code through an
ir.Builder. Links connect an output socket to an input socket of the same
Type; an input accepts at most one link, an output may feed many.

To compile, declare which sockets are supplied by the caller and which are
wanted back. Only the nodes needed to compute the outputs from the inputs
are compiled, in an order where producers come before consumers:

	g := flowjit.NewGraph()
	a := g.AddNode(in)
	b := g.AddNode(in)
	sum := g.AddNode(add)
	g.MustLink(a.Output(0), sum.Input(0)).
		MustLink(b.Output(0), sum.Input(1))

	c, err := g.GenerateCallable("Sum",
		flowjit.NewSocketSet(a.Output(0), b.Output(0)),
		flowjit.NewSocketSet(sum.Output(0)))
	if err != nil {
		return err
	}
	defer c.Release()

	var f func(int32, int32) int32
	if err := c.FunctionPointer(&f); err != nil {
		return err
	}
	fmt.Println(f(2, 3), c.PrintCode())

# Strategies

A ValueFunc computes output values without changing where code is emitted.
A FlowFunc may branch into new blocks and returns the block where emission
continues. Either must return exactly one value per declared output with
the representation of the output's Type.

# Errors

Link rejects bad links with *TypeMismatchError, *MultipleWritersError,
*UnknownSocketError or ErrInvalidLink and leaves the Graph unchanged.
Compilation fails with *UnknownSocketError, *UnresolvedInputError,
*CycleError, *GenerateError or *CodegenVerificationError. Every typed error
unwraps to a sentinel for errors.Is.

# Observability

Compile options enable slog logging (WithLogger), OpenTelemetry metrics
(WithMetrics) and spans (WithTracing), and a code store recording the code
generated for each graph fingerprint (WithCodeStore).

# Concurrency

A Graph must not be modified while it is compiled. Distinct compilations,
including of the same Graph, may run in parallel (see CompileAll). A Callable
may be called from many goroutines at once.
*/
package flowjit
