package flowjit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
)

// Sentinel errors for graph construction.
var (
	// ErrTypeMismatch indicates a link between sockets of different Types.
	ErrTypeMismatch = errors.New("socket types differ")

	// ErrMultipleWriters indicates a second link into an input socket.
	ErrMultipleWriters = errors.New("input socket already linked")

	// ErrInvalidLink indicates a link that does not go from an output to an input.
	ErrInvalidLink = errors.New("link must go from an output to an input")

	// ErrUnknownSocket indicates a socket that does not exist in the graph.
	ErrUnknownSocket = errors.New("unknown socket")
)

// Sentinel errors for resolution and code generation.
var (
	// ErrUnresolvedInput indicates a required input socket with no link that
	// was not declared as a graph input.
	ErrUnresolvedInput = errors.New("unresolved input")

	// ErrCycle indicates a cycle on a required path.
	ErrCycle = errors.New("cycle in required subgraph")

	// ErrOutputArity indicates a strategy returned the wrong number of values.
	ErrOutputArity = errors.New("wrong number of output values")

	// ErrOutputType indicates a strategy returned a value of the wrong type.
	ErrOutputType = errors.New("output value has wrong type")

	// ErrInsertPointMoved indicates a ValueFunc moved the insertion point, or
	// a FlowFunc reported an unusable one.
	ErrInsertPointMoved = errors.New("invalid insertion point after node")

	// ErrNodePanic indicates a strategy panicked.
	ErrNodePanic = errors.New("node strategy panicked")

	// ErrCodegenVerification indicates the backend rejected the generated code.
	ErrCodegenVerification = errors.New("generated code failed verification")
)

// Sentinel errors for callables.
var (
	// ErrReleased indicates use of a released Callable.
	ErrReleased = ir.ErrReleased

	// ErrSignatureMismatch indicates arguments or a function pointer that do
	// not match the Callable's signature.
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// TypeMismatchError describes a rejected link between differently typed sockets.
type TypeMismatchError struct {
	From, To         string
	FromType, ToType string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("link %s -> %s: %s vs %s: %v", e.From, e.To, e.FromType, e.ToType, ErrTypeMismatch)
}

// Unwrap returns ErrTypeMismatch for errors.Is support.
func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// MultipleWritersError describes a rejected second link into an input.
type MultipleWritersError struct {
	// Input is the input socket.
	Input string
	// Existing is the output already driving Input.
	Existing string
	// Rejected is the output of the rejected link.
	Rejected string
}

// Error implements the error interface.
func (e *MultipleWritersError) Error() string {
	return fmt.Sprintf("link %s -> %s: already driven by %s: %v", e.Rejected, e.Input, e.Existing, ErrMultipleWriters)
}

// Unwrap returns ErrMultipleWriters for errors.Is support.
func (e *MultipleWritersError) Unwrap() error { return ErrMultipleWriters }

// UnknownSocketError names a socket that does not exist in the graph.
type UnknownSocketError struct {
	Socket AnySocket
	// Role says where the socket was used ("input", "output", "link source", ...).
	Role string
}

// Error implements the error interface.
func (e *UnknownSocketError) Error() string {
	return fmt.Sprintf("%s socket %s: %v", e.Role, e.Socket, ErrUnknownSocket)
}

// Unwrap returns ErrUnknownSocket for errors.Is support.
func (e *UnknownSocketError) Unwrap() error { return ErrUnknownSocket }

// UnresolvedInputError names an input socket the outputs depend on that has
// neither a link nor a declaration as graph input.
type UnresolvedInputError struct {
	Socket AnySocket
	// Name is the diagnostic name, e.g. "Add[2].B".
	Name string
}

// Error implements the error interface.
func (e *UnresolvedInputError) Error() string {
	return fmt.Sprintf("input %s is not linked and not a graph input: %v", e.Name, ErrUnresolvedInput)
}

// Unwrap returns ErrUnresolvedInput for errors.Is support.
func (e *UnresolvedInputError) Unwrap() error { return ErrUnresolvedInput }

// CycleError reports a cycle found while walking back from the outputs.
type CycleError struct {
	// Nodes is the cycle in walk order (consumer to producer); the first
	// and last entries are the same node.
	Nodes []NodeID
	// Names are the diagnostic names of Nodes.
	Names []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Names, " <- "))
}

// Unwrap returns ErrCycle for errors.Is support.
func (e *CycleError) Unwrap() error { return ErrCycle }

// GenerateError wraps a failure of one node's code generation.
type GenerateError struct {
	Node     NodeID
	NodeName string
	Err      error
}

// Error implements the error interface.
func (e *GenerateError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.NodeName, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *GenerateError) Unwrap() error { return e.Err }

// PanicError captures a panic raised by a strategy.
type PanicError struct {
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrNodePanic, e.Value)
}

// Unwrap returns ErrNodePanic for errors.Is support.
func (e *PanicError) Unwrap() error { return ErrNodePanic }

// CodegenVerificationError reports generated code rejected by the backend.
type CodegenVerificationError struct {
	// Function is the function being compiled.
	Function string
	// Node is the name of the node that emitted the offending instruction,
	// empty when the instruction was emitted by the driver itself.
	Node string
	// Err is the backend's verification error.
	Err *ir.VerifyError
}

// Error implements the error interface.
func (e *CodegenVerificationError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: node %s: %v", e.Function, e.Node, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Function, e.Err)
}

// Unwrap exposes both ErrCodegenVerification and the backend error.
func (e *CodegenVerificationError) Unwrap() []error {
	return []error{ErrCodegenVerification, e.Err}
}

// InvariantError is the panic value raised when the resolver and driver
// disagree. It signals a bug in flowjit, never a user error.
type InvariantError struct {
	Msg string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return "flowjit: internal invariant violated: " + e.Msg
}
