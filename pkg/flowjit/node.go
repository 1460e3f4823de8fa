package flowjit

import "github.com/randalmurphal/flowjit/pkg/flowjit/ir"

// Strategy generates the code of a Node. It is one of ValueFunc or FlowFunc.
type Strategy interface {
	isStrategy()
}

// ValueFunc emits instructions computing the node's outputs from its inputs.
// It must return one value per declared output, in order, and must leave
// the builder's insertion point where it found it.
type ValueFunc func(b *ir.Builder, inputs []ir.Value) ([]ir.Value, error)

func (ValueFunc) isStrategy() {}

// FlowFunc is a ValueFunc that may redirect emission, for example by
// branching into new blocks. It returns the block where emission continues.
type FlowFunc func(b *ir.Builder, inputs []ir.Value) ([]ir.Value, *ir.Block, error)

func (FlowFunc) isStrategy() {}

// Node is an immutable template: a name, ordered input and output sockets,
// and a Strategy. The same Node may be added to a Graph any number of times.
//
// A Strategy may run once per appearance per compilation, possibly from
// several goroutines compiling different graphs, so it must not mutate
// shared state. Values it needs at call time must be owned by the Strategy
// (constants) or held in an *ir.Cell.
type Node struct {
	name     string
	inputs   []SocketInfo
	outputs  []SocketInfo
	strategy Strategy
}

// NewNode creates a Node. It panics on an empty name, a nil strategy or a
// socket without a Type.
func NewNode(name string, inputs, outputs []SocketInfo, strategy Strategy) *Node {
	if name == "" {
		panic("flowjit: node name cannot be empty")
	}
	switch s := strategy.(type) {
	case nil:
		panic("flowjit: node " + name + " has no strategy")
	case ValueFunc:
		if s == nil {
			panic("flowjit: node " + name + " has no strategy")
		}
	case FlowFunc:
		if s == nil {
			panic("flowjit: node " + name + " has no strategy")
		}
	}
	for _, s := range inputs {
		if s.Type == nil {
			panic("flowjit: input " + s.Name + " of node " + name + " has no type")
		}
	}
	for _, s := range outputs {
		if s.Type == nil {
			panic("flowjit: output " + s.Name + " of node " + name + " has no type")
		}
	}
	return &Node{
		name:     name,
		inputs:   append([]SocketInfo(nil), inputs...),
		outputs:  append([]SocketInfo(nil), outputs...),
		strategy: strategy,
	}
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Inputs returns a copy of the input sockets.
func (n *Node) Inputs() []SocketInfo { return append([]SocketInfo(nil), n.inputs...) }

// Outputs returns a copy of the output sockets.
func (n *Node) Outputs() []SocketInfo { return append([]SocketInfo(nil), n.outputs...) }

// Strategy returns the code generation strategy.
func (n *Node) Strategy() Strategy { return n.strategy }

// InputIndex returns the index of the input named name, or -1.
func (n *Node) InputIndex(name string) int { return indexOf(n.inputs, name) }

// OutputIndex returns the index of the output named name, or -1.
func (n *Node) OutputIndex(name string) int { return indexOf(n.outputs, name) }

func indexOf(sockets []SocketInfo, name string) int {
	for i, s := range sockets {
		if s.Name == name {
			return i
		}
	}
	return -1
}
