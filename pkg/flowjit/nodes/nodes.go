package nodes

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
)

// ErrUnboundInput is returned when an Input node is compiled instead of
// being declared as a graph input.
var ErrUnboundInput = errors.New("input node is not a graph input")

// Input returns a placeholder with a single output "Value" of type t. Its
// output must be listed among the graph inputs of every compilation that
// needs it.
func Input(t flowjit.Type) *flowjit.Node {
	return flowjit.NewNode("Input", nil,
		[]flowjit.SocketInfo{flowjit.Socket("Value", t)},
		flowjit.ValueFunc(func(*ir.Builder, []ir.Value) ([]ir.Value, error) {
			return nil, ErrUnboundInput
		}))
}

func binary(name string, t flowjit.Type, emit func(b *ir.Builder, x, y ir.Value) ir.Value) *flowjit.Node {
	return flowjit.NewNode(name,
		[]flowjit.SocketInfo{flowjit.Socket("A", t), flowjit.Socket("B", t)},
		[]flowjit.SocketInfo{flowjit.Socket("Result", t)},
		flowjit.ValueFunc(func(b *ir.Builder, in []ir.Value) ([]ir.Value, error) {
			return []ir.Value{emit(b, in[0], in[1])}, nil
		}))
}

// AddInt returns A + B on Integers, wrapping on overflow.
func AddInt() *flowjit.Node { return binary("AddInt", flowjit.Integer, (*ir.Builder).Add) }

// SubInt returns A - B on Integers.
func SubInt() *flowjit.Node { return binary("SubInt", flowjit.Integer, (*ir.Builder).Sub) }

// MulInt returns A * B on Integers.
func MulInt() *flowjit.Node { return binary("MulInt", flowjit.Integer, (*ir.Builder).Mul) }

// DivInt returns A / B on Integers, truncated toward zero. Calling the
// compiled function with B == 0 traps.
func DivInt() *flowjit.Node { return binary("DivInt", flowjit.Integer, (*ir.Builder).Div) }

// AddFloat returns A + B on Floats.
func AddFloat() *flowjit.Node { return binary("AddFloat", flowjit.Float, (*ir.Builder).Add) }

// MulFloat returns A * B on Floats.
func MulFloat() *flowjit.Node { return binary("MulFloat", flowjit.Float, (*ir.Builder).Mul) }

// AddVector returns the lane-wise sum of two Vectors.
func AddVector() *flowjit.Node { return binary("AddVector", flowjit.Vector, (*ir.Builder).Add) }

// IntConst returns a node with one Integer output "Value" holding v.
// The value is part of the node name.
func IntConst(v int32) *flowjit.Node {
	return flowjit.NewNode(fmt.Sprintf("IntConst(%d)", v), nil,
		[]flowjit.SocketInfo{flowjit.Socket("Value", flowjit.Integer)},
		flowjit.ValueFunc(func(b *ir.Builder, _ []ir.Value) ([]ir.Value, error) {
			return []ir.Value{b.Int32(v)}, nil
		}))
}

// FloatConst returns a node with one Float output "Value" holding v.
func FloatConst(v float32) *flowjit.Node {
	return flowjit.NewNode(fmt.Sprintf("FloatConst(%g)", v), nil,
		[]flowjit.SocketInfo{flowjit.Socket("Value", flowjit.Float)},
		flowjit.ValueFunc(func(b *ir.Builder, _ []ir.Value) ([]ir.Value, error) {
			return []ir.Value{b.Float32(v)}, nil
		}))
}

// IntRef returns a node whose Integer output "Value" reads cell each time
// the compiled function runs. The host may Set the cell between calls.
// Panics if cell is nil or not an i32 cell.
func IntRef(cell *ir.Cell) *flowjit.Node {
	if cell == nil || cell.Type() != ir.Int32 {
		panic("nodes: IntRef needs an i32 cell")
	}
	return flowjit.NewNode("IntRef", nil,
		[]flowjit.SocketInfo{flowjit.Socket("Value", flowjit.Integer)},
		flowjit.ValueFunc(func(b *ir.Builder, _ []ir.Value) ([]ir.Value, error) {
			return []ir.Value{b.Load(cell)}, nil
		}))
}

// LessInt returns A < B as a Boolean.
func LessInt() *flowjit.Node {
	return flowjit.NewNode("LessInt",
		[]flowjit.SocketInfo{flowjit.Socket("A", flowjit.Integer), flowjit.Socket("B", flowjit.Integer)},
		[]flowjit.SocketInfo{flowjit.Socket("Result", flowjit.Boolean)},
		flowjit.ValueFunc(func(b *ir.Builder, in []ir.Value) ([]ir.Value, error) {
			return []ir.Value{b.Cmp(ir.Lt, in[0], in[1])}, nil
		}))
}

// SelectInt returns True when Condition holds and False otherwise. It
// branches into two blocks and merges them with a phi, so emission
// continues in the merge block.
func SelectInt() *flowjit.Node {
	return flowjit.NewNode("SelectInt",
		[]flowjit.SocketInfo{
			flowjit.Socket("Condition", flowjit.Boolean),
			flowjit.Socket("True", flowjit.Integer),
			flowjit.Socket("False", flowjit.Integer),
		},
		[]flowjit.SocketInfo{flowjit.Socket("Result", flowjit.Integer)},
		flowjit.FlowFunc(func(b *ir.Builder, in []ir.Value) ([]ir.Value, *ir.Block, error) {
			then, els, join := b.NewBlock("select.true"), b.NewBlock("select.false"), b.NewBlock("select.join")
			b.CondBr(in[0], then, els)
			b.SetInsertPoint(then)
			b.Br(join)
			b.SetInsertPoint(els)
			b.Br(join)

			b.SetInsertPoint(join)
			phi := b.Phi(ir.Int32)
			phi.AddIncoming(in[1], then)
			phi.AddIncoming(in[2], els)
			return []ir.Value{phi}, join, nil
		}))
}

// CombineVector builds a Vector from the Floats X, Y and Z.
func CombineVector() *flowjit.Node {
	return flowjit.NewNode("CombineVector",
		[]flowjit.SocketInfo{
			flowjit.Socket("X", flowjit.Float),
			flowjit.Socket("Y", flowjit.Float),
			flowjit.Socket("Z", flowjit.Float),
		},
		[]flowjit.SocketInfo{flowjit.Socket("Vector", flowjit.Vector)},
		flowjit.ValueFunc(func(b *ir.Builder, in []ir.Value) ([]ir.Value, error) {
			return []ir.Value{b.Vector(in[0], in[1], in[2])}, nil
		}))
}

// SeparateVector splits a Vector into the Floats X, Y and Z.
func SeparateVector() *flowjit.Node {
	return flowjit.NewNode("SeparateVector",
		[]flowjit.SocketInfo{flowjit.Socket("Vector", flowjit.Vector)},
		[]flowjit.SocketInfo{
			flowjit.Socket("X", flowjit.Float),
			flowjit.Socket("Y", flowjit.Float),
			flowjit.Socket("Z", flowjit.Float),
		},
		flowjit.ValueFunc(func(b *ir.Builder, in []ir.Value) ([]ir.Value, error) {
			return []ir.Value{b.Extract(in[0], 0), b.Extract(in[0], 1), b.Extract(in[0], 2)}, nil
		}))
}
