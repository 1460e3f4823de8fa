// Package ir is the low-level code generation backend used by flowjit.
//
// A Function is a list of basic blocks holding SSA instructions. Code is
// emitted through a Builder, whose insertion point is the emission context
// that node strategies share. Finalize verifies a Function, optimizes it and
// materializes it into an Executable with a callable entry point.
package ir

import "fmt"

// Value is an SSA value: a function parameter or the result of an instruction.
type Value interface {
	// Type returns the value's type.
	Type() Type

	isValue()
}

// Op identifies an instruction.
type Op uint8

// Instruction opcodes.
const (
	OpConst Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpCmp
	OpAnd
	OpOr
	OpNot
	OpSelect
	OpVector
	OpExtract
	OpLoad
	OpStore
	OpPhi
	OpBr
	OpCondBr
	OpRet
)

var opNames = [...]string{
	OpConst:   "const",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpDiv:     "div",
	OpNeg:     "neg",
	OpCmp:     "cmp",
	OpAnd:     "and",
	OpOr:      "or",
	OpNot:     "not",
	OpSelect:  "select",
	OpVector:  "vector",
	OpExtract: "extract",
	OpLoad:    "load",
	OpStore:   "store",
	OpPhi:     "phi",
	OpBr:      "br",
	OpCondBr:  "condbr",
	OpRet:     "ret",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", op)
}

// IsTerminator reports whether op ends a basic block.
func (op Op) IsTerminator() bool {
	return op == OpBr || op == OpCondBr || op == OpRet
}

// hasSideEffects reports whether an instruction must be kept even if its
// result is unused.
func (op Op) hasSideEffects() bool {
	return op == OpStore || op.IsTerminator()
}

// Predicate is a comparison predicate for OpCmp.
type Predicate uint8

// Comparison predicates.
const (
	Eq Predicate = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

var predicateNames = [...]string{Eq: "eq", Ne: "ne", Lt: "lt", Le: "le", Gt: "gt", Ge: "ge"}

func (p Predicate) String() string {
	if int(p) < len(predicateNames) {
		return predicateNames[p]
	}
	return fmt.Sprintf("pred(%d)", p)
}

// Param is a formal parameter of a Function.
type Param struct {
	fn    *Function
	typ   Type
	index int
}

// Type implements Value.
func (p *Param) Type() Type { return p.typ }

// Index returns the parameter position.
func (p *Param) Index() int { return p.index }

func (*Param) isValue() {}

// Instr is one instruction. Instructions that produce a value implement Value.
type Instr struct {
	op       Op
	typ      Type
	args     []Value
	konst    any
	pred     Predicate
	lane     int
	cell     *Cell
	targets  []*Block
	incoming []*Block
	block    *Block
	origin   string
}

// Type implements Value. It is nil for instructions without a result.
func (i *Instr) Type() Type { return i.typ }

// Op returns the opcode.
func (i *Instr) Op() Op { return i.op }

// Operands returns the instruction's value operands.
func (i *Instr) Operands() []Value { return i.args }

// Block returns the block containing the instruction.
func (i *Instr) Block() *Block { return i.block }

// Origin returns the label that was current on the Builder when the
// instruction was emitted (flowjit sets it to the emitting node).
func (i *Instr) Origin() string { return i.origin }

// AddIncoming adds an incoming (value, predecessor) pair to a phi.
// It panics if i is not a phi.
func (i *Instr) AddIncoming(v Value, from *Block) {
	if i.op != OpPhi {
		panic("ir: AddIncoming on non-phi instruction")
	}
	i.args = append(i.args, v)
	i.incoming = append(i.incoming, from)
}

func (*Instr) isValue() {}

// Block is a basic block: a straight-line instruction sequence ending with a terminator.
type Block struct {
	fn     *Function
	name   string
	instrs []*Instr
}

// Name returns the block label.
func (b *Block) Name() string { return b.name }

// Function returns the function owning the block.
func (b *Block) Function() *Function { return b.fn }

// Instrs returns the block's instructions.
func (b *Block) Instrs() []*Instr { return b.instrs }

// Terminator returns the block's last instruction if it is a terminator.
func (b *Block) Terminator() *Instr {
	if len(b.instrs) == 0 {
		return nil
	}
	last := b.instrs[len(b.instrs)-1]
	if !last.op.IsTerminator() {
		return nil
	}
	return last
}

// Successors returns the blocks the terminator may branch to.
func (b *Block) Successors() []*Block {
	if t := b.Terminator(); t != nil {
		return t.targets
	}
	return nil
}

// Function is a unit of code with typed parameters and results.
type Function struct {
	name    string
	params  []*Param
	results []Type
	blocks  []*Block
	labels  map[string]bool
	sealed  bool
}

// NewFunction creates a function with an empty "entry" block.
func NewFunction(name string, params []Type, results []Type) *Function {
	fn := &Function{
		name:    name,
		results: append([]Type(nil), results...),
		labels:  make(map[string]bool),
	}
	for i, t := range params {
		fn.params = append(fn.params, &Param{fn: fn, typ: t, index: i})
	}
	fn.NewBlock("entry")
	return fn
}

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// Param returns the i-th parameter.
func (f *Function) Param(i int) Value { return f.params[i] }

// Params returns the parameter types.
func (f *Function) Params() []Type {
	types := make([]Type, len(f.params))
	for i, p := range f.params {
		types[i] = p.typ
	}
	return types
}

// Results returns the result types.
func (f *Function) Results() []Type { return f.results }

// Entry returns the entry block.
func (f *Function) Entry() *Block { return f.blocks[0] }

// Blocks returns all blocks in creation order.
func (f *Function) Blocks() []*Block { return f.blocks }

// NewBlock appends a new, empty block. Labels are made unique by suffixing
// a counter, so the same strategy can run many times in one function.
func (f *Function) NewBlock(name string) *Block {
	f.mustBeOpen()
	if name == "" {
		name = "bb"
	}
	label := name
	for n := 1; f.labels[label]; n++ {
		label = fmt.Sprintf("%s.%d", name, n)
	}
	f.labels[label] = true
	b := &Block{fn: f, name: label}
	f.blocks = append(f.blocks, b)
	return b
}

func (f *Function) mustBeOpen() {
	if f.sealed {
		panic("ir: function " + f.name + " is finalized")
	}
}

// predecessors maps each block to the blocks branching to it, in block order.
func (f *Function) predecessors() map[*Block][]*Block {
	preds := make(map[*Block][]*Block, len(f.blocks))
	for _, b := range f.blocks {
		for _, s := range b.Successors() {
			if !containsBlock(preds[s], b) {
				preds[s] = append(preds[s], b)
			}
		}
	}
	return preds
}

func (f *Function) ownsBlock(b *Block) bool {
	if b == nil || b.fn != f {
		return false
	}
	return containsBlock(f.blocks, b)
}

func containsBlock(list []*Block, b *Block) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}
