package ir

// Builder emits instructions at an insertion point (the end of a block).
//
// The Builder does not type-check: malformed code is reported by Verify when
// the function is finalized. It only rejects construction that has no
// meaningful representation at all, such as a nil operand.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	fn     *Function
	block  *Block
	origin string
}

// NewBuilder returns a builder positioned at the end of fn's entry block.
func NewBuilder(fn *Function) *Builder {
	return &Builder{fn: fn, block: fn.Entry()}
}

// Function returns the function being built.
func (b *Builder) Function() *Function { return b.fn }

// InsertBlock returns the block new instructions are appended to.
func (b *Builder) InsertBlock() *Block { return b.block }

// SetInsertPoint moves emission to the end of blk.
func (b *Builder) SetInsertPoint(blk *Block) {
	if blk == nil || blk.fn != b.fn {
		panic("ir: insert point must be a block of the builder's function")
	}
	b.block = blk
}

// NewBlock creates a block in the builder's function without moving the insertion point.
func (b *Builder) NewBlock(name string) *Block {
	return b.fn.NewBlock(name)
}

// SetOrigin labels subsequently emitted instructions. The label shows up in
// dumps and verification errors.
func (b *Builder) SetOrigin(origin string) { b.origin = origin }

// Origin returns the current origin label.
func (b *Builder) Origin() string { return b.origin }

func (b *Builder) emit(in *Instr) *Instr {
	b.fn.mustBeOpen()
	for _, a := range in.args {
		if a == nil {
			panic("ir: nil operand to " + in.op.String())
		}
	}
	in.block = b.block
	in.origin = b.origin
	b.block.instrs = append(b.block.instrs, in)
	return in
}

// Const emits a constant of type t. v is given in boundary representation
// (int32 for i32, [3]float32 for <3 x f32>, ...); a mismatch panics.
func (b *Builder) Const(t Type, v any) Value {
	return b.emit(&Instr{op: OpConst, typ: t, konst: canonicalConst(t, v)})
}

// Int emits an integer constant of type t, wrapped to its width.
func (b *Builder) Int(t Type, v int64) Value {
	it, ok := t.(IntType)
	if !ok {
		panic("ir: Int requires an integer type, got " + t.String())
	}
	return b.emit(&Instr{op: OpConst, typ: t, konst: wrapInt(it.Bits, v)})
}

// Int32 emits an i32 constant.
func (b *Builder) Int32(v int32) Value { return b.Int(Int32, int64(v)) }

// Float emits a float constant of type t, rounded to its width.
func (b *Builder) Float(t Type, v float64) Value {
	ft, ok := t.(FloatType)
	if !ok {
		panic("ir: Float requires a float type, got " + t.String())
	}
	return b.emit(&Instr{op: OpConst, typ: t, konst: roundFloat(ft.Bits, v)})
}

// Float32 emits an f32 constant.
func (b *Builder) Float32(v float32) Value { return b.Float(Float32, float64(v)) }

// Bool emits a boolean constant.
func (b *Builder) Bool(v bool) Value {
	return b.emit(&Instr{op: OpConst, typ: Bool, konst: v})
}

func (b *Builder) binary(op Op, x, y Value) Value {
	var t Type
	if x != nil {
		t = x.Type()
	}
	return b.emit(&Instr{op: op, typ: t, args: []Value{x, y}})
}

// Add emits x + y. Integer arithmetic wraps; vectors add lane-wise.
func (b *Builder) Add(x, y Value) Value { return b.binary(OpAdd, x, y) }

// Sub emits x - y.
func (b *Builder) Sub(x, y Value) Value { return b.binary(OpSub, x, y) }

// Mul emits x * y.
func (b *Builder) Mul(x, y Value) Value { return b.binary(OpMul, x, y) }

// Div emits x / y. Integer division by zero traps at run time.
func (b *Builder) Div(x, y Value) Value { return b.binary(OpDiv, x, y) }

// Neg emits -x.
func (b *Builder) Neg(x Value) Value {
	var t Type
	if x != nil {
		t = x.Type()
	}
	return b.emit(&Instr{op: OpNeg, typ: t, args: []Value{x}})
}

// Cmp emits a comparison yielding a bool.
func (b *Builder) Cmp(p Predicate, x, y Value) Value {
	return b.emit(&Instr{op: OpCmp, typ: Bool, pred: p, args: []Value{x, y}})
}

// And emits x && y.
func (b *Builder) And(x, y Value) Value {
	return b.emit(&Instr{op: OpAnd, typ: Bool, args: []Value{x, y}})
}

// Or emits x || y.
func (b *Builder) Or(x, y Value) Value {
	return b.emit(&Instr{op: OpOr, typ: Bool, args: []Value{x, y}})
}

// Not emits !x.
func (b *Builder) Not(x Value) Value {
	return b.emit(&Instr{op: OpNot, typ: Bool, args: []Value{x}})
}

// Select emits cond ? x : y without branching.
func (b *Builder) Select(cond, x, y Value) Value {
	var t Type
	if x != nil {
		t = x.Type()
	}
	return b.emit(&Instr{op: OpSelect, typ: t, args: []Value{cond, x, y}})
}

// Vector builds a vector from f32 lanes.
func (b *Builder) Vector(lanes ...Value) Value {
	return b.emit(&Instr{op: OpVector, typ: VectorType{Len: len(lanes)}, args: lanes})
}

// Extract reads one lane of a vector.
func (b *Builder) Extract(v Value, lane int) Value {
	return b.emit(&Instr{op: OpExtract, typ: Float32, lane: lane, args: []Value{v}})
}

// Load reads the current value of a cell at call time.
func (b *Builder) Load(c *Cell) Value {
	if c == nil {
		panic("ir: load from nil cell")
	}
	return b.emit(&Instr{op: OpLoad, typ: c.typ, cell: c})
}

// Store writes v into a cell at call time.
func (b *Builder) Store(c *Cell, v Value) {
	if c == nil {
		panic("ir: store to nil cell")
	}
	b.emit(&Instr{op: OpStore, cell: c, args: []Value{v}})
}

// Phi emits a phi node of type t. Incoming values are added with AddIncoming.
// Phis must be the first instructions of their block.
func (b *Builder) Phi(t Type) *Instr {
	return b.emit(&Instr{op: OpPhi, typ: t})
}

// Br emits an unconditional branch.
func (b *Builder) Br(target *Block) {
	b.emit(&Instr{op: OpBr, targets: []*Block{target}})
}

// CondBr emits a two-way branch on a bool.
func (b *Builder) CondBr(cond Value, then, els *Block) {
	b.emit(&Instr{op: OpCondBr, args: []Value{cond}, targets: []*Block{then, els}})
}

// Ret returns values from the function.
func (b *Builder) Ret(values ...Value) {
	b.emit(&Instr{op: OpRet, args: append([]Value(nil), values...)})
}
