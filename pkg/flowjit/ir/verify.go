package ir

import (
	"errors"
	"fmt"
)

// ErrVerification is the sentinel wrapped by every VerifyError.
var ErrVerification = errors.New("verification failed")

// VerifyError describes the first malformed instruction found by Verify.
type VerifyError struct {
	// Function is the function name.
	Function string
	// Block is the label of the offending block.
	Block string
	// Index is the instruction index within the block, or -1 for block-level problems.
	Index int
	// Op is the offending instruction's opcode (meaningless when Index is -1).
	Op Op
	// Origin is the origin label of the offending instruction, if any.
	Origin string
	// Msg describes the problem.
	Msg string
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	where := fmt.Sprintf("%s/%s", e.Function, e.Block)
	if e.Index >= 0 {
		where = fmt.Sprintf("%s #%d (%s)", where, e.Index, e.Op)
	}
	if e.Origin != "" {
		where += " from " + e.Origin
	}
	return fmt.Sprintf("verify %s: %s", where, e.Msg)
}

// Unwrap returns ErrVerification for errors.Is support.
func (e *VerifyError) Unwrap() error {
	return ErrVerification
}

// Verify checks that fn is well formed: every block ends in exactly one
// terminator, operand types agree, phis match their predecessors, branch
// targets belong to fn, returns match the signature and every use is
// dominated by its definition.
func Verify(fn *Function) error {
	v := &verifier{fn: fn, preds: fn.predecessors()}
	return v.run()
}

type verifier struct {
	fn    *Function
	preds map[*Block][]*Block
	doms  map[*Block]map[*Block]bool
	pos   map[*Instr]int
}

func (v *verifier) blockErr(b *Block, format string, args ...any) error {
	return &VerifyError{Function: v.fn.name, Block: b.name, Index: -1, Msg: fmt.Sprintf(format, args...)}
}

func (v *verifier) instrErr(in *Instr, format string, args ...any) error {
	return &VerifyError{
		Function: v.fn.name,
		Block:    in.block.name,
		Index:    v.pos[in],
		Op:       in.op,
		Origin:   in.origin,
		Msg:      fmt.Sprintf(format, args...),
	}
}

func (v *verifier) run() error {
	if len(v.fn.blocks) == 0 {
		return &VerifyError{Function: v.fn.name, Index: -1, Msg: "function has no blocks"}
	}
	for i, t := range v.fn.Params() {
		if !Valid(t) {
			return &VerifyError{Function: v.fn.name, Block: v.fn.Entry().name, Index: -1, Msg: fmt.Sprintf("parameter %d has invalid type", i)}
		}
	}
	for i, t := range v.fn.results {
		if !Valid(t) {
			return &VerifyError{Function: v.fn.name, Block: v.fn.Entry().name, Index: -1, Msg: fmt.Sprintf("result %d has invalid type", i)}
		}
	}

	v.pos = make(map[*Instr]int)
	for _, b := range v.fn.blocks {
		for i, in := range b.instrs {
			v.pos[in] = i
		}
	}

	for _, b := range v.fn.blocks {
		if err := v.checkShape(b); err != nil {
			return err
		}
	}
	for _, b := range v.fn.blocks {
		for _, in := range b.instrs {
			if err := v.checkInstr(in); err != nil {
				return err
			}
		}
	}

	v.doms = dominators(v.fn, v.preds)
	for _, b := range v.fn.blocks {
		if _, reachable := v.doms[b]; !reachable {
			continue
		}
		for _, in := range b.instrs {
			if err := v.checkDominance(in); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *verifier) checkShape(b *Block) error {
	if len(b.instrs) == 0 {
		return v.blockErr(b, "empty block")
	}
	inPhis := true
	for i, in := range b.instrs {
		last := i == len(b.instrs)-1
		if in.op.IsTerminator() && !last {
			return v.instrErr(in, "terminator in the middle of the block")
		}
		if last && !in.op.IsTerminator() {
			return v.instrErr(in, "block does not end with a terminator")
		}
		if in.op == OpPhi {
			if !inPhis {
				return v.instrErr(in, "phi after non-phi instruction")
			}
		} else {
			inPhis = false
		}
	}
	return nil
}

func (v *verifier) owns(val Value) bool {
	switch x := val.(type) {
	case *Param:
		return x.fn == v.fn
	case *Instr:
		if x.block == nil || !v.fn.ownsBlock(x.block) {
			return false
		}
		_, ok := v.pos[x]
		return ok && x.typ != nil
	}
	return false
}

func (v *verifier) checkInstr(in *Instr) error {
	for i, a := range in.args {
		if !v.owns(a) {
			return v.instrErr(in, "operand %d is not a value of this function", i)
		}
	}
	args := in.args
	switch in.op {
	case OpConst:
		if !Valid(in.typ) {
			return v.instrErr(in, "constant of invalid type")
		}
	case OpAdd, OpSub, OpMul, OpDiv:
		if len(args) != 2 {
			return v.instrErr(in, "expects 2 operands, got %d", len(args))
		}
		if args[0].Type() != args[1].Type() {
			return v.instrErr(in, "operand types differ: %s and %s", args[0].Type(), args[1].Type())
		}
		if !isNumeric(args[0].Type()) {
			return v.instrErr(in, "operands must be numeric, got %s", args[0].Type())
		}
	case OpNeg:
		if len(args) != 1 || !isNumeric(args[0].Type()) {
			return v.instrErr(in, "expects 1 numeric operand")
		}
	case OpCmp:
		if len(args) != 2 {
			return v.instrErr(in, "expects 2 operands, got %d", len(args))
		}
		if args[0].Type() != args[1].Type() {
			return v.instrErr(in, "operand types differ: %s and %s", args[0].Type(), args[1].Type())
		}
		if !isInt(args[0].Type()) && !isFloat(args[0].Type()) {
			return v.instrErr(in, "operands must be integer or float, got %s", args[0].Type())
		}
	case OpAnd, OpOr:
		if len(args) != 2 || args[0].Type() != Bool || args[1].Type() != Bool {
			return v.instrErr(in, "expects 2 bool operands")
		}
	case OpNot:
		if len(args) != 1 || args[0].Type() != Bool {
			return v.instrErr(in, "expects 1 bool operand")
		}
	case OpSelect:
		if len(args) != 3 {
			return v.instrErr(in, "expects 3 operands, got %d", len(args))
		}
		if args[0].Type() != Bool {
			return v.instrErr(in, "condition must be bool, got %s", args[0].Type())
		}
		if args[1].Type() != args[2].Type() {
			return v.instrErr(in, "operand types differ: %s and %s", args[1].Type(), args[2].Type())
		}
	case OpVector:
		if len(args) == 0 {
			return v.instrErr(in, "vector needs at least one lane")
		}
		for i, a := range args {
			if a.Type() != Float32 {
				return v.instrErr(in, "lane %d must be f32, got %s", i, a.Type())
			}
		}
	case OpExtract:
		if len(args) != 1 {
			return v.instrErr(in, "expects 1 operand")
		}
		vt, ok := args[0].Type().(VectorType)
		if !ok {
			return v.instrErr(in, "operand must be a vector, got %s", args[0].Type())
		}
		if in.lane < 0 || in.lane >= vt.Len {
			return v.instrErr(in, "lane %d out of range for %s", in.lane, vt)
		}
	case OpLoad:
		if !Valid(in.cell.typ) {
			return v.instrErr(in, "cell has invalid type")
		}
	case OpStore:
		if len(args) != 1 || args[0].Type() != in.cell.typ {
			return v.instrErr(in, "stored value must be %s", in.cell.typ)
		}
	case OpPhi:
		return v.checkPhi(in)
	case OpBr:
		if len(in.targets) != 1 || !v.fn.ownsBlock(in.targets[0]) {
			return v.instrErr(in, "branch target is not a block of this function")
		}
	case OpCondBr:
		if len(args) != 1 || args[0].Type() != Bool {
			return v.instrErr(in, "condition must be bool")
		}
		for _, t := range in.targets {
			if !v.fn.ownsBlock(t) {
				return v.instrErr(in, "branch target is not a block of this function")
			}
		}
	case OpRet:
		if len(args) != len(v.fn.results) {
			return v.instrErr(in, "returns %d values, signature has %d", len(args), len(v.fn.results))
		}
		for i, a := range args {
			if a.Type() != v.fn.results[i] {
				return v.instrErr(in, "result %d is %s, signature says %s", i, a.Type(), v.fn.results[i])
			}
		}
	default:
		return v.instrErr(in, "unknown opcode")
	}
	return nil
}

func (v *verifier) checkPhi(in *Instr) error {
	preds := v.preds[in.block]
	if len(in.args) != len(preds) {
		return v.instrErr(in, "phi has %d incoming values, block has %d predecessors", len(in.args), len(preds))
	}
	seen := make(map[*Block]bool, len(preds))
	for i, from := range in.incoming {
		if !containsBlock(preds, from) {
			return v.instrErr(in, "incoming block %d is not a predecessor", i)
		}
		if seen[from] {
			return v.instrErr(in, "duplicate incoming block %s", from.name)
		}
		seen[from] = true
		if in.args[i].Type() != in.typ {
			return v.instrErr(in, "incoming value %d is %s, phi is %s", i, in.args[i].Type(), in.typ)
		}
	}
	return nil
}

// checkDominance verifies that every operand is available where it is used.
// A phi operand must be available at the end of its incoming block.
func (v *verifier) checkDominance(in *Instr) error {
	for i, a := range in.args {
		def, ok := a.(*Instr)
		if !ok {
			continue
		}
		useBlock := in.block
		if in.op == OpPhi {
			useBlock = in.incoming[i]
			if _, reachable := v.doms[useBlock]; !reachable || def.block == useBlock {
				continue
			}
		} else if def.block == useBlock {
			if v.pos[def] < v.pos[in] {
				continue
			}
			return v.instrErr(in, "operand %d is used before it is defined", i)
		}
		if !v.doms[useBlock][def.block] {
			return v.instrErr(in, "operand %d defined in %s does not dominate its use", i, def.block.name)
		}
	}
	return nil
}

// dominators computes, for each block reachable from the entry, the set of
// blocks dominating it. Unreachable blocks are absent from the result.
func dominators(fn *Function, preds map[*Block][]*Block) map[*Block]map[*Block]bool {
	entry := fn.Entry()
	reachable := []*Block{entry}
	seen := map[*Block]bool{entry: true}
	for i := 0; i < len(reachable); i++ {
		for _, s := range reachable[i].Successors() {
			if s != nil && !seen[s] {
				seen[s] = true
				reachable = append(reachable, s)
			}
		}
	}

	doms := make(map[*Block]map[*Block]bool, len(reachable))
	for _, b := range reachable {
		set := make(map[*Block]bool, len(reachable))
		if b == entry {
			set[entry] = true
		} else {
			for _, x := range reachable {
				set[x] = true
			}
		}
		doms[b] = set
	}

	for changed := true; changed; {
		changed = false
		for _, b := range reachable[1:] {
			var next map[*Block]bool
			for _, p := range preds[b] {
				pd, ok := doms[p]
				if !ok {
					continue
				}
				if next == nil {
					next = make(map[*Block]bool, len(pd))
					for x := range pd {
						next[x] = true
					}
					continue
				}
				for x := range next {
					if !pd[x] {
						delete(next, x)
					}
				}
			}
			if next == nil {
				next = make(map[*Block]bool)
			}
			next[b] = true
			if len(next) != len(doms[b]) {
				doms[b] = next
				changed = true
			}
		}
	}
	return doms
}
