package ir

// Optimization levels accepted by Optimize.
const (
	// OptNone leaves the function untouched.
	OptNone = 0
	// OptFold folds constant expressions.
	OptFold = 1
	// OptFull folds constants and removes dead code and unreachable blocks.
	OptFull = 2
)

// Optimize rewrites fn in place. It must only be called on a verified function.
func Optimize(fn *Function, level int) {
	if level <= OptNone {
		return
	}
	foldConstants(fn)
	if level >= OptFull {
		removeUnreachable(fn)
		eliminateDeadCode(fn)
	}
}

// foldConstants evaluates instructions whose operands are all constants and
// turns them into constants. Selects and conditional branches on a constant
// condition are simplified. Integer division by zero is left alone so that it
// still traps at run time.
func foldConstants(fn *Function) {
	replace := make(map[Value]Value)
	resolve := func(v Value) Value {
		for {
			r, ok := replace[v]
			if !ok {
				return v
			}
			v = r
		}
	}

	for _, b := range fn.blocks {
		for _, in := range b.instrs {
			for i, a := range in.args {
				in.args[i] = resolve(a)
			}
			switch in.op {
			case OpSelect:
				if c, ok := constOf(in.args[0]); ok {
					if c.(bool) {
						replace[in] = in.args[1]
					} else {
						replace[in] = in.args[2]
					}
				}
				continue
			case OpCondBr:
				if c, ok := constOf(in.args[0]); ok {
					target := in.targets[1]
					if c.(bool) {
						target = in.targets[0]
					}
					dropped := in.targets[0]
					if c.(bool) {
						dropped = in.targets[1]
					}
					if dropped != target {
						removeIncoming(dropped, b)
					}
					in.op = OpBr
					in.args = nil
					in.targets = []*Block{target}
				}
				continue
			}
			if !foldable(in.op) {
				continue
			}
			consts := make([]any, len(in.args))
			all := true
			for i, a := range in.args {
				c, ok := constOf(a)
				if !ok {
					all = false
					break
				}
				consts[i] = c
			}
			if !all {
				continue
			}
			if in.op == OpDiv && isInt(in.typ) && consts[1].(int64) == 0 {
				continue
			}
			in.konst = evalPure(in, consts)
			in.op = OpConst
			in.args = nil
		}
	}

	if len(replace) == 0 {
		return
	}
	for _, b := range fn.blocks {
		for _, in := range b.instrs {
			for i, a := range in.args {
				in.args[i] = resolve(a)
			}
		}
	}
}

func foldable(op Op) bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpNeg, OpCmp, OpAnd, OpOr, OpNot, OpVector, OpExtract:
		return true
	}
	return false
}

func constOf(v Value) (any, bool) {
	in, ok := v.(*Instr)
	if !ok || in.op != OpConst {
		return nil, false
	}
	return in.konst, true
}

// removeIncoming drops phi entries of blk that come from pred.
func removeIncoming(blk, pred *Block) {
	for _, in := range blk.instrs {
		if in.op != OpPhi {
			break
		}
		for i := 0; i < len(in.incoming); i++ {
			if in.incoming[i] == pred {
				in.incoming = append(in.incoming[:i], in.incoming[i+1:]...)
				in.args = append(in.args[:i], in.args[i+1:]...)
				i--
			}
		}
	}
}

// removeUnreachable deletes blocks that cannot be reached from the entry.
func removeUnreachable(fn *Function) {
	reachable := map[*Block]bool{fn.Entry(): true}
	queue := []*Block{fn.Entry()}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		for _, s := range b.Successors() {
			if !reachable[s] {
				reachable[s] = true
				queue = append(queue, s)
			}
		}
	}

	kept := fn.blocks[:0]
	var removed []*Block
	for _, b := range fn.blocks {
		if reachable[b] {
			kept = append(kept, b)
		} else {
			removed = append(removed, b)
		}
	}
	fn.blocks = kept
	for _, dead := range removed {
		for _, b := range fn.blocks {
			removeIncoming(b, dead)
		}
	}
}

// eliminateDeadCode removes side-effect free instructions whose results are
// never used, until nothing changes.
func eliminateDeadCode(fn *Function) {
	for {
		used := make(map[*Instr]bool)
		for _, b := range fn.blocks {
			for _, in := range b.instrs {
				for _, a := range in.args {
					if def, ok := a.(*Instr); ok {
						used[def] = true
					}
				}
			}
		}
		changed := false
		for _, b := range fn.blocks {
			kept := b.instrs[:0]
			for _, in := range b.instrs {
				if used[in] || in.op.hasSideEffects() {
					kept = append(kept, in)
					continue
				}
				changed = true
			}
			b.instrs = kept
		}
		if !changed {
			return
		}
	}
}
