package ir

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrReleased is the panic value raised when a released Executable is called.
var ErrReleased = errors.New("function has been released")

// ErrFinalized indicates Finalize was called twice on the same Function.
var ErrFinalized = errors.New("function already finalized")

// EntryPoint is the raw invocable form of a finalized function. Arguments
// and results use the boundary representation of their Types (see Type.GoType).
// It panics on arity or type mismatch, on a TrapError, or after Release.
type EntryPoint func(args []any) []any

// Options configures Finalize.
type Options struct {
	// OptLevel is one of OptNone, OptFold, OptFull.
	OptLevel int
}

// Executable is a finalized function ready to be called.
//
// Executable is safe for concurrent calls: every call gets its own frame.
type Executable struct {
	name     string
	params   []Type
	results  []Type
	blocks   []execBlock
	nslots   int
	code     string
	frames   sync.Pool
	released atomic.Bool
}

type execBlock struct {
	steps []func(fr []any)
	term  func(fr []any) int
	phis  map[int][]move
	ret   []int
}

type move struct {
	dst, src int
}

// Finalize verifies fn, optimizes it at the requested level, verifies the
// result again and materializes it. fn must not be modified afterwards.
func Finalize(fn *Function, opts Options) (*Executable, error) {
	if fn.sealed {
		return nil, ErrFinalized
	}
	if err := Verify(fn); err != nil {
		return nil, err
	}
	Optimize(fn, opts.OptLevel)
	if err := Verify(fn); err != nil {
		return nil, fmt.Errorf("after optimization: %w", err)
	}
	fn.sealed = true
	return materialize(fn, Print(fn)), nil
}

// Name returns the function name.
func (e *Executable) Name() string { return e.name }

// Params returns the parameter types.
func (e *Executable) Params() []Type { return e.params }

// Results returns the result types.
func (e *Executable) Results() []Type { return e.results }

// Code returns the textual dump of the finalized code.
func (e *Executable) Code() string { return e.code }

// Entry returns the raw entry point.
func (e *Executable) Entry() EntryPoint { return e.call }

// Release tears the executable down. Later calls panic with ErrReleased.
func (e *Executable) Release() { e.released.Store(true) }

// Released reports whether Release was called.
func (e *Executable) Released() bool { return e.released.Load() }

func (e *Executable) call(args []any) []any {
	if e.released.Load() {
		panic(ErrReleased)
	}
	if len(args) != len(e.params) {
		panic(fmt.Sprintf("ir: %s expects %d arguments, got %d", e.name, len(e.params), len(args)))
	}

	frp := e.frames.Get().(*[]any)
	fr := *frp
	defer func() {
		clear(fr)
		e.frames.Put(frp)
	}()

	for i, t := range e.params {
		cv, err := canonical(t, args[i])
		if err != nil {
			panic(fmt.Sprintf("ir: %s argument %d: %v", e.name, i, err))
		}
		fr[i] = cv
	}

	cur, prev := 0, -1
	for {
		blk := &e.blocks[cur]
		if moves := blk.phis[prev]; len(moves) > 0 {
			tmp := make([]any, len(moves))
			for i, m := range moves {
				tmp[i] = fr[m.src]
			}
			for i, m := range moves {
				fr[m.dst] = tmp[i]
			}
		}
		for _, step := range blk.steps {
			step(fr)
		}
		next := blk.term(fr)
		if next < 0 {
			out := make([]any, len(blk.ret))
			for i, s := range blk.ret {
				out[i] = boundary(e.results[i], fr[s])
			}
			return out
		}
		prev, cur = cur, next
	}
}

// materialize turns a verified function into closures over a slot frame.
// Parameters occupy the first slots, then every value-producing instruction
// in block order.
func materialize(fn *Function, code string) *Executable {
	slot := make(map[Value]int)
	for i, p := range fn.params {
		slot[p] = i
	}
	n := len(fn.params)
	for _, b := range fn.blocks {
		for _, in := range b.instrs {
			if in.typ != nil {
				slot[in] = n
				n++
			}
		}
	}

	index := make(map[*Block]int, len(fn.blocks))
	for i, b := range fn.blocks {
		index[b] = i
	}

	e := &Executable{
		name:    fn.name,
		params:  fn.Params(),
		results: fn.results,
		blocks:  make([]execBlock, len(fn.blocks)),
		nslots:  n,
		code:    code,
	}
	e.frames.New = func() any {
		fr := make([]any, e.nslots)
		return &fr
	}

	for bi, b := range fn.blocks {
		eb := &e.blocks[bi]
		eb.phis = make(map[int][]move)
		for _, in := range b.instrs {
			switch {
			case in.op == OpPhi:
				for i, from := range in.incoming {
					p := index[from]
					eb.phis[p] = append(eb.phis[p], move{dst: slot[in], src: slot[in.args[i]]})
				}
			case in.op.IsTerminator():
				eb.term, eb.ret = compileTerminator(in, slot, index)
			default:
				eb.steps = append(eb.steps, compileStep(in, slot))
			}
		}
	}
	return e
}

func compileTerminator(in *Instr, slot map[Value]int, index map[*Block]int) (func([]any) int, []int) {
	switch in.op {
	case OpBr:
		next := index[in.targets[0]]
		return func([]any) int { return next }, nil
	case OpCondBr:
		c, then, els := slot[in.args[0]], index[in.targets[0]], index[in.targets[1]]
		return func(fr []any) int {
			if fr[c].(bool) {
				return then
			}
			return els
		}, nil
	}
	ret := make([]int, len(in.args))
	for i, a := range in.args {
		ret[i] = slot[a]
	}
	return func([]any) int { return -1 }, ret
}

func compileStep(in *Instr, slot map[Value]int) func(fr []any) {
	d := slot[in]
	src := make([]int, len(in.args))
	for i, a := range in.args {
		src[i] = slot[a]
	}

	switch in.op {
	case OpConst:
		k := in.konst
		return func(fr []any) { fr[d] = k }
	case OpLoad:
		c := in.cell
		return func(fr []any) { fr[d] = c.load() }
	case OpStore:
		c, x := in.cell, src[0]
		return func(fr []any) { c.store(fr[x]) }
	case OpAdd, OpSub, OpMul:
		x, y := src[0], src[1]
		switch t := in.typ.(type) {
		case IntType:
			op, bits := in.op, t.Bits
			return func(fr []any) { fr[d] = arithInt(op, bits, fr[x].(int64), fr[y].(int64)) }
		case FloatType:
			op, bits := in.op, t.Bits
			return func(fr []any) { fr[d] = arithFloat(op, bits, fr[x].(float64), fr[y].(float64)) }
		}
	}

	return func(fr []any) {
		args := make([]any, len(src))
		for i, s := range src {
			args[i] = fr[s]
		}
		fr[d] = evalPure(in, args)
	}
}
