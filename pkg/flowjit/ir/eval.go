package ir

import "fmt"

// TrapError is the panic value raised when compiled code hits a run-time
// fault such as integer division by zero.
type TrapError struct {
	Function string
	Origin   string
	Msg      string
}

// Error implements the error interface.
func (e *TrapError) Error() string {
	if e.Origin != "" {
		return fmt.Sprintf("trap in %s (%s): %s", e.Function, e.Origin, e.Msg)
	}
	return fmt.Sprintf("trap in %s: %s", e.Function, e.Msg)
}

func arithInt(op Op, bits int, x, y int64) int64 {
	var r int64
	switch op {
	case OpAdd:
		r = x + y
	case OpSub:
		r = x - y
	case OpMul:
		r = x * y
	case OpDiv:
		r = x / y
	}
	return wrapInt(bits, r)
}

func arithFloat(op Op, bits int, x, y float64) float64 {
	var r float64
	switch op {
	case OpAdd:
		r = x + y
	case OpSub:
		r = x - y
	case OpMul:
		r = x * y
	case OpDiv:
		r = x / y
	}
	return roundFloat(bits, r)
}

func arithVector(op Op, x, y []float32) []float32 {
	out := make([]float32, len(x))
	for i := range out {
		switch op {
		case OpAdd:
			out[i] = x[i] + y[i]
		case OpSub:
			out[i] = x[i] - y[i]
		case OpMul:
			out[i] = x[i] * y[i]
		case OpDiv:
			out[i] = x[i] / y[i]
		}
	}
	return out
}

func compareInt(p Predicate, x, y int64) bool {
	switch p {
	case Eq:
		return x == y
	case Ne:
		return x != y
	case Lt:
		return x < y
	case Le:
		return x <= y
	case Gt:
		return x > y
	case Ge:
		return x >= y
	}
	return false
}

func compareFloat(p Predicate, x, y float64) bool {
	switch p {
	case Eq:
		return x == y
	case Ne:
		return x != y
	case Lt:
		return x < y
	case Le:
		return x <= y
	case Gt:
		return x > y
	case Ge:
		return x >= y
	}
	return false
}

// evalPure computes a side-effect free instruction from canonical operand
// values. Integer division by zero panics with a TrapError.
func evalPure(in *Instr, a []any) any {
	switch in.op {
	case OpAdd, OpSub, OpMul, OpDiv:
		switch t := in.typ.(type) {
		case IntType:
			if in.op == OpDiv && a[1].(int64) == 0 {
				panic(&TrapError{Function: in.block.fn.name, Origin: in.origin, Msg: "integer division by zero"})
			}
			return arithInt(in.op, t.Bits, a[0].(int64), a[1].(int64))
		case FloatType:
			return arithFloat(in.op, t.Bits, a[0].(float64), a[1].(float64))
		case VectorType:
			return arithVector(in.op, a[0].([]float32), a[1].([]float32))
		}
	case OpNeg:
		switch t := in.typ.(type) {
		case IntType:
			return wrapInt(t.Bits, -a[0].(int64))
		case FloatType:
			return -a[0].(float64)
		case VectorType:
			src := a[0].([]float32)
			out := make([]float32, len(src))
			for i, x := range src {
				out[i] = -x
			}
			return out
		}
	case OpCmp:
		if isInt(in.args[0].Type()) {
			return compareInt(in.pred, a[0].(int64), a[1].(int64))
		}
		return compareFloat(in.pred, a[0].(float64), a[1].(float64))
	case OpAnd:
		return a[0].(bool) && a[1].(bool)
	case OpOr:
		return a[0].(bool) || a[1].(bool)
	case OpNot:
		return !a[0].(bool)
	case OpSelect:
		if a[0].(bool) {
			return a[1]
		}
		return a[2]
	case OpVector:
		out := make([]float32, len(a))
		for i, x := range a {
			out[i] = float32(x.(float64))
		}
		return out
	case OpExtract:
		return float64(a[0].([]float32)[in.lane])
	}
	panic("ir: cannot evaluate " + in.op.String())
}
