package flowjit

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
)

// Callable is a compiled graph: a function whose parameters are the graph
// input sockets and whose results are the requested output sockets, both in
// declaration order.
//
// A Callable does not reference the Graph it was compiled from. It is safe
// to call concurrently. After Release every call fails with ErrReleased.
type Callable struct {
	name    string
	inputs  []Type
	outputs []Type
	exe     *ir.Executable
	key     string
	nodes   int
}

// Name returns the function name.
func (c *Callable) Name() string { return c.name }

// Inputs returns the parameter Types.
func (c *Callable) Inputs() []Type { return append([]Type(nil), c.inputs...) }

// Outputs returns the result Types.
func (c *Callable) Outputs() []Type { return append([]Type(nil), c.outputs...) }

// Key returns the code store key of the compiled graph.
func (c *Callable) Key() string { return c.key }

// RequiredNodes returns the number of nodes that were compiled.
func (c *Callable) RequiredNodes() int { return c.nodes }

// Entry returns the raw entry point. Arguments and results use the Go
// types of the socket representations (int32 for Integer, float32 for
// Float, [3]float32 for Vector, ir.Handle for Object, ...). The entry point
// panics on misuse; see Call for a checked variant.
func (c *Callable) Entry() ir.EntryPoint { return c.exe.Entry() }

// Signature returns the Go function type matching the Callable, e.g.
// func(int32, int32, int32) int32.
func (c *Callable) Signature() reflect.Type {
	in := make([]reflect.Type, len(c.inputs))
	for i, t := range c.inputs {
		in[i] = t.IR().GoType()
	}
	out := make([]reflect.Type, len(c.outputs))
	for i, t := range c.outputs {
		out[i] = t.IR().GoType()
	}
	return reflect.FuncOf(in, out, false)
}

// Call invokes the function after checking the arguments against the
// signature. Run-time traps such as integer division by zero are returned
// as *ir.TrapError.
func (c *Callable) Call(args ...any) (out []any, err error) {
	if c.exe.Released() {
		return nil, ErrReleased
	}
	if len(args) != len(c.inputs) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrSignatureMismatch, c.name, len(c.inputs), len(args))
	}
	for i, a := range args {
		if err := checkArg(c.inputs[i], a); err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", ErrSignatureMismatch, i, err)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case *ir.TrapError:
				out, err = nil, v
			case error:
				if !errors.Is(v, ErrReleased) {
					panic(r)
				}
				out, err = nil, v
			default:
				panic(r)
			}
		}
	}()
	return c.exe.Entry()(args), nil
}

// FunctionPointer binds fptr, a pointer to a func variable, to the compiled
// code:
//
//	var diamond func(int32, int32, int32) int32
//	if err := c.FunctionPointer(&diamond); err != nil { ... }
//	sum := diamond(10, 25, 100)
//
// The func type must match Signature exactly.
func (c *Callable) FunctionPointer(fptr any) error {
	pv := reflect.ValueOf(fptr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() || pv.Elem().Kind() != reflect.Func {
		return fmt.Errorf("%w: need a pointer to a func variable, got %T", ErrSignatureMismatch, fptr)
	}
	if c.exe.Released() {
		return ErrReleased
	}
	ft := pv.Elem().Type()
	if want := c.Signature(); ft != want {
		return fmt.Errorf("%w: %s is %s, got %s", ErrSignatureMismatch, c.name, want, ft)
	}

	entry := c.exe.Entry()
	pv.Elem().Set(reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		in := make([]any, len(args))
		for i, a := range args {
			in[i] = a.Interface()
		}
		out := entry(in)
		res := make([]reflect.Value, len(out))
		for i, v := range out {
			res[i] = reflect.ValueOf(v)
		}
		return res
	}))
	return nil
}

// PrintCode returns the textual dump of the generated code.
func (c *Callable) PrintCode() string { return c.exe.Code() }

// Release tears down the compiled code. Function pointers obtained earlier
// panic with ErrReleased when called.
func (c *Callable) Release() { c.exe.Release() }

// Released reports whether Release was called.
func (c *Callable) Released() bool { return c.exe.Released() }

func checkArg(t Type, arg any) error {
	want := t.IR().GoType()
	if got := reflect.TypeOf(arg); got != want {
		return fmt.Errorf("%s wants %s, got %T", t.Name(), want, arg)
	}
	if lt, ok := t.IR().(ir.ListType); ok {
		l := arg.(*ir.List)
		if l == nil || l.Elem() != lt.Elem {
			return fmt.Errorf("%s wants a list of %s", t.Name(), lt.Elem)
		}
	}
	return nil
}
