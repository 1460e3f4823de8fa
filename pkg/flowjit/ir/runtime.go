package ir

import (
	"fmt"
	"math"
	"reflect"
	"sync/atomic"
)

// Handle is an opaque native handle: a reference to a host object that is
// passed through compiled code untouched.
//
// Two Handles are equal exactly when they refer to the same object (pointer
// equality). Passing a Handle through a function never transfers ownership;
// the host keeps the referenced object alive.
type Handle struct {
	ptr any
}

// NewHandle wraps a pointer. It panics if p is neither nil nor a pointer.
func NewHandle(p any) Handle {
	if p == nil {
		return Handle{}
	}
	if reflect.TypeOf(p).Kind() != reflect.Pointer {
		panic(fmt.Sprintf("ir: handle requires a pointer, got %T", p))
	}
	return Handle{ptr: p}
}

// Pointer returns the wrapped pointer, or nil.
func (h Handle) Pointer() any { return h.ptr }

// IsNil reports whether the handle refers to nothing.
func (h Handle) IsNil() bool {
	if h.ptr == nil {
		return true
	}
	return reflect.ValueOf(h.ptr).IsNil()
}

// List is an immutable list of values of one element Type.
// Elements are stored in their call-boundary representation.
type List struct {
	elem  Type
	items []any
}

// NewList creates a list with the given element type and items.
// It panics if an item does not match elem.
func NewList(elem Type, items ...any) *List {
	if !Valid(elem) {
		panic("ir: invalid list element type")
	}
	stored := make([]any, len(items))
	for i, item := range items {
		if _, err := canonical(elem, item); err != nil {
			panic(fmt.Sprintf("ir: list item %d: %v", i, err))
		}
		stored[i] = item
	}
	return &List{elem: elem, items: stored}
}

// Elem returns the element type.
func (l *List) Elem() Type { return l.elem }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// At returns the i-th element.
func (l *List) At(i int) any { return l.items[i] }

// Cell is a heap slot owned by the host and read by compiled code at call
// time. Cells replace raw addresses: a node that needs to observe a host
// value captures the Cell, which lives as long as any function referencing it.
//
// Cell is safe for concurrent use.
type Cell struct {
	typ Type
	v   atomic.Pointer[cellBox]
}

type cellBox struct {
	v any
}

// NewCell creates a cell of type t holding initial (boundary representation).
// It panics if initial does not match t.
func NewCell(t Type, initial any) *Cell {
	c := &Cell{typ: t}
	if err := c.Set(initial); err != nil {
		panic("ir: " + err.Error())
	}
	return c
}

// Type returns the cell's value type.
func (c *Cell) Type() Type { return c.typ }

// Set replaces the cell's value.
func (c *Cell) Set(v any) error {
	cv, err := canonical(c.typ, v)
	if err != nil {
		return fmt.Errorf("cell: %w", err)
	}
	c.v.Store(&cellBox{v: cv})
	return nil
}

// Get returns the cell's value in boundary representation.
func (c *Cell) Get() any {
	return boundary(c.typ, c.load())
}

func (c *Cell) load() any {
	return c.v.Load().v
}

func (c *Cell) store(cv any) {
	c.v.Store(&cellBox{v: cv})
}

// canonical converts a boundary value (int32 for i32, [3]float32 for <3 x f32>,
// ...) to the representation used inside frames: int64 for integers, float64
// for floats, []float32 for vectors.
func canonical(t Type, v any) (any, error) {
	switch tt := t.(type) {
	case IntType:
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.Type() != tt.GoType() {
			return nil, fmt.Errorf("%s expects %s, got %T", t, tt.GoType(), v)
		}
		return rv.Int(), nil
	case FloatType:
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.Type() != tt.GoType() {
			return nil, fmt.Errorf("%s expects %s, got %T", t, tt.GoType(), v)
		}
		return rv.Float(), nil
	case BoolType:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("bool expects bool, got %T", v)
		}
		return b, nil
	case VectorType:
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.Type() != tt.GoType() {
			return nil, fmt.Errorf("%s expects %s, got %T", t, tt.GoType(), v)
		}
		lanes := make([]float32, tt.Len)
		for i := range lanes {
			lanes[i] = float32(rv.Index(i).Float())
		}
		return lanes, nil
	case HandleType:
		h, ok := v.(Handle)
		if !ok {
			return nil, fmt.Errorf("ptr expects ir.Handle, got %T", v)
		}
		return h, nil
	case ListType:
		l, ok := v.(*List)
		if !ok || l == nil {
			return nil, fmt.Errorf("%s expects *ir.List, got %T", t, v)
		}
		if l.elem != tt.Elem {
			return nil, fmt.Errorf("%s expects elements of %s, got %s", t, tt.Elem, l.elem)
		}
		return l, nil
	}
	return nil, fmt.Errorf("unsupported type %v", t)
}

// boundary is the inverse of canonical.
func boundary(t Type, v any) any {
	switch tt := t.(type) {
	case IntType:
		return reflect.ValueOf(v.(int64)).Convert(tt.GoType()).Interface()
	case FloatType:
		return reflect.ValueOf(v.(float64)).Convert(tt.GoType()).Interface()
	case VectorType:
		arr := reflect.New(tt.GoType()).Elem()
		for i, lane := range v.([]float32) {
			arr.Index(i).SetFloat(float64(lane))
		}
		return arr.Interface()
	}
	return v
}

// wrapInt truncates v to bits and sign-extends it back to 64 bits.
func wrapInt(bits int, v int64) int64 {
	shift := 64 - bits
	return (v << shift) >> shift
}

// roundFloat rounds v to the precision of a float of the given width.
func roundFloat(bits int, v float64) float64 {
	if bits == 32 {
		return float64(float32(v))
	}
	return v
}

func canonicalConst(t Type, v any) any {
	cv, err := canonical(t, v)
	if err != nil {
		panic("ir: constant: " + err.Error())
	}
	return cv
}

func formatConst(t Type, cv any) string {
	switch t.(type) {
	case IntType:
		return fmt.Sprintf("%d", cv.(int64))
	case FloatType:
		f := cv.(float64)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Sprintf("%v", f)
		}
		return fmt.Sprintf("%g", f)
	case BoolType:
		return fmt.Sprintf("%t", cv.(bool))
	case VectorType:
		return fmt.Sprintf("%v", cv.([]float32))
	case HandleType:
		h := cv.(Handle)
		if h.IsNil() {
			return "null"
		}
		return fmt.Sprintf("handle(%T)", h.ptr)
	case ListType:
		return fmt.Sprintf("list(len=%d)", cv.(*List).Len())
	}
	return fmt.Sprintf("%v", cv)
}
