package ir

import (
	"fmt"
	"reflect"
)

// Type describes the machine representation of a value.
//
// Types are plain comparable values: two Types are the same representation
// exactly when they compare equal with ==.
type Type interface {
	// String returns the textual form used in code dumps (e.g. "i32").
	String() string

	// GoType returns the Go type that carries values of this Type across
	// the call boundary of a finalized function.
	GoType() reflect.Type

	isType()
}

// IntType is a two's complement integer of 8, 16, 32 or 64 bits.
type IntType struct {
	Bits int
}

// FloatType is an IEEE 754 float of 32 or 64 bits.
type FloatType struct {
	Bits int
}

// BoolType is a one bit truth value.
type BoolType struct{}

// VectorType is a fixed-length vector of float32 lanes.
type VectorType struct {
	Len int
}

// HandleType is an opaque native handle. See Handle.
type HandleType struct{}

// ListType is a list of elements of one Type.
type ListType struct {
	Elem Type
}

// Common types.
var (
	Int8    Type = IntType{Bits: 8}
	Int16   Type = IntType{Bits: 16}
	Int32   Type = IntType{Bits: 32}
	Int64   Type = IntType{Bits: 64}
	Float32 Type = FloatType{Bits: 32}
	Float64 Type = FloatType{Bits: 64}
	Bool    Type = BoolType{}
	Vec3    Type = VectorType{Len: 3}
	Vec4    Type = VectorType{Len: 4}
	Ptr     Type = HandleType{}
)

var (
	handleGoType = reflect.TypeOf(Handle{})
	listGoType   = reflect.TypeOf((*List)(nil))
)

func (t IntType) String() string { return fmt.Sprintf("i%d", t.Bits) }

// GoType implements Type.
func (t IntType) GoType() reflect.Type {
	switch t.Bits {
	case 8:
		return reflect.TypeOf(int8(0))
	case 16:
		return reflect.TypeOf(int16(0))
	case 32:
		return reflect.TypeOf(int32(0))
	case 64:
		return reflect.TypeOf(int64(0))
	}
	return nil
}

func (IntType) isType() {}

func (t FloatType) String() string { return fmt.Sprintf("f%d", t.Bits) }

// GoType implements Type.
func (t FloatType) GoType() reflect.Type {
	switch t.Bits {
	case 32:
		return reflect.TypeOf(float32(0))
	case 64:
		return reflect.TypeOf(float64(0))
	}
	return nil
}

func (FloatType) isType() {}

func (BoolType) String() string { return "bool" }

// GoType implements Type.
func (BoolType) GoType() reflect.Type { return reflect.TypeOf(false) }

func (BoolType) isType() {}

func (t VectorType) String() string { return fmt.Sprintf("<%d x f32>", t.Len) }

// GoType implements Type. A vector of n lanes crosses the call boundary as [n]float32.
func (t VectorType) GoType() reflect.Type {
	if t.Len <= 0 {
		return nil
	}
	return reflect.ArrayOf(t.Len, reflect.TypeOf(float32(0)))
}

func (VectorType) isType() {}

func (HandleType) String() string { return "ptr" }

// GoType implements Type.
func (HandleType) GoType() reflect.Type { return handleGoType }

func (HandleType) isType() {}

func (t ListType) String() string {
	if t.Elem == nil {
		return "list<?>"
	}
	return "list<" + t.Elem.String() + ">"
}

// GoType implements Type.
func (ListType) GoType() reflect.Type { return listGoType }

func (ListType) isType() {}

// Valid reports whether t is a well-formed Type with a Go representation.
func Valid(t Type) bool {
	if t == nil || t.GoType() == nil {
		return false
	}
	if l, ok := t.(ListType); ok {
		return Valid(l.Elem)
	}
	return true
}

func isInt(t Type) bool {
	_, ok := t.(IntType)
	return ok
}

func isFloat(t Type) bool {
	_, ok := t.(FloatType)
	return ok
}

func isVector(t Type) bool {
	_, ok := t.(VectorType)
	return ok
}

func isNumeric(t Type) bool {
	return isInt(t) || isFloat(t) || isVector(t)
}
