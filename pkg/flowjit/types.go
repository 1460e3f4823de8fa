package flowjit

import (
	"sync"

	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
	"github.com/randalmurphal/flowjit/pkg/flowjit/registry"
)

// Type is the type of a socket: a name plus the machine representation of
// its values.
//
// Types are compared by identity. Two sockets can be linked only when they
// carry the very same Type value, even if two Types share a representation.
// Types come from a TypeTable and live for the whole process.
type Type interface {
	// Name returns the user-facing type name (e.g. "Integer").
	Name() string

	// IR returns the machine representation.
	IR() ir.Type
}

type socketType struct {
	name string
	ir   ir.Type
}

func (t *socketType) Name() string   { return t.name }
func (t *socketType) IR() ir.Type    { return t.ir }
func (t *socketType) String() string { return t.name }

// TypeTable owns a set of Types. It is filled during an initialization phase
// and then frozen; afterwards it is read-only and safe to share.
type TypeTable struct {
	types *registry.Registry[string, Type]
}

// NewTypeTable creates an empty, unfrozen table.
func NewTypeTable() *TypeTable {
	return &TypeTable{types: registry.New[string, Type]()}
}

// Register creates a Type named name with representation t.
// Panics if the table is frozen, the name is taken or t is invalid.
func (tt *TypeTable) Register(name string, t ir.Type) Type {
	if name == "" {
		panic("flowjit: type name cannot be empty")
	}
	if !ir.Valid(t) {
		panic("flowjit: type " + name + " has an invalid representation")
	}
	typ := &socketType{name: name, ir: t}
	if err := tt.types.Register(name, typ); err != nil {
		panic("flowjit: " + err.Error())
	}
	return typ
}

// Freeze ends the initialization phase.
func (tt *TypeTable) Freeze() { tt.types.Freeze() }

// Lookup returns the Type registered under name.
func (tt *TypeTable) Lookup(name string) (Type, bool) { return tt.types.Get(name) }

// MustLookup is Lookup that panics when name is unknown.
func (tt *TypeTable) MustLookup(name string) Type {
	t, ok := tt.types.Get(name)
	if !ok {
		panic("flowjit: unknown type " + name)
	}
	return t
}

// Names returns the registered names in sorted order.
func (tt *TypeTable) Names() []string { return tt.types.Keys() }

var (
	standardTypes     *TypeTable
	standardTypesOnce sync.Once
)

// StandardTypes returns the frozen table of built-in socket types:
// Float, Vector, Integer, Boolean, Object and Color, each with a
// "<name> List" variant.
func StandardTypes() *TypeTable {
	standardTypesOnce.Do(func() {
		tt := NewTypeTable()
		scalars := []struct {
			name string
			typ  ir.Type
		}{
			{"Float", ir.Float32},
			{"Vector", ir.Vec3},
			{"Integer", ir.Int32},
			{"Boolean", ir.Bool},
			{"Object", ir.Ptr},
			{"Color", ir.Vec4},
		}
		for _, s := range scalars {
			tt.Register(s.name, s.typ)
			tt.Register(s.name+" List", ir.ListType{Elem: s.typ})
		}
		tt.Freeze()
		standardTypes = tt
	})
	return standardTypes
}

// Standard socket types.
var (
	Float   = StandardTypes().MustLookup("Float")
	Vector  = StandardTypes().MustLookup("Vector")
	Integer = StandardTypes().MustLookup("Integer")
	Boolean = StandardTypes().MustLookup("Boolean")
	Object  = StandardTypes().MustLookup("Object")
	Color   = StandardTypes().MustLookup("Color")
)

// ListOf returns the standard list Type whose elements are of type elem.
func ListOf(elem Type) (Type, bool) {
	return StandardTypes().Lookup(elem.Name() + " List")
}
