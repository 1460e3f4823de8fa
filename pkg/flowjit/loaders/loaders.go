// Package loaders turns literal socket values into constant nodes.
//
// A host edits values such as "the Float 1.5 on this socket" or "the Object
// named cube". Each standard socket type has a Loader that converts such a
// value, carried as a cty.Value, into a zero-input node with one output
// "Value" producing it. List types load an empty list, or a list of the
// given elements.
package loaders

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
	"github.com/randalmurphal/flowjit/pkg/flowjit/registry"
)

var (
	// ErrUnknownType indicates no loader is registered for a type name.
	ErrUnknownType = errors.New("no loader for type")

	// ErrInvalidValue indicates a value that cannot be loaded as the type.
	ErrInvalidValue = errors.New("invalid value")
)

// Loader builds a constant node from a literal value.
type Loader func(v cty.Value) (*flowjit.Node, error)

// Objects resolves object names to host pointers.
type Objects map[string]any

type object struct {
	ptr any
}

// ObjectType is the capsule type carrying a host pointer inside a cty.Value.
var ObjectType = cty.Capsule("object", reflect.TypeOf(object{}))

// ObjectVal wraps a host pointer for the Object loader.
func ObjectVal(p any) cty.Value {
	return cty.CapsuleVal(ObjectType, &object{ptr: p})
}

// Table maps socket type names to loaders.
type Table struct {
	loaders *registry.Registry[string, Loader]
}

// NewTable returns a table with loaders for every standard socket type.
// Object values given by name are resolved through objects, which may be
// nil. The table accepts further loaders until Freeze.
func NewTable(objects Objects) *Table {
	t := &Table{loaders: registry.New[string, Loader]()}

	scalars := map[string]scalar{
		"Float":   loadFloat,
		"Vector":  lanes(3),
		"Integer": loadInteger,
		"Boolean": loadBoolean,
		"Object":  loadObject(objects),
		"Color":   lanes(4),
	}
	for name, conv := range scalars {
		typ := flowjit.StandardTypes().MustLookup(name)
		t.loaders.MustRegister(name, scalarLoader(typ, conv))

		list, _ := flowjit.ListOf(typ)
		t.loaders.MustRegister(list.Name(), listLoader(list, typ, conv))
	}
	return t
}

// Register adds a loader for a custom type name.
func (t *Table) Register(typeName string, l Loader) error {
	return t.loaders.Register(typeName, l)
}

// Freeze makes the table read-only.
func (t *Table) Freeze() { t.loaders.Freeze() }

// Types returns the type names with a loader, sorted.
func (t *Table) Types() []string { return t.loaders.Keys() }

// Load builds the constant node for v as the type named typeName.
func (t *Table) Load(typeName string, v cty.Value) (*flowjit.Node, error) {
	l, ok := t.loaders.Get(typeName)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, typeName)
	}
	return l(v)
}

// scalar converts a literal to its boundary value and a short label used in
// the node name.
type scalar func(v cty.Value) (value any, label string, err error)

func scalarLoader(typ flowjit.Type, conv scalar) Loader {
	return func(v cty.Value) (*flowjit.Node, error) {
		value, label, err := conv(v)
		if err != nil {
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidValue, typ.Name(), err)
		}
		return constant(typ, label, value), nil
	}
}

// listLoader loads null as the empty list and a list or tuple element-wise.
func listLoader(list, elem flowjit.Type, conv scalar) Loader {
	return func(v cty.Value) (*flowjit.Node, error) {
		var items []any
		var labels []string
		if !v.IsNull() {
			if !v.IsKnown() || !(v.Type().IsListType() || v.Type().IsTupleType() || v.Type().IsSetType()) {
				return nil, fmt.Errorf("%w for %s: want a list, got %s", ErrInvalidValue, list.Name(), v.Type().FriendlyName())
			}
			for it := v.ElementIterator(); it.Next(); {
				_, ev := it.Element()
				value, label, err := conv(ev)
				if err != nil {
					return nil, fmt.Errorf("%w for %s: element %d: %v", ErrInvalidValue, list.Name(), len(items), err)
				}
				items = append(items, value)
				labels = append(labels, label)
			}
		}
		return constant(list, "["+strings.Join(labels, " ")+"]", ir.NewList(elem.IR(), items...)), nil
	}
}

func constant(typ flowjit.Type, label string, value any) *flowjit.Node {
	return flowjit.NewNode(fmt.Sprintf("%s(%s)", typ.Name(), label), nil,
		[]flowjit.SocketInfo{flowjit.Socket("Value", typ)},
		flowjit.ValueFunc(func(b *ir.Builder, _ []ir.Value) ([]ir.Value, error) {
			return []ir.Value{b.Const(typ.IR(), value)}, nil
		}))
}

// known converts v to want, rejecting null and unknown values.
func known(v cty.Value, want cty.Type) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, errors.New("value is null")
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, errors.New("value is not known")
	}
	return convert.Convert(v, want)
}

func loadFloat(v cty.Value) (any, string, error) {
	n, err := known(v, cty.Number)
	if err != nil {
		return nil, "", err
	}
	var f float32
	if err := gocty.FromCtyValue(n, &f); err != nil {
		return nil, "", err
	}
	return f, fmt.Sprintf("%g", f), nil
}

func loadInteger(v cty.Value) (any, string, error) {
	n, err := known(v, cty.Number)
	if err != nil {
		return nil, "", err
	}
	var i int32
	if err := gocty.FromCtyValue(n, &i); err != nil {
		return nil, "", err
	}
	return i, fmt.Sprintf("%d", i), nil
}

func loadBoolean(v cty.Value) (any, string, error) {
	bv, err := known(v, cty.Bool)
	if err != nil {
		return nil, "", err
	}
	var b bool
	if err := gocty.FromCtyValue(bv, &b); err != nil {
		return nil, "", err
	}
	return b, fmt.Sprintf("%t", b), nil
}

// lanes loads a Vector (3) or Color (4) from a list of numbers.
func lanes(n int) scalar {
	return func(v cty.Value) (any, string, error) {
		lv, err := known(v, cty.List(cty.Number))
		if err != nil {
			return nil, "", err
		}
		var fs []float32
		if err := gocty.FromCtyValue(lv, &fs); err != nil {
			return nil, "", err
		}
		if len(fs) != n {
			return nil, "", fmt.Errorf("want %d components, got %d", n, len(fs))
		}
		label := strings.Trim(fmt.Sprint(fs), "[]")
		if n == 3 {
			return [3]float32(fs), label, nil
		}
		return [4]float32(fs), label, nil
	}
}

// loadObject accepts an ObjectVal capsule, the name of an entry in objects,
// or null for the nil handle.
func loadObject(objects Objects) scalar {
	return func(v cty.Value) (any, string, error) {
		switch {
		case v.IsNull():
			return ir.NewHandle(nil), "null", nil
		case !v.IsKnown():
			return nil, "", errors.New("value is not known")
		case v.Type().Equals(ObjectType):
			p := v.EncapsulatedValue().(*object).ptr
			return ir.NewHandle(p), fmt.Sprintf("%T", p), nil
		case v.Type() == cty.String:
			name := v.AsString()
			p, ok := objects[name]
			if !ok {
				return nil, "", fmt.Errorf("unknown object %q", name)
			}
			return ir.NewHandle(p), name, nil
		}
		return nil, "", fmt.Errorf("want an object or object name, got %s", v.Type().FriendlyName())
	}
}
