package nodes

import (
	"fmt"
	"sync"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/registry"
)

// Params carries the arguments of a catalog factory.
type Params struct {
	// Type is the socket type of kinds that are generic over it ("Input").
	Type flowjit.Type
}

// Factory builds a node of one kind.
type Factory func(Params) (*flowjit.Node, error)

var (
	catalog     *registry.Registry[string, Factory]
	catalogOnce sync.Once
)

// Catalog returns the frozen table of node kinds that can be built without
// a value. Constants go through the loaders package instead.
func Catalog() *registry.Registry[string, Factory] {
	catalogOnce.Do(func() {
		r := registry.New[string, Factory]()
		r.MustRegister("Input", func(p Params) (*flowjit.Node, error) {
			if p.Type == nil {
				return nil, fmt.Errorf("kind Input needs a type")
			}
			return Input(p.Type), nil
		})
		for kind, fn := range map[string]func() *flowjit.Node{
			"AddInt":         AddInt,
			"SubInt":         SubInt,
			"MulInt":         MulInt,
			"DivInt":         DivInt,
			"AddFloat":       AddFloat,
			"MulFloat":       MulFloat,
			"AddVector":      AddVector,
			"LessInt":        LessInt,
			"SelectInt":      SelectInt,
			"CombineVector":  CombineVector,
			"SeparateVector": SeparateVector,
		} {
			r.MustRegister(kind, fixed(fn))
		}
		r.Freeze()
		catalog = r
	})
	return catalog
}

// New builds a node of the given kind from the catalog.
func New(kind string, p Params) (*flowjit.Node, error) {
	f, ok := Catalog().Get(kind)
	if !ok {
		return nil, fmt.Errorf("unknown node kind %q", kind)
	}
	return f(p)
}

func fixed(fn func() *flowjit.Node) Factory {
	return func(Params) (*flowjit.Node, error) { return fn(), nil }
}
