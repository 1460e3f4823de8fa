// Package registry provides a generic name table with a freeze phase.
//
// Tables are filled during initialization and then frozen; after Freeze the
// table is read-only and can be shared freely between goroutines. flowjit uses
// it for the socket type table, the node catalog and the value loaders.
//
//	r := registry.New[string, int]()
//	r.MustRegister("one", 1)
//	r.Freeze()
//
//	v, ok := r.Get("one")
//
// Keys and Range visit entries in ascending key order, so anything rendered
// from a registry is deterministic.
package registry
