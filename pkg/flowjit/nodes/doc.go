// Package nodes provides ready-made node templates: graph input
// placeholders, integer and float arithmetic, constants, reference cells,
// comparison, a branching select and vector operations.
//
// Constructors return a fresh *flowjit.Node; the node may be added to any
// number of graphs. Catalog maps kind names, as used in graph files, to
// factories.
package nodes
