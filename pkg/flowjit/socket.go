package flowjit

import "fmt"

// SocketInfo declares one input or output slot of a Node.
type SocketInfo struct {
	Name string
	Type Type
}

// Socket is shorthand for SocketInfo{Name: name, Type: t}.
func Socket(name string, t Type) SocketInfo {
	return SocketInfo{Name: name, Type: t}
}

// NodeID identifies one appearance of a Node in a Graph.
type NodeID int

// Input addresses the i-th input socket of the node.
func (id NodeID) Input(i int) AnySocket {
	return AnySocket{Node: id, Index: i}
}

// Output addresses the i-th output socket of the node.
func (id NodeID) Output(i int) AnySocket {
	return AnySocket{Node: id, IsOutput: true, Index: i}
}

// AnySocket addresses one socket of one node appearance. It is a plain
// value usable as a map key.
type AnySocket struct {
	Node     NodeID
	IsOutput bool
	Index    int
}

// String returns a compact form such as "3.out[0]".
func (s AnySocket) String() string {
	dir := "in"
	if s.IsOutput {
		dir = "out"
	}
	return fmt.Sprintf("%d.%s[%d]", s.Node, dir, s.Index)
}
