package flowjit

import "fmt"

// Link is a directed edge from an output socket to an input socket.
type Link struct {
	From AnySocket
	To   AnySocket
}

// Graph is an arena of node appearances and the links between their sockets.
//
// Nodes are addressed by the NodeID returned from AddNode; sockets by
// AnySocket. A Graph is built by one goroutine and is read-only while it is
// compiled; concurrent compilations of the same Graph are safe as long as
// nobody mutates it.
type Graph struct {
	nodes   []*Node
	origins map[AnySocket]AnySocket
	targets map[AnySocket][]AnySocket
	links   []Link
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		origins: make(map[AnySocket]AnySocket),
		targets: make(map[AnySocket][]AnySocket),
	}
}

// AddNode appends an appearance of n and returns its id. Panics if n is nil.
func (g *Graph) AddNode(n *Node) NodeID {
	if n == nil {
		panic("flowjit: cannot add nil node")
	}
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

// Node returns the node template of an appearance, or nil if id is unknown.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// NodeCount returns the number of node appearances.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Link connects the output from to the input to.
//
// The link is rejected, leaving the Graph unchanged, when either socket does
// not exist, when from is not an output or to is not an input, when the
// socket Types differ, or when to is already linked.
func (g *Graph) Link(from, to AnySocket) error {
	fromInfo, ok := g.SocketInfo(from)
	if !ok {
		return &UnknownSocketError{Socket: from, Role: "link source"}
	}
	toInfo, ok := g.SocketInfo(to)
	if !ok {
		return &UnknownSocketError{Socket: to, Role: "link target"}
	}
	if !from.IsOutput || to.IsOutput {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidLink, g.SocketName(from), g.SocketName(to))
	}
	if fromInfo.Type != toInfo.Type {
		return &TypeMismatchError{
			From:     g.SocketName(from),
			To:       g.SocketName(to),
			FromType: fromInfo.Type.Name(),
			ToType:   toInfo.Type.Name(),
		}
	}
	if existing, ok := g.origins[to]; ok {
		return &MultipleWritersError{
			Input:    g.SocketName(to),
			Existing: g.SocketName(existing),
			Rejected: g.SocketName(from),
		}
	}

	g.origins[to] = from
	g.targets[from] = append(g.targets[from], to)
	g.links = append(g.links, Link{From: from, To: to})
	return nil
}

// MustLink is Link that panics on error, for building graphs in code:
//
//	g.MustLink(a.Output(0), sum.Input(0)).
//		MustLink(b.Output(0), sum.Input(1))
func (g *Graph) MustLink(from, to AnySocket) *Graph {
	if err := g.Link(from, to); err != nil {
		panic("flowjit: " + err.Error())
	}
	return g
}

// Links returns all links in insertion order.
func (g *Graph) Links() []Link { return append([]Link(nil), g.links...) }

// Origin returns the output socket linked into the input in.
func (g *Graph) Origin(in AnySocket) (AnySocket, bool) {
	from, ok := g.origins[in]
	return from, ok
}

// Targets returns the input sockets driven by the output out, in link order.
func (g *Graph) Targets(out AnySocket) []AnySocket {
	return append([]AnySocket(nil), g.targets[out]...)
}

// SocketInfo returns the declaration of s, or false if s does not exist.
func (g *Graph) SocketInfo(s AnySocket) (SocketInfo, bool) {
	n := g.Node(s.Node)
	if n == nil || s.Index < 0 {
		return SocketInfo{}, false
	}
	sockets := n.inputs
	if s.IsOutput {
		sockets = n.outputs
	}
	if s.Index >= len(sockets) {
		return SocketInfo{}, false
	}
	return sockets[s.Index], true
}

// Contains reports whether s exists in the Graph.
func (g *Graph) Contains(s AnySocket) bool {
	_, ok := g.SocketInfo(s)
	return ok
}

// NodeName returns "name[id]" for diagnostics.
func (g *Graph) NodeName(id NodeID) string {
	n := g.Node(id)
	if n == nil {
		return fmt.Sprintf("?[%d]", id)
	}
	return fmt.Sprintf("%s[%d]", n.name, id)
}

// SocketName returns "name[id].socket" for diagnostics.
func (g *Graph) SocketName(s AnySocket) string {
	info, ok := g.SocketInfo(s)
	if !ok {
		return s.String()
	}
	return g.NodeName(s.Node) + "." + info.Name
}
