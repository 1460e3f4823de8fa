package flowjit

// Resolution is the required subgraph for one set of boundary sockets.
type Resolution struct {
	// Nodes are the required node appearances in a topological order:
	// every producer comes before its consumers.
	Nodes []NodeID

	// Sockets are the sockets visited by the walk, in first-visit order.
	Sockets []AnySocket
}

// Resolve computes the nodes needed to compute outputs from inputs.
//
// The walk starts at each output in order and follows links backwards. It
// stops at sockets listed in inputs; an output socket that is not an input
// requires its node and continues through that node's inputs in index
// order; an input socket continues through its link. Nodes are recorded in
// post-order, which yields a topological order that depends only on the
// Graph and the two sets.
//
// Resolve fails with an *UnknownSocketError if a boundary socket does not
// exist, an *UnresolvedInputError if a needed input socket is neither
// linked nor listed in inputs, and a *CycleError if a node is reached again
// while its own inputs are still being resolved.
func Resolve(g *Graph, inputs, outputs *SocketSet) (*Resolution, error) {
	for _, s := range inputs.Elements() {
		if !g.Contains(s) {
			return nil, &UnknownSocketError{Socket: s, Role: "input"}
		}
	}
	for _, s := range outputs.Elements() {
		if !g.Contains(s) {
			return nil, &UnknownSocketError{Socket: s, Role: "output"}
		}
	}

	r := &resolver{
		g:       g,
		inputs:  inputs,
		done:    make(map[NodeID]bool),
		onPath:  make(map[NodeID]int),
		visited: make(map[AnySocket]bool),
	}
	for _, s := range outputs.Elements() {
		if err := r.socket(s); err != nil {
			return nil, err
		}
	}
	return &Resolution{Nodes: r.order, Sockets: r.sockets}, nil
}

type resolver struct {
	g      *Graph
	inputs *SocketSet

	// done holds nodes whose whole upstream is resolved.
	done map[NodeID]bool
	// onPath maps nodes currently being resolved to their position in path.
	onPath map[NodeID]int
	path   []NodeID

	visited map[AnySocket]bool
	sockets []AnySocket
	order   []NodeID
}

func (r *resolver) socket(s AnySocket) error {
	if !r.visited[s] {
		r.visited[s] = true
		r.sockets = append(r.sockets, s)
	}
	if r.inputs.Contains(s) {
		return nil
	}
	if s.IsOutput {
		return r.node(s.Node)
	}
	from, ok := r.g.Origin(s)
	if !ok {
		return &UnresolvedInputError{Socket: s, Name: r.g.SocketName(s)}
	}
	return r.socket(from)
}

func (r *resolver) node(id NodeID) error {
	if r.done[id] {
		return nil
	}
	if start, ok := r.onPath[id]; ok {
		return r.cycle(start, id)
	}

	r.onPath[id] = len(r.path)
	r.path = append(r.path, id)
	for i := range r.g.Node(id).inputs {
		if err := r.socket(id.Input(i)); err != nil {
			return err
		}
	}
	r.path = r.path[:len(r.path)-1]
	delete(r.onPath, id)

	r.done[id] = true
	r.order = append(r.order, id)
	return nil
}

func (r *resolver) cycle(start int, again NodeID) error {
	nodes := append(append([]NodeID(nil), r.path[start:]...), again)
	names := make([]string, len(nodes))
	for i, id := range nodes {
		names[i] = r.g.NodeName(id)
	}
	return &CycleError{Nodes: nodes, Names: names}
}
