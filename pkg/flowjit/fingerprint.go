package flowjit

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes everything that determines the code generated for
// outputs given inputs: the required nodes with their names and socket
// types, the links feeding them, and both boundary sets in order.
//
// Nodes are identified by name, so node factories that bake a value into
// their code should put that value into the node name.
func (g *Graph) Fingerprint(inputs, outputs *SocketSet) (uint64, error) {
	res, err := Resolve(g, inputs, outputs)
	if err != nil {
		return 0, err
	}
	return fingerprint(g, res, inputs, outputs), nil
}

func fingerprint(g *Graph, res *Resolution, inputs, outputs *SocketSet) uint64 {
	d := xxhash.New()
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = d.WriteString(p)
			_, _ = d.Write([]byte{0})
		}
	}
	sockets := func(kind string, list []SocketInfo) {
		for _, s := range list {
			write(kind, s.Name, s.Type.Name())
		}
	}
	set := func(kind string, set *SocketSet) {
		for _, s := range set.Elements() {
			write(kind, s.String())
		}
	}

	for _, id := range res.Nodes {
		n := g.Node(id)
		write("node", strconv.Itoa(int(id)), n.name)
		sockets("in", n.inputs)
		sockets("out", n.outputs)
	}
	for _, s := range res.Sockets {
		if s.IsOutput {
			continue
		}
		if from, ok := g.Origin(s); ok {
			write("link", from.String(), s.String())
		}
	}
	set("input", inputs)
	set("output", outputs)
	return d.Sum64()
}

func codeKey(name string, optLevel int, fp uint64) string {
	return fmt.Sprintf("%s-O%d-%016x", name, optLevel, fp)
}
