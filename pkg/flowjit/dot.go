package flowjit

import (
	"fmt"
	"strings"
)

// DotFormat renders the subgraph induced by nodes as Graphviz DOT. Nodes
// appear in the given order; links are included when both ends are in nodes.
// The output depends only on the Graph and nodes.
func (g *Graph) DotFormat(nodes []NodeID) string {
	in := make(map[NodeID]bool, len(nodes))
	for _, id := range nodes {
		in[id] = true
	}

	var sb strings.Builder
	sb.WriteString("digraph flowjit {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=record];\n")
	for _, id := range nodes {
		n := g.Node(id)
		if n == nil {
			continue
		}
		fmt.Fprintf(&sb, "  n%d [label=\"{%s%s%s}\"];\n",
			id, dotPorts("i", n.inputs, "|"), dotEscape(g.NodeName(id)), dotPorts("o", n.outputs, ""))
	}
	for _, l := range g.links {
		if in[l.From.Node] && in[l.To.Node] {
			fmt.Fprintf(&sb, "  n%d:o%d -> n%d:i%d;\n", l.From.Node, l.From.Index, l.To.Node, l.To.Index)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Dot resolves outputs from inputs and renders the required subgraph.
func (g *Graph) Dot(inputs, outputs *SocketSet) (string, error) {
	res, err := Resolve(g, inputs, outputs)
	if err != nil {
		return "", err
	}
	return g.DotFormat(res.Nodes), nil
}

// dotPorts renders a record row of ports, e.g. "{<i0> A|<i1> B}|".
func dotPorts(prefix string, sockets []SocketInfo, sep string) string {
	if len(sockets) == 0 {
		return ""
	}
	parts := make([]string, len(sockets))
	for i, s := range sockets {
		parts[i] = fmt.Sprintf("<%s%d> %s", prefix, i, dotEscape(s.Name))
	}
	row := "{" + strings.Join(parts, "|") + "}"
	if sep != "" {
		return row + sep
	}
	return "|" + row
}

var dotEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

func dotEscape(s string) string { return dotEscaper.Replace(s) }
