/*
Package graphfile reads dataflow graphs from HCL files.

A file names the function, its boundary sockets, the nodes and the links:

	name    = "Diamond"
	inputs  = [in1.Value, in2.Value, in3.Value]
	outputs = [addC.Result]

	node "in1" {
	  kind = "Input"
	  type = "Integer"
	}

	node "ten" {
	  kind  = "value"
	  type  = "Integer"
	  value = 10
	}

	node "addA" { kind = "AddInt" }

	link {
	  from = in1.Value
	  to   = addA.A
	}

Node kinds come from the nodes catalog. Kind "value" builds a constant of
the given type through the loaders package. Sockets are written node.Socket,
either bare or quoted. In inputs, outputs and link.from an output socket of
that name is preferred over an input socket; link.to always names an input.

Nodes are added to the graph in file order, so a file always produces the
same graph.
*/
package graphfile
