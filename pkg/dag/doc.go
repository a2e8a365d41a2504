// Package dag provides a small directed graph used to order anchored elements.
//
// # Overview
//
// Elements in a part may position themselves relative to another element's
// edge. Each such reference is an edge from the referenced element to the
// referencing one, and the referenced box must be resolved first. The graph
// must therefore be acyclic, and the resolution order is a topological order.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "photo"})
//	g.AddNode(dag.Node{ID: "caption"})
//	g.AddEdge(dag.Edge{From: "photo", To: "caption"})
//	order, err := g.TopoSort() // [photo caption]
//
// # Determinism
//
// Node insertion order is remembered. [DAG.TopoSort] always picks the
// earliest-inserted ready node, so elements that do not depend on each other
// keep their authoring order.
//
// # Cycles
//
// [DAG.Validate] and [DAG.TopoSort] return [ErrGraphHasCycle] for cyclic
// graphs. [DAG.FindCycle] returns one offending cycle for error messages.
//
// # Export
//
// [ToDOT] converts the graph to Graphviz DOT and [RenderSVG] renders DOT to
// SVG through go-graphviz, which is handy for debugging anchor chains.
//
// # Concurrency
//
// DAG is not safe for concurrent mutation. Read-only use from multiple
// goroutines is fine once construction is complete.
package dag
