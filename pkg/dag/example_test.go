package dag_test

import (
	"fmt"

	"github.com/matzehuels/bedforge/pkg/dag"
)

func ExampleDAG_TopoSort() {
	// caption is anchored below photo, badge is anchored to caption
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "badge"})
	_ = g.AddNode(dag.Node{ID: "caption"})
	_ = g.AddNode(dag.Node{ID: "photo"})
	_ = g.AddEdge(dag.Edge{From: "photo", To: "caption"})
	_ = g.AddEdge(dag.Edge{From: "caption", To: "badge"})

	order, err := g.TopoSort()
	fmt.Println(order, err)
	// Output:
	// [photo caption badge] <nil>
}

func ExampleDAG_FindCycle() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a"})
	_ = g.AddNode(dag.Node{ID: "b"})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "a"})

	fmt.Println(g.FindCycle())
	fmt.Println(g.Validate())
	// Output:
	// [a b a]
	// graph contains a cycle
}

func ExampleToDOT() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "photo", Label: "image:photo"})
	_ = g.AddNode(dag.Node{ID: "name"})
	_ = g.AddEdge(dag.Edge{From: "photo", To: "name", Label: "bottom"})

	fmt.Print(dag.ToDOT(g))
	// Output:
	// digraph anchors {
	//   rankdir=TB;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14];
	//
	//   "photo" [label="image:photo"];
	//   "name" [label="name"];
	//
	//   "photo" -> "name" [label="bottom"];
	// }
}
