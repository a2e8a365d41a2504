package dag

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [DAG.Validate] and [DAG.TopoSort] when
	// a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes.
type Metadata map[string]any

// Node is a vertex in the graph.
type Node struct {
	ID    string   // Unique identifier
	Label string   // Display label for DOT export (defaults to ID)
	Meta  Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge is a directed dependency: To can only be processed after From.
type Edge struct {
	From  string
	To    string
	Label string // Optional DOT edge label
}

// DAG is a directed graph that remembers node insertion order.
//
// The zero value is not usable; use New.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
}

// New creates an empty graph.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node. Returns ErrInvalidNodeID for an empty ID or
// ErrDuplicateNodeID if the ID is already present.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	d.nodes[n.ID] = &n
	d.order = append(d.order, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is missing.
// AddEdge does not check for cycles; use Validate or TopoSort.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		nodes = append(nodes, d.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of nodes this node has edges to.
// The returned slice must not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of nodes with edges to this node.
// The returned slice must not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// InDegree returns the number of incoming edges.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// OutDegree returns the number of outgoing edges.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// Sources returns the nodes without incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Validate returns ErrGraphHasCycle if the graph contains a directed cycle.
// Cycle detection runs in O(N+E) using depth-first search.
func (d *DAG) Validate() error {
	if d.FindCycle() != nil {
		return ErrGraphHasCycle
	}
	return nil
}

// FindCycle returns the node IDs of one directed cycle, first node repeated
// at the end, or nil if the graph is acyclic. The search visits nodes in
// insertion order so the reported cycle is deterministic.
func (d *DAG) FindCycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				start := slices.Index(stack, child)
				cycle = append(slices.Clone(stack[start:]), child)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, id := range d.order {
		if color[id] == white && dfs(id) {
			return cycle
		}
	}
	return nil
}
