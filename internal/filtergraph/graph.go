// Package filtergraph implements the FilterGraph (spec.md §4.5): a
// directed graph of filter nodes with at most one outgoing edge per
// output socket on the modelling side (fan-out allowed from a node,
// fan-in allowed into one), chain extraction, and runtime chain
// selection.
package filtergraph

import (
	"fmt"
	"sort"

	"github.com/bryanchriswhite/vcsengine/internal/filters"
	"github.com/bryanchriswhite/vcsengine/internal/frame"
)

// Chain is an ordered [InputGate, filter1, ..., filterN, OutputGate]
// list extracted from the graph (spec.md §3).
type Chain struct {
	Nodes []filters.NodeID
}

// CycleWarning is surfaced (not fatal) when a branch of the graph loops
// back on itself during extraction.
type CycleWarning struct {
	Gate filters.NodeID
	Node filters.NodeID
}

func (w CycleWarning) Error() string {
	return fmt.Sprintf("cycle detected at node %s while extracting chains from input gate %s", w.Node, w.Gate)
}

// Graph owns the node set and derives chains from it.
type Graph struct {
	nodes map[filters.NodeID]*filters.Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[filters.NodeID]*filters.Node)}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n *filters.Node) {
	g.nodes[n.ID] = n
}

// Node returns the node with the given id, if present.
func (g *Graph) Node(id filters.NodeID) (*filters.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node, sorted by ID for deterministic iteration
// (persistence round-trips, tests).
func (g *Graph) Nodes() []*filters.Node {
	out := make([]*filters.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Connect adds an edge from -> to.
func (g *Graph) Connect(from, to filters.NodeID) {
	n, ok := g.nodes[from]
	if !ok {
		return
	}
	n.OutgoingEdges = append(n.OutgoingEdges, to)
}

// ExtractChains performs the depth-first traversal described in
// spec.md §4.5 for every input-gate node. A cycle within one DFS branch
// aborts that branch only (recorded as a CycleWarning); sibling branches
// from the same input gate, and chains from other input gates, are
// unaffected (spec.md §8 scenario 5).
func (g *Graph) ExtractChains() ([]Chain, []CycleWarning) {
	var chains []Chain
	var warnings []CycleWarning

	gates := g.Nodes()
	for _, gate := range gates {
		if gate.Kind != filters.InputGate {
			continue
		}
		g.walk(gate.ID, gate.ID, nil, map[filters.NodeID]bool{}, &chains, &warnings)
	}

	return chains, warnings
}

func (g *Graph) walk(
	gateID, id filters.NodeID,
	path []filters.NodeID,
	visited map[filters.NodeID]bool,
	chains *[]Chain,
	warnings *[]CycleWarning,
) {
	if visited[id] {
		*warnings = append(*warnings, CycleWarning{Gate: gateID, Node: id})
		return
	}

	node, ok := g.nodes[id]
	if !ok {
		return
	}

	nextVisited := make(map[filters.NodeID]bool, len(visited)+1)
	for k := range visited {
		nextVisited[k] = true
	}
	nextVisited[id] = true

	nextPath := make([]filters.NodeID, len(path)+1)
	copy(nextPath, path)
	nextPath[len(path)] = id

	if node.Kind == filters.OutputGate {
		*chains = append(*chains, Chain{Nodes: nextPath})
		return
	}

	for _, next := range node.OutgoingEdges {
		g.walk(gateID, next, nextPath, nextVisited, chains, warnings)
	}
}

// gateSize reads the target (width,height) of a gate node, or (0,0) if
// the node is not a gate.
func (g *Graph) gateSize(id filters.NodeID) (int, int) {
	n, ok := g.nodes[id]
	if !ok {
		return 0, 0
	}
	return filters.GateSize(n.Blob)
}

func matchesAxis(gateValue, actual int) bool {
	return gateValue == 0 || gateValue == actual
}

// SelectChain implements the runtime chain-selection rule of spec.md
// §4.5: prefer a chain whose input gate matches the current capture
// resolution AND whose output gate matches the expected output size;
// else an input-gate-only match; else none (filtering skipped for this
// frame). Among output matches, an output gate that names the expected
// size exactly wins over one that matches through a zero (wildcard) axis.
func SelectChain(chains []Chain, g *Graph, inW, inH, outW, outH int) (Chain, bool) {
	var inputOnly, wildcardOut *Chain

	for i := range chains {
		c := chains[i]
		if len(c.Nodes) < 2 {
			continue
		}
		gw, gh := g.gateSize(c.Nodes[0])
		if !matchesAxis(gw, inW) || !matchesAxis(gh, inH) {
			continue
		}
		if inputOnly == nil {
			inputOnly = &c
		}
		ow, oh := g.gateSize(c.Nodes[len(c.Nodes)-1])
		if ow == outW && oh == outH {
			return c, true
		}
		if wildcardOut == nil && matchesAxis(ow, outW) && matchesAxis(oh, outH) {
			wildcardOut = &c
		}
	}

	if wildcardOut != nil {
		return *wildcardOut, true
	}
	if inputOnly != nil {
		return *inputOnly, true
	}
	return Chain{}, false
}

// Apply runs every filter in chain (skipping the input/output gates,
// which never mutate pixels) over in, returning the resulting frame.
func (g *Graph) Apply(chain Chain, in *frame.Frame) (*frame.Frame, error) {
	current := in
	for _, id := range chain.Nodes {
		node, ok := g.nodes[id]
		if !ok {
			continue
		}
		if filters.IsGate(node.Kind) {
			continue
		}
		desc, err := filters.Lookup(node.Kind)
		if err != nil {
			return nil, err
		}
		current = desc.Apply(node.Blob, current)
	}
	return current, nil
}
