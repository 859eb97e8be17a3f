package persistence

import (
	"encoding/base64"
	"encoding/json"
	"os"

	"github.com/bryanchriswhite/vcsengine/internal/filtergraph"
	"github.com/bryanchriswhite/vcsengine/internal/filters"
	"github.com/bryanchriswhite/vcsengine/internal/vcserr"
)

// graphFile is the on-disk shape for a filter-graph file: the node set,
// each node's filter type and parameter blob bytes, its edges, and its
// display position (spec.md §6 — the schema itself is the
// implementer's choice, JSON here following the teacher's
// encoding/json conventions elsewhere in the codebase).
type graphFile struct {
	Nodes []graphNode `json:"nodes"`
}

type graphNode struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Blob      string   `json:"blob"` // base64 of the fixed-width parameter blob
	Edges     []string `json:"edges"`
	DisplayX  float64  `json:"display_x"`
	DisplayY  float64  `json:"display_y"`
}

// LoadFilterGraph reads a filter-graph file into a fresh Graph.
func LoadFilterGraph(path string) (*filtergraph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vcserr.Wrap(vcserr.FileOpenFailed, "failed to open filter-graph file", err)
	}

	var gf graphFile
	if err := json.Unmarshal(data, &gf); err != nil {
		return nil, vcserr.Wrap(vcserr.FileParseFailed, "failed to parse filter-graph file", err)
	}

	g := filtergraph.New()
	for _, n := range gf.Nodes {
		kind, err := filters.LookupByName(n.Kind)
		if err != nil {
			return nil, vcserr.Wrap(vcserr.UnknownFilterName, "filter-graph file references unknown filter", err)
		}

		blobBytes, err := base64.StdEncoding.DecodeString(n.Blob)
		if err != nil {
			return nil, vcserr.Wrap(vcserr.FileParseFailed, "invalid parameter blob encoding", err)
		}
		var blob filters.Blob
		copy(blob[:], blobBytes)

		node := &filters.Node{
			ID:        filters.NodeID(n.ID),
			Kind:      kind.Kind,
			Blob:      blob,
			DisplayX:  n.DisplayX,
			DisplayY:  n.DisplayY,
		}
		g.AddNode(node)
	}
	for _, n := range gf.Nodes {
		for _, to := range n.Edges {
			g.Connect(filters.NodeID(n.ID), filters.NodeID(to))
		}
	}

	return g, nil
}

// SaveFilterGraph writes g in the format LoadFilterGraph expects,
// atomically.
func SaveFilterGraph(path string, g *filtergraph.Graph) error {
	var gf graphFile
	for _, n := range g.Nodes() {
		desc, err := filters.Lookup(n.Kind)
		if err != nil {
			return vcserr.Wrap(vcserr.UnknownFilterName, "graph contains unknown filter kind", err)
		}
		edges := make([]string, 0, len(n.OutgoingEdges))
		for _, e := range n.OutgoingEdges {
			edges = append(edges, string(e))
		}
		gf.Nodes = append(gf.Nodes, graphNode{
			ID:       string(n.ID),
			Kind:     desc.Name,
			Blob:     base64.StdEncoding.EncodeToString(n.Blob[:]),
			Edges:    edges,
			DisplayX: n.DisplayX,
			DisplayY: n.DisplayY,
		})
	}

	data, err := json.MarshalIndent(gf, "", "  ")
	if err != nil {
		return vcserr.Wrap(vcserr.FileWriteFailed, "failed to marshal filter graph", err)
	}
	return atomicWrite(path, data)
}
