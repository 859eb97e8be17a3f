package filters

import "github.com/google/uuid"

// NodeID identifies a FilterNode within a FilterGraph. Using
// google/uuid keeps node identity stable across graph-file round-trips
// and GUI edits, matching the identity scheme already used for frame
// tracing elsewhere in the retrieval corpus (orion-care-sensor's
// stream-capture frame IDs).
type NodeID string

// NewNodeID mints a fresh random node identifier.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// Node is one FilterNode (spec.md §3): an id, its filter kind, its fixed
// parameter blob, and the set of nodes it fans out to.
type Node struct {
	ID             NodeID
	Kind           Kind
	Blob           Blob
	OutgoingEdges  []NodeID
	DisplayX, DisplayY float64 // per-node GUI position, round-tripped by graph files
}

// NewNode creates a node of kind with default parameters.
func NewNode(kind Kind) (*Node, error) {
	blob, err := Defaults(kind)
	if err != nil {
		return nil, err
	}
	return &Node{ID: NewNodeID(), Kind: kind, Blob: blob}, nil
}
