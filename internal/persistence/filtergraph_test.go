package persistence

import (
	"path/filepath"
	"testing"

	"github.com/bryanchriswhite/vcsengine/internal/filtergraph"
	"github.com/bryanchriswhite/vcsengine/internal/filters"
)

func TestFilterGraphRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")

	g := filtergraph.New()
	in, err := filters.NewNode(filters.InputGate)
	if err != nil {
		t.Fatal(err)
	}
	filters.SetGateSize(&in.Blob, 640, 480)
	blur, err := filters.NewNode(filters.Blur)
	if err != nil {
		t.Fatal(err)
	}
	out, err := filters.NewNode(filters.OutputGate)
	if err != nil {
		t.Fatal(err)
	}
	in.DisplayX, in.DisplayY = 10, 20

	g.AddNode(in)
	g.AddNode(blur)
	g.AddNode(out)
	g.Connect(in.ID, blur.ID)
	g.Connect(blur.ID, out.ID)

	if err := SaveFilterGraph(path, g); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadFilterGraph(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	gotIn, ok := loaded.Node(in.ID)
	if !ok {
		t.Fatal("expected input gate node to round-trip by ID")
	}
	if gotIn.DisplayX != 10 || gotIn.DisplayY != 20 {
		t.Fatalf("expected display position to round-trip, got (%v,%v)", gotIn.DisplayX, gotIn.DisplayY)
	}

	chains, warnings := loaded.ExtractChains()
	if len(warnings) != 0 {
		t.Fatalf("expected no cycle warnings, got %v", warnings)
	}
	if len(chains) != 1 {
		t.Fatalf("expected exactly one chain after round trip, got %d", len(chains))
	}
}
