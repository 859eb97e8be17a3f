package filtergraph

import (
	"testing"

	"github.com/bryanchriswhite/vcsengine/internal/filters"
)

func mustNode(t *testing.T, kind filters.Kind) *filters.Node {
	t.Helper()
	n, err := filters.NewNode(kind)
	if err != nil {
		t.Fatalf("unexpected error creating node: %v", err)
	}
	return n
}

func TestExtractChainsSimpleLinearGraph(t *testing.T) {
	g := New()
	in := mustNode(t, filters.InputGate)
	blur := mustNode(t, filters.Blur)
	out := mustNode(t, filters.OutputGate)
	g.AddNode(in)
	g.AddNode(blur)
	g.AddNode(out)
	g.Connect(in.ID, blur.ID)
	g.Connect(blur.ID, out.ID)

	chains, warnings := g.ExtractChains()
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if len(chains) != 1 {
		t.Fatalf("expected 1 chain, got %d", len(chains))
	}
	if chains[0].Nodes[0] != in.ID || chains[0].Nodes[len(chains[0].Nodes)-1] != out.ID {
		t.Fatalf("expected chain to start at input gate and end at output gate")
	}
}

func TestExtractChainsCycleEmitsZeroChainsAndWarns(t *testing.T) {
	// Scenario 5 (spec.md §8): InputGate -> A -> B -> A.
	g := New()
	in := mustNode(t, filters.InputGate)
	a := mustNode(t, filters.Blur)
	b := mustNode(t, filters.Sharpen)
	g.AddNode(in)
	g.AddNode(a)
	g.AddNode(b)
	g.Connect(in.ID, a.ID)
	g.Connect(a.ID, b.ID)
	g.Connect(b.ID, a.ID)

	chains, warnings := g.ExtractChains()
	if len(chains) != 0 {
		t.Fatalf("expected zero chains from the cyclic input gate, got %d", len(chains))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one cycle warning, got %d", len(warnings))
	}
}

func TestExtractChainsOtherGatesUnaffectedByCycle(t *testing.T) {
	g := New()
	cyclicIn := mustNode(t, filters.InputGate)
	a := mustNode(t, filters.Blur)
	g.AddNode(cyclicIn)
	g.AddNode(a)
	g.Connect(cyclicIn.ID, a.ID)
	g.Connect(a.ID, a.ID) // self-loop cycle

	goodIn := mustNode(t, filters.InputGate)
	goodOut := mustNode(t, filters.OutputGate)
	g.AddNode(goodIn)
	g.AddNode(goodOut)
	g.Connect(goodIn.ID, goodOut.ID)

	chains, warnings := g.ExtractChains()
	if len(chains) != 1 {
		t.Fatalf("expected the healthy input gate to still produce a chain, got %d", len(chains))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning from the cyclic gate, got %d", len(warnings))
	}
}

func TestSelectChainPrefersExactInputAndOutputMatch(t *testing.T) {
	g := New()

	inA := mustNode(t, filters.InputGate)
	filters.SetGateSize(&inA.Blob, 640, 480)
	outA := mustNode(t, filters.OutputGate)
	filters.SetGateSize(&outA.Blob, 1920, 1080)
	g.AddNode(inA)
	g.AddNode(outA)
	g.Connect(inA.ID, outA.ID)

	inB := mustNode(t, filters.InputGate)
	filters.SetGateSize(&inB.Blob, 640, 480)
	outB := mustNode(t, filters.OutputGate)
	filters.SetGateSize(&outB.Blob, 0, 0) // wildcard
	g.AddNode(inB)
	g.AddNode(outB)
	g.Connect(inB.ID, outB.ID)

	chains, _ := g.ExtractChains()
	selected, ok := SelectChain(chains, g, 640, 480, 1920, 1080)
	if !ok {
		t.Fatal("expected a chain to be selected")
	}
	if selected.Nodes[0] != inA.ID {
		t.Fatal("expected the exact input+output match to win over the wildcard-output chain")
	}
}

func TestSelectChainFallsBackToInputOnlyMatch(t *testing.T) {
	g := New()
	in := mustNode(t, filters.InputGate)
	filters.SetGateSize(&in.Blob, 320, 240)
	out := mustNode(t, filters.OutputGate)
	filters.SetGateSize(&out.Blob, 1024, 768)
	g.AddNode(in)
	g.AddNode(out)
	g.Connect(in.ID, out.ID)

	chains, _ := g.ExtractChains()
	_, ok := SelectChain(chains, g, 320, 240, 1920, 1080)
	if !ok {
		t.Fatal("expected an input-gate-only match to be selected")
	}
}

func TestSelectChainNoneWhenNothingMatches(t *testing.T) {
	g := New()
	in := mustNode(t, filters.InputGate)
	filters.SetGateSize(&in.Blob, 320, 240)
	out := mustNode(t, filters.OutputGate)
	g.AddNode(in)
	g.AddNode(out)
	g.Connect(in.ID, out.ID)

	chains, _ := g.ExtractChains()
	_, ok := SelectChain(chains, g, 1920, 1080, 1920, 1080)
	if ok {
		t.Fatal("expected no chain to match")
	}
}
