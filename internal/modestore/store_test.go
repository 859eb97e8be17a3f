package modestore

import "testing"

func testBounds() DriverBounds {
	mk := func(def int) Bounds { return Bounds{Default: def, Min: -100, Max: 100} }
	return DriverBounds{
		Bright: mk(50), Contr: mk(50),
		RedBright: mk(50), GreenBright: mk(50), BlueBright: mk(50),
		RedContr: mk(50), GreenContr: mk(50), BlueContr: mk(50),
		Phase: mk(0), BlackLevel: mk(0), HorPos: mk(0), VerPos: mk(0), HorScale: mk(100),
	}
}

type recordingSink struct {
	created []Resolution
}

func (r *recordingSink) NewKnownMode(res Resolution) {
	r.created = append(r.created, res)
}

func TestUpsertCreatesOnceAndOverwritesPartial(t *testing.T) {
	sink := &recordingSink{}
	s := New(testBounds(), sink)

	res := Resolution{W: 640, H: 480, BPP: 32}
	s.Upsert(res, nil, nil)
	if len(sink.created) != 1 {
		t.Fatalf("expected 1 creation event, got %d", len(sink.created))
	}

	color := ColorParams{Bright: 70}
	s.Upsert(res, &color, nil)
	if len(sink.created) != 1 {
		t.Fatalf("expected no second creation event, got %d", len(sink.created))
	}

	got := s.ParamsFor(res)
	if got.Color.Bright != 70 {
		t.Fatalf("expected overwritten Bright=70, got %d", got.Color.Bright)
	}
	if got.Geometry.Phase != 0 {
		t.Fatalf("expected untouched geometry default, got %d", got.Geometry.Phase)
	}
}

func TestParamsForUnknownNotInserted(t *testing.T) {
	s := New(testBounds(), nil)
	res := Resolution{W: 1280, H: 720}
	_ = s.ParamsFor(res)
	if len(s.Entries()) != 0 {
		t.Fatalf("ParamsFor must not insert; got %d entries", len(s.Entries()))
	}
}

func TestVerPosFloorEnforcedEvenBelowDriverMin(t *testing.T) {
	bounds := testBounds()
	bounds.VerPos = Bounds{Default: 0, Min: -5, Max: 100}
	s := New(bounds, nil)

	res := Resolution{W: 800, H: 600}
	geo := GeometryParams{VerPos: -5}
	s.Upsert(res, nil, &geo)

	got := s.ParamsFor(res)
	if got.Geometry.VerPos != MinVerPos {
		t.Fatalf("expected VerPos floored to %d, got %d", MinVerPos, got.Geometry.VerPos)
	}
}

func TestSetAliasesLastWriteWins(t *testing.T) {
	s := New(testBounds(), nil)
	from := Key{W: 800, H: 600}
	s.SetAliases([]Alias{
		{From: from, To: Key{W: 640, H: 480}},
		{From: from, To: Key{W: 1024, H: 768}},
	})

	aliases := s.Aliases()
	if len(aliases) != 1 {
		t.Fatalf("expected at most one alias per From key, got %d", len(aliases))
	}
	if aliases[0].To != (Key{W: 1024, H: 768}) {
		t.Fatalf("expected last write to win, got %+v", aliases[0].To)
	}
}

func TestAliasesSortedByAreaAscending(t *testing.T) {
	s := New(testBounds(), nil)
	s.SetAliases([]Alias{
		{From: Key{W: 1, H: 1}, To: Key{W: 1920, H: 1080}},
		{From: Key{W: 2, H: 2}, To: Key{W: 320, H: 240}},
		{From: Key{W: 3, H: 3}, To: Key{W: 800, H: 600}},
	})

	aliases := s.Aliases()
	for i := 1; i < len(aliases); i++ {
		prevArea := aliases[i-1].To.W * aliases[i-1].To.H
		area := aliases[i].To.W * aliases[i].To.H
		if prevArea > area {
			t.Fatalf("aliases not sorted ascending by area: %+v", aliases)
		}
	}
}

func TestCurrentIsAliasedTracksApply(t *testing.T) {
	s := New(testBounds(), nil)
	from := Resolution{W: 800, H: 600}
	s.SetAliases([]Alias{{From: from.Key(), To: Key{W: 1024, H: 768}}})

	driver := &fakeParamWriter{}
	s.Apply(from, driver)
	if !s.CurrentIsAliased() {
		t.Fatal("expected CurrentIsAliased true after applying an aliased resolution")
	}

	s.Apply(Resolution{W: 1024, H: 768}, driver)
	if s.CurrentIsAliased() {
		t.Fatal("expected CurrentIsAliased false for a non-aliased resolution")
	}
}

type fakeParamWriter struct{}

func (fakeParamWriter) SetBrightness(int) bool            { return true }
func (fakeParamWriter) SetContrast(int) bool               { return true }
func (fakeParamWriter) SetColorBalance(ColorParams) bool   { return true }
func (fakeParamWriter) SetPhase(int) bool                  { return true }
func (fakeParamWriter) SetBlackLevel(int) bool             { return true }
func (fakeParamWriter) SetHorPos(int) bool                 { return true }
func (fakeParamWriter) SetVerPos(int) bool                 { return true }
func (fakeParamWriter) SetHorScale(int) bool                { return true }
