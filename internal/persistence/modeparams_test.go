package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bryanchriswhite/vcsengine/internal/modestore"
)

func TestModeParamsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modes.csv")

	in := []modestore.ModeParams{
		{
			Resolution: modestore.Resolution{W: 1280, H: 1024, BPP: 32},
			Color: modestore.ColorParams{
				Bright: 1, Contr: 2, RedBright: 3, GreenBright: 4, BlueBright: 5,
				RedContr: 6, GreenContr: 7, BlueContr: 8,
			},
			Geometry: modestore.GeometryParams{
				Phase: 9, BlackLevel: 10, HorPos: 11, VerPos: 12, HorScale: 13,
			},
		},
	}

	if err := SaveModeParams(path, in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	out, err := LoadModeParams(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(out))
	}
	if out[0] != in[0] {
		t.Fatalf("round trip mismatch: got %+v want %+v", out[0], in[0])
	}
}

func TestModeParamsWrongKeyOrderAborts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modes.csv")
	content := "resolution,1280,1024\nhPos,1\nvPos,2\nhScale,3\nphase,4\nbLevel,5\nbright,6\ncontr,7\nredBr,8\nredCn,9\ngreenBr,10\ngreenCn,11\nblueBr,12\nblueCn,13\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadModeParams(path); err == nil {
		t.Fatal("expected swapped key order (hPos before vPos) to abort the load")
	}
}

func TestModeParamsMultipleBlocksSeparatedByBlankLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modes.csv")

	in := []modestore.ModeParams{
		{Resolution: modestore.Resolution{W: 640, H: 480, BPP: 32}},
		{Resolution: modestore.Resolution{W: 1920, H: 1080, BPP: 32}},
	}
	if err := SaveModeParams(path, in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	out, err := LoadModeParams(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
}
