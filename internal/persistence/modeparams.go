package persistence

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/bryanchriswhite/vcsengine/internal/modestore"
	"github.com/bryanchriswhite/vcsengine/internal/vcserr"
)

// modeParamKeys is the exact, ordered key sequence each mode-params
// block must follow (spec.md §6). Any deviation in order or spelling
// aborts the load.
var modeParamKeys = []string{
	"vPos", "hPos", "hScale", "phase", "bLevel",
	"bright", "contr", "redBr", "redCn", "greenBr", "greenCn", "blueBr", "blueCn",
}

// LoadModeParams parses blank-line-separated blocks, each beginning
// with "resolution,W,H" followed by exactly the 13 keys above in order.
func LoadModeParams(path string) ([]modestore.ModeParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, vcserr.Wrap(vcserr.FileOpenFailed, "failed to open mode-params file", err)
	}
	defer f.Close()

	var out []modestore.ModeParams
	scanner := bufio.NewScanner(f)
	lineNo := 0

	next := func() (string, bool) {
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if line == "" {
				continue
			}
			return line, true
		}
		return "", false
	}

	for {
		line, ok := next()
		if !ok {
			break
		}

		header := strings.Split(line, ",")
		if len(header) != 3 || header[0] != "resolution" {
			return nil, vcserr.New(vcserr.FileParseFailed, fmt.Sprintf("mode-params line %d: expected resolution,W,H header", lineNo))
		}
		w, errW := strconv.Atoi(header[1])
		h, errH := strconv.Atoi(header[2])
		if errW != nil || errH != nil {
			return nil, vcserr.New(vcserr.FileParseFailed, fmt.Sprintf("mode-params line %d: invalid resolution values", lineNo))
		}

		values := make(map[string]int, len(modeParamKeys))
		for _, wantKey := range modeParamKeys {
			kvLine, ok := next()
			if !ok {
				return nil, vcserr.New(vcserr.FileParseFailed, fmt.Sprintf("mode-params: unexpected end of file, expected key %q", wantKey))
			}
			kv := strings.SplitN(kvLine, ",", 2)
			if len(kv) != 2 || kv[0] != wantKey {
				return nil, vcserr.New(vcserr.FileParseFailed, fmt.Sprintf("mode-params line %d: expected key %q, got %q", lineNo, wantKey, kvLine))
			}
			v, err := strconv.Atoi(kv[1])
			if err != nil {
				return nil, vcserr.New(vcserr.FileParseFailed, fmt.Sprintf("mode-params line %d: invalid integer for key %q", lineNo, wantKey))
			}
			values[wantKey] = v
		}

		out = append(out, modestore.ModeParams{
			Resolution: modestore.Resolution{W: w, H: h, BPP: 32},
			Color: modestore.ColorParams{
				Bright:      values["bright"],
				Contr:       values["contr"],
				RedBright:   values["redBr"],
				GreenBright: values["greenBr"],
				BlueBright:  values["blueBr"],
				RedContr:    values["redCn"],
				GreenContr:  values["greenCn"],
				BlueContr:   values["blueCn"],
			},
			Geometry: modestore.GeometryParams{
				Phase:      values["phase"],
				BlackLevel: values["bLevel"],
				HorPos:     values["hPos"],
				VerPos:     values["vPos"],
				HorScale:   values["hScale"],
			},
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, vcserr.Wrap(vcserr.FileParseFailed, "failed to read mode-params file", err)
	}

	return out, nil
}

// SaveModeParams writes blocks in the format LoadModeParams expects,
// sorted by (W,H) for determinism, atomically.
func SaveModeParams(path string, modes []modestore.ModeParams) error {
	sorted := append([]modestore.ModeParams(nil), modes...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Resolution.W != sorted[j].Resolution.W {
			return sorted[i].Resolution.W < sorted[j].Resolution.W
		}
		return sorted[i].Resolution.H < sorted[j].Resolution.H
	})
	var sb strings.Builder
	for i, m := range sorted {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "resolution,%d,%d\n", m.Resolution.W, m.Resolution.H)
		fmt.Fprintf(&sb, "vPos,%d\n", m.Geometry.VerPos)
		fmt.Fprintf(&sb, "hPos,%d\n", m.Geometry.HorPos)
		fmt.Fprintf(&sb, "hScale,%d\n", m.Geometry.HorScale)
		fmt.Fprintf(&sb, "phase,%d\n", m.Geometry.Phase)
		fmt.Fprintf(&sb, "bLevel,%d\n", m.Geometry.BlackLevel)
		fmt.Fprintf(&sb, "bright,%d\n", m.Color.Bright)
		fmt.Fprintf(&sb, "contr,%d\n", m.Color.Contr)
		fmt.Fprintf(&sb, "redBr,%d\n", m.Color.RedBright)
		fmt.Fprintf(&sb, "redCn,%d\n", m.Color.RedContr)
		fmt.Fprintf(&sb, "greenBr,%d\n", m.Color.GreenBright)
		fmt.Fprintf(&sb, "greenCn,%d\n", m.Color.GreenContr)
		fmt.Fprintf(&sb, "blueBr,%d\n", m.Color.BlueBright)
		fmt.Fprintf(&sb, "blueCn,%d\n", m.Color.BlueContr)
	}
	return atomicWrite(path, []byte(sb.String()))
}
