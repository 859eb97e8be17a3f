// Package persistence implements the on-disk CSV-style schemas of
// spec.md §6: aliases, mode params, and the filter-graph file, plus
// atomic file writes and a hot-reload watcher.
package persistence

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bryanchriswhite/vcsengine/internal/modestore"
	"github.com/bryanchriswhite/vcsengine/internal/vcserr"
)

// LoadAliases parses the aliases file: one `from_w,from_h,to_w,to_h,`
// per line, trailing comma significant. A malformed row aborts the
// entire load; partial application is forbidden (spec.md §6).
func LoadAliases(path string) ([]modestore.Alias, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, vcserr.Wrap(vcserr.FileOpenFailed, "failed to open aliases file", err)
	}
	defer f.Close()

	var out []modestore.Alias
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		alias, err := parseAliasLine(line)
		if err != nil {
			return nil, vcserr.Wrap(vcserr.FileParseFailed, fmt.Sprintf("aliases file line %d", lineNo), err)
		}
		out = append(out, alias)
	}
	if err := scanner.Err(); err != nil {
		return nil, vcserr.Wrap(vcserr.FileParseFailed, "failed to read aliases file", err)
	}
	return out, nil
}

func parseAliasLine(line string) (modestore.Alias, error) {
	fields := strings.Split(line, ",")
	// Trailing comma is significant: "a,b,c,d," splits into 5 fields
	// with a trailing empty string, which we require and then discard.
	if len(fields) != 5 || fields[4] != "" {
		return modestore.Alias{}, fmt.Errorf("expected 4 comma-separated integers with a trailing comma, got %q", line)
	}
	vals := make([]int, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil || v <= 0 {
			return modestore.Alias{}, fmt.Errorf("field %d must be a positive integer, got %q", i, fields[i])
		}
		vals[i] = v
	}
	return modestore.Alias{
		From: modestore.Key{W: vals[0], H: vals[1]},
		To:   modestore.Key{W: vals[2], H: vals[3]},
	}, nil
}

// SaveAliases writes aliases in the format LoadAliases expects, atomically.
func SaveAliases(path string, aliases []modestore.Alias) error {
	var sb strings.Builder
	for _, a := range aliases {
		fmt.Fprintf(&sb, "%d,%d,%d,%d,\n", a.From.W, a.From.H, a.To.W, a.To.H)
	}
	return atomicWrite(path, []byte(sb.String()))
}
