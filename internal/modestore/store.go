package modestore

import (
	"sort"
	"sync"
)

// Event is emitted by the store for state changes the GUI shell status
// bus needs to surface (spec.md §4.3, §6).
type Event int

const (
	// EventNewKnownMode fires when Upsert creates an entry that did not
	// exist before.
	EventNewKnownMode Event = iota
)

// EventSink receives store events. The real implementation lives in
// internal/statusbus; tests may supply a recording stub.
type EventSink interface {
	NewKnownMode(r Resolution)
}

type noopSink struct{}

func (noopSink) NewKnownMode(Resolution) {}

// ParamWriter is the subset of CaptureDriver the store needs to push a
// mode's parameters to hardware. It is declared locally (rather than
// importing internal/capturedriver) so that modestore has no dependency
// on the driver package; internal/capturedriver.Driver satisfies it
// structurally.
type ParamWriter interface {
	SetBrightness(v int) bool
	SetContrast(v int) bool
	SetColorBalance(c ColorParams) bool
	SetPhase(v int) bool
	SetBlackLevel(v int) bool
	SetHorPos(v int) bool
	SetVerPos(v int) bool
	SetHorScale(v int) bool
}

// Store is the keyed map resolution -> (color, geometry) params, plus the
// alias table (spec.md §4.3).
type Store struct {
	mu sync.RWMutex

	bounds  DriverBounds
	entries map[Key]ModeParams

	aliases  map[Key]Key // from -> to, at most one per From key
	current  Key         // last resolution seen by Apply
	aliased  bool        // true if `current` was itself a From in the alias table

	sink EventSink
}

// New creates a Store using the given driver-reported bounds to
// manufacture default entries. A nil sink is replaced with a no-op.
func New(bounds DriverBounds, sink EventSink) *Store {
	if sink == nil {
		sink = noopSink{}
	}
	return &Store{
		bounds:  bounds,
		entries: make(map[Key]ModeParams),
		aliases: make(map[Key]Key),
		sink:    sink,
	}
}

// Upsert creates an entry with driver defaults if one doesn't exist for
// resolution's (w,h), then overwrites only the fields the caller
// supplied. It emits EventNewKnownMode on creation, never on update.
func (s *Store) Upsert(resolution Resolution, color *ColorParams, geometry *GeometryParams) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := resolution.Key()
	entry, exists := s.entries[key]
	if !exists {
		entry = ModeParams{
			Resolution: resolution,
			Color:      s.bounds.DefaultColor(),
			Geometry:   s.bounds.DefaultGeometry(),
		}
	} else {
		entry.Resolution = resolution
	}

	if color != nil {
		entry.Color = s.bounds.ClampColor(*color)
	}
	if geometry != nil {
		entry.Geometry = s.bounds.ClampGeometry(*geometry)
	}

	s.entries[key] = entry

	if !exists {
		s.sink.NewKnownMode(resolution)
	}
}

// ParamsFor returns the stored entry for resolution, or a fresh default
// entry if none exists. The fresh entry is NOT inserted into the store
// (spec.md §4.3).
func (s *Store) ParamsFor(resolution Resolution) ModeParams {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry, ok := s.entries[resolution.Key()]; ok {
		return entry
	}
	return ModeParams{
		Resolution: resolution,
		Color:      s.bounds.DefaultColor(),
		Geometry:   s.bounds.DefaultGeometry(),
	}
}

// ResolveAlias returns the resolution `from` should be substituted with,
// if any alias exists for it.
func (s *Store) ResolveAlias(from Resolution) (Resolution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	to, ok := s.aliases[from.Key()]
	if !ok {
		return Resolution{}, false
	}
	return Resolution{W: to.W, H: to.H, BPP: from.BPP}, true
}

// SetAliases replaces the alias set atomically. Duplicate From keys in
// the input list resolve last-write-wins (spec.md §4.3 tie-break).
// Re-applying the same list is a no-op (spec.md §8 idempotence) in the
// sense that the resulting alias table is identical; callers that care
// about churn should compare before calling.
func (s *Store) SetAliases(list []Alias) {
	next := make(map[Key]Key, len(list))
	for _, a := range list {
		next[a.From] = a.To
	}

	s.mu.Lock()
	s.aliases = next
	s.aliased = s.currentIsAliasedLocked()
	s.mu.Unlock()
}

// Aliases returns the alias set sorted by To.W*To.H ascending. This
// ordering is presentation-only and never affects ResolveAlias lookup
// (spec.md §4.3).
func (s *Store) Aliases() []Alias {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Alias, 0, len(s.aliases))
	for from, to := range s.aliases {
		out = append(out, Alias{From: from, To: to})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].To.W*out[i].To.H < out[j].To.W*out[j].To.H
	})
	return out
}

// Apply writes every parameter in ParamsFor(resolution) to the driver
// and records resolution as the store's current capture resolution for
// CurrentIsAliased reporting.
func (s *Store) Apply(resolution Resolution, driver ParamWriter) {
	params := s.ParamsFor(resolution)

	driver.SetBrightness(params.Color.Bright)
	driver.SetContrast(params.Color.Contr)
	driver.SetColorBalance(params.Color)
	driver.SetPhase(params.Geometry.Phase)
	driver.SetBlackLevel(params.Geometry.BlackLevel)
	driver.SetHorPos(params.Geometry.HorPos)
	driver.SetVerPos(params.Geometry.VerPos)
	driver.SetHorScale(params.Geometry.HorScale)

	s.mu.Lock()
	s.current = resolution.Key()
	s.aliased = s.currentIsAliasedLocked()
	s.mu.Unlock()
}

// currentIsAliasedLocked must be called with mu held.
func (s *Store) currentIsAliasedLocked() bool {
	_, ok := s.aliases[s.current]
	return ok
}

// CurrentIsAliased reports whether the capture resolution most recently
// passed to Apply is itself a From key in the alias table (i.e. the
// engine is expected to force a switch away from it). This is the cached
// flag referenced by spec.md §4.3 and §9 (IS_ALIASED_INPUT_RESOLUTION in
// the original implementation).
func (s *Store) CurrentIsAliased() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aliased
}

// Entries returns a snapshot of all stored mode entries, for
// persistence.
func (s *Store) Entries() []ModeParams {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ModeParams, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resolution.W != out[j].Resolution.W {
			return out[i].Resolution.W < out[j].Resolution.W
		}
		return out[i].Resolution.H < out[j].Resolution.H
	})
	return out
}
