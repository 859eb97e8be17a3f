// Package recorder defines the Recorder collaborator (spec.md §1): an
// out-of-scope frame consumer with a fixed resolution requirement. The
// engine only depends on this interface; a concrete encoder lives
// outside this module's scope.
package recorder

import "github.com/bryanchriswhite/vcsengine/internal/modestore"

// Recorder consumes scaled output frames while active. Its declared
// resolution takes absolute priority in the scaler's target-size
// derivation (spec.md §4.7 step 1).
type Recorder interface {
	// Active reports whether the recorder currently wants frames.
	Active() bool
	// Resolution is the recorder's fixed contract; the scaler must
	// produce exactly this size while Active() is true.
	Resolution() modestore.Resolution
	// PushIfActive delivers one frame's BGRA bytes. Implementations must
	// not block the pipeline thread.
	PushIfActive(pix []byte, resolution modestore.Resolution)
}

// Noop is a Recorder that never activates, used when no recording
// sink is configured.
type Noop struct{}

func (Noop) Active() bool                                        { return false }
func (Noop) Resolution() modestore.Resolution                    { return modestore.Resolution{} }
func (Noop) PushIfActive(pix []byte, resolution modestore.Resolution) {}
