// Package render paints the active subtitle track onto a host surface.
package render

import (
	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/settings"
	"github.com/mgpai22/subplay/internal/subtitle"
)

// Sink is the rendering strategy for one loaded track.
type Sink interface {
	Format() subtitle.Format
	Capabilities() Capabilities

	// Activate mounts the sink. s is shared with the caller, which mutates
	// it and then calls Reflow.
	Activate(surface host.Surface, video host.Video, s *settings.Settings) error

	// Update shows cue, or hides the text when cue is nil. Sinks that time
	// themselves ignore it.
	Update(cue *subtitle.Cue)

	// Reflow reapplies the settings. Renderer failures are logged, not
	// returned.
	Reflow() error

	// Destroy unmounts the sink. It is safe on a sink that was never
	// activated and on one already destroyed.
	Destroy()
}

// Capabilities are declared once per sink.
type Capabilities struct {
	// needs Update calls from a clock
	Clocked bool

	Resize  bool
	Destroy bool
	Dispose bool
}
