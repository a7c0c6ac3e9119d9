package host

import (
	"context"
	"time"
)

// playback position source; implementations are read from the clock
// goroutine and must be safe for concurrent use
type Video interface {
	CurrentTime() (time.Duration, error)
	Viewport() Viewport
}

// on-screen size of the video in CSS pixels (or terminal cells)
type Viewport struct {
	Width  float64
	Height float64
}

// Surface is the mount point laid over the video. It hosts named regions
// for text and named rulesets for presentation.
type Surface interface {
	ID() string
	Viewport() Viewport

	// returns the existing region with this id or creates it
	Region(id string) (Region, error)
	RemoveRegion(id string)

	// replaces any ruleset with the same id
	SetRuleset(r Ruleset) error
	RemoveRuleset(id string)

	// styling of the surface itself, used by renderers that paint into it
	// wholesale
	ApplyContainerStyle(style ContainerStyle) error
	// drops whatever ApplyContainerStyle set
	ResetContainerStyle() error
}

type Region interface {
	Show(content Content) error
	Hide() error
	SetStyle(style RegionStyle) error
}

// text to display; HTML is the escaped markup form of Lines
type Content struct {
	Lines []string
	HTML  string
}

// Target is what discovery resolves: a playing video and the surface
// mounted over it.
type Target struct {
	Video   Video
	Surface Surface
	URL     string
}

// Discoverer locates the video and its player container. Discover returns
// a nil target with a nil error while either is still missing.
type Discoverer interface {
	Discover(ctx context.Context) (*Target, error)
}

// optional capability of a Discoverer: the page replaced its player
// container without a full load (single-page navigation)
type NavigationSource interface {
	SubscribeNavigation(fn func(url string)) (cancel func())
}

type DisplayChange int

const (
	DisplayResized DisplayChange = iota
	DisplayMetadataLoaded
	DisplayFullscreen
)

func (c DisplayChange) String() string {
	switch c {
	case DisplayResized:
		return "resized"
	case DisplayMetadataLoaded:
		return "metadata"
	case DisplayFullscreen:
		return "fullscreen"
	default:
		return "unknown"
	}
}

// optional capability of a Discoverer: geometry of the video changed
type DisplaySource interface {
	SubscribeDisplay(fn func(DisplayChange)) (cancel func())
}
