// Package syncclock turns a continuously advancing video position into
// discrete "active cue changed" notifications.
package syncclock

import (
	"context"
	"math"
	"time"

	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/logging"
	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/mgpai22/subplay/internal/timeline"
)

const (
	DefaultFrameInterval = 16 * time.Millisecond

	// a forward jump this far past expected progress counts as a seek
	seekTolerance = time.Second
	// wall time over which the playback rate is estimated
	rateWindow = 500 * time.Millisecond
	// smallest rate change reported
	rateThreshold = 0.25
)

// receives the active cue; nil means nothing is active
type Sink interface {
	Update(cue *subtitle.Cue)
}

// FrameSource delivers one value per display frame.
type FrameSource interface {
	Frames() <-chan time.Time
	Stop()
}

type ticker struct {
	t *time.Ticker
}

func NewTicker(interval time.Duration) FrameSource {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &ticker{t: time.NewTicker(interval)}
}

func (t *ticker) Frames() <-chan time.Time { return t.t.C }
func (t *ticker) Stop()                    { t.t.Stop() }

type EventKind int

const (
	EventSeek EventKind = iota
	EventRateChange
)

func (k EventKind) String() string {
	if k == EventSeek {
		return "seek"
	}
	return "rate_change"
}

// Event describes a discontinuity seen between two frames.
type Event struct {
	Kind EventKind
	From time.Duration
	To   time.Duration
	// estimated playback rate before and after; 0 means paused
	FromRate float64
	ToRate   float64
}

type Option func(*Clock)

func WithFrameSource(newSource func() FrameSource) Option {
	return func(c *Clock) { c.newSource = newSource }
}

func WithInterval(d time.Duration) Option {
	return func(c *Clock) {
		c.newSource = func() FrameSource { return NewTicker(d) }
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Clock) { c.logger = logging.OrNop(l).Named("clock") }
}

// observer for seeks and rate changes, called on the clock goroutine
func WithEvents(fn func(Event)) Option {
	return func(c *Clock) { c.onEvent = fn }
}

// Clock polls the video once per frame and pushes the active cue to the
// sink whenever it changes.
type Clock struct {
	index     *timeline.TimeIndex
	video     host.Video
	sink      Sink
	newSource func() FrameSource
	logger    *logging.Logger
	onEvent   func(Event)

	pushed    bool
	lastIndex int

	sampled   bool
	lastMedia time.Duration
	lastWall  time.Time

	rate        float64
	windowMedia time.Duration
	windowWall  time.Time
}

func New(index *timeline.TimeIndex, video host.Video, sink Sink, opts ...Option) *Clock {
	c := &Clock{
		index:     index,
		video:     video,
		sink:      sink,
		newSource: func() FrameSource { return NewTicker(DefaultFrameInterval) },
		logger:    logging.NewNop(),
		lastIndex: -1,
		rate:      1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run evaluates once immediately and then on every frame until ctx is
// done. A Clock must not be run twice.
func (c *Clock) Run(ctx context.Context) {
	source := c.newSource()
	defer source.Stop()

	frames := source.Frames()
	now := time.Now()
	for {
		if ctx.Err() != nil {
			return
		}
		c.Tick(now)

		select {
		case <-ctx.Done():
			return
		case now = <-frames:
		}
	}
}

// Tick runs one evaluation at wall time now.
func (c *Clock) Tick(now time.Time) {
	media, err := c.video.CurrentTime()
	if err != nil {
		c.logger.Debugw("video time unavailable, skipping frame", "error", err)
		return
	}

	c.observe(media, now)

	i := c.index.ActiveIndex(media)
	if c.pushed && i == c.lastIndex {
		return
	}
	c.pushed = true
	c.lastIndex = i

	if i < 0 {
		c.sink.Update(nil)
		return
	}
	cue := c.index.Cue(i)
	c.sink.Update(&cue)
}

// detects seeks and rate changes; the lookup itself does not depend on it
func (c *Clock) observe(media time.Duration, now time.Time) {
	if !c.sampled {
		c.sampled = true
		c.resetWindow(media, now)
		c.lastMedia, c.lastWall = media, now
		return
	}

	dm := media - c.lastMedia
	dw := now.Sub(c.lastWall)
	c.lastMedia, c.lastWall = media, now

	expected := time.Duration(float64(dw) * math.Max(c.rate, 1))
	if dm < 0 || dm > expected+seekTolerance {
		c.emit(Event{Kind: EventSeek, From: media - dm, To: media, FromRate: c.rate, ToRate: c.rate})
		c.resetWindow(media, now)
		return
	}

	window := now.Sub(c.windowWall)
	if window < rateWindow {
		return
	}
	observed := float64(media-c.windowMedia) / float64(window)
	c.resetWindow(media, now)

	if math.Abs(observed-c.rate) > rateThreshold {
		prev := c.rate
		c.rate = observed
		c.emit(Event{Kind: EventRateChange, From: media, To: media, FromRate: prev, ToRate: observed})
	}
}

func (c *Clock) resetWindow(media time.Duration, now time.Time) {
	c.windowMedia = media
	c.windowWall = now
}

func (c *Clock) emit(e Event) {
	switch e.Kind {
	case EventSeek:
		c.logger.Debugw("seek detected", "from", e.From, "to", e.To)
	case EventRateChange:
		c.logger.Debugw("playback rate changed",
			"from", math.Round(e.FromRate*100)/100,
			"to", math.Round(e.ToRate*100)/100,
		)
	}
	if c.onEvent != nil {
		c.onEvent(e)
	}
}
