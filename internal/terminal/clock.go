// Package terminal hosts a session without a browser: a simulated video
// clock and a surface painted to a terminal with lipgloss.
package terminal

import (
	"sync"
	"time"

	"github.com/mgpai22/subplay/internal/host"
)

// Clock is a video position that advances with wall time while playing.
// It implements host.Video.
type Clock struct {
	mu  sync.Mutex
	now func() time.Time

	viewport host.Viewport
	duration time.Duration // 0 means unbounded

	// position at anchor
	position time.Duration
	anchor   time.Time
	playing  bool
	rate     float64
}

func NewClock(viewport host.Viewport, duration time.Duration) *Clock {
	return &Clock{
		now:      time.Now,
		viewport: viewport,
		duration: duration,
		rate:     1,
	}
}

func (c *Clock) positionLocked() time.Duration {
	pos := c.position
	if c.playing {
		elapsed := c.now().Sub(c.anchor)
		pos += time.Duration(float64(elapsed) * c.rate)
	}
	if c.duration > 0 && pos > c.duration {
		pos = c.duration
	}
	return pos
}

func (c *Clock) CurrentTime() (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked(), nil
}

func (c *Clock) Viewport() host.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

func (c *Clock) SetViewport(vp host.Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = vp
}

func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.anchor = c.now()
	c.playing = true
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.positionLocked()
	c.playing = false
}

// Seek jumps to pos, clamped to [0, duration].
func (c *Clock) Seek(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if c.duration > 0 && pos > c.duration {
		pos = c.duration
	}
	c.position = pos
	c.anchor = c.now()
}

// SetRate changes the playback speed; non-positive rates are ignored.
func (c *Clock) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.positionLocked()
	c.anchor = c.now()
	c.rate = rate
}

func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Ended reports whether a bounded clock reached its duration.
func (c *Clock) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration > 0 && c.positionLocked() >= c.duration
}

func (c *Clock) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}
