package terminal

import (
	"context"
	"sync"

	"github.com/mgpai22/subplay/internal/host"
)

// Host hands a clock and a surface to a session. The target is available
// immediately, so discovery succeeds on its first poll.
type Host struct {
	Clock   *Clock
	Surface *Surface

	mu      sync.Mutex
	display []func(host.DisplayChange)
}

func NewHost(clock *Clock, surface *Surface) *Host {
	return &Host{Clock: clock, Surface: surface}
}

func (h *Host) Target() *host.Target {
	return &host.Target{
		Video:   h.Clock,
		Surface: h.Surface,
		URL:     "terminal://" + h.Surface.ID(),
	}
}

func (h *Host) Discover(ctx context.Context) (*host.Target, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.Target(), nil
}

func (h *Host) SubscribeDisplay(fn func(host.DisplayChange)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.display = append(h.display, fn)
	i := len(h.display) - 1
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.display[i] = nil
	}
}

// Resize applies a new terminal size and reports it as a video resize.
func (h *Host) Resize(cols, rows int) {
	h.Surface.Resize(cols, rows)
	h.Clock.SetViewport(h.Surface.Viewport())

	h.mu.Lock()
	fns := append([]func(host.DisplayChange){}, h.display...)
	h.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(host.DisplayResized)
		}
	}
}
