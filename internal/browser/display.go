package browser

import (
	"context"
	"time"

	"github.com/mgpai22/subplay/internal/host"
)

func (b *Browser) SubscribeDisplay(fn func(host.DisplayChange)) func() {
	return b.display.add(fn)
}

// the part of videoState that triggers a resync when it changes
type displayState struct {
	Width      float64
	Height     float64
	Metadata   bool
	Fullscreen bool
}

func displayOf(st videoState) displayState {
	return displayState{
		Width:      st.Width,
		Height:     st.Height,
		Metadata:   st.ReadyState >= 1,
		Fullscreen: st.Fullscreen,
	}
}

// diffDisplay lists the changes between two samples. A fullscreen toggle
// implies a resize and is reported alone.
func diffDisplay(prev, cur displayState) []host.DisplayChange {
	var changes []host.DisplayChange
	if !prev.Metadata && cur.Metadata {
		changes = append(changes, host.DisplayMetadataLoaded)
	}
	switch {
	case prev.Fullscreen != cur.Fullscreen:
		changes = append(changes, host.DisplayFullscreen)
	case prev.Width != cur.Width || prev.Height != cur.Height:
		changes = append(changes, host.DisplayResized)
	}
	return changes
}

func (b *Browser) pollDisplay(ctx context.Context) {
	ticker := time.NewTicker(b.opts.DisplayPollInterval)
	defer ticker.Stop()

	var (
		prev displayState
		seen bool
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		st, err := b.videoState(ctx)
		if err != nil {
			// no video between navigations; start over when one appears
			seen = false
			continue
		}
		cur := displayOf(st)
		if seen {
			for _, change := range diffDisplay(prev, cur) {
				b.logger.Debugw("display changed", "change", change.String())
				b.display.emit(change)
			}
		}
		prev, seen = cur, true
	}
}
