package player

import (
	"context"
	"strings"
	"time"
)

// startDiscovery polls the host until it reports a target, after an
// initial delay. A newer call replaces a poll still in progress.
func (s *Session) startDiscovery(delay time.Duration) {
	s.mu.Lock()
	if s.closed || s.cfg.Discoverer == nil {
		s.mu.Unlock()
		return
	}
	if s.discoveryCancel != nil {
		s.discoveryCancel()
	}
	ctx, cancel := context.WithCancel(s.runCtx)
	s.discoveryCancel = cancel
	s.mu.Unlock()

	go s.discover(ctx, delay)
}

func (s *Session) discover(ctx context.Context, delay time.Duration) {
	if delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	ticker := time.NewTicker(s.cfg.DiscoveryInterval)
	defer ticker.Stop()

	for {
		target, err := s.cfg.Discoverer.Discover(ctx)
		switch {
		case err != nil:
			s.logger.Debugw("video discovery failed", "error", err)
		case target != nil && target.Video != nil && target.Surface != nil:
			if ctx.Err() == nil {
				s.Attach(target)
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// single-page navigation replaces the player without a page load
func (s *Session) onNavigation(url string) {
	if !strings.Contains(url, s.cfg.WatchPattern) {
		s.logger.Debugw("navigation ignored", "url", url)
		return
	}
	s.logger.Debugw("navigation detected, rediscovering video", "url", url)
	s.startDiscovery(s.cfg.NavigationDelay)
}
