package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mgpai22/subplay/internal/assrender"
	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/player"
	"github.com/mgpai22/subplay/internal/settings"
	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/mgpai22/subplay/internal/terminal"
	"github.com/mgpai22/subplay/internal/transport"
)

const readyTimeout = 30 * time.Second

// interruptContext is cancelled on SIGINT or SIGTERM.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newSession(discoverer host.Discoverer, load assrender.Loader) *player.Session {
	return player.New(player.Config{
		Discoverer:        discoverer,
		Store:             settings.NewFileStore(cfg.SettingsFile, logger),
		Library:           assrender.NewSingleton(load, logger),
		FrameInterval:     cfg.FrameInterval,
		DiscoveryInterval: cfg.Discovery.Interval,
		NavigationDelay:   cfg.Discovery.NavigationDelay,
		WatchPattern:      cfg.Discovery.WatchPattern,
		Logger:            logger,
	})
}

// newTerminalHost paints to stdout at the configured size.
func newTerminalHost(duration time.Duration) *terminal.Host {
	surface := terminal.NewSurface(
		"subplay-terminal",
		os.Stdout,
		cfg.Terminal.Width,
		cfg.Terminal.Height,
	)
	clock := terminal.NewClock(surface.Viewport(), duration)
	return terminal.NewHost(clock, surface)
}

func terminalLoader() assrender.Loader {
	return assrender.BuiltinLoader(cfg.FrameInterval, logger)
}

// waitReady blocks until the session has found its video.
func waitReady(ctx context.Context, session *player.Session) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for !session.Ready() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("no video found: %w", ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

func loadFile(ctx context.Context, session *player.Session, path string) (*subtitle.Document, error) {
	doc, err := subtitle.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle: %w", err)
	}
	if err := session.LoadDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to load subtitle: %w", err)
	}
	logger.Infow("Subtitle loaded",
		"file", doc.Name,
		"format", doc.Format,
		"cues", len(doc.Cues),
	)
	return doc, nil
}

// serveMessages runs the HTTP endpoint until ctx is done.
func serveMessages(ctx context.Context, session *player.Session) error {
	server := transport.NewServer(player.NewHandler(session, logger), logger)
	return server.ListenAndServe(ctx, cfg.HTTPAddr)
}
