// Package player coordinates loading, clearing and restyling subtitles
// over a video discovered in the host.
package player

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mgpai22/subplay/internal/assrender"
	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/logging"
	"github.com/mgpai22/subplay/internal/render"
	"github.com/mgpai22/subplay/internal/settings"
	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/mgpai22/subplay/internal/syncclock"
	"github.com/mgpai22/subplay/internal/timeline"
)

type State int

const (
	StateEmpty State = iota
	StateASS
	StateSRT
)

func (s State) String() string {
	switch s {
	case StateASS:
		return string(subtitle.FormatASS)
	case StateSRT:
		return string(subtitle.FormatSRT)
	default:
		return "empty"
	}
}

type Config struct {
	Discoverer host.Discoverer
	Store      settings.Store
	Library    *assrender.Singleton

	// nil means a ticker at FrameInterval
	FrameSource   func() syncclock.FrameSource
	FrameInterval time.Duration

	DiscoveryInterval time.Duration
	NavigationDelay   time.Duration
	// substring a navigated URL must contain to trigger rediscovery
	WatchPattern string
	// wait after a fullscreen change before reflowing
	FullscreenDelay time.Duration

	Logger *logging.Logger
}

func (c *Config) setDefaults() {
	if c.Store == nil {
		c.Store = settings.NewMemoryStore()
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = syncclock.DefaultFrameInterval
	}
	if c.DiscoveryInterval <= 0 {
		c.DiscoveryInterval = time.Second
	}
	if c.NavigationDelay <= 0 {
		c.NavigationDelay = time.Second
	}
	if c.WatchPattern == "" {
		c.WatchPattern = "/watch"
	}
	if c.FullscreenDelay <= 0 {
		c.FullscreenDelay = 100 * time.Millisecond
	}
	c.Logger = logging.OrNop(c.Logger)
}

type Status struct {
	State    State
	FileName string
	Cues     int
	Ready    bool
}

func (s Status) HasSubtitle() bool {
	return s.State != StateEmpty
}

// Session owns at most one sink and, for SRT, the index and clock that
// feed it. All methods are safe for concurrent use; they are serialized
// by the session mutex except for the slow parts of Load.
type Session struct {
	cfg    Config
	logger *logging.Logger

	// bumped by every Load and Clear; a Load whose number is no longer
	// current must not touch the session
	generation atomic.Uint64

	// serializes Store.Save; acquired while holding mu, never the reverse
	saveMu sync.Mutex

	mu       sync.Mutex
	target   *host.Target
	settings settings.Settings
	state    State
	sink     render.Sink
	fileName string
	cues     int

	clockCancel context.CancelFunc
	clockDone   chan struct{}

	discoveryCancel context.CancelFunc
	runCtx          context.Context
	runCancel       context.CancelFunc
	unsubscribe     []func()
	closed          bool
}

func New(cfg Config) *Session {
	cfg.setDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		cfg:       cfg,
		logger:    cfg.Logger.Named("session"),
		settings:  settings.Defaults(),
		runCtx:    ctx,
		runCancel: cancel,
	}
}

// Start loads stored settings, subscribes to host events and begins
// looking for the video.
func (s *Session) Start(ctx context.Context) error {
	stored, err := s.cfg.Store.Load(ctx)
	if err != nil {
		s.logger.Warnw("could not load stored settings, using defaults", "error", err)
		stored = settings.Defaults()
	}

	s.mu.Lock()
	s.settings = stored
	if s.sink != nil {
		if err := s.sink.Reflow(); err != nil {
			s.logger.Warnw("reflow failed", "error", err)
		}
	}
	s.mu.Unlock()

	if nav, ok := s.cfg.Discoverer.(host.NavigationSource); ok {
		s.addSubscription(nav.SubscribeNavigation(s.onNavigation))
	}
	if display, ok := s.cfg.Discoverer.(host.DisplaySource); ok {
		s.addSubscription(display.SubscribeDisplay(s.Resync))
	}

	s.startDiscovery(0)
	return nil
}

func (s *Session) addSubscription(cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribe = append(s.unsubscribe, cancel)
}

// Attach mounts the session on target. Replacing the surface of an active
// session tears the sink down, since its mount point is gone.
func (s *Session) Attach(target *host.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || target == nil {
		return
	}

	if s.target != nil && s.state != StateEmpty &&
		s.target.Surface.ID() != target.Surface.ID() {
		s.logger.Infow("player container replaced, clearing subtitle",
			"file", s.fileName, "url", target.URL)
		s.generation.Add(1)
		s.teardownLocked()
	}

	s.target = target
	s.logger.Infow("video found", "surface", target.Surface.ID(), "url", target.URL)
}

func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target != nil
}

// LoadDocument loads an already opened subtitle file.
func (s *Session) LoadDocument(ctx context.Context, doc *subtitle.Document) error {
	return s.Load(ctx, doc.Content, doc.Name, doc.Format)
}

// Load replaces whatever is showing with content. On failure the session
// is left empty. A Load overtaken by a newer Load or Clear returns
// ErrSuperseded without touching the session.
func (s *Session) Load(ctx context.Context, content, fileName string, format subtitle.Format) error {
	s.mu.Lock()
	if s.closed || s.target == nil {
		s.mu.Unlock()
		return failure.Newf(failure.ErrNotReady, "video player is not ready")
	}
	gen := s.generation.Add(1)
	s.teardownLocked()
	s.mu.Unlock()

	logger := s.logger.With("file", fileName, "type", format)
	logger.Infow("loading subtitle", "bytes", len(content))

	var (
		sink  render.Sink
		index *timeline.TimeIndex
	)
	switch format {
	case subtitle.FormatSRT:
		cues, err := subtitle.ParseSRT(content)
		if err != nil {
			return err
		}
		index = timeline.New(cues)
		sink = render.NewSRTSink(s.cfg.Logger)
	case subtitle.FormatASS:
		if s.cfg.Library == nil {
			return failure.Newf(failure.ErrExternalLibrary, "no ASS library configured")
		}
		lib, err := s.cfg.Library.EnsureLoaded(ctx)
		if err != nil {
			return err
		}
		sink = render.NewASSSink(lib, content, render.ASSOptions{
			AvailableFonts: lib.AvailableFonts(ctx),
		}, s.cfg.Logger)
	default:
		return failure.Newf(failure.ErrUnsupportedFormat, "unsupported subtitle type %q", format)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation.Load() != gen {
		logger.Infow("load overtaken by a newer request")
		return failure.Newf(failure.ErrSuperseded, "load of %q superseded", fileName)
	}
	if s.closed || s.target == nil {
		return failure.Newf(failure.ErrNotReady, "video player went away during load")
	}

	if err := sink.Activate(s.target.Surface, s.target.Video, &s.settings); err != nil {
		sink.Destroy()
		logger.Warnw("subtitle activation failed", "error", err)
		return err
	}

	s.sink = sink
	s.fileName = fileName
	if index != nil {
		s.cues = index.Len()
		s.state = StateSRT
		s.startClockLocked(index, sink, gen)
	} else {
		s.state = StateASS
	}

	logger.Infow("subtitle loaded", "cues", s.cues)
	return nil
}

// drops clock pushes that belong to an older load
type guardedSink struct {
	sink       render.Sink
	gen        uint64
	generation *atomic.Uint64
}

func (g guardedSink) Update(cue *subtitle.Cue) {
	if g.generation.Load() != g.gen {
		return
	}
	g.sink.Update(cue)
}

func (s *Session) startClockLocked(index *timeline.TimeIndex, sink render.Sink, gen uint64) {
	opts := []syncclock.Option{syncclock.WithLogger(s.cfg.Logger)}
	if s.cfg.FrameSource != nil {
		opts = append(opts, syncclock.WithFrameSource(s.cfg.FrameSource))
	} else {
		opts = append(opts, syncclock.WithInterval(s.cfg.FrameInterval))
	}

	clock := syncclock.New(index, s.target.Video, guardedSink{
		sink:       sink,
		gen:        gen,
		generation: &s.generation,
	}, opts...)

	ctx, cancel := context.WithCancel(s.runCtx)
	done := make(chan struct{})
	s.clockCancel = cancel
	s.clockDone = done

	go func() {
		defer close(done)
		clock.Run(ctx)
	}()
}

// Clear removes any subtitle. It is safe to call in any state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation.Add(1)
	if s.state != StateEmpty {
		s.logger.Infow("subtitle cleared", "file", s.fileName)
	}
	s.teardownLocked()
}

func (s *Session) teardownLocked() {
	if s.clockCancel != nil {
		s.clockCancel()
		<-s.clockDone
		s.clockCancel = nil
		s.clockDone = nil
	}
	if s.sink != nil {
		s.sink.Destroy()
		s.sink = nil
	}
	s.state = StateEmpty
	s.fileName = ""
	s.cues = 0
}

// UpdateSettings merges patch into the live settings, reflows the active
// sink and persists the result.
func (s *Session) UpdateSettings(ctx context.Context, patch settings.Patch) error {
	s.mu.Lock()
	applied := patch.Apply(&s.settings)
	snapshot := s.settings

	if s.sink != nil && len(applied) > 0 && s.affects(applied) {
		if err := s.sink.Reflow(); err != nil {
			s.logger.Warnw("reflow failed", "error", err)
		}
	}
	// taken before mu is released so saves land in the order patches applied
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.mu.Unlock()

	s.logger.Debugw("settings updated", "fields", applied)
	if err := s.cfg.Store.Save(ctx, snapshot); err != nil {
		s.logger.Warnw("could not persist settings", "error", err)
	}
	return nil
}

// SRT-only fields do not change an ASS rendering
func (s *Session) affects(keys []string) bool {
	if s.state != StateASS {
		return true
	}
	for _, key := range keys {
		if !settings.IsSRTOnly(key) {
			return true
		}
	}
	return false
}

func (s *Session) Settings() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:    s.state,
		FileName: s.fileName,
		Cues:     s.cues,
		Ready:    s.target != nil,
	}
}

// Resync reflows the active sink after the video's geometry changed.
// Fullscreen transitions settle first.
func (s *Session) Resync(change host.DisplayChange) {
	if change == host.DisplayFullscreen {
		time.AfterFunc(s.cfg.FullscreenDelay, s.reflow)
		return
	}
	s.reflow()
}

func (s *Session) reflow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink == nil {
		return
	}
	if err := s.sink.Reflow(); err != nil {
		s.logger.Warnw("resync failed", "error", err)
	}
}

// Close stops discovery and clears the session for good.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation.Add(1)
	s.teardownLocked()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	s.runCancel()
	for _, cancel := range unsubscribe {
		cancel()
	}
}
