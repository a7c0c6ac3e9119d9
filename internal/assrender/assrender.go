// Package assrender is the handle to an ASS rendering engine. The engine
// parses and paints ASS documents on its own; callers only construct,
// resize and tear down instances.
package assrender

import (
	"context"
	"fmt"
	"sync"

	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/logging"
)

const ResampleVideoHeight = "video_height"

// fonts offered to the engine when the host cannot list installed ones
var DefaultFonts = []string{
	"Microsoft YaHei",
	"SimHei",
	"SimSun",
	"KaiTi",
	"FangSong",
	"PingFang SC",
	"Hiragino Sans GB",
	"Source Han Sans CN",
	"Noto Sans CJK SC",
	"WenQuanYi Micro Hei",
	"Arial",
	"Helvetica",
	"sans-serif",
}

type Options struct {
	Container      host.Surface
	Resampling     string
	AvailableFonts []string
	FallbackFont   string
}

// Instance is a constructed renderer. Which lifecycle methods it has
// depends on the engine; see Capabilities.
type Instance interface{}

type Resizer interface {
	Resize() error
}

type Destroyer interface {
	Destroy() error
}

type Disposer interface {
	Dispose() error
}

// Capabilities lists the optional lifecycle methods of an instance.
type Capabilities struct {
	Resize  bool
	Destroy bool
	Dispose bool
}

func Probe(inst Instance) Capabilities {
	_, resize := inst.(Resizer)
	_, destroy := inst.(Destroyer)
	_, dispose := inst.(Disposer)
	return Capabilities{Resize: resize, Destroy: destroy, Dispose: dispose}
}

// Engine builds renderer instances for one document each.
type Engine interface {
	New(content string, video host.Video, opts Options) (Instance, error)
}

// optional capability of an Engine
type FontLister interface {
	Fonts(ctx context.Context) ([]string, error)
}

// Library is a loaded engine.
type Library struct {
	name   string
	engine Engine
	logger *logging.Logger
}

func NewLibrary(name string, engine Engine, logger *logging.Logger) *Library {
	return &Library{
		name:   name,
		engine: engine,
		logger: logging.OrNop(logger).Named("assrender"),
	}
}

func (l *Library) Name() string {
	return l.name
}

// New constructs an instance and declares its capabilities. Engine errors
// and panics come back marked ErrExternalLibrary.
func (l *Library) New(
	content string,
	video host.Video,
	opts Options,
) (inst Instance, caps Capabilities, err error) {
	defer func() {
		if r := recover(); r != nil {
			inst = nil
			caps = Capabilities{}
			err = failure.Newf(
				failure.ErrExternalLibrary,
				"%s panicked during construction: %v",
				l.name,
				r,
			)
		}
	}()

	inst, err = l.engine.New(content, video, opts)
	if err != nil {
		return nil, Capabilities{}, failure.Wrapf(
			failure.ErrExternalLibrary,
			err,
			"%s could not construct renderer",
			l.name,
		)
	}
	if inst == nil {
		return nil, Capabilities{}, failure.Newf(
			failure.ErrExternalLibrary,
			"%s returned no renderer",
			l.name,
		)
	}

	caps = Probe(inst)
	l.logger.Debugw("renderer constructed",
		"engine", l.name,
		"resize", caps.Resize,
		"destroy", caps.Destroy,
		"dispose", caps.Dispose,
	)
	return inst, caps, nil
}

// AvailableFonts asks the engine for installed fonts and falls back to
// DefaultFonts.
func (l *Library) AvailableFonts(ctx context.Context) []string {
	lister, ok := l.engine.(FontLister)
	if !ok {
		return DefaultFonts
	}
	fonts, err := lister.Fonts(ctx)
	if err != nil || len(fonts) == 0 {
		l.logger.Warnw("could not list fonts, using fallback list", "error", err)
		return DefaultFonts
	}
	return fonts
}

// Loader produces the library, e.g. by injecting a script into a page.
type Loader func(ctx context.Context) (*Library, error)

// Singleton loads the library on first use and hands the same handle to
// every caller afterwards. A failed load is not remembered, so the next
// caller tries again.
type Singleton struct {
	load   Loader
	logger *logging.Logger

	mu  sync.Mutex
	lib *Library
}

func NewSingleton(load Loader, logger *logging.Logger) *Singleton {
	return &Singleton{
		load:   load,
		logger: logging.OrNop(logger).Named("assrender"),
	}
}

func (s *Singleton) EnsureLoaded(ctx context.Context) (*Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lib != nil {
		return s.lib, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, failure.Wrap(failure.ErrExternalLibrary, err, "ASS library load cancelled")
	}

	lib, err := s.loadRecovered(ctx)
	if err != nil {
		return nil, failure.Wrap(failure.ErrExternalLibrary, err, "failed to load ASS library")
	}
	if lib == nil {
		return nil, failure.Newf(failure.ErrExternalLibrary, "ASS library loader returned nothing")
	}

	s.logger.Infow("ASS library loaded", "engine", lib.Name())
	s.lib = lib
	return lib, nil
}

func (s *Singleton) loadRecovered(ctx context.Context) (lib *Library, err error) {
	defer func() {
		if r := recover(); r != nil {
			lib, err = nil, fmt.Errorf("loader panicked: %v", r)
		}
	}()
	return s.load(ctx)
}

func (s *Singleton) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lib != nil
}
