// Package browser hosts a session in a Chromium page driven over the
// DevTools protocol: the page's video element is the clock and an overlay
// inside its player container is the mount point.
package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/logging"
)

type Options struct {
	Headless bool
	// first element matching is the clock
	VideoSelector string
	// closest ancestor of the video matching this becomes the mount point;
	// empty means the video's parent
	ContainerSelector string
	// where the page loads ass.js from
	AssJSURL string
	// per-call limit for page scripts
	Timeout time.Duration
	// how often geometry and fullscreen state are sampled
	DisplayPollInterval time.Duration
	Logger              *logging.Logger
}

func (o *Options) setDefaults() {
	if o.VideoSelector == "" {
		o.VideoSelector = "video"
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.DisplayPollInterval <= 0 {
		o.DisplayPollInterval = 500 * time.Millisecond
	}
	o.Logger = logging.OrNop(o.Logger)
}

// Browser owns the launched browser and the one page subtitles are shown
// in.
type Browser struct {
	opts   Options
	logger *logging.Logger

	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	navigation listeners[string]
	display    listeners[host.DisplayChange]

	mu        sync.Mutex
	stopWatch context.CancelFunc
}

// Launch starts a browser with a blank page.
func Launch(opts Options) (*Browser, error) {
	opts.setDefaults()

	l := launcher.New().Headless(opts.Headless)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("error launching browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("error connecting to browser: %w", err)
	}

	var page *rod.Page
	func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "Error creating page: %v\n", r)
			}
		}()
		page = browser.MustPage()
	}()
	if page == nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to create page")
	}

	return &Browser{
		opts:     opts,
		logger:   opts.Logger.Named("browser"),
		launcher: l,
		browser:  browser,
		page:     page,
	}, nil
}

// Open navigates to url, waits for the load event and starts watching for
// navigation and display changes.
func (b *Browser) Open(url string) error {
	page := b.page.Timeout(30 * time.Second)
	defer page.CancelTimeout()

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("error navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("error waiting for page load: %w", err)
	}

	b.logger.Infow("page loaded", "url", url)
	b.watch()
	return nil
}

func (b *Browser) watch() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopWatch != nil {
		b.stopWatch()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.stopWatch = cancel

	_ = proto.PageEnable{}.Call(b.page)

	go b.page.Context(ctx).EachEvent(
		func(e *proto.PageNavigatedWithinDocument) {
			b.navigation.emit(e.URL)
		},
		func(e *proto.PageFrameNavigated) {
			if e.Frame != nil && e.Frame.ParentID == "" {
				b.navigation.emit(e.Frame.URL)
			}
		},
	)()
	go b.pollDisplay(ctx)
}

func (b *Browser) Close() {
	b.mu.Lock()
	if b.stopWatch != nil {
		b.stopWatch()
		b.stopWatch = nil
	}
	b.mu.Unlock()

	if b.page != nil {
		_ = b.page.Close()
	}
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Cleanup()
	}
}

// eval runs a page function and decodes its result into v when v is not
// nil.
func (b *Browser) eval(ctx context.Context, v any, js string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	res, err := b.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return failure.Wrap(failure.ErrTransport, err, "page script failed")
	}
	if v == nil {
		return nil
	}
	if err := res.Value.Unmarshal(v); err != nil {
		return fmt.Errorf("unexpected page script result: %w", err)
	}
	return nil
}

func (b *Browser) SubscribeNavigation(fn func(url string)) func() {
	return b.navigation.add(fn)
}

// listeners is a set of callbacks that can be removed individually.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *listeners[T]) emit(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
