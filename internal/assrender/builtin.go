package assrender

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/asticode/go-astisub"

	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/logging"
)

const (
	BuiltinName = "astisub"

	// region the builtin engine paints into
	BuiltinRegionID = "ass-subtitle-layer"

	defaultPlayResY = 288
	defaultFontSize = 20
)

// BuiltinEngine renders the text of ASS events with go-astisub. It keeps
// event timing and line breaks and ignores override tags.
type BuiltinEngine struct {
	interval time.Duration
	logger   *logging.Logger
}

func NewBuiltinEngine(interval time.Duration, logger *logging.Logger) *BuiltinEngine {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &BuiltinEngine{
		interval: interval,
		logger:   logging.OrNop(logger).Named("astisub"),
	}
}

// BuiltinLoader returns a Loader for the builtin engine; it never fails.
func BuiltinLoader(interval time.Duration, logger *logging.Logger) Loader {
	return func(ctx context.Context) (*Library, error) {
		return NewLibrary(BuiltinName, NewBuiltinEngine(interval, logger), logger), nil
	}
}

func (e *BuiltinEngine) New(content string, video host.Video, opts Options) (Instance, error) {
	subs, err := astisub.ReadFromSSA(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	if opts.Container == nil {
		return nil, errNoContainer
	}

	region, err := opts.Container.Region(BuiltinRegionID)
	if err != nil {
		return nil, err
	}

	inst := &builtinInstance{
		items:    subs.Items,
		video:    video,
		surface:  opts.Container,
		region:   region,
		opts:     opts,
		playResY: defaultPlayResY,
		fontSize: defaultFontSize,
		logger:   e.logger,
		done:     make(chan struct{}),
	}
	if subs.Metadata != nil && subs.Metadata.SSAPlayResY != nil && *subs.Metadata.SSAPlayResY > 0 {
		inst.playResY = *subs.Metadata.SSAPlayResY
	}
	if style, ok := subs.Styles["Default"]; ok && style.InlineStyle != nil && style.InlineStyle.SSAFontSize != nil {
		inst.fontSize = *style.InlineStyle.SSAFontSize
	}

	if err := inst.Resize(); err != nil {
		opts.Container.RemoveRegion(BuiltinRegionID)
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	inst.cancel = cancel
	go inst.run(ctx, e.interval)

	return inst, nil
}

type builtinError string

func (e builtinError) Error() string { return string(e) }

const errNoContainer = builtinError("no container to render into")

type builtinInstance struct {
	items    []*astisub.Item
	video    host.Video
	surface  host.Surface
	region   host.Region
	opts     Options
	playResY int
	fontSize float64
	logger   *logging.Logger

	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	shown     string
	destroyed bool
}

func (b *builtinInstance) run(ctx context.Context, interval time.Duration) {
	defer close(b.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		b.tick()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (b *builtinInstance) tick() {
	t, err := b.video.CurrentTime()
	if err != nil {
		b.logger.Debugw("video time unavailable", "error", err)
		return
	}

	var lines []string
	for _, item := range b.items {
		if item.StartAt <= t && t <= item.EndAt {
			for _, line := range item.Lines {
				lines = append(lines, line.String())
			}
		}
	}
	key := strings.Join(lines, "\n")

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed || key == b.shown {
		return
	}
	b.shown = key

	if len(lines) == 0 {
		_ = b.region.Hide()
		return
	}
	if err := b.region.Show(host.Content{Lines: lines}); err != nil {
		b.logger.Debugw("paint failed", "error", err)
	}
}

// Resize scales the document's font size from script resolution to the
// current video height.
func (b *builtinInstance) Resize() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return nil
	}

	size := b.fontSize
	if b.opts.Resampling == ResampleVideoHeight {
		if h := b.video.Viewport().Height; h > 0 {
			size = b.fontSize * h / float64(b.playResY)
		}
	}

	family := b.opts.FallbackFont
	if family == "" && len(b.opts.AvailableFonts) > 0 {
		family = b.opts.AvailableFonts[0]
	}

	return b.region.SetStyle(host.RegionStyle{
		BottomPercent: 5,
		FontFamily:    family,
		FontSize:      int(math.Round(size)),
		FontWeight:    "normal",
		FontStyle:     "normal",
		TextAlign:     "center",
		Color:         "#ffffff",
		LineHeight:    1.2,
		Opacity:       1,
		Shadows: []host.Shadow{
			{X: 1, Y: 1, Color: "#000000"},
			{X: -1, Y: -1, Color: "#000000"},
			{X: 1, Y: -1, Color: "#000000"},
			{X: -1, Y: 1, Color: "#000000"},
		},
	})
}

func (b *builtinInstance) Destroy() error {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return nil
	}
	b.destroyed = true
	b.mu.Unlock()

	b.cancel()
	<-b.done
	b.surface.RemoveRegion(BuiltinRegionID)
	return nil
}
