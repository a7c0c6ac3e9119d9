package render

import (
	"errors"
	"testing"

	cerrors "github.com/cockroachdb/errors"

	"github.com/mgpai22/subplay/internal/assrender"
	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/host/hosttest"
	"github.com/mgpai22/subplay/internal/settings"
)

const validASS = `[Script Info]
Title: Test

[V4+ Styles]
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello
`

// records lifecycle calls; which ones exist depends on the embedding type
type recorder struct {
	resized   int
	destroyed int
	disposed  int
	opts      assrender.Options
	failNext  bool
	panicNext bool
}

type resizeDestroy struct{ r *recorder }

func (x resizeDestroy) Resize() error {
	x.r.resized++
	if x.r.panicNext {
		panic("resize blew up")
	}
	if x.r.failNext {
		return errors.New("resize failed")
	}
	return nil
}

func (x resizeDestroy) Destroy() error {
	x.r.destroyed++
	return nil
}

type disposeOnly struct{ r *recorder }

func (x disposeOnly) Dispose() error {
	x.r.disposed++
	return nil
}

type bare struct{}

type fakeEngine struct {
	r    *recorder
	make func(r *recorder) assrender.Instance
	err  error
}

func (f *fakeEngine) New(content string, video host.Video, opts assrender.Options) (assrender.Instance, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.r.opts = opts
	return f.make(f.r), nil
}

func newASSTarget() (*hosttest.Surface, *hosttest.Video, *settings.Settings) {
	vp := host.Viewport{Width: 1280, Height: 720}
	st := settings.Defaults()
	return hosttest.NewSurface("mount", vp), hosttest.NewVideo(vp), &st
}

func TestASSSinkActivateAndReflow(t *testing.T) {
	r := &recorder{}
	lib := assrender.NewLibrary("fake", &fakeEngine{r: r, make: func(r *recorder) assrender.Instance {
		return resizeDestroy{r}
	}}, nil)
	surface, video, st := newASSTarget()

	sink := NewASSSink(lib, validASS, ASSOptions{}, nil)
	if err := sink.Activate(surface, video, st); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}

	caps := sink.Capabilities()
	if !caps.Resize || !caps.Destroy || caps.Dispose || caps.Clocked {
		t.Errorf("unexpected capabilities: %+v", caps)
	}
	if r.opts.Container != surface || r.opts.Resampling != assrender.ResampleVideoHeight {
		t.Errorf("unexpected renderer options: %+v", r.opts)
	}
	if len(r.opts.AvailableFonts) == 0 || r.opts.FallbackFont != settings.DefaultFontFamily {
		t.Errorf("expected font defaults, got %+v", r.opts)
	}
	if r.resized != 1 {
		t.Errorf("expected one resize on activate, got %d", r.resized)
	}

	st.FontSize = 30
	st.OffsetY = -12
	st.Opacity = 0.5
	if err := sink.Reflow(); err != nil {
		t.Fatalf("Reflow returned error: %v", err)
	}
	style, ok := surface.ContainerStyle()
	if !ok || style.FontSize != 30 || style.TranslateY != -12 || style.Opacity != 0.5 {
		t.Errorf("unexpected container style: %+v", style)
	}

	sink.Destroy()
	sink.Destroy()
	if r.destroyed != 1 {
		t.Errorf("expected one destroy call, got %d", r.destroyed)
	}
}

func TestASSSinkReflowSwallowsRendererFailures(t *testing.T) {
	r := &recorder{}
	lib := assrender.NewLibrary("fake", &fakeEngine{r: r, make: func(r *recorder) assrender.Instance {
		return resizeDestroy{r}
	}}, nil)
	surface, video, st := newASSTarget()

	sink := NewASSSink(lib, validASS, ASSOptions{}, nil)
	if err := sink.Activate(surface, video, st); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}

	r.failNext = true
	if err := sink.Reflow(); err != nil {
		t.Errorf("expected resize error swallowed, got %v", err)
	}
	r.panicNext = true
	if err := sink.Reflow(); err != nil {
		t.Errorf("expected resize panic swallowed, got %v", err)
	}
}

func TestASSSinkOptionalCapabilities(t *testing.T) {
	tests := []struct {
		name         string
		make         func(r *recorder) assrender.Instance
		wantDisposed int
	}{
		{"dispose only", func(r *recorder) assrender.Instance { return disposeOnly{r} }, 1},
		{"nothing", func(r *recorder) assrender.Instance { return bare{} }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			lib := assrender.NewLibrary("fake", &fakeEngine{r: r, make: tt.make}, nil)
			surface, video, st := newASSTarget()

			sink := NewASSSink(lib, validASS, ASSOptions{}, nil)
			if err := sink.Activate(surface, video, st); err != nil {
				t.Fatalf("Activate returned error: %v", err)
			}
			if err := sink.Reflow(); err != nil {
				t.Errorf("Reflow returned error: %v", err)
			}
			sink.Destroy()
			sink.Destroy()
			if r.disposed != tt.wantDisposed {
				t.Errorf("expected %d dispose calls, got %d", tt.wantDisposed, r.disposed)
			}
		})
	}
}

func TestASSSinkActivateFailures(t *testing.T) {
	okEngine := func() *assrender.Library {
		return assrender.NewLibrary("fake", &fakeEngine{r: &recorder{}, make: func(r *recorder) assrender.Instance {
			return bare{}
		}}, nil)
	}

	tests := []struct {
		name    string
		lib     *assrender.Library
		content string
		want    error
	}{
		{"empty content", okEngine(), "  ", failure.ErrValidation},
		{"no dialogue", okEngine(), "[Script Info]\n[V4+ Styles]\n[Events]\n", failure.ErrValidation},
		{"no library", nil, validASS, failure.ErrExternalLibrary},
		{"engine error", assrender.NewLibrary("fake", &fakeEngine{r: &recorder{}, err: errors.New("boom")}, nil), validASS, failure.ErrExternalLibrary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface, video, st := newASSTarget()
			sink := NewASSSink(tt.lib, tt.content, ASSOptions{}, nil)

			err := sink.Activate(surface, video, st)
			if !cerrors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			sink.Destroy()
			if _, ok := surface.ContainerStyle(); ok {
				t.Error("expected surface untouched after failed activation")
			}
		})
	}
}
