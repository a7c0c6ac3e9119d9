package assrender

import (
	"context"
	"errors"
	"sync"
	"testing"

	cerrors "github.com/cockroachdb/errors"

	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/host"
)

type bareInstance struct{}

type fullInstance struct {
	mu       sync.Mutex
	resized  int
	disposed int
}

func (f *fullInstance) Resize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resized++
	return nil
}

func (f *fullInstance) Destroy() error { return nil }

func (f *fullInstance) Dispose() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposed++
	return nil
}

type disposeOnly struct{}

func (disposeOnly) Dispose() error { return nil }

type stubEngine struct {
	inst  Instance
	err   error
	panic bool
	fonts []string
}

func (s *stubEngine) New(content string, video host.Video, opts Options) (Instance, error) {
	if s.panic {
		panic("renderer exploded")
	}
	return s.inst, s.err
}

type listingEngine struct {
	stubEngine
}

func (l *listingEngine) Fonts(ctx context.Context) ([]string, error) {
	return l.fonts, nil
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name string
		inst Instance
		want Capabilities
	}{
		{"none", bareInstance{}, Capabilities{}},
		{"all", &fullInstance{}, Capabilities{Resize: true, Destroy: true, Dispose: true}},
		{"dispose only", disposeOnly{}, Capabilities{Dispose: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Probe(tt.inst); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestLibraryNew(t *testing.T) {
	lib := NewLibrary("stub", &stubEngine{inst: &fullInstance{}}, nil)

	inst, caps, err := lib.New("content", nil, Options{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if inst == nil {
		t.Fatal("expected instance")
	}
	if !caps.Resize || !caps.Destroy || !caps.Dispose {
		t.Errorf("expected all capabilities, got %+v", caps)
	}
}

func TestLibraryNewFailures(t *testing.T) {
	tests := []struct {
		name   string
		engine *stubEngine
	}{
		{"error", &stubEngine{err: errors.New("bad header")}},
		{"panic", &stubEngine{panic: true}},
		{"nil instance", &stubEngine{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := NewLibrary("stub", tt.engine, nil)
			inst, _, err := lib.New("content", nil, Options{})
			if !cerrors.Is(err, failure.ErrExternalLibrary) {
				t.Fatalf("expected ErrExternalLibrary, got %v", err)
			}
			if inst != nil {
				t.Errorf("expected no instance, got %v", inst)
			}
		})
	}
}

func TestAvailableFonts(t *testing.T) {
	plain := NewLibrary("plain", &stubEngine{}, nil)
	if fonts := plain.AvailableFonts(context.Background()); len(fonts) != len(DefaultFonts) {
		t.Errorf("expected fallback font list, got %v", fonts)
	}

	listing := NewLibrary("listing", &listingEngine{stubEngine{fonts: []string{"Noto Sans"}}}, nil)
	fonts := listing.AvailableFonts(context.Background())
	if len(fonts) != 1 || fonts[0] != "Noto Sans" {
		t.Errorf("expected engine fonts, got %v", fonts)
	}

	empty := NewLibrary("empty", &listingEngine{}, nil)
	if fonts := empty.AvailableFonts(context.Background()); len(fonts) != len(DefaultFonts) {
		t.Errorf("expected fallback for empty list, got %v", fonts)
	}
}

func TestSingletonLoadsOnce(t *testing.T) {
	calls := 0
	lib := NewLibrary("stub", &stubEngine{}, nil)
	s := NewSingleton(func(ctx context.Context) (*Library, error) {
		calls++
		return lib, nil
	}, nil)

	if s.Loaded() {
		t.Fatal("expected nothing loaded before first use")
	}
	for i := 0; i < 3; i++ {
		got, err := s.EnsureLoaded(context.Background())
		if err != nil {
			t.Fatalf("EnsureLoaded returned error: %v", err)
		}
		if got != lib {
			t.Errorf("expected the same library handle")
		}
	}
	if calls != 1 {
		t.Errorf("expected loader called once, got %d", calls)
	}
	if !s.Loaded() {
		t.Error("expected library loaded")
	}
}

func TestSingletonRetriesAfterFailure(t *testing.T) {
	calls := 0
	s := NewSingleton(func(ctx context.Context) (*Library, error) {
		calls++
		switch calls {
		case 1:
			return nil, errors.New("network down")
		case 2:
			panic("script threw")
		default:
			return NewLibrary("stub", &stubEngine{}, nil), nil
		}
	}, nil)

	for i := 0; i < 2; i++ {
		if _, err := s.EnsureLoaded(context.Background()); !cerrors.Is(err, failure.ErrExternalLibrary) {
			t.Fatalf("attempt %d: expected ErrExternalLibrary, got %v", i+1, err)
		}
	}
	if _, err := s.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("expected third attempt to succeed, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 loader calls, got %d", calls)
	}
}

func TestSingletonCancelledContext(t *testing.T) {
	called := false
	s := NewSingleton(func(ctx context.Context) (*Library, error) {
		called = true
		return nil, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.EnsureLoaded(ctx); !cerrors.Is(err, failure.ErrExternalLibrary) {
		t.Errorf("expected ErrExternalLibrary, got %v", err)
	}
	if called {
		t.Error("expected loader not to run with a cancelled context")
	}
}
