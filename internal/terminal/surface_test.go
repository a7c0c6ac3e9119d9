package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mgpai22/subplay/internal/host"
)

func TestSurfaceViewport(t *testing.T) {
	s := NewSurface("term", &bytes.Buffer{}, 80, 24)
	vp := s.Viewport()
	if vp.Width != 640 || vp.Height != 384 {
		t.Errorf("expected 640x384, got %vx%v", vp.Width, vp.Height)
	}

	s.Resize(100, 30)
	if vp := s.Viewport(); vp.Height != 480 {
		t.Errorf("expected height 480 after resize, got %v", vp.Height)
	}
}

func TestSurfacePaintsOnChange(t *testing.T) {
	var out bytes.Buffer
	s := NewSurface("term", &out, 40, 10)

	r, err := s.Region("subs")
	if err != nil {
		t.Fatalf("Region returned error: %v", err)
	}
	_ = r.Show(host.Content{Lines: []string{"hello", "world"}})

	if !strings.Contains(out.String(), "hello") || !strings.Contains(out.String(), "world") {
		t.Fatalf("expected both lines painted, got %q", out.String())
	}
	if s.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", s.Frames())
	}

	_ = r.Show(host.Content{Lines: []string{"hello", "world"}})
	if s.Frames() != 1 {
		t.Errorf("expected identical content not to repaint, got %d frames", s.Frames())
	}

	_ = r.Hide()
	if s.Frame() != "" {
		t.Errorf("expected empty frame after hide, got %q", s.Frame())
	}
	if s.Frames() != 2 {
		t.Errorf("expected 2 frames, got %d", s.Frames())
	}
}

func TestSurfaceStyle(t *testing.T) {
	tests := []struct {
		name   string
		style  host.RegionStyle
		prefix string
		suffix string
	}{
		{
			name:   "left aligned",
			style:  host.RegionStyle{TextAlign: "left"},
			prefix: "hi",
		},
		{
			name:   "centered",
			style:  host.RegionStyle{TextAlign: "center"},
			prefix: " ",
		},
		{
			name:   "bottom offset",
			style:  host.RegionStyle{TextAlign: "left", BottomPercent: 50},
			prefix: "hi",
			suffix: strings.Repeat("\n", 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSurface("term", &bytes.Buffer{}, 20, 10)
			r, _ := s.Region("subs")
			_ = r.SetStyle(tt.style)
			_ = r.Show(host.Content{Lines: []string{"hi"}})

			frame := s.Frame()
			if !strings.HasPrefix(frame, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, frame)
			}
			if tt.suffix != "" && !strings.HasSuffix(frame, tt.suffix) {
				t.Errorf("expected %d trailing rows, got %q", len(tt.suffix), frame)
			}
		})
	}
}

func TestRemovedRegionIsNotPainted(t *testing.T) {
	s := NewSurface("term", &bytes.Buffer{}, 40, 10)
	r, _ := s.Region("subs")
	_ = r.Show(host.Content{Lines: []string{"bye"}})

	s.RemoveRegion("subs")
	if s.Frame() != "" {
		t.Fatalf("expected empty frame, got %q", s.Frame())
	}

	_ = r.Show(host.Content{Lines: []string{"ghost"}})
	if strings.Contains(s.Frame(), "ghost") {
		t.Error("a removed region must not paint")
	}
}

func TestClearScreenMode(t *testing.T) {
	var out bytes.Buffer
	s := NewSurface("term", &out, 20, 4, WithClearScreen())
	r, _ := s.Region("subs")
	_ = r.Show(host.Content{Lines: []string{"x"}})

	if !strings.HasPrefix(out.String(), clearScreen) {
		t.Errorf("expected clear sequence first, got %q", out.String())
	}
}

func TestResetContainerStyle(t *testing.T) {
	s := NewSurface("term", &bytes.Buffer{}, 40, 10)
	r, err := s.Region("subs")
	if err != nil {
		t.Fatalf("Region returned error: %v", err)
	}
	_ = r.SetStyle(host.RegionStyle{BottomPercent: 10, Opacity: 1})
	_ = r.Show(host.Content{Lines: []string{"hello"}})
	plain := s.Frame()

	_ = s.ApplyContainerStyle(host.ContainerStyle{Opacity: 1, TranslateY: 48})
	if s.Frame() == plain {
		t.Fatal("expected container offset to move the text")
	}

	if err := s.ResetContainerStyle(); err != nil {
		t.Fatalf("ResetContainerStyle returned error: %v", err)
	}
	if s.Frame() != plain {
		t.Errorf("expected frame restored after reset, got %q want %q", s.Frame(), plain)
	}
}
