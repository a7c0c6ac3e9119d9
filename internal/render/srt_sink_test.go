package render

import (
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/host/hosttest"
	"github.com/mgpai22/subplay/internal/settings"
	"github.com/mgpai22/subplay/internal/subtitle"
)

func activeSRTSink(t *testing.T, viewport host.Viewport) (*SRTSink, *hosttest.Surface, *settings.Settings) {
	t.Helper()
	surface := hosttest.NewSurface("mount", viewport)
	st := settings.Defaults()
	sink := NewSRTSink(nil)
	if err := sink.Activate(surface, hosttest.NewVideo(viewport), &st); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	return sink, surface, &st
}

func TestSRTSinkUpdate(t *testing.T) {
	sink, surface, _ := activeSRTSink(t, host.Viewport{Width: 1280, Height: 720})
	region := surface.Lookup(SRTRegionID)
	if region == nil {
		t.Fatal("expected region created on activate")
	}
	if region.Visible() {
		t.Error("expected region hidden until the first cue")
	}

	cue := subtitle.Cue{Start: 0, End: time.Second, Text: "<b> & co\nsecond"}
	sink.Update(&cue)

	lines := region.Lines()
	if len(lines) != 2 || lines[0] != "<b> & co" || lines[1] != "second" {
		t.Errorf("unexpected lines: %q", lines)
	}
	want := `<div class="srt-line">&lt;b&gt; &amp; co</div><div class="srt-line">second</div>`
	if got := region.Content().HTML; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	sink.Update(nil)
	if region.Visible() {
		t.Error("expected region hidden for nil cue")
	}
}

func TestSRTSinkReflowOffset(t *testing.T) {
	sink, surface, st := activeSRTSink(t, host.Viewport{Width: 1000, Height: 500})
	region := surface.Lookup(SRTRegionID)

	style, _ := region.Style()
	if style.BottomPercent != 10 {
		t.Errorf("expected bottom 10%%, got %v", style.BottomPercent)
	}

	st.OffsetY = 50
	if err := sink.Reflow(); err != nil {
		t.Fatalf("Reflow returned error: %v", err)
	}
	style, _ = region.Style()
	if style.BottomPercent != 0 {
		t.Errorf("expected bottom 0%% after offsetY 50 at 500px, got %v", style.BottomPercent)
	}
}

func TestSRTSinkRulesetReplaced(t *testing.T) {
	sink, surface, st := activeSRTSink(t, host.Viewport{Width: 1000, Height: 500})

	rs, ok := surface.Ruleset(SRTRulesetID)
	if !ok {
		t.Fatal("expected ruleset installed on activate")
	}
	if rs.LineBackground.String() != "rgba(0, 0, 0, 0.7)" {
		t.Errorf("unexpected background: %s", rs.LineBackground)
	}

	st.SRTBackgroundColor = "#ff0000"
	st.SRTBackgroundOpacity = 0.5
	st.SRTPadding = 4
	_ = sink.Reflow()

	rs, _ = surface.Ruleset(SRTRulesetID)
	if !strings.Contains(rs.CSS, "rgba(255, 0, 0, 0.5)") || !strings.Contains(rs.CSS, "padding: 4px") {
		t.Errorf("expected new background and padding in CSS, got:\n%s", rs.CSS)
	}
	if strings.Contains(rs.CSS, "rgba(0, 0, 0, 0.7)") {
		t.Errorf("expected old rules gone, got:\n%s", rs.CSS)
	}
}

func TestSRTSinkDestroyIdempotent(t *testing.T) {
	never := NewSRTSink(nil)
	never.Destroy()
	never.Destroy()
	never.Update(&subtitle.Cue{Text: "ignored"})

	sink, surface, _ := activeSRTSink(t, host.Viewport{Height: 720})
	sink.Destroy()
	sink.Destroy()

	if surface.Lookup(SRTRegionID) != nil {
		t.Error("expected region removed")
	}
	if _, ok := surface.Ruleset(SRTRulesetID); ok {
		t.Error("expected ruleset removed")
	}
	if err := sink.Reflow(); err != nil {
		t.Errorf("expected Reflow after Destroy to be a no-op, got %v", err)
	}
}
