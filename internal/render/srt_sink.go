package render

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/logging"
	"github.com/mgpai22/subplay/internal/settings"
	"github.com/mgpai22/subplay/internal/subtitle"
)

const (
	SRTRegionID  = "srt-subtitle-container"
	SRTRulesetID = "srt-subtitle-styles"

	baseBottomPercent = 10.0
)

// SRTSink paints the cue chosen by the clock into its own region.
type SRTSink struct {
	logger *logging.Logger

	// Update runs on the clock goroutine, everything else on the session's
	mu       sync.Mutex
	surface  host.Surface
	region   host.Region
	settings *settings.Settings
}

func NewSRTSink(logger *logging.Logger) *SRTSink {
	return &SRTSink{logger: logging.OrNop(logger).Named("srt")}
}

func (s *SRTSink) Format() subtitle.Format {
	return subtitle.FormatSRT
}

func (s *SRTSink) Capabilities() Capabilities {
	return Capabilities{Clocked: true, Resize: true, Destroy: true}
}

func (s *SRTSink) Activate(surface host.Surface, video host.Video, st *settings.Settings) error {
	region, err := surface.Region(SRTRegionID)
	if err != nil {
		return fmt.Errorf("failed to create subtitle region: %w", err)
	}
	if err := region.Hide(); err != nil {
		surface.RemoveRegion(SRTRegionID)
		return fmt.Errorf("failed to prepare subtitle region: %w", err)
	}

	s.mu.Lock()
	s.surface = surface
	s.region = region
	s.settings = st
	s.mu.Unlock()

	return s.Reflow()
}

func (s *SRTSink) Update(cue *subtitle.Cue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.region == nil {
		return
	}

	var err error
	if cue == nil {
		err = s.region.Hide()
	} else {
		lines := cue.Lines()
		err = s.region.Show(host.Content{Lines: lines, HTML: LinesHTML(lines)})
	}
	if err != nil {
		s.logger.Debugw("failed to paint cue", "error", err)
	}
}

func (s *SRTSink) Reflow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.region == nil || s.settings == nil {
		return nil
	}

	st := *s.settings
	style := RegionStyle(st, s.surface.Viewport().Height)
	if err := s.region.SetStyle(style); err != nil {
		s.logger.Warnw("failed to style subtitle region", "error", err)
	}

	if err := s.surface.SetRuleset(Ruleset(st, s.logger)); err != nil {
		s.logger.Warnw("failed to replace subtitle ruleset", "error", err)
	}
	return nil
}

func (s *SRTSink) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil {
		return
	}
	s.surface.RemoveRegion(SRTRegionID)
	s.surface.RemoveRuleset(SRTRulesetID)
	s.surface = nil
	s.region = nil
	s.settings = nil
}

// LinesHTML renders each line as an escaped block element.
func LinesHTML(lines []string) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(`<div class="srt-line">`)
		sb.WriteString(html.EscapeString(line))
		sb.WriteString(`</div>`)
	}
	return sb.String()
}
