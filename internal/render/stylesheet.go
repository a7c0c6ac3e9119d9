package render

import (
	"fmt"

	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/logging"
	"github.com/mgpai22/subplay/internal/settings"
)

// BottomPercent is the region's distance from the bottom edge. A positive
// offsetY moves the text up by that many pixels of viewportHeight.
func BottomPercent(offsetY int, viewportHeight float64) float64 {
	if viewportHeight <= 0 {
		return baseBottomPercent
	}
	return baseBottomPercent - float64(offsetY)/viewportHeight*100
}

// OutlineShadows fakes a text outline with eight offset copies.
func OutlineShadows(width float64, color string) []host.Shadow {
	if width <= 0 {
		return nil
	}
	w := width
	return []host.Shadow{
		{X: w, Y: w, Color: color},
		{X: -w, Y: -w, Color: color},
		{X: w, Y: -w, Color: color},
		{X: -w, Y: w, Color: color},
		{X: w, Y: 0, Color: color},
		{X: -w, Y: 0, Color: color},
		{X: 0, Y: w, Color: color},
		{X: 0, Y: -w, Color: color},
	}
}

func RegionStyle(s settings.Settings, viewportHeight float64) host.RegionStyle {
	return host.RegionStyle{
		BottomPercent: BottomPercent(s.OffsetY, viewportHeight),
		FontFamily:    s.SRTFontFamily,
		FontSize:      s.FontSize,
		FontWeight:    s.SRTFontWeight,
		FontStyle:     s.SRTFontStyle,
		TextAlign:     s.SRTTextAlign,
		Color:         s.SRTTextColor,
		LineHeight:    s.SRTLineHeight,
		Opacity:       s.Opacity,
		Shadows:       OutlineShadows(s.SRTOutlineWidth, s.SRTOutlineColor),
	}
}

// Ruleset builds the complete line presentation rules; it replaces any
// previous ruleset rather than merging into it.
func Ruleset(s settings.Settings, logger *logging.Logger) host.Ruleset {
	background, err := host.ParseHexColor(s.SRTBackgroundColor, s.SRTBackgroundOpacity)
	if err != nil {
		logging.OrNop(logger).Warnw("bad background color, using black",
			"color", s.SRTBackgroundColor, "error", err)
		background, _ = host.ParseHexColor("#000000", s.SRTBackgroundOpacity)
	}

	css := fmt.Sprintf(`#%[1]s .srt-line {
  background-color: %[2]s;
  border-radius: 3px;
  margin: 2px 0;
  padding: %[3]dpx;
  display: inline-block;
  max-width: 100%%;
  box-decoration-break: clone;
  -webkit-box-decoration-break: clone;
}
#%[1]s .srt-line:empty {
  display: none;
}
#%[1]s {
  font-family: %[4]s !important;
  font-weight: %[5]s !important;
  font-style: %[6]s !important;
  text-align: %[7]s !important;
  line-height: %[8]v !important;
}
`,
		SRTRegionID,
		background.String(),
		s.SRTPadding,
		s.SRTFontFamily,
		s.SRTFontWeight,
		s.SRTFontStyle,
		s.SRTTextAlign,
		s.SRTLineHeight,
	)

	return host.Ruleset{
		ID:             SRTRulesetID,
		CSS:            css,
		LineBackground: background,
		LinePadding:    s.SRTPadding,
	}
}
