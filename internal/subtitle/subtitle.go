package subtitle

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/subplay/internal/failure"
)

// single timed subtitle unit
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// display lines in order
func (c Cue) Lines() []string {
	return strings.Split(c.Text, "\n")
}

// inclusive on both ends
func (c Cue) Contains(t time.Duration) bool {
	return c.Start <= t && t <= c.End
}

func (c Cue) StartSeconds() float64 {
	return c.Start.Seconds()
}

func (c Cue) EndSeconds() float64 {
	return c.End.Seconds()
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatASS Format = "ass"
)

// ParseFormat accepts the protocol's type field ("srt", "ass", "ssa").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "srt":
		return FormatSRT, nil
	case "ass", "ssa":
		return FormatASS, nil
	default:
		return "", failure.Newf(
			failure.ErrUnsupportedFormat,
			"unsupported subtitle type %q",
			s,
		)
	}
}

// subtitle format based on file extension
func FormatFromFileName(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT, nil
	case ".ass", ".ssa":
		return FormatASS, nil
	default:
		return "", failure.Newf(
			failure.ErrUnsupportedFormat,
			"unsupported subtitle extension %q",
			ext,
		)
	}
}
