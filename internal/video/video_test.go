package video

import (
	"context"
	"testing"
	"time"

	cerrors "github.com/cockroachdb/errors"

	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/subtitle"
)

const probeJSON = `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080},
    {"codec_type": "audio", "codec_name": "aac"},
    {"codec_type": "subtitle", "codec_name": "ass", "tags": {"language": "jpn", "title": "Signs"}},
    {"codec_type": "subtitle", "codec_name": "hdmv_pgs_subtitle", "tags": {"language": "eng"}},
    {"codec_type": "subtitle", "codec_name": "subrip"}
  ],
  "format": {"duration": "1421.500000"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(probeJSON))
	if err != nil {
		t.Fatalf("parseProbe returned error: %v", err)
	}

	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", info.Width, info.Height)
	}
	expectedDuration := 1421500 * time.Millisecond
	if info.Duration != expectedDuration {
		t.Errorf("expected %v, got %v", expectedDuration, info.Duration)
	}
	if len(info.Subtitles) != 3 {
		t.Fatalf("expected 3 subtitle streams, got %d", len(info.Subtitles))
	}

	tests := []struct {
		index  int
		codec  string
		text   bool
		format subtitle.Format
	}{
		{0, "ass", true, subtitle.FormatASS},
		{1, "hdmv_pgs_subtitle", false, subtitle.FormatSRT},
		{2, "subrip", true, subtitle.FormatSRT},
	}
	for _, tt := range tests {
		s := info.Subtitles[tt.index]
		if s.Index != tt.index || s.Codec != tt.codec {
			t.Errorf("stream %d: unexpected %+v", tt.index, s)
		}
		if s.Text() != tt.text {
			t.Errorf("stream %d: expected text=%v", tt.index, tt.text)
		}
		if s.Format() != tt.format {
			t.Errorf("stream %d: expected %s, got %s", tt.index, tt.format, s.Format())
		}
	}
	if info.Subtitles[0].Language != "jpn" || info.Subtitles[0].Title != "Signs" {
		t.Errorf("expected tags read, got %+v", info.Subtitles[0])
	}
}

func TestParseProbeInvalid(t *testing.T) {
	if _, err := parseProbe([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := parseProbe([]byte(`{"format":{"duration":"abc"}}`)); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestExtractArgs(t *testing.T) {
	args := extractArgs(SubtitleStream{Index: 2, Codec: "subrip"}, subtitle.FormatASS)
	if args["map"] != "0:s:2" || args["c:s"] != "ass" {
		t.Errorf("unexpected args %v", args)
	}
	args = extractArgs(SubtitleStream{Index: 0, Codec: "ass"}, subtitle.FormatSRT)
	if args["c:s"] != "srt" {
		t.Errorf("expected srt codec, got %v", args["c:s"])
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		stream   SubtitleStream
		expected string
	}{
		{SubtitleStream{Index: 0, Codec: "ass", Language: "jpn"}, "/media/show.jpn.ass"},
		{SubtitleStream{Index: 3, Codec: "mov_text"}, "/media/show.3.srt"},
	}
	for _, tt := range tests {
		if got := OutputPath("/media/show.mkv", tt.stream); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestExtractRejectsImageStreams(t *testing.T) {
	_, err := ExtractSubtitle(context.Background(), "in.mkv", "out.srt",
		SubtitleStream{Index: 1, Codec: "dvd_subtitle"})
	if !cerrors.Is(err, failure.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
