// Package video inspects media containers and pulls text subtitle streams
// out of them with ffmpeg.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/subplay/internal/ffmpeg"
	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/subtitle"
)

type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	Subtitles []SubtitleStream
}

// SubtitleStream describes one subtitle track. Index counts subtitle
// streams only, matching ffmpeg's 0:s:N selector.
type SubtitleStream struct {
	Index    int
	Codec    string
	Language string
	Title    string
}

// Text reports whether the stream can be converted to ASS or SRT.
func (s SubtitleStream) Text() bool {
	_, ok := textCodecs[s.Codec]
	return ok
}

// Format is the natural output format for the stream.
func (s SubtitleStream) Format() subtitle.Format {
	if f, ok := textCodecs[s.Codec]; ok {
		return f
	}
	return subtitle.FormatSRT
}

var textCodecs = map[string]subtitle.Format{
	"ass":      subtitle.FormatASS,
	"ssa":      subtitle.FormatASS,
	"subrip":   subtitle.FormatSRT,
	"srt":      subtitle.FormatSRT,
	"mov_text": subtitle.FormatSRT,
	"webvtt":   subtitle.FormatSRT,
	"text":     subtitle.FormatSRT,
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string            `json:"codec_type"`
		CodecName string            `json:"codec_name"`
		Width     int               `json:"width"`
		Height    int               `json:"height"`
		Tags      map[string]string `json:"tags"`
	} `json:"streams"`
}

// Probe reads duration, picture size and subtitle tracks.
func Probe(ctx context.Context, path string) (*Info, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbe(out.Bytes())
	if err != nil {
		return nil, err
	}
	info.Path = path
	return info, nil
}

func parseProbe(data []byte) (*Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	if probe.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width, info.Height = s.Width, s.Height
			}
		case "subtitle":
			info.Subtitles = append(info.Subtitles, SubtitleStream{
				Index:    len(info.Subtitles),
				Codec:    s.CodecName,
				Language: s.Tags["language"],
				Title:    s.Tags["title"],
			})
		}
	}
	return info, nil
}

// ExtractSubtitle writes subtitle stream index of videoPath to outputPath
// in the format implied by outputPath's extension.
func ExtractSubtitle(ctx context.Context, videoPath, outputPath string, stream SubtitleStream) (subtitle.Format, error) {
	if !stream.Text() {
		return "", failure.Newf(
			failure.ErrUnsupportedFormat,
			"subtitle stream %d is %s, which is image based",
			stream.Index, stream.Codec,
		)
	}

	format, err := subtitle.FormatFromFileName(outputPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return "", err
	}

	err = ffmpeg.Input(videoPath).
		Output(outputPath, extractArgs(stream, format)).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return "", fmt.Errorf("subtitle extraction failed: %w", err)
	}
	return format, nil
}

func extractArgs(stream SubtitleStream, format subtitle.Format) ffmpeg.KwArgs {
	codec := "srt"
	if format == subtitle.FormatASS {
		codec = "ass"
	}
	return ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:s:%d", stream.Index),
		"c:s": codec,
	}
}

// OutputPath names the extracted file after the video and track.
func OutputPath(videoPath string, stream SubtitleStream) string {
	base := videoPath[:len(videoPath)-len(filepath.Ext(videoPath))]
	suffix := strconv.Itoa(stream.Index)
	if stream.Language != "" {
		suffix = stream.Language
	}
	return fmt.Sprintf("%s.%s.%s", base, suffix, stream.Format())
}
