package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mgpai22/subplay/internal/video"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract a subtitle track from a video file",
	Long: `Extract an embedded text subtitle track (ASS or SRT) from a video
container so it can be played or sent to a player. Image based tracks
(PGS, VobSub) cannot be extracted.

ffmpeg and ffprobe are taken from SUBPLAY_FFMPEG_PATH/SUBPLAY_FFPROBE_PATH,
the PATH, or downloaded once into the user cache directory.

Examples:
  subplay extract movie.mkv
  subplay extract movie.mkv --list
  subplay extract movie.mkv --stream 2 -o movie.en.ass`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		Int("stream", -1, "Subtitle track index (default: first text track)")
	extractCmd.Flags().
		StringP("output", "o", "", "Output file path; the extension picks ass or srt")
	extractCmd.Flags().
		Bool("list", false, "List subtitle tracks and exit")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := context.Background()

	index, _ := cmd.Flags().GetInt("stream")
	outputPath, _ := cmd.Flags().GetString("output")
	list, _ := cmd.Flags().GetBool("list")

	info, err := video.Probe(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("failed to probe video: %w", err)
	}

	if list {
		listStreams(os.Stdout, info)
		return nil
	}

	stream, err := pickStream(info, index)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = video.OutputPath(videoPath, stream)
	}

	logger.Infow("Extracting subtitles",
		"video", videoPath,
		"stream", stream.Index,
		"codec", stream.Codec,
		"output", outputPath,
	)

	format, err := video.ExtractSubtitle(ctx, videoPath, outputPath, stream)
	if err != nil {
		return err
	}

	logger.Infow("Extraction complete", "output", outputPath, "format", format)
	return nil
}

func listStreams(w io.Writer, info *video.Info) {
	if len(info.Subtitles) == 0 {
		fmt.Fprintf(w, "%s: no subtitle tracks\n", info.Path)
		return
	}
	for _, s := range info.Subtitles {
		kind := "text"
		if !s.Text() {
			kind = "image"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.Index, s.Codec, kind, s.Language, s.Title)
	}
}

// pickStream returns track index, or the first text track when index is
// negative.
func pickStream(info *video.Info, index int) (video.SubtitleStream, error) {
	if index >= 0 {
		for _, s := range info.Subtitles {
			if s.Index == index {
				return s, nil
			}
		}
		return video.SubtitleStream{}, fmt.Errorf(
			"subtitle track %d not found (video has %d)",
			index,
			len(info.Subtitles),
		)
	}
	for _, s := range info.Subtitles {
		if s.Text() {
			return s, nil
		}
	}
	return video.SubtitleStream{}, fmt.Errorf("no text subtitle track in %s", info.Path)
}
