package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/mgpai22/subplay/internal/terminal"
	"github.com/mgpai22/subplay/internal/video"
	"github.com/spf13/cobra"
)

// how long a terminal clock runs past the last SRT cue
const playTail = time.Second

var playCmd = &cobra.Command{
	Use:   "play [subtitle_file]",
	Short: "Play subtitles in the terminal against a simulated video clock",
	Long: `Play an SRT or ASS file in the terminal. The clock starts at --start and
advances at --rate. Its length comes from --duration, from probing --video
with ffprobe, or for SRT from the last cue.

With --translate-to, SRT cues are translated first and shown with the
original line underneath.

Examples:
  subplay play movie.srt
  subplay play movie.ass --video movie.mkv --start 10m
  subplay play movie.srt --translate-to japanese --provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		String("video", "", "Video file whose duration bounds the clock")
	playCmd.Flags().
		Duration("start", 0, "Start position (e.g. 90s, 1m30s)")
	playCmd.Flags().
		Float64("rate", 1, "Playback rate")
	playCmd.Flags().
		Duration("duration", 0, "Clock length; 0 derives it from --video or the cues")
	playCmd.Flags().
		Int("width", 0, "Terminal columns")
	playCmd.Flags().
		Int("height", 0, "Terminal rows")
	playCmd.Flags().
		Duration("frame-interval", 0, "Time between clock frames")
	playCmd.Flags().
		Bool("wrap", true, "Split long SRT cues to fit the terminal")
	addTranslateFlags(playCmd, "translate-to")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext()
	defer stop()

	videoPath, _ := cmd.Flags().GetString("video")
	start, _ := cmd.Flags().GetDuration("start")
	rate, _ := cmd.Flags().GetFloat64("rate")
	duration, _ := cmd.Flags().GetDuration("duration")
	wrap, _ := cmd.Flags().GetBool("wrap")

	doc, err := subtitle.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open subtitle: %w", err)
	}

	if tr, ok, err := translatorFromFlags(ctx, cmd, "translate-to"); err != nil {
		return err
	} else if ok {
		if doc, err = translateDocument(ctx, cmd, tr, doc); err != nil {
			return err
		}
	}

	if wrap {
		if doc, err = wrapDocument(doc, cfg.Terminal.Width); err != nil {
			return err
		}
	}

	if duration == 0 {
		duration, err = playDuration(ctx, videoPath, doc)
		if err != nil {
			return err
		}
	}

	h := newTerminalHost(duration)
	session := newSession(h, terminalLoader())
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		return err
	}
	if err := waitReady(ctx, session); err != nil {
		return err
	}
	if err := session.LoadDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to load subtitle: %w", err)
	}

	h.Clock.SetRate(rate)
	h.Clock.Seek(start)
	h.Clock.Play()

	logger.Infow("Playing",
		"file", doc.Name,
		"format", doc.Format,
		"start", start,
		"duration", duration,
		"rate", rate,
	)

	return waitPlayback(ctx, h.Clock)
}

// wrapDocument splits long SRT cues so lines fit in cols columns. ASS
// documents are returned as they are.
func wrapDocument(doc *subtitle.Document, cols int) (*subtitle.Document, error) {
	if doc.Format != subtitle.FormatSRT {
		return doc, nil
	}
	w := subtitle.NewWrapper()
	if cols > 2 && cols-2 < w.MaxCharsPerLine {
		w.MaxCharsPerLine = cols - 2
	}
	return subtitle.NewDocument(doc.Name, subtitle.FormatSRT, subtitle.EncodeSRT(w.Wrap(doc.Cues)))
}

// playDuration bounds the clock by the video when given, else by the cues.
// ASS files without a video play until interrupted.
func playDuration(ctx context.Context, videoPath string, doc *subtitle.Document) (time.Duration, error) {
	if videoPath != "" {
		info, err := video.Probe(ctx, videoPath)
		if err != nil {
			return 0, fmt.Errorf("failed to probe video: %w", err)
		}
		return info.Duration, nil
	}
	var end time.Duration
	for _, c := range doc.Cues {
		if c.End > end {
			end = c.End
		}
	}
	if end == 0 {
		return 0, nil
	}
	return end + playTail, nil
}

func waitPlayback(ctx context.Context, clock *terminal.Clock) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if clock.Ended() {
				return nil
			}
		}
	}
}
