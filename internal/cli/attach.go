package cli

import (
	"fmt"

	"github.com/mgpai22/subplay/internal/browser"
	"github.com/spf13/cobra"
)

var attachCmd = &cobra.Command{
	Use:   "attach [page_url] [subtitle_file]",
	Short: "Overlay subtitles on the video of a web page",
	Long: `Open a page in a browser controlled by subplay, find its video and show
the subtitle file over it. SRT cues are drawn as page elements; ASS files
are rendered by ass.js injected into the page.

The message endpoint stays up until interrupted, so other subtitles or
settings can be sent with "subplay send". The subtitle file is optional.

Examples:
  subplay attach https://example.com/watch?v=1 movie.srt
  subplay attach https://example.com/watch?v=1 movie.ass --headless
  subplay attach https://example.com/player --container .player-box`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)

	attachCmd.Flags().
		String("addr", "", "Address for the message endpoint")
	attachCmd.Flags().
		Bool("headless", false, "Run the browser without a window")
	attachCmd.Flags().
		String("video-selector", "", "CSS selector of the video element")
	attachCmd.Flags().
		String("container", "", "CSS selector of the video's ancestor to mount subtitles in")
	attachCmd.Flags().
		Duration("frame-interval", 0, "Time between clock frames")
}

func runAttach(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext()
	defer stop()

	b, err := browser.Launch(browser.Options{
		Headless:          cfg.Browser.Headless,
		VideoSelector:     cfg.Browser.VideoSelector,
		ContainerSelector: cfg.Browser.ContainerSelector,
		AssJSURL:          cfg.Browser.AssJSURL,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer b.Close()

	if err := b.Open(args[0]); err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}

	session := newSession(b, browser.ASSJSLoader(b))
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		return err
	}

	if len(args) == 2 {
		if err := waitReady(ctx, session); err != nil {
			return err
		}
		if _, err := loadFile(ctx, session, args[1]); err != nil {
			return err
		}
	}

	return serveMessages(ctx, session)
}
