package cli

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a terminal player controlled only through the message endpoint",
	Long: `Start a terminal player with an empty session and wait for messages.
The clock starts playing immediately and runs until interrupted.

Examples:
  subplay serve
  subplay serve --addr 127.0.0.1:9000 --width 120 --height 30
  subplay send load movie.srt`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().
		String("addr", "", "Address for the message endpoint")
	serveCmd.Flags().
		Int("width", 0, "Terminal columns")
	serveCmd.Flags().
		Int("height", 0, "Terminal rows")
	serveCmd.Flags().
		Duration("frame-interval", 0, "Time between clock frames")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext()
	defer stop()

	h := newTerminalHost(0)
	session := newSession(h, terminalLoader())
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		return err
	}
	h.Clock.Play()

	return serveMessages(ctx, session)
}
