package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [subtitle_file]",
	Short: "Check that a subtitle file can be played",
	Long: `Parse an SRT file or validate an ASS file the way the player does on
load, and print what was found. ASS files are repaired first, so the
report reflects what the renderer would receive.

Examples:
  subplay validate movie.srt
  subplay validate movie.ass`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	return validateFile(os.Stdout, args[0])
}

func validateFile(w io.Writer, path string) error {
	format, err := subtitle.FormatFromFileName(path)
	if err != nil {
		return err
	}
	content, err := subtitle.ReadFile(path)
	if err != nil {
		return err
	}

	switch format {
	case subtitle.FormatSRT:
		cues, err := subtitle.ParseSRT(content)
		if err != nil {
			return fmt.Errorf("%s: %s", path, failure.Message(err))
		}
		first, last := cues[0], cues[len(cues)-1]
		fmt.Fprintf(w, "%s: SRT, %d cues\n", path, len(cues))
		fmt.Fprintf(w, "  first: %s --> %s %q\n", first.Start, first.End, first.Text)
		fmt.Fprintf(w, "  last:  %s --> %s %q\n", last.Start, last.End, last.Text)
	case subtitle.FormatASS:
		repaired, err := subtitle.RepairASS(content, filepath.Base(path))
		if err != nil {
			return fmt.Errorf("%s: %s", path, failure.Message(err))
		}
		report, err := subtitle.ValidateASS(repaired)
		if err != nil {
			return fmt.Errorf("%s: %s", path, failure.Message(err))
		}
		fmt.Fprintf(w, "%s: ASS, %d dialogue lines\n", path, report.DialogueLines)
		for _, warning := range report.Warnings() {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}
	return nil
}
