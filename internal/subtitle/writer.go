package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EncodeSRT renders cues as SubRip text, renumbering them from 1.
func EncodeSRT(cues []Cue) string {
	var sb strings.Builder
	for i, cue := range cues {
		// index (1-based)
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		// timestamps: 00:00:00,000 --> 00:00:00,000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatSRTTime(cue.Start),
			formatSRTTime(cue.End)))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// writes cues to an SRT file
func WriteSRT(cues []Cue, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, []byte(EncodeSRT(cues)), 0644)
}

func formatSRTTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
