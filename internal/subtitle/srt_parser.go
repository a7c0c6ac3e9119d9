package subtitle

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/subplay/internal/failure"
)

var (
	srtTimingRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
	)
	srtBlockSeparator = regexp.MustCompile(`\n\s*\n`)
	markupTagRegex    = regexp.MustCompile(`<[^>]*>`)
	styleTagRegex     = regexp.MustCompile(`\{[^}]*\}`)
)

// ParseSRT converts SubRip text into cues ordered as they appear in the
// input. Malformed blocks are skipped; the call only fails when not a
// single block is usable.
func ParseSRT(raw string) ([]Cue, error) {
	content := strings.TrimSpace(NormalizeText(raw))
	if content == "" {
		return nil, failure.Newf(failure.ErrFormat, "SRT content is empty")
	}

	blocks := srtBlockSeparator.Split(content, -1)
	cues := make([]Cue, 0, len(blocks))

	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}

		matches := srtTimingRegex.FindStringSubmatch(lines[1])
		if len(matches) != 9 {
			continue
		}

		start := parseSRTTimestamp(matches[1], matches[2], matches[3], matches[4])
		end := parseSRTTimestamp(matches[5], matches[6], matches[7], matches[8])
		if end <= start {
			continue
		}

		// some files omit or duplicate the index; it is informational only
		index, _ := strconv.Atoi(strings.TrimSpace(lines[0]))

		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  CleanText(strings.Join(lines[2:], "\n")),
		})
	}

	if len(cues) == 0 {
		return nil, failure.Newf(
			failure.ErrFormat,
			"no block matches HH:MM:SS,mmm --> HH:MM:SS,mmm (%d blocks checked)",
			len(blocks),
		)
	}

	return cues, nil
}

// fields are regex-validated digits, so conversion cannot fail
func parseSRTTimestamp(hours, minutes, seconds, millis string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(millis)

	totalMillis := int64(((h*60+m)*60+s)*1000 + ms)
	return time.Duration(totalMillis) * time.Millisecond
}

// CleanText strips markup and style overrides and expands \N line breaks.
func CleanText(text string) string {
	text = markupTagRegex.ReplaceAllString(text, "")
	text = styleTagRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\N`, "\n")
	return strings.TrimSpace(text)
}
