package subtitle

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Wrapper keeps cue text within line and duration limits, splitting long
// cues into consecutive shorter ones.
type Wrapper struct {
	MaxCharsPerLine int
	MaxLinesPerCue  int
	MaxDuration     time.Duration
}

func NewWrapper() *Wrapper {
	return &Wrapper{
		MaxCharsPerLine: 42,
		MaxLinesPerCue:  2,
		MaxDuration:     7 * time.Second,
	}
}

// Wrap returns a new slice; the input is not modified. Cues with explicit
// line breaks are kept as they are, since the breaks carry meaning
// (bilingual pairs, speaker turns).
func (w *Wrapper) Wrap(cues []Cue) []Cue {
	wrapped := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		switch {
		case text == "":
			continue
		case strings.Contains(text, "\n"):
			wrapped = append(wrapped, cue)
		case w.needsSplit(text, cue.End-cue.Start):
			wrapped = append(wrapped, w.split(cue, text)...)
		default:
			cue.Text = w.breakLine(text)
			wrapped = append(wrapped, cue)
		}
	}

	for i := range wrapped {
		wrapped[i].Index = i + 1
	}
	return wrapped
}

func (w *Wrapper) needsSplit(text string, duration time.Duration) bool {
	if utf8.RuneCountInString(text) > w.MaxCharsPerLine*w.MaxLinesPerCue {
		return true
	}
	return duration > w.MaxDuration
}

// words are spread evenly; the last part ends at the original end time
func (w *Wrapper) split(cue Cue, text string) []Cue {
	words := strings.Fields(text)
	total := cue.End - cue.Start

	maxChars := w.MaxCharsPerLine * w.MaxLinesPerCue
	parts := (utf8.RuneCountInString(text) + maxChars - 1) / maxChars
	if byDuration := int(total/w.MaxDuration) + 1; byDuration > parts {
		parts = byDuration
	}
	if parts > len(words) {
		parts = len(words)
	}
	if parts < 1 {
		parts = 1
	}

	wordsPerPart := (len(words) + parts - 1) / parts
	step := total / time.Duration(parts)

	var out []Cue
	start := cue.Start
	for len(words) > 0 {
		n := min(wordsPerPart, len(words))
		chunk := strings.Join(words[:n], " ")
		words = words[n:]

		end := start + step
		if len(words) == 0 {
			end = cue.End
		}

		out = append(out, Cue{
			Start: start,
			End:   end,
			Text:  w.breakLine(chunk),
		})
		start = end
	}
	return out
}

// breaks at the word boundary closest to the middle
func (w *Wrapper) breakLine(text string) string {
	runes := utf8.RuneCountInString(text)
	if runes <= w.MaxCharsPerLine {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	middle := runes / 2
	best, bestDiff := 0, runes
	length := 0
	for i, word := range words[:len(words)-1] {
		length += utf8.RuneCountInString(word)
		if i > 0 {
			length++
		}
		if diff := abs(length - middle); diff < bestDiff {
			best, bestDiff = i+1, diff
		}
	}

	return strings.Join(words[:best], " ") + "\n" + strings.Join(words[best:], " ")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
