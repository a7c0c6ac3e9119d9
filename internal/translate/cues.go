package translate

import (
	"context"
	"fmt"

	"github.com/mgpai22/subplay/internal/subtitle"
)

// Mode decides how translated text is combined with the source cue.
type Mode int

const (
	// translated text replaces the original
	ModeReplace Mode = iota
	// translated text above the original, for bilingual playback
	ModeOverlay
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "replace":
		return ModeReplace, nil
	case "overlay", "bilingual":
		return ModeOverlay, nil
	default:
		return 0, fmt.Errorf("unknown translation mode %q", s)
	}
}

// TranslateCues returns a copy of cues with translated text. Timing and
// indices are untouched. Cues the translator skipped keep their text.
func TranslateCues(
	ctx context.Context,
	tr Translator,
	cues []subtitle.Cue,
	concurrency int,
	mode Mode,
) ([]subtitle.Cue, error) {
	items := make([]Item, len(cues))
	for i, c := range cues {
		items[i] = Item{Index: i, Text: c.Text}
	}

	var (
		results []Result
		err     error
	)
	if ct, ok := tr.(ConcurrentTranslator); ok && concurrency > 1 {
		results, err = ct.TranslateWithConcurrency(ctx, items, concurrency)
	} else {
		results, err = tr.Translate(ctx, items)
	}
	if err != nil {
		return nil, err
	}

	out := make([]subtitle.Cue, len(cues))
	copy(out, cues)
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(out) || r.Text == "" {
			continue
		}
		switch mode {
		case ModeOverlay:
			out[r.Index].Text = r.Text + "\n" + cues[r.Index].Text
		default:
			out[r.Index].Text = r.Text
		}
	}
	return out, nil
}
