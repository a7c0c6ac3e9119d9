package subtitle

import (
	"strings"
	"testing"
	"time"
)

func TestWrapperKeepsShortCues(t *testing.T) {
	w := NewWrapper()
	cues := []Cue{
		{Index: 7, Start: 0, End: 2 * time.Second, Text: "short"},
		{Index: 8, Start: 3 * time.Second, End: 4 * time.Second, Text: "   "},
	}

	got := w.Wrap(cues)
	if len(got) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(got))
	}
	if got[0].Index != 1 || got[0].Text != "short" {
		t.Errorf("unexpected cue: %+v", got[0])
	}
}

func TestWrapperBreaksLongLine(t *testing.T) {
	w := NewWrapper()
	text := "This sentence is a little too long to fit on one line"

	got := w.Wrap([]Cue{{Start: 0, End: 3 * time.Second, Text: text}})
	if len(got) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(got))
	}
	lines := got[0].Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", got[0].Text)
	}
	if strings.Join(lines, " ") != text {
		t.Errorf("expected words preserved, got %q", got[0].Text)
	}
}

func TestWrapperSplitsLongDuration(t *testing.T) {
	w := NewWrapper()
	cue := Cue{Start: time.Second, End: 16 * time.Second, Text: "one two three four five six"}

	got := w.Wrap([]Cue{cue})
	if len(got) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(got))
	}
	if got[0].Start != cue.Start {
		t.Errorf("expected first start %v, got %v", cue.Start, got[0].Start)
	}
	if got[2].End != cue.End {
		t.Errorf("expected last end %v, got %v", cue.End, got[2].End)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start != got[i-1].End {
			t.Errorf("cue %d does not start where cue %d ends", i, i-1)
		}
	}
}

func TestWrapperKeepsExplicitBreaks(t *testing.T) {
	w := NewWrapper()
	text := "Bonjour tout le monde, comment allez-vous aujourd'hui\nHello everyone"

	got := w.Wrap([]Cue{{Start: 0, End: 2 * time.Second, Text: text}})
	if len(got) != 1 || got[0].Text != text {
		t.Errorf("expected cue untouched, got %+v", got)
	}
}
