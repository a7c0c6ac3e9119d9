package subtitle

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/mgpai22/subplay/internal/failure"
)

const validASS = `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello, world!
Dialogue: 0,0:00:05.50,0:00:08.20,Default,,0,0,0,,{\pos(100,200)}This has positioning.
`

func TestValidateASSComplete(t *testing.T) {
	report, err := ValidateASS(validASS)
	if err != nil {
		t.Fatalf("ValidateASS returned error: %v", err)
	}
	if report.DialogueLines != 2 {
		t.Errorf("expected 2 dialogue lines, got %d", report.DialogueLines)
	}
	if len(report.MissingSections) != 0 {
		t.Errorf("expected no missing sections, got %v", report.MissingSections)
	}
	if len(report.Warnings()) != 0 {
		t.Errorf("expected no warnings, got %v", report.Warnings())
	}
}

func TestValidateASSMissingSectionsIsWarning(t *testing.T) {
	content := "[Events]\nDialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Hi\nDialogue: 0,0:00:03.00\n"

	report, err := ValidateASS(content)
	if err != nil {
		t.Fatalf("ValidateASS returned error: %v", err)
	}
	if len(report.MissingSections) != 2 {
		t.Fatalf("expected 2 missing sections, got %v", report.MissingSections)
	}
	if report.MissingSections[0] != "[Script Info]" || report.MissingSections[1] != "[V4+ Styles]" {
		t.Errorf("unexpected missing sections: %v", report.MissingSections)
	}
	if report.MalformedDialogue != 1 {
		t.Errorf("expected 1 malformed dialogue line, got %d", report.MalformedDialogue)
	}
	if len(report.Warnings()) != 2 {
		t.Errorf("expected 2 warnings, got %v", report.Warnings())
	}
}

func TestValidateASSFailures(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantMention string
	}{
		{"empty", "   ", "empty"},
		{"no dialogue", "[Script Info]\n[V4+ Styles]\n[Events]\n", "no Dialogue"},
		{"no dialogue no events", "[Script Info]\nTitle: x\n", "[Events]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateASS(tt.content)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, failure.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMention) {
				t.Errorf("expected error to mention %q, got %q", tt.wantMention, err.Error())
			}
		})
	}
}

func TestRepairASSAddsMissingSections(t *testing.T) {
	content := "\ufeff[Script Info]\r\nTitle: x\r\n\r\n[Events]\r\nFormat: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\r\nDialogue: 0,0:0:1.5,0:00:02.345,Default,,0,0,0,,Hi\r\n"

	repaired, err := RepairASS(content, "episode.ass")
	if err != nil {
		t.Fatalf("RepairASS returned error: %v", err)
	}
	if strings.Contains(repaired, "\r") || strings.HasPrefix(repaired, "\ufeff") {
		t.Errorf("expected normalized text, got %q", repaired)
	}

	stylesAt := strings.Index(repaired, "[V4+ Styles]")
	eventsAt := strings.Index(repaired, "[Events]")
	if stylesAt < 0 || stylesAt > eventsAt {
		t.Errorf("expected styles inserted before events, got styles=%d events=%d", stylesAt, eventsAt)
	}
	if !strings.Contains(repaired, "Dialogue: 0,0:00:01.50,0:00:02.34,Default") {
		t.Errorf("expected normalized dialogue timestamps, got:\n%s", repaired)
	}

	if _, err := ValidateASS(repaired); err != nil {
		t.Errorf("repaired content failed validation: %v", err)
	}
}

func TestRepairASSAddsScriptInfoAndEvents(t *testing.T) {
	content := "[V4+ Styles]\nStyle: Default,Arial,20\n"

	repaired, err := RepairASS(content, "clip.ass")
	if err != nil {
		t.Fatalf("RepairASS returned error: %v", err)
	}
	if !strings.HasPrefix(repaired, "[Script Info]\nTitle: clip.ass\n") {
		t.Errorf("expected script info header first, got:\n%s", repaired)
	}
	if !strings.Contains(repaired, "[Events]\nFormat: Layer") {
		t.Errorf("expected events section appended, got:\n%s", repaired)
	}
}

func TestRepairASSRejectsNonASS(t *testing.T) {
	_, err := RepairASS("1\n00:00:01,000 --> 00:00:02,000\nnot ass\n", "x.ass")
	if !errors.Is(err, failure.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
