package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/mgpai22/subplay/internal/failure"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	srtPath := filepath.Join(dir, "movie.srt")
	if err := os.WriteFile(srtPath, []byte("1\n00:00:01,000 --> 00:00:03,000\nHello\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	assPath := filepath.Join(dir, "movie.ass")
	if err := os.WriteFile(assPath, []byte(validASS), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	vttPath := filepath.Join(dir, "movie.vtt")
	if err := os.WriteFile(vttPath, []byte("WEBVTT\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	doc, err := Open(srtPath)
	if err != nil {
		t.Fatalf("Open(srt) returned error: %v", err)
	}
	if doc.Format != FormatSRT || len(doc.Cues) != 1 || doc.Name != "movie.srt" {
		t.Errorf("unexpected SRT document: %+v", doc)
	}

	doc, err = Open(assPath)
	if err != nil {
		t.Fatalf("Open(ass) returned error: %v", err)
	}
	if doc.Format != FormatASS || doc.Cues != nil || doc.Content != validASS {
		t.Errorf("unexpected ASS document: %+v", doc)
	}

	if _, err := Open(vttPath); !errors.Is(err, failure.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestOpenRepairsASS(t *testing.T) {
	broken := "\ufeff[Script Info]\r\nTitle: broken\r\n\r\n[Events]\r\n" +
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\r\n" +
		"Dialogue: 0,0:00:01.5,0:00:04.250,Default,,0,0,0,,Hello\r\n"
	path := filepath.Join(t.TempDir(), "broken.ass")
	if err := os.WriteFile(path, []byte(broken), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	for _, want := range []string{
		"[V4+ Styles]\nFormat: Name,",
		"Dialogue: 0,0:00:01.50,0:00:04.25,Default",
	} {
		if !strings.Contains(doc.Content, want) {
			t.Errorf("expected repaired content to contain %q, got:\n%s", want, doc.Content)
		}
	}
	if strings.Contains(doc.Content, "\r") || strings.HasPrefix(doc.Content, "\ufeff") {
		t.Errorf("expected normalized text, got %q", doc.Content)
	}
	if strings.Index(doc.Content, "[V4+ Styles]") > strings.Index(doc.Content, "[Events]") {
		t.Errorf("expected styles before events, got:\n%s", doc.Content)
	}
}

func TestNewDocumentRejectsNonASS(t *testing.T) {
	_, err := NewDocument("x.ass", FormatASS, "[Events]\nDialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Hi\n")
	if !errors.Is(err, failure.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
