package subtitle

import (
	"path/filepath"

	"github.com/mgpai22/subplay/internal/failure"
)

// subtitle file as handed to a session: raw text plus parsed cues for SRT
type Document struct {
	Name    string
	Format  Format
	Content string
	Cues    []Cue
}

// Open reads a subtitle file and picks the format from its extension.
// ASS documents keep their text, repaired; the renderer owns their timing.
func Open(path string) (*Document, error) {
	format, err := FormatFromFileName(path)
	if err != nil {
		return nil, err
	}

	content, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	return NewDocument(filepath.Base(path), format, content)
}

func NewDocument(name string, format Format, content string) (*Document, error) {
	doc := &Document{
		Name:    name,
		Format:  format,
		Content: content,
	}

	switch format {
	case FormatSRT:
		cues, err := ParseSRT(content)
		if err != nil {
			return nil, err
		}
		doc.Cues = cues
	case FormatASS:
		repaired, err := RepairASS(content, name)
		if err != nil {
			return nil, err
		}
		if _, err := ValidateASS(repaired); err != nil {
			return nil, err
		}
		doc.Content = repaired
	default:
		return nil, failure.Newf(
			failure.ErrUnsupportedFormat,
			"unsupported subtitle format %q",
			format,
		)
	}

	return doc, nil
}
