package subtitle

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/crlf"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const byteOrderMark = "\ufeff"

// NormalizeText drops a leading byte order mark and converts CRLF and lone
// CR line endings to LF.
func NormalizeText(s string) string {
	s = strings.TrimPrefix(s, byteOrderMark)
	normalized, _, err := transform.String(new(crlf.Normalize), s)
	if err != nil {
		return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
	}
	return normalized
}

// Decode turns raw file bytes into normalized text. Input that is not valid
// UTF-8 is decoded as GB18030, the usual encoding of subtitles that fail as
// UTF-8 in the wild.
func Decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return NormalizeText(string(data)), nil
	}

	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode subtitle text: %w", err)
	}
	return NormalizeText(string(decoded)), nil
}

// reads and decodes a subtitle file
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read subtitle file: %w", err)
	}
	return Decode(data)
}
