// Package failure holds the error kinds shared by the subtitle engine.
//
// Every error produced by the engine is marked with exactly one kind, so
// callers can branch with errors.Is while the message keeps the full cause.
package failure

import (
	"github.com/cockroachdb/errors"
)

var (
	// video element or mount point not resolved yet
	ErrNotReady = errors.New("player not ready")
	// no parseable cues or malformed timestamps
	ErrFormat = errors.New("invalid subtitle format")
	// structurally incomplete ASS content
	ErrValidation = errors.New("invalid ASS content")
	// ASS renderer unavailable or failed during construction
	ErrExternalLibrary = errors.New("ASS renderer failure")
	// message channel unreachable
	ErrTransport = errors.New("transport unreachable")
	// a newer load replaced this one before it finished
	ErrSuperseded = errors.New("load superseded")
	// subtitle type is neither ass nor srt
	ErrUnsupportedFormat = errors.New("unsupported subtitle format")
)

var kinds = []error{
	ErrNotReady,
	ErrFormat,
	ErrValidation,
	ErrExternalLibrary,
	ErrTransport,
	ErrSuperseded,
	ErrUnsupportedFormat,
}

func Newf(kind error, format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), kind)
}

func Wrap(kind error, err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), kind)
}

func Wrapf(kind error, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, format, args...), kind)
}

// Kind returns the kind err was marked with, or nil.
func Kind(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Message turns err into the text shown to the person who asked for the
// operation.
func Message(err error) string {
	if err == nil {
		return ""
	}
	switch Kind(err) {
	case ErrNotReady:
		return "video player is not ready yet, wait for the page to finish loading"
	case ErrTransport:
		return "cannot reach the player, reload the page and try again"
	case ErrUnsupportedFormat:
		return "unsupported subtitle format, use an .ass or .srt file"
	case ErrExternalLibrary:
		return "ASS renderer failed to load: " + err.Error()
	default:
		return err.Error()
	}
}
