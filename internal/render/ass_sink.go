package render

import (
	"fmt"

	"github.com/mgpai22/subplay/internal/assrender"
	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/host"
	"github.com/mgpai22/subplay/internal/logging"
	"github.com/mgpai22/subplay/internal/settings"
	"github.com/mgpai22/subplay/internal/subtitle"
)

type ASSOptions struct {
	AvailableFonts []string
	FallbackFont   string
}

// ASSSink hands the whole document to an ASS renderer, which keeps its
// own timing.
type ASSSink struct {
	lib     *assrender.Library
	content string
	opts    ASSOptions
	logger  *logging.Logger

	surface  host.Surface
	settings *settings.Settings
	inst     assrender.Instance
	caps     assrender.Capabilities
}

func NewASSSink(
	lib *assrender.Library,
	content string,
	opts ASSOptions,
	logger *logging.Logger,
) *ASSSink {
	if opts.FallbackFont == "" {
		opts.FallbackFont = settings.DefaultFontFamily
	}
	return &ASSSink{
		lib:     lib,
		content: content,
		opts:    opts,
		logger:  logging.OrNop(logger).Named("ass"),
	}
}

func (a *ASSSink) Format() subtitle.Format {
	return subtitle.FormatASS
}

func (a *ASSSink) Capabilities() Capabilities {
	return Capabilities{
		Resize:  a.caps.Resize,
		Destroy: a.caps.Destroy,
		Dispose: a.caps.Dispose,
	}
}

func (a *ASSSink) Activate(surface host.Surface, video host.Video, s *settings.Settings) error {
	report, err := subtitle.ValidateASS(a.content)
	if err != nil {
		return err
	}
	for _, warning := range report.Warnings() {
		a.logger.Warnw("ASS content looks incomplete", "warning", warning)
	}

	if a.lib == nil {
		return failure.Newf(failure.ErrExternalLibrary, "ASS library is not loaded")
	}

	fonts := a.opts.AvailableFonts
	if len(fonts) == 0 {
		fonts = assrender.DefaultFonts
	}

	inst, caps, err := a.lib.New(a.content, video, assrender.Options{
		Container:      surface,
		Resampling:     assrender.ResampleVideoHeight,
		AvailableFonts: fonts,
		FallbackFont:   a.opts.FallbackFont,
	})
	if err != nil {
		return err
	}

	a.surface = surface
	a.settings = s
	a.inst = inst
	a.caps = caps

	a.logger.Infow("ASS renderer active",
		"engine", a.lib.Name(),
		"dialogue_lines", report.DialogueLines,
	)
	return a.Reflow()
}

// no-op: the renderer follows the video itself
func (a *ASSSink) Update(*subtitle.Cue) {}

func (a *ASSSink) Reflow() error {
	if a.inst == nil || a.settings == nil {
		return nil
	}

	style := host.ContainerStyle{
		FontSize:   a.settings.FontSize,
		Opacity:    a.settings.Opacity,
		TranslateY: a.settings.OffsetY,
	}
	if err := a.surface.ApplyContainerStyle(style); err != nil {
		a.logger.Warnw("failed to style container", "error", err)
	}

	if a.caps.Resize {
		if err := call(a.inst.(assrender.Resizer).Resize); err != nil {
			a.logger.Warnw("renderer resize failed", "error", err)
		}
	}
	return nil
}

func (a *ASSSink) Destroy() {
	if a.inst == nil {
		return
	}

	var err error
	switch {
	case a.caps.Destroy:
		err = call(a.inst.(assrender.Destroyer).Destroy)
	case a.caps.Dispose:
		err = call(a.inst.(assrender.Disposer).Dispose)
	}
	if err != nil {
		a.logger.Warnw("renderer teardown failed", "error", err)
	}
	if err := a.surface.ResetContainerStyle(); err != nil {
		a.logger.Warnw("failed to reset container style", "error", err)
	}

	a.inst = nil
	a.caps = assrender.Capabilities{}
	a.surface = nil
	a.settings = nil
}

// runs a renderer entry point, turning a panic into an error
func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panicked: %v", r)
		}
	}()
	return fn()
}
