package browser

import (
	"context"

	"github.com/google/uuid"

	"github.com/mgpai22/subplay/internal/assrender"
	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/host"
)

const AssJSName = "ass.js"

// ASSJSLoader injects ass.js into the page on first use.
func ASSJSLoader(b *Browser) assrender.Loader {
	return func(ctx context.Context) (*assrender.Library, error) {
		if b.opts.AssJSURL == "" {
			return nil, failure.Newf(failure.ErrExternalLibrary, "no ass.js URL configured")
		}

		var ok bool
		if err := b.eval(ctx, &ok, loadScriptJS, b.opts.AssJSURL); err != nil {
			return nil, failure.Wrap(failure.ErrExternalLibrary, err, "failed to load ass.js")
		}
		if !ok {
			return nil, failure.Newf(failure.ErrExternalLibrary, "%s loaded but defines no ASS global", b.opts.AssJSURL)
		}

		b.logger.Infow("ASS library loaded", "src", b.opts.AssJSURL)
		return assrender.NewLibrary(AssJSName, &assJSEngine{browser: b}, b.logger), nil
	}
}

// assJSConfig is the options object handed to the ASS constructor; the
// page adds the container element.
type assJSConfig struct {
	Resampling     string   `json:"resampling,omitempty"`
	AvailableFonts []string `json:"availableFonts,omitempty"`
	FallbackFont   string   `json:"fallbackFont,omitempty"`
}

func newASSJSConfig(opts assrender.Options) assJSConfig {
	return assJSConfig{
		Resampling:     opts.Resampling,
		AvailableFonts: opts.AvailableFonts,
		FallbackFont:   opts.FallbackFont,
	}
}

type assJSEngine struct {
	browser *Browser
}

func (e *assJSEngine) New(content string, video host.Video, opts assrender.Options) (assrender.Instance, error) {
	mount, ok := opts.Container.(*overlay)
	if !ok {
		return nil, failure.Newf(failure.ErrExternalLibrary, "ass.js needs a page overlay, got %T", opts.Container)
	}

	handle := uuid.NewString()
	err := e.browser.eval(context.Background(), nil, newASSJS,
		handle, content, e.browser.opts.VideoSelector, mount.mount, newASSJSConfig(opts))
	if err != nil {
		return nil, err
	}
	return &assJSInstance{browser: e.browser, handle: handle}, nil
}

// Fonts reports which of the default fonts the page can render.
func (e *assJSEngine) Fonts(ctx context.Context) ([]string, error) {
	var fonts []string
	if err := e.browser.eval(ctx, &fonts, checkFontsJS, assrender.DefaultFonts); err != nil {
		return nil, err
	}
	return fonts, nil
}

type assJSInstance struct {
	browser *Browser
	handle  string
}

func (i *assJSInstance) Resize() error {
	return i.browser.eval(context.Background(), nil, resizeASSJS, i.handle)
}

func (i *assJSInstance) Destroy() error {
	return i.browser.eval(context.Background(), nil, destroyASSJS, i.handle)
}
