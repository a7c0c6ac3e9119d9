package browser

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/host"
)

type discoverResult struct {
	Found bool   `json:"found"`
	ID    string `json:"id"`
	URL   string `json:"url"`
}

// Discover looks for the video and its container. It returns nil, nil
// while the page has no video yet.
func (b *Browser) Discover(ctx context.Context) (*host.Target, error) {
	var res discoverResult
	err := b.eval(ctx, &res, discoverJS,
		b.opts.VideoSelector, b.opts.ContainerSelector, "subplay-"+uuid.NewString())
	if err != nil {
		return nil, err
	}
	if !res.Found {
		return nil, nil
	}

	return &host.Target{
		Video:   &pageVideo{browser: b},
		Surface: &overlay{browser: b, mount: res.ID},
		URL:     res.URL,
	}, nil
}

type videoState struct {
	Found      bool    `json:"found"`
	Time       float64 `json:"time"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ReadyState int     `json:"readyState"`
	Fullscreen bool    `json:"fullscreen"`
}

func (b *Browser) videoState(ctx context.Context) (videoState, error) {
	var st videoState
	if err := b.eval(ctx, &st, videoStateJS, b.opts.VideoSelector); err != nil {
		return videoState{}, err
	}
	if !st.Found {
		return videoState{}, failure.Newf(failure.ErrNotReady, "video element %q is gone", b.opts.VideoSelector)
	}
	return st, nil
}

// pageVideo reads the page's video element on every call.
type pageVideo struct {
	browser *Browser
}

func (v *pageVideo) CurrentTime() (time.Duration, error) {
	st, err := v.browser.videoState(context.Background())
	if err != nil {
		return 0, err
	}
	return time.Duration(st.Time * float64(time.Second)), nil
}

func (v *pageVideo) Viewport() host.Viewport {
	st, err := v.browser.videoState(context.Background())
	if err != nil {
		return host.Viewport{}
	}
	return host.Viewport{Width: st.Width, Height: st.Height}
}

// overlay is the player container marked with a data-subplay-id
// attribute. A replaced container gets a new id.
type overlay struct {
	browser *Browser
	mount   string
}

func (o *overlay) ID() string {
	return o.mount
}

func (o *overlay) Viewport() host.Viewport {
	var res struct {
		Found  bool    `json:"found"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := o.browser.eval(context.Background(), &res, mountRectJS, o.mount); err != nil || !res.Found {
		return host.Viewport{}
	}
	return host.Viewport{Width: res.Width, Height: res.Height}
}

func (o *overlay) Region(id string) (host.Region, error) {
	var ok bool
	if err := o.browser.eval(context.Background(), &ok, ensureRegionJS, o.mount, id); err != nil {
		return nil, err
	}
	if !ok {
		return nil, failure.Newf(failure.ErrNotReady, "mount point %s is gone", o.mount)
	}
	return &domRegion{browser: o.browser, id: id}, nil
}

func (o *overlay) RemoveRegion(id string) {
	if err := o.browser.eval(context.Background(), nil, removeElementJS, id); err != nil {
		o.browser.logger.Debugw("failed to remove region", "id", id, "error", err)
	}
}

func (o *overlay) SetRuleset(r host.Ruleset) error {
	return o.browser.eval(context.Background(), nil, upsertStyleJS, r.ID, r.CSS)
}

func (o *overlay) RemoveRuleset(id string) {
	if err := o.browser.eval(context.Background(), nil, removeElementJS, id); err != nil {
		o.browser.logger.Debugw("failed to remove ruleset", "id", id, "error", err)
	}
}

func (o *overlay) ApplyContainerStyle(style host.ContainerStyle) error {
	var ok bool
	err := o.browser.eval(context.Background(), &ok, containerStyleJS,
		o.mount, style.FontSize, style.Opacity, style.TranslateY)
	if err != nil {
		return err
	}
	if !ok {
		return failure.Newf(failure.ErrNotReady, "mount point %s is gone", o.mount)
	}
	return nil
}

func (o *overlay) ResetContainerStyle() error {
	return o.browser.eval(context.Background(), nil, resetContainerStyleJS, o.mount)
}

type domRegion struct {
	browser *Browser
	id      string
}

func (r *domRegion) Show(content host.Content) error {
	return r.call(showRegionJS, r.id, contentHTML(content))
}

func (r *domRegion) Hide() error {
	return r.call(hideRegionJS, r.id)
}

func (r *domRegion) SetStyle(style host.RegionStyle) error {
	return r.call(styleRegionJS, r.id, style.CSS())
}

func (r *domRegion) call(js string, args ...any) error {
	var ok bool
	if err := r.browser.eval(context.Background(), &ok, js, args...); err != nil {
		return err
	}
	if !ok {
		return failure.Newf(failure.ErrNotReady, "region %s is gone", r.id)
	}
	return nil
}

// contentHTML prefers the sink's markup and escapes plain lines otherwise.
func contentHTML(c host.Content) string {
	if c.HTML != "" {
		return c.HTML
	}
	escaped := make([]string, len(c.Lines))
	for i, line := range c.Lines {
		escaped[i] = html.EscapeString(line)
	}
	return strings.Join(escaped, "<br>")
}
