// Package hosttest provides in-memory hosts that record what renderers do
// to them.
package hosttest

import (
	"context"
	"sync"
	"time"

	"github.com/mgpai22/subplay/internal/host"
)

// Video is a manually driven playback position.
type Video struct {
	mu       sync.Mutex
	current  time.Duration
	err      error
	viewport host.Viewport
	reads    int
}

func NewVideo(viewport host.Viewport) *Video {
	return &Video{viewport: viewport}
}

func (v *Video) Set(t time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = t
}

// subsequent reads fail with err until cleared with nil
func (v *Video) SetErr(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.err = err
}

func (v *Video) SetViewport(vp host.Viewport) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewport = vp
}

func (v *Video) CurrentTime() (time.Duration, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reads++
	if v.err != nil {
		return 0, v.err
	}
	return v.current, nil
}

func (v *Video) Viewport() host.Viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewport
}

func (v *Video) Reads() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reads
}

// Region records the last content and style it received.
type Region struct {
	mu      sync.Mutex
	visible bool
	content host.Content
	style   host.RegionStyle
	styled  bool
	shows   int
	hides   int
	removed bool

	styleErr error
}

// SetStyleErr makes SetStyle fail with err until cleared with nil.
func (r *Region) SetStyleErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styleErr = err
}

func (r *Region) Show(content host.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = true
	r.content = content
	r.shows++
	return nil
}

func (r *Region) Hide() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = false
	r.hides++
	return nil
}

func (r *Region) SetStyle(style host.RegionStyle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.styleErr != nil {
		return r.styleErr
	}
	r.style = style
	r.styled = true
	return nil
}

func (r *Region) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible && !r.removed
}

// lines currently on screen, nil when hidden
func (r *Region) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.visible || r.removed {
		return nil
	}
	return r.content.Lines
}

func (r *Region) Content() host.Content {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

func (r *Region) Style() (host.RegionStyle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style, r.styled
}

func (r *Region) Shows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shows
}

func (r *Region) Hides() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hides
}

// Surface keeps regions and rulesets in maps.
type Surface struct {
	id string

	mu        sync.Mutex
	viewport  host.Viewport
	regions   map[string]*Region
	rulesets  map[string]host.Ruleset
	container *host.ContainerStyle
}

func NewSurface(id string, viewport host.Viewport) *Surface {
	return &Surface{
		id:       id,
		viewport: viewport,
		regions:  make(map[string]*Region),
		rulesets: make(map[string]host.Ruleset),
	}
}

func (s *Surface) ID() string {
	return s.id
}

func (s *Surface) Viewport() host.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

func (s *Surface) SetViewport(vp host.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = vp
}

func (s *Surface) Region(id string) (host.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	region, ok := s.regions[id]
	if !ok {
		region = &Region{}
		s.regions[id] = region
	}
	return region, nil
}

func (s *Surface) RemoveRegion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if region, ok := s.regions[id]; ok {
		region.mu.Lock()
		region.removed = true
		region.mu.Unlock()
		delete(s.regions, id)
	}
}

// Lookup returns the region with id, or nil.
func (s *Surface) Lookup(id string) *Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regions[id]
}

func (s *Surface) SetRuleset(r host.Ruleset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rulesets[r.ID] = r
	return nil
}

func (s *Surface) RemoveRuleset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rulesets, id)
}

func (s *Surface) Ruleset(id string) (host.Ruleset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rulesets[id]
	return r, ok
}

func (s *Surface) ApplyContainerStyle(style host.ContainerStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.container = &style
	return nil
}

func (s *Surface) ResetContainerStyle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.container = nil
	return nil
}

func (s *Surface) ContainerStyle() (host.ContainerStyle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.container == nil {
		return host.ContainerStyle{}, false
	}
	return *s.container, true
}

// Discoverer hands out whatever target was set last and lets tests fire
// navigation and display events.
type Discoverer struct {
	mu         sync.Mutex
	target     *host.Target
	calls      int
	navigation []func(string)
	display    []func(host.DisplayChange)
}

func NewDiscoverer() *Discoverer {
	return &Discoverer{}
}

func (d *Discoverer) SetTarget(target *host.Target) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = target
}

func (d *Discoverer) Discover(ctx context.Context) (*host.Target, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.target, nil
}

func (d *Discoverer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func (d *Discoverer) SubscribeNavigation(fn func(url string)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.navigation = append(d.navigation, fn)
	i := len(d.navigation) - 1
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.navigation[i] = nil
	}
}

func (d *Discoverer) SubscribeDisplay(fn func(host.DisplayChange)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.display = append(d.display, fn)
	i := len(d.display) - 1
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.display[i] = nil
	}
}

func (d *Discoverer) Navigate(url string) {
	d.mu.Lock()
	fns := append([]func(string){}, d.navigation...)
	d.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(url)
		}
	}
}

func (d *Discoverer) ChangeDisplay(change host.DisplayChange) {
	d.mu.Lock()
	fns := append([]func(host.DisplayChange){}, d.display...)
	d.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(change)
		}
	}
}
