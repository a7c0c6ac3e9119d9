package terminal

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgpai22/subplay/internal/host"
)

// pixel size of one character cell, used to express the terminal as a
// host.Viewport
const (
	CellWidth  = 8
	CellHeight = 16
)

const clearScreen = "\x1b[H\x1b[2J"

type SurfaceOption func(*Surface)

// WithClearScreen repaints in place instead of appending frames.
func WithClearScreen() SurfaceOption {
	return func(s *Surface) { s.clear = true }
}

// Surface paints its regions to a writer each time what is visible
// changes. It implements host.Surface.
type Surface struct {
	id       string
	out      io.Writer
	renderer *lipgloss.Renderer
	clear    bool

	mu        sync.Mutex
	cols      int
	rows      int
	regions   map[string]*region
	rulesets  map[string]host.Ruleset
	container *host.ContainerStyle
	lastFrame string
	frames    int
}

func NewSurface(id string, out io.Writer, cols, rows int, opts ...SurfaceOption) *Surface {
	s := &Surface{
		id:       id,
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		cols:     cols,
		rows:     rows,
		regions:  make(map[string]*region),
		rulesets: make(map[string]host.Ruleset),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Surface) ID() string {
	return s.id
}

func (s *Surface) Viewport() host.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return host.Viewport{
		Width:  float64(s.cols * CellWidth),
		Height: float64(s.rows * CellHeight),
	}
}

// Resize changes the terminal size; the next paint uses it.
func (s *Surface) Resize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols = cols
	s.rows = rows
	s.lastFrame = ""
}

func (s *Surface) Region(id string) (host.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.regions[id]; ok {
		return r, nil
	}
	r := &region{id: id, surface: s}
	s.regions[id] = r
	return r, nil
}

func (s *Surface) RemoveRegion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regions[id]; !ok {
		return
	}
	delete(s.regions, id)
	s.paintLocked()
}

func (s *Surface) SetRuleset(r host.Ruleset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rulesets[r.ID] = r
	s.paintLocked()
	return nil
}

func (s *Surface) RemoveRuleset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rulesets, id)
}

func (s *Surface) ApplyContainerStyle(style host.ContainerStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.container = &style
	s.paintLocked()
	return nil
}

func (s *Surface) ResetContainerStyle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.container = nil
	s.paintLocked()
	return nil
}

// Frames returns how many frames were written.
func (s *Surface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Frame returns the text last written, without screen control codes.
func (s *Surface) Frame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFrame
}

func (s *Surface) paintLocked() {
	frame := s.renderLocked()
	if frame == s.lastFrame {
		return
	}
	s.lastFrame = frame
	s.frames++

	if s.clear {
		_, _ = io.WriteString(s.out, clearScreen+s.renderer.PlaceVertical(s.rows, lipgloss.Bottom, frame))
		return
	}
	_, _ = fmt.Fprintln(s.out, frame)
}

func (s *Surface) renderLocked() string {
	ids := make([]string, 0, len(s.regions))
	for id, r := range s.regions {
		if r.visible && len(r.lines) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var blocks []string
	bottom := 0
	for _, id := range ids {
		r := s.regions[id]
		blocks = append(blocks, s.renderRegion(r))
		if rows := s.bottomRows(r.style.BottomPercent); rows > bottom {
			bottom = rows
		}
	}
	if len(blocks) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...) + strings.Repeat("\n", bottom)
}

func (s *Surface) bottomRows(percent float64) int {
	if s.container != nil && s.rows > 0 {
		percent -= float64(s.container.TranslateY) / float64(s.rows*CellHeight) * 100
	}
	rows := int(math.Round(float64(s.rows) * percent / 100))
	if rows < 0 {
		return 0
	}
	return rows
}

func (s *Surface) renderRegion(r *region) string {
	style := s.renderer.NewStyle().Width(s.cols).Align(alignment(r.style.TextAlign))

	if c := terminalColor(r.style.Color); c != nil {
		style = style.Foreground(c)
	}
	style = style.
		Bold(r.style.FontWeight == "bold" || r.style.FontWeight == "700").
		Italic(r.style.FontStyle == "italic")

	opacity := r.style.Opacity
	if s.container != nil {
		opacity = s.container.Opacity
	}
	if opacity > 0 && opacity < 0.5 {
		style = style.Faint(true)
	}

	line := s.renderer.NewStyle()
	for _, rs := range s.rulesets {
		if rs.LineBackground.A > 0 {
			bg := rs.LineBackground
			line = line.
				Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", bg.R, bg.G, bg.B))).
				Padding(0, cellPadding(rs.LinePadding))
		}
	}

	rendered := make([]string, len(r.lines))
	for i, text := range r.lines {
		rendered[i] = style.Render(line.Render(text))
	}
	return strings.Join(rendered, "\n")
}

func cellPadding(px int) int {
	if px <= 0 {
		return 0
	}
	return int(math.Ceil(float64(px) / CellWidth))
}

func alignment(textAlign string) lipgloss.Position {
	switch textAlign {
	case "left":
		return lipgloss.Left
	case "right":
		return lipgloss.Right
	default:
		return lipgloss.Center
	}
}

func terminalColor(hex string) lipgloss.TerminalColor {
	c, err := host.ParseHexColor(hex, 1)
	if err != nil {
		return nil
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

type region struct {
	id      string
	surface *Surface

	// guarded by surface.mu
	visible bool
	lines   []string
	style   host.RegionStyle
}

func (r *region) Show(content host.Content) error {
	s := r.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	r.visible = true
	r.lines = append([]string(nil), content.Lines...)
	if s.regions[r.id] == r {
		s.paintLocked()
	}
	return nil
}

func (r *region) Hide() error {
	s := r.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	r.visible = false
	r.lines = nil
	if s.regions[r.id] == r {
		s.paintLocked()
	}
	return nil
}

func (r *region) SetStyle(style host.RegionStyle) error {
	s := r.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	r.style = style
	if s.regions[r.id] == r {
		s.paintLocked()
	}
	return nil
}
