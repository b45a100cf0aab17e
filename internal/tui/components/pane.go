package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// ScrollPane is a fixed-height window over a list of lines with a scrollbar
// on the right. Unlike a log view it never follows new content; callers keep
// a selected line visible with EnsureVisible.
type ScrollPane struct {
	viewport viewport.Model
	lines    []string
	width    int // total width including scrollbar
	height   int
}

// NewScrollPane creates a pane. Width includes 1 column for the scrollbar.
func NewScrollPane(width, height int) ScrollPane {
	vp := viewport.New(max(width-1, 0), height)
	vp.SetContent("")
	return ScrollPane{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// SetSize updates the pane dimensions.
func (s *ScrollPane) SetSize(width, height int) {
	if s.width == width && s.height == height {
		return
	}
	s.width = width
	s.height = height
	s.viewport.Width = max(width-1, 0)
	s.viewport.Height = height
	s.viewport.SetContent(strings.Join(s.lines, "\n"))
	s.viewport.SetYOffset(s.viewport.YOffset)
}

// SetLines replaces the content, keeping the scroll offset where possible.
func (s *ScrollPane) SetLines(lines []string) {
	s.lines = append(s.lines[:0], lines...)
	s.viewport.SetContent(strings.Join(s.lines, "\n"))
	s.viewport.SetYOffset(s.viewport.YOffset)
}

// EnsureVisible scrolls the minimum amount needed to show lines first
// through last. When the range is taller than the pane, first wins.
func (s *ScrollPane) EnsureVisible(first, last int) {
	if len(s.lines) == 0 || s.height <= 0 {
		return
	}
	first = min(max(first, 0), len(s.lines)-1)
	last = min(max(last, first), len(s.lines)-1)

	top := s.viewport.YOffset
	bottom := top + s.height - 1
	switch {
	case first < top:
		s.viewport.SetYOffset(first)
	case last > bottom:
		s.viewport.SetYOffset(max(last-s.height+1, 0))
		if s.viewport.YOffset > first {
			s.viewport.SetYOffset(first)
		}
	}
}

// YOffset returns the index of the first visible line.
func (s ScrollPane) YOffset() int {
	return s.viewport.YOffset
}

// View renders the visible lines padded to the content width, followed by
// the scrollbar column.
func (s ScrollPane) View() string {
	if s.height <= 0 {
		return ""
	}
	contentWidth := max(s.width-1, 0)
	content := strings.Split(s.viewport.View(), "\n")
	bar := strings.Split(RenderScrollbar(s.height, len(s.lines), s.viewport.YOffset), "\n")

	var b strings.Builder
	for i := 0; i < s.height; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := ""
		if i < len(content) {
			line = content[i]
		}
		b.WriteString(line)
		if pad := contentWidth - lipgloss.Width(line); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		if i < len(bar) {
			b.WriteString(bar[i])
		}
	}
	return b.String()
}
