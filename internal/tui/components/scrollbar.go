package components

import "strings"

const (
	scrollTrack = "│"
	scrollThumb = "█"
)

// RenderScrollbar renders a 1-column vertical scrollbar for a view of
// viewHeight lines over contentHeight lines scrolled to yOffset. When all
// content fits, a blank gutter of the same height is returned so layouts
// keep a stable width.
func RenderScrollbar(viewHeight, contentHeight, yOffset int) string {
	if viewHeight <= 0 {
		return ""
	}
	if contentHeight <= viewHeight {
		return strings.Repeat(" \n", viewHeight-1) + " "
	}

	thumbSize := max(viewHeight*viewHeight/contentHeight, 1)
	maxYOffset := contentHeight - viewHeight
	thumbMaxTop := viewHeight - thumbSize
	thumbTop := min(max(yOffset*thumbMaxTop/maxYOffset, 0), thumbMaxTop)

	var b strings.Builder
	for i := 0; i < viewHeight; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i >= thumbTop && i < thumbTop+thumbSize {
			b.WriteString(scrollThumb)
		} else {
			b.WriteString(scrollTrack)
		}
	}
	return b.String()
}
