package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/comtech-lite/internal/theme"
)

// Layout splits the terminal into a header line, a content area and a
// status bar line.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the width available to views.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left after the header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - 2
	if h < 0 {
		return 0
	}
	return h
}

// bar renders left and right text on a full-width line in style.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	leftR := style.Render(left)
	rightR := ""
	if right != "" {
		rightR = style.Render(right)
	}

	gap := max(l.Width-lipgloss.Width(leftR)-lipgloss.Width(rightR), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftR, filler, rightR)
}

// RenderHeader renders the title bar with a right-aligned summary.
func (l Layout) RenderHeader(title, summary string) string {
	return l.bar(theme.HeaderStyle, title, summary)
}

// RenderStatusBar renders the bottom line with keyboard hints or a notice.
func (l Layout) RenderStatusBar(hints string) string {
	return l.bar(theme.StatusBarStyle, hints, "")
}

// Render stacks header, content and status bar.
func (l Layout) Render(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// ColumnWidth returns the outer width of each of n side-by-side columns,
// never below minWidth. visible is how many of them fit.
func (l Layout) ColumnWidth(n, minWidth int) (width, visible int) {
	if n <= 0 {
		return 0, 0
	}
	width = l.Width / n
	if width >= minWidth {
		return width, n
	}
	visible = max(l.Width/minWidth, 1)
	return l.Width / visible, visible
}
