package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestLayout_ContentHeight(t *testing.T) {
	assert.Equal(t, 22, NewLayout(80, 24).ContentHeight())
	assert.Equal(t, 0, NewLayout(80, 1).ContentHeight())
}

func TestLayout_ColumnWidth(t *testing.T) {
	w, n := NewLayout(240, 40).ColumnWidth(8, 24)
	assert.Equal(t, 30, w)
	assert.Equal(t, 8, n)

	w, n = NewLayout(100, 40).ColumnWidth(8, 24)
	assert.Equal(t, 4, n)
	assert.Equal(t, 25, w)

	w, n = NewLayout(10, 40).ColumnWidth(8, 24)
	assert.Equal(t, 1, n)
	assert.Equal(t, 10, w)
}

func TestLayout_HeaderFillsWidth(t *testing.T) {
	l := NewLayout(60, 20)
	assert.Equal(t, 60, lipgloss.Width(l.RenderHeader("comtech-lite", "3 jobs")))
	assert.Equal(t, 60, lipgloss.Width(l.RenderStatusBar("q quit")))
}
