package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/comtech-lite/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorCyan    = lipgloss.AdaptiveColor{Dark: "#66D9E8", Light: "#0C8599"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps detail and help content.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle renders a view title.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// ColumnStyle frames one board column.
var ColumnStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder).
	Padding(0, 1)

// ActiveColumnStyle frames the focused board column.
var ActiveColumnStyle = ColumnStyle.
	BorderForeground(ColorBlue)

// DimmedStyle is for secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// HintStyle is used for keyboard hints inside views.
var HintStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// NoticeStyle renders transient status messages.
var NoticeStyle = lipgloss.NewStyle().
	Foreground(ColorYellow).
	Italic(true)

// LabelStyle renders field labels in the detail view.
var LabelStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Width(16)

// MoneyStyle renders totals.
var MoneyStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// StageStyle returns a color-coded style for a pipeline stage.
func StageStyle(s model.Stage) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch s {
	case model.StageInTray:
		return base.Foreground(ColorGray)
	case model.StageScoping:
		return base.Foreground(ColorBlue)
	case model.StageSubmittedToCarrier, model.StageAwaitingCarrier:
		return base.Foreground(ColorMagenta)
	case model.StageScheduled:
		return base.Foreground(ColorCyan)
	case model.StageReadyForCutover:
		return base.Foreground(ColorYellow)
	case model.StageComplete:
		return base.Foreground(ColorGreen)
	case model.StageOnHold:
		return base.Foreground(ColorOrange)
	default:
		return base.Foreground(ColorRed)
	}
}
