package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/freepare/freepare/pkg/model"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - Consistent spacing, colors, and visual language
// ══════════════════════════════════════════════════════════════════════════════

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// Card geometry. CardWidth includes the border.
const (
	CardWidth      = 38
	ProgressBarLen = 16
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// Light mode colors tuned for WCAG AA compliance (contrast ratio >= 4.5:1)
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Kind badge text color (white on colored background)
	ColorKindBadgeText = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle frames the detail and quiz views.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight).
			Padding(0, 1)

	// FocusedPanelStyle frames the search box while it has focus.
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGES AND BARS
// ══════════════════════════════════════════════════════════════════════════════

// RenderKindBadge returns a one-letter colored badge for an entity kind.
func RenderKindBadge(k model.Kind, t Theme) string {
	label, bg := t.KindIcon(k)
	return t.Renderer.NewStyle().
		Foreground(ColorKindBadgeText).
		Background(bg).
		Bold(true).
		Render(label)
}

// RenderProgressBar renders a percent (0..100) as a horizontal bar of the
// given width followed by the percentage.
func RenderProgressBar(percent, width int, t Theme) string {
	if width <= 0 {
		return fmt.Sprintf("%d%%", percent)
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := percent * width / 100
	if percent > 0 && filled == 0 {
		filled = 1
	}

	var barColor lipgloss.AdaptiveColor
	switch {
	case percent >= 100:
		barColor = ColorSuccess
	case percent >= 50:
		barColor = ColorInfo
	case percent > 0:
		barColor = ColorWarning
	default:
		barColor = ColorMuted
	}

	bar := t.Renderer.NewStyle().Foreground(barColor).Render(strings.Repeat("█", filled)) +
		t.MutedText.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, percent)
}

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}
