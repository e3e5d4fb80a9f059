package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/freepare/freepare/pkg/model"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and ANSI white
// for anything less.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme is the set of colors and pre-built styles used by every view.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Kinds
	Exam    lipgloss.AdaptiveColor
	Subject lipgloss.AdaptiveColor
	Topic   lipgloss.AdaptiveColor
	Paper   lipgloss.AdaptiveColor
	Content lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Header   lipgloss.Style
	Card     lipgloss.Style
	Selected lipgloss.Style
	Banner   lipgloss.Style
	Notice   lipgloss.Style

	// Pre-computed text styles, built once instead of per card per frame.
	MutedText     lipgloss.Style
	InfoText      lipgloss.Style
	SecondaryText lipgloss.Style
	PrimaryBold   lipgloss.Style
	SuccessText   lipgloss.Style
	DangerText    lipgloss.Style
	ActionText    lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Exam:    lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Subject: lipgloss.AdaptiveColor{Light: "#2684FF", Dark: "#4C9AFF"}, // Blue
		Topic:   lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}, // Cyan
		Paper:   lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}, // Orange
		Content: lipgloss.AdaptiveColor{Light: "#36B37E", Dark: "#57D9A3"}, // Green

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Card = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	t.Selected = t.Card.
		Border(lipgloss.ThickBorder()).
		BorderForeground(t.Primary)

	t.Banner = r.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}).
		Background(ColorDanger).
		Bold(true).
		Padding(0, 1)

	t.Notice = r.NewStyle().
		Foreground(ColorWarning).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorWarning).
		PaddingLeft(1)

	t.MutedText = r.NewStyle().Foreground(ColorMuted)
	t.InfoText = r.NewStyle().Foreground(ColorInfo)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.SuccessText = r.NewStyle().Foreground(ColorSuccess)
	t.DangerText = r.NewStyle().Foreground(ColorDanger)
	t.ActionText = r.NewStyle().Foreground(ThemeFg("#F1FA8C")).Bold(true)

	return t
}

// ThemeFor returns the default theme with the background forced for
// "dark" and "light". Anything else keeps the renderer's detection.
func ThemeFor(name string, r *lipgloss.Renderer) Theme {
	switch name {
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	}
	return DefaultTheme(r)
}

// KindColor returns the accent color for an entity kind.
func (t Theme) KindColor(k model.Kind) lipgloss.AdaptiveColor {
	switch k {
	case model.KindExam:
		return t.Exam
	case model.KindSubject:
		return t.Subject
	case model.KindTopic:
		return t.Topic
	case model.KindPaper:
		return t.Paper
	case model.KindContent:
		return t.Content
	default:
		return t.Subtext
	}
}

// KindIcon returns the one-cell badge letter and color for an entity kind.
func (t Theme) KindIcon(k model.Kind) (string, lipgloss.AdaptiveColor) {
	switch k {
	case model.KindExam:
		return "E", t.Exam
	case model.KindSubject:
		return "S", t.Subject
	case model.KindTopic:
		return "T", t.Topic
	case model.KindPaper:
		return "P", t.Paper
	case model.KindContent:
		return "C", t.Content
	default:
		return "·", t.Subtext
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
