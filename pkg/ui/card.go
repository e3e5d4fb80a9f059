package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/freepare/freepare/pkg/hierarchy"
	"github.com/freepare/freepare/pkg/model"
)

const descriptionLines = 2

// renderCard draws one entity card of the given outer width.
func renderCard(c hierarchy.Card, width int, selected bool, t Theme) string {
	inner := width - 4 // border + horizontal padding
	if inner < 8 {
		inner = 8
	}
	e := c.Entity

	var lines []string

	name := truncate(e.Label(), inner-2)
	title := RenderKindBadge(e.Kind, t) + " " + t.Renderer.NewStyle().Bold(true).Foreground(t.KindColor(e.Kind)).Render(name)
	if c.Leaf && c.Stats.CompletedLeaves > 0 {
		title += " " + t.SuccessText.Render("✓")
	}
	lines = append(lines, title)

	kind := e.Kind.Label()
	if c.Leaf && c.ShowProgress {
		kind += " · test"
	}
	if e.Malformed {
		kind += " · " + t.DangerText.Render("malformed")
	}
	lines = append(lines, t.MutedText.Render(kind))

	if e.Kind == model.KindTopic && strings.TrimSpace(e.Description) != "" {
		desc := wrapWords(e.Description, inner)
		if len(desc) > descriptionLines {
			desc = desc[:descriptionLines]
			desc[descriptionLines-1] = truncate(desc[descriptionLines-1]+" …", inner)
		}
		for _, l := range desc {
			lines = append(lines, t.SecondaryText.Render(l))
		}
	}

	for _, p := range c.Preview {
		lines = append(lines, t.Base.Render("• "+truncate(p, inner-2)))
	}
	if c.More != "" {
		lines = append(lines, t.InfoText.Render(c.More))
	}

	if c.ShowProgress {
		lines = append(lines, "")
		lines = append(lines, progressLine(c, t))
		barWidth := inner - 5
		if barWidth > ProgressBarLen && width <= CardWidth {
			barWidth = ProgressBarLen
		}
		lines = append(lines, RenderProgressBar(c.Stats.Percent, barWidth, t))
	}

	if len(c.Actions) > 0 {
		actions := make([]string, 0, len(c.Actions))
		for _, a := range c.Actions {
			actions = append(actions, t.ActionText.Render("["+string(a)+"]"))
		}
		lines = append(lines, strings.Join(actions, " "))
	}

	style := t.Card
	if selected {
		style = t.Selected
	}
	return style.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func progressLine(c hierarchy.Card, t Theme) string {
	s := c.Stats
	if c.Leaf {
		if s.CompletedLeaves > 0 {
			return t.SuccessText.Render("Completed")
		}
		return t.MutedText.Render("Not attempted")
	}
	line := fmt.Sprintf("%d/%d tests", s.CompletedLeaves, s.TotalLeaves)
	if s.Children > 0 {
		line += fmt.Sprintf(" · %d/%d touched", s.Touched, s.Children)
	}
	return t.Base.Render(line)
}
