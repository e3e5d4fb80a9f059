package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/quiz"
)

// QuizModel shows one question at a time of a test attempt.
type QuizModel struct {
	quiz     *quiz.Quiz
	leaf     *model.Entity
	index    int
	viewport viewport.Model
	md       *MarkdownRenderer
	theme    Theme
	width    int
	height   int

	submission     *quiz.Submission
	pendingSubmit  bool
	closeRequested bool
}

// NewQuizModel opens q for the leaf it was launched from.
func NewQuizModel(q *quiz.Quiz, leaf *model.Entity, theme Theme, md *MarkdownRenderer) QuizModel {
	m := QuizModel{
		quiz:     q,
		leaf:     leaf,
		viewport: viewport.New(80, 20),
		md:       md,
		theme:    theme,
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// SetSize updates the view dimensions.
func (m *QuizModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 4
	m.viewport.Height = max(height-4, 3)
	m.refresh()
}

// Quiz returns the attempt shown.
func (m QuizModel) Quiz() *quiz.Quiz { return m.quiz }

// Leaf returns the entity the quiz was launched from.
func (m QuizModel) Leaf() *model.Entity { return m.leaf }

// Index returns the position of the current question.
func (m QuizModel) Index() int { return m.index }

// IsCloseRequested reports whether the user asked to leave the quiz.
func (m QuizModel) IsCloseRequested() bool { return m.closeRequested }

// TakeSubmission returns a submission made since the last call.
func (m *QuizModel) TakeSubmission() (quiz.Submission, bool) {
	if !m.pendingSubmit || m.submission == nil {
		return quiz.Submission{}, false
	}
	m.pendingSubmit = false
	return *m.submission, true
}

func (m QuizModel) current() (model.Question, bool) {
	qs := m.quiz.Questions()
	if m.index < 0 || m.index >= len(qs) {
		return model.Question{}, false
	}
	return qs[m.index], true
}

// Update handles quiz keys. Anything else scrolls the viewport.
func (m QuizModel) Update(msg tea.Msg) (QuizModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "esc", "q", "backspace":
		m.closeRequested = true
		return m, nil
	case "a", "b", "c", "d", "A", "B", "C", "D":
		m.selectOption(strings.ToUpper(key.String()))
	case "1", "2", "3", "4":
		m.selectOption(model.OptionKeys[key.String()[0]-'1'])
	case "n", "right", "l", "tab":
		if m.index < len(m.quiz.Questions())-1 {
			m.index++
			m.viewport.GotoTop()
		}
	case "p", "left", "h", "shift+tab":
		if m.index > 0 {
			m.index--
			m.viewport.GotoTop()
		}
	case "s":
		if sub, ok := m.quiz.Submit(); ok {
			m.submission = &sub
			m.pendingSubmit = true
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	m.refresh()
	return m, nil
}

func (m *QuizModel) selectOption(opt string) {
	if q, ok := m.current(); ok {
		m.quiz.Select(q.No, opt)
	}
}

func (m *QuizModel) refresh() {
	m.viewport.SetContent(m.renderQuestion())
}

func (m QuizModel) renderQuestion() string {
	t := m.theme
	q, ok := m.current()
	if !ok {
		return t.MutedText.Render("This test has no questions.")
	}
	width := max(m.viewport.Width, 20)

	var sb strings.Builder
	sb.WriteString(t.PrimaryBold.Render(fmt.Sprintf("Question %d of %d", m.index+1, len(m.quiz.Questions()))))
	sb.WriteString("\n\n")
	sb.WriteString(m.md.Render(q.Text, width))
	sb.WriteString("\n")
	if q.Image != "" {
		sb.WriteString(t.InfoText.Render("image: "+q.Image) + "\n")
	}
	sb.WriteString("\n")

	for _, key := range model.OptionKeys {
		text := q.Option(key)
		if text == "" && q.OptionImage(key) == "" {
			continue
		}
		sb.WriteString(m.renderOption(q, key))
		sb.WriteString("\n")
	}

	if m.quiz.Submitted() && (q.Explanation != "" || q.ExplanationImage != "") {
		sb.WriteString("\n")
		sb.WriteString(t.PrimaryBold.Render("Explanation"))
		sb.WriteString("\n")
		if q.Explanation != "" {
			sb.WriteString(m.md.Render(q.Explanation, width))
			sb.WriteString("\n")
		}
		if q.ExplanationImage != "" {
			sb.WriteString(t.InfoText.Render("image: "+q.ExplanationImage) + "\n")
		}
	}
	return sb.String()
}

func (m QuizModel) renderOption(q model.Question, key string) string {
	t := m.theme
	text := quiz.Normalize(q.Option(key))
	if img := q.OptionImage(key); img != "" {
		if text != "" {
			text += " "
		}
		text += "[image: " + img + "]"
	}
	line := fmt.Sprintf("(%s) %s", key, strings.ReplaceAll(text, "  \n", " "))

	switch m.quiz.Verdict(q, key) {
	case quiz.VerdictSelected:
		return t.PrimaryBold.Render("● " + line)
	case quiz.VerdictCorrect:
		return t.SuccessText.Render("✓ " + line)
	case quiz.VerdictWrong:
		return t.DangerText.Render("✗ " + line)
	default:
		return t.Base.Render("  " + line)
	}
}

func (m QuizModel) renderSummary() string {
	t := m.theme
	stats := m.quiz.Stats()
	if !m.quiz.Submitted() {
		answered := stats.Total - stats.Unattempted
		return t.MutedText.Render(fmt.Sprintf("Answered %d/%d", answered, stats.Total))
	}
	return t.SuccessText.Render(fmt.Sprintf("Score %s (%d%%)", m.submission.TotalScore, m.quiz.ScorePercent())) +
		t.MutedText.Render(fmt.Sprintf(" · correct %d · wrong %d · unattempted %d", stats.Correct, stats.Wrong, stats.Unattempted))
}

// View renders the quiz panel.
func (m QuizModel) View() string {
	t := m.theme
	title := t.Header.Render(truncate(m.quiz.Title(), max(m.width-4, 10)))
	help := "a-d select · n/p next/prev · s submit · esc back"
	if m.quiz.Submitted() {
		help = "n/p review · esc back"
	}
	body := PanelStyle.Width(max(m.width-2, 10)).Render(m.viewport.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		m.renderSummary()+"  "+t.MutedText.Render(help),
	)
}
