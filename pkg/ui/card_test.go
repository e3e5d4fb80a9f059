package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/freepare/freepare/pkg/hierarchy"
	"github.com/freepare/freepare/pkg/model"
)

func TestRenderCard_SubjectPreview(t *testing.T) {
	subject := &model.Entity{ID: "s", Name: "History", Kind: model.KindSubject}
	for _, name := range []string{"Ancient", "Medieval", "Modern", "World", "Art"} {
		subject.Children = append(subject.Children, &model.Entity{Name: name, Kind: model.KindTopic,
			Children: []*model.Entity{{ID: name + "-1", Name: name + " Mock", Kind: model.KindPaper}}})
	}
	card := hierarchy.NewCard(subject, model.NewCompletedSet("Ancient-1"))

	out := stripANSI(renderCard(card, CardWidth, false, newTestTheme()))
	for _, want := range []string{"History", "Subject", "• Ancient", "• World", "View more", "1/5 tests", "1/5 touched", "20%"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "• Art") {
		t.Errorf("subjects preview only four children:\n%s", out)
	}
	if w := lipgloss.Width(renderCard(card, CardWidth, false, newTestTheme())); w != CardWidth {
		t.Errorf("card width = %d, want %d", w, CardWidth)
	}
}

func TestRenderCard_ContentHidesProgress(t *testing.T) {
	notes := &model.Entity{ID: "n", Name: "Polity Notes", Kind: model.KindContent, VideoLink: "https://youtu.be/x"}
	out := stripANSI(renderCard(hierarchy.NewCard(notes, model.CompletedSet{}), CardWidth, false, newTestTheme()))

	if !strings.Contains(out, "[Open]") || !strings.Contains(out, "[Watch Video]") {
		t.Errorf("content card should offer Open and Watch Video:\n%s", out)
	}
	if strings.Contains(out, "%") || strings.Contains(out, "Not attempted") {
		t.Errorf("content card should not show progress:\n%s", out)
	}
}

func TestRenderCard_TopicDescriptionAndLeaf(t *testing.T) {
	topic := &model.Entity{ID: "t", Name: "Ancient", Kind: model.KindTopic,
		Description: strings.Repeat("Harappan towns and Vedic texts ", 6),
		Children:    []*model.Entity{{ID: "p1", Name: "Mock", Kind: model.KindPaper}}}
	out := stripANSI(renderCard(hierarchy.NewCard(topic, model.CompletedSet{}), CardWidth, false, newTestTheme()))
	if !strings.Contains(out, "Harappan towns") || !strings.Contains(out, "…") {
		t.Errorf("long descriptions are clipped to two lines:\n%s", out)
	}
	if strings.Contains(out, "• Mock") {
		t.Errorf("topics do not preview children:\n%s", out)
	}

	leaf := hierarchy.NewCard(topic.Children[0], model.NewCompletedSet("p1"))
	out = stripANSI(renderCard(leaf, CardWidth, true, newTestTheme()))
	for _, want := range []string{"Mock ✓", "Paper · test", "Completed", "100%", "[Start Test]"} {
		if !strings.Contains(out, want) {
			t.Errorf("leaf card missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCard_MalformedAndLongNames(t *testing.T) {
	e := &model.Entity{ID: "x", Name: strings.Repeat("Very long exam name ", 5), Kind: model.KindExam, Malformed: true,
		Children: []*model.Entity{{ID: "c", Name: "Child", Kind: model.KindPaper}}}
	out := stripANSI(renderCard(hierarchy.NewCard(e, model.CompletedSet{}), CardWidth, false, newTestTheme()))
	if !strings.Contains(out, "malformed") {
		t.Errorf("malformed records should be flagged:\n%s", out)
	}
	if !strings.Contains(out, "…") {
		t.Errorf("long names should be truncated:\n%s", out)
	}
}
