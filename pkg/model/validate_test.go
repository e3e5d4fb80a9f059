package model

import (
	"strings"
	"testing"
)

func TestValidate_CleanTree(t *testing.T) {
	forest := []*Entity{
		{ID: "e", Name: "Exam", Kind: KindExam, Children: []*Entity{
			{ID: "p", Name: "Paper", Kind: KindPaper, VideoLink: "https://example.com/v"},
		}},
	}
	if issues := Validate(forest); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestValidate_ReportsProblems(t *testing.T) {
	forest := []*Entity{
		{ID: "e", Name: "Exam", Kind: KindExam, Children: []*Entity{
			{ID: "p", Name: "  ", Kind: KindPaper},
			{ID: "q", Name: "Q", Kind: Kind("bogus")},
			{ID: "r", Name: "R", Kind: KindPaper, VideoLink: "not a url"},
		}},
		{ID: "m", Name: "Loose", Kind: KindContent, Malformed: true},
	}

	issues := Validate(forest)
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %d: %v", len(issues), issues)
	}

	var joined []string
	for _, is := range issues {
		joined = append(joined, is.String())
	}
	all := strings.Join(joined, "\n")
	for _, want := range []string{
		"[0].children[0].name",
		"cannot be blank",
		"[0].children[1].type",
		"unknown entity type",
		"[0].children[2].youtubeLink",
		"[1]: malformed record \"Loose\"",
	} {
		if !strings.Contains(all, want) {
			t.Errorf("expected issues to mention %q, got:\n%s", want, all)
		}
	}
}
