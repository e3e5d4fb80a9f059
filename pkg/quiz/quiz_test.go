package quiz

import (
	"testing"
	"time"

	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/navigator"
)

func sampleExam() *model.Exam {
	return &model.Exam{
		Name: "Ancient India Paper 2",
		Questions: []model.Question{
			{No: "1", Text: "Which site has the **Great Bath**?", CorrectAnswer: "B", Explanation: `Mohenjo-daro.\nSindh`},
			{No: "2", Text: "Who founded the ~Maurya~ empire?", CorrectAnswer: "C"},
			{No: "3", Text: "$Rigveda$ is in which language?", CorrectAnswer: "A"},
		},
	}
}

var launch = navigator.Launch{ExamID: "Ancient India Paper 2", TestName: "Ancient India Paper 2"}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"**bold** and **more**", "**bold** and **more**"},
		{"$x$ then $y$", "*x* then *y*"},
		{"~under~", "_under_"},
		{`line one\nline two`, "line one  \nline two"},
		{"a $lonely dollar", "a $lonely dollar"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeExam(t *testing.T) {
	orig := sampleExam()
	got := NormalizeExam(orig)
	if got.Questions[1].Text != "Who founded the _Maurya_ empire?" {
		t.Errorf("text not normalized: %q", got.Questions[1].Text)
	}
	if got.Questions[0].Explanation != "Mohenjo-daro.  \nSindh" {
		t.Errorf("explanation not normalized: %q", got.Questions[0].Explanation)
	}
	if orig.Questions[1].Text != "Who founded the ~Maurya~ empire?" {
		t.Error("NormalizeExam must not modify its input")
	}
	if empty := NormalizeExam(nil); empty == nil || len(empty.Questions) != 0 {
		t.Errorf("nil exam should normalize to an empty one, got %+v", empty)
	}
}

func TestSelectToggle(t *testing.T) {
	q := New(sampleExam(), launch)

	if !q.Select("1", "B") || q.Selected("1") != "B" {
		t.Fatal("expected B selected")
	}
	if !q.Select("1", "A") || q.Selected("1") != "A" {
		t.Fatal("selecting another option should replace the answer")
	}
	if !q.Select("1", "A") || q.Selected("1") != "" {
		t.Fatal("selecting the current option again should clear it")
	}

	if q.Select("9", "A") {
		t.Error("unknown question should be ignored")
	}
	if q.Select("1", "E") {
		t.Error("option outside A-D should be ignored")
	}
}

func TestStatsAndScore(t *testing.T) {
	q := New(sampleExam(), launch)
	q.Select("1", "B") // correct
	q.Select("2", "A") // wrong

	want := Stats{Correct: 1, Wrong: 1, Unattempted: 1, Total: 3}
	if got := q.Stats(); got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
	if got := q.ScorePercent(); got != 33 {
		t.Errorf("ScorePercent = %d, want 33", got)
	}

	q.Select("3", "A")
	if got := q.ScorePercent(); got != 67 {
		t.Errorf("ScorePercent = %d, want 67", got)
	}
}

func TestSubmit(t *testing.T) {
	q := New(sampleExam(), launch)
	q.now = func() time.Time { return time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC) }
	q.Select("1", "B")
	q.Select("2", "C")

	sub, ok := q.Submit()
	if !ok {
		t.Fatal("Submit should succeed")
	}
	if sub.TotalScore != "2/3" || sub.ExamID != launch.ExamID || sub.TestName != launch.TestName {
		t.Errorf("unexpected submission %+v", sub)
	}
	if len(sub.Answers) != 2 || sub.Answers["2"] != "C" {
		t.Errorf("unexpected answers %v", sub.Answers)
	}
	if !sub.SubmittedAt.Equal(time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %v", sub.SubmittedAt)
	}

	if q.Select("3", "A") || q.Selected("3") != "" {
		t.Error("answers are frozen after submit")
	}
	if _, ok := q.Submit(); ok {
		t.Error("second submit should be a no-op")
	}

	sub.Answers["1"] = "D"
	if q.Selected("1") != "B" {
		t.Error("submission answers must be a copy")
	}
}

func TestSubmit_NoQuestions(t *testing.T) {
	q := New(&model.Exam{Name: "Empty"}, launch)
	if _, ok := q.Submit(); ok {
		t.Error("an exam without questions cannot be submitted")
	}
	if q.Submitted() {
		t.Error("failed submit must not freeze the quiz")
	}
	if q.ScorePercent() != 0 || q.Stats().Total != 0 {
		t.Error("empty exam scores 0")
	}
}

func TestVerdict(t *testing.T) {
	q := New(sampleExam(), launch)
	question := q.Questions()[0]
	q.Select("1", "A")

	if q.Verdict(question, "A") != VerdictSelected || q.Verdict(question, "B") != VerdictNone {
		t.Error("before submit only the selection is shown")
	}

	q.Submit()
	if q.Verdict(question, "A") != VerdictWrong {
		t.Error("wrong selection should be marked wrong")
	}
	if q.Verdict(question, "B") != VerdictCorrect {
		t.Error("key should be revealed after submit")
	}
	if q.Verdict(question, "C") != VerdictNone {
		t.Error("other options stay neutral")
	}
}

func TestTitle(t *testing.T) {
	if got := New(sampleExam(), launch).Title(); got != "Ancient India Paper 2" {
		t.Errorf("Title = %q", got)
	}
	if got := New(&model.Exam{}, navigator.Launch{TestName: "Freepare Test"}).Title(); got != "Freepare Test" {
		t.Errorf("Title should fall back to the test name, got %q", got)
	}
}
