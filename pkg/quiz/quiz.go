// Package quiz holds the state of one test attempt: the chosen answers,
// scoring, and the submission record.
package quiz

import (
	"fmt"
	"time"

	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/navigator"
	"github.com/freepare/freepare/pkg/progress"
)

// Stats counts answers against the key.
type Stats struct {
	Correct     int `json:"correct"`
	Wrong       int `json:"wrong"`
	Unattempted int `json:"unattempted"`
	Total       int `json:"total"`
}

// Submission is the record produced when an attempt is submitted.
type Submission struct {
	ExamID      string            `json:"examId"`
	TestName    string            `json:"testName"`
	Answers     map[string]string `json:"answers"`
	TotalScore  string            `json:"totalScore"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// Verdict classifies one option of a question for display.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictSelected
	VerdictCorrect
	VerdictWrong
)

// Quiz is a single attempt. It is not safe for concurrent use.
type Quiz struct {
	exam      *model.Exam
	launch    navigator.Launch
	answers   map[string]string
	submitted bool
	now       func() time.Time
}

// New starts an attempt on exam. Question texts are normalized once here.
func New(exam *model.Exam, launch navigator.Launch) *Quiz {
	return &Quiz{
		exam:    NormalizeExam(exam),
		launch:  launch,
		answers: make(map[string]string),
		now:     time.Now,
	}
}

// Exam returns the normalized exam.
func (q *Quiz) Exam() *model.Exam { return q.exam }

// Launch returns the launch parameters the attempt was started with.
func (q *Quiz) Launch() navigator.Launch { return q.launch }

// Title is the exam name, falling back to the test name.
func (q *Quiz) Title() string {
	if q.exam.Name != "" {
		return q.exam.Name
	}
	return q.launch.TestName
}

// Questions returns the questions in order.
func (q *Quiz) Questions() []model.Question { return q.exam.Questions }

// Submitted reports whether the attempt is frozen.
func (q *Quiz) Submitted() bool { return q.submitted }

// Selected returns the option chosen for a question, or "".
func (q *Quiz) Selected(questionNo string) string { return q.answers[questionNo] }

// Select chooses option for a question. Choosing the current option again
// clears it. Returns false when nothing changed: after submit, for an unknown
// question, or for an option outside A-D.
func (q *Quiz) Select(questionNo, option string) bool {
	if q.submitted || !validOption(option) || !q.hasQuestion(questionNo) {
		return false
	}
	if q.answers[questionNo] == option {
		delete(q.answers, questionNo)
		return true
	}
	q.answers[questionNo] = option
	return true
}

// Stats scores the current answers. Unanswered questions are unattempted.
func (q *Quiz) Stats() Stats {
	s := Stats{Total: len(q.exam.Questions)}
	for _, question := range q.exam.Questions {
		chosen := q.answers[question.No]
		switch {
		case chosen == "":
			s.Unattempted++
		case chosen == question.CorrectAnswer:
			s.Correct++
		default:
			s.Wrong++
		}
	}
	return s
}

// ScorePercent is 100·correct/total rounded half up, 0 without questions.
func (q *Quiz) ScorePercent() int {
	s := q.Stats()
	return progress.Ratio(s.Correct, s.Total)
}

// Submit freezes the answers and returns the submission record. An exam
// without questions cannot be submitted; neither can one already submitted.
func (q *Quiz) Submit() (Submission, bool) {
	if q.submitted || len(q.exam.Questions) == 0 {
		return Submission{}, false
	}
	q.submitted = true

	s := q.Stats()
	answers := make(map[string]string, len(q.answers))
	for k, v := range q.answers {
		answers[k] = v
	}
	return Submission{
		ExamID:      q.launch.ExamID,
		TestName:    q.launch.TestName,
		Answers:     answers,
		TotalScore:  fmt.Sprintf("%d/%d", s.Correct, s.Total),
		SubmittedAt: q.now().UTC(),
	}, true
}

// Verdict classifies option of question for display. Before submit only the
// selection is shown; after submit the key is revealed.
func (q *Quiz) Verdict(question model.Question, option string) Verdict {
	chosen := q.answers[question.No] == option
	if !q.submitted {
		if chosen {
			return VerdictSelected
		}
		return VerdictNone
	}
	switch {
	case option == question.CorrectAnswer:
		return VerdictCorrect
	case chosen:
		return VerdictWrong
	default:
		return VerdictNone
	}
}

func (q *Quiz) hasQuestion(no string) bool {
	for _, question := range q.exam.Questions {
		if question.No == no {
			return true
		}
	}
	return false
}

func validOption(option string) bool {
	for _, k := range model.OptionKeys {
		if k == option {
			return true
		}
	}
	return false
}
