package quiz

import (
	"regexp"
	"strings"

	"github.com/freepare/freepare/pkg/model"
)

var (
	boldMarkup      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicMarkup    = regexp.MustCompile(`\$(.*?)\$`)
	underlineMarkup = regexp.MustCompile(`~(.*?)~`)
)

// Normalize converts backend question markup to markdown:
//
//	\n (two literal characters)  line break
//	**text**                     bold
//	$text$                       emphasis
//	~text~                       emphasis (markdown has no underline)
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, `\n`, "  \n")
	text = boldMarkup.ReplaceAllString(text, "**$1**")
	text = italicMarkup.ReplaceAllString(text, "*$1*")
	text = underlineMarkup.ReplaceAllString(text, "_${1}_")
	return text
}

// NormalizeExam returns a copy of exam with question texts and explanations
// normalized. A nil exam yields an empty one.
func NormalizeExam(exam *model.Exam) *model.Exam {
	if exam == nil {
		return &model.Exam{}
	}
	out := &model.Exam{Name: exam.Name, Questions: make([]model.Question, len(exam.Questions))}
	for i, q := range exam.Questions {
		q.Text = Normalize(q.Text)
		q.Explanation = Normalize(q.Explanation)
		out.Questions[i] = q
	}
	return out
}
