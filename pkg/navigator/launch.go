package navigator

import (
	"net/url"
	"strings"

	"github.com/freepare/freepare/pkg/model"
)

// DefaultTestName is used for the testName parameter when a leaf has no name.
const DefaultTestName = "Freepare Test"

// Launch identifies the quiz opened for a leaf.
type Launch struct {
	ExamID   string `json:"exam_id"`
	TestName string `json:"test_name"`
}

// IsLeaf reports whether selecting e launches a test (true) or descends into
// it (false).
func IsLeaf(e *model.Entity) bool {
	return e.IsLeaf()
}

// LaunchFor returns the launch target for a leaf. ok is false for non-leaves,
// which must be routed to Cursor.Descend instead.
func LaunchFor(e *model.Entity) (Launch, bool) {
	if e == nil || !e.IsLeaf() {
		return Launch{}, false
	}
	l := Launch{ExamID: e.Name, TestName: e.Name}
	if l.ExamID == "" {
		l.ExamID = e.ID
	}
	if l.TestName == "" {
		l.TestName = DefaultTestName
	}
	return l, true
}

// Route renders the quiz route:
//
//	/test?examId=<name-or-id>&testName=<name>
//
// Both values are escaped the way browsers escape URI components.
func (l Launch) Route() string {
	return "/test?examId=" + EscapeComponent(l.ExamID) + "&testName=" + EscapeComponent(l.TestName)
}

var componentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EscapeComponent escapes s like encodeURIComponent: everything except
// letters, digits and -_.!~*'() is percent-encoded, spaces as %20.
func EscapeComponent(s string) string {
	return componentUnescapes.Replace(url.QueryEscape(s))
}

// ParseRoute is the inverse of Route. It accepts any URL whose query carries
// examId; testName defaults like LaunchFor does.
func ParseRoute(route string) (Launch, bool) {
	u, err := url.Parse(route)
	if err != nil {
		return Launch{}, false
	}
	q := u.Query()
	l := Launch{ExamID: q.Get("examId"), TestName: q.Get("testName")}
	if l.ExamID == "" {
		return Launch{}, false
	}
	if l.TestName == "" {
		l.TestName = DefaultTestName
	}
	return l, true
}
