package model

import (
	"reflect"
	"strings"
	"testing"
)

func TestDecodeCompleted(t *testing.T) {
	data := []byte(`{"completedTests": [
	  {"examId": "p1", "name": "ignored"},
	  {"name": "Paper 2"},
	  "p3",
	  {"score": 4},
	  "",
	  12
	]}`)

	set, err := DecodeCompleted(data)
	if err != nil {
		t.Fatalf("DecodeCompleted failed: %v", err)
	}
	want := []string{"12", "Paper 2", "p1", "p3"}
	if got := set.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	if set.Has("ignored") {
		t.Error("name should only be used when examId is missing")
	}
}

func TestDecodeCompleted_MissingField(t *testing.T) {
	for _, body := range []string{`{}`, `{"completedTests": null}`, `{"completedTests": "nope"}`} {
		set, err := DecodeCompleted([]byte(body))
		if err != nil {
			t.Fatalf("DecodeCompleted(%s) failed: %v", body, err)
		}
		if set.Len() != 0 {
			t.Errorf("DecodeCompleted(%s) should be empty, got %v", body, set.IDs())
		}
	}
}

func TestDecodeCompleted_InvalidJSON(t *testing.T) {
	if _, err := DecodeCompleted([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestCompletedSet_ZeroValue(t *testing.T) {
	var s CompletedSet
	if s.Has("anything") || s.Len() != 0 {
		t.Error("zero CompletedSet should be empty")
	}
	if s.Has("") {
		t.Error("empty id should never be a member")
	}
	s2 := s.With("a", "b")
	if !s2.Has("a") || !s2.Has("b") || s.Len() != 0 {
		t.Error("With should return an extended copy and leave the original untouched")
	}
}

func TestExamDecode(t *testing.T) {
	data := []byte(`{"examName": "Polity Mock", "questions": [
	  {"questionNo": 1, "questionText": "Q one", "optionA": "a", "optionB": "b", "correctAnswer": "B"},
	  {"questionText": "Q two", "optionC": "c", "correctAnswer": "C"},
	  {"questionNo": "x3", "questionText": "Q three", "correctAnswer": "A"}
	]}`)

	var exam Exam
	if err := exam.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if exam.Name != "Polity Mock" {
		t.Errorf("expected exam name, got %q", exam.Name)
	}
	if len(exam.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(exam.Questions))
	}
	nos := []string{exam.Questions[0].No, exam.Questions[1].No, exam.Questions[2].No}
	if strings.Join(nos, ",") != "1,2,x3" {
		t.Errorf("unexpected question numbers %v", nos)
	}
	if exam.Questions[0].Option("B") != "b" || exam.Questions[1].Option("C") != "c" {
		t.Error("options not decoded")
	}
	if exam.Questions[0].Option("E") != "" {
		t.Error("unknown option key should be empty")
	}
}

func TestExamDecode_NonArrayQuestions(t *testing.T) {
	var exam Exam
	if err := exam.UnmarshalJSON([]byte(`{"examName": "Empty", "questions": {"a": 1}}`)); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if len(exam.Questions) != 0 {
		t.Errorf("expected no questions, got %d", len(exam.Questions))
	}
}
