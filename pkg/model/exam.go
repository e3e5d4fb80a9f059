package model

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// OptionKeys are the answer slots every question offers.
var OptionKeys = []string{"A", "B", "C", "D"}

// Question is one multiple-choice item of an exam.
type Question struct {
	No               string `json:"questionNo"`
	Text             string `json:"questionText,omitempty"`
	Image            string `json:"questionImage,omitempty"`
	OptionA          string `json:"optionA,omitempty"`
	OptionB          string `json:"optionB,omitempty"`
	OptionC          string `json:"optionC,omitempty"`
	OptionD          string `json:"optionD,omitempty"`
	OptionAImage     string `json:"optionAImage,omitempty"`
	OptionBImage     string `json:"optionBImage,omitempty"`
	OptionCImage     string `json:"optionCImage,omitempty"`
	OptionDImage     string `json:"optionDImage,omitempty"`
	CorrectAnswer    string `json:"correctAnswer"`
	Explanation      string `json:"explanation,omitempty"`
	ExplanationImage string `json:"explanationImage,omitempty"`
}

// Option returns the text of the option with the given key (A-D).
func (q Question) Option(key string) string {
	switch key {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

// OptionImage returns the image URL attached to an option, if any.
func (q Question) OptionImage(key string) string {
	switch key {
	case "A":
		return q.OptionAImage
	case "B":
		return q.OptionBImage
	case "C":
		return q.OptionCImage
	case "D":
		return q.OptionDImage
	}
	return ""
}

// Exam is the quiz behind a leaf test.
type Exam struct {
	Name      string     `json:"examName,omitempty"`
	Questions []Question `json:"questions"`
}

// UnmarshalJSON tolerates a non-array questions field (decoded as no
// questions) and numeric question numbers. Questions without a number are
// numbered by position, starting at 1.
func (x *Exam) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      json.RawMessage `json:"examName"`
		Questions json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*x = Exam{}
	x.Name, _ = scalarString(raw.Name)

	var items []json.RawMessage
	if err := json.Unmarshal(raw.Questions, &items); err != nil {
		return nil
	}
	for i, item := range items {
		q, ok := decodeQuestion(item)
		if !ok {
			continue
		}
		if q.No == "" {
			q.No = strconv.Itoa(i + 1)
		}
		x.Questions = append(x.Questions, q)
	}
	return nil
}

type questionAlias Question

func decodeQuestion(item json.RawMessage) (Question, bool) {
	var raw struct {
		No json.RawMessage `json:"questionNo"`
	}
	if err := json.Unmarshal(item, &raw); err != nil {
		return Question{}, false
	}
	// Decode the remaining string fields with the number masked out, so a
	// numeric questionNo does not fail the whole record.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return Question{}, false
	}
	delete(fields, "questionNo")
	masked, err := json.Marshal(fields)
	if err != nil {
		return Question{}, false
	}
	var q questionAlias
	if err := json.Unmarshal(masked, &q); err != nil {
		return Question{}, false
	}
	q.No, _ = scalarString(raw.No)
	return Question(q), true
}
