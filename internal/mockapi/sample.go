package mockapi

import (
	json "github.com/goccy/go-json"
)

const sampleEntities = `[
  {
    "_id": "exam-upsc",
    "name": "UPSC Prelims",
    "type": "exam",
    "children": [
      {
        "_id": "sub-history",
        "name": "History",
        "type": "subject",
        "children": [
          {
            "_id": "top-ancient",
            "name": "Ancient India",
            "type": "topic",
            "description": "Indus Valley to the **Guptas**.",
            "children": [
              {"_id": "paper-ancient-1", "name": "Ancient India Paper 1", "type": "paper", "youtubeLink": "https://www.youtube.com/watch?v=ancient1"},
              {"_id": "paper-ancient-2", "name": "Ancient India Paper 2", "type": "paper", "children": []}
            ]
          },
          {
            "_id": "top-modern",
            "name": "Modern India",
            "type": "topic",
            "children": [
              {"_id": "paper-modern-1", "name": "Modern India Paper 1", "type": "paper"}
            ]
          }
        ]
      },
      {
        "_id": "sub-polity",
        "name": "Polity",
        "type": "subject",
        "children": [
          {"_id": "paper-polity-1", "name": "Polity Mock 1", "type": "paper"}
        ]
      }
    ]
  },
  {
    "_id": "exam-ssc",
    "name": "SSC CGL",
    "type": "exam",
    "children": [
      {"_id": "paper-ssc-1", "name": "SSC Quant 1", "type": "paper"}
    ]
  },
  {
    "_id": "content-notes",
    "name": "Study Notes",
    "type": "default"
  }
]`

const sampleCompleted = `[{"examId": "paper-ancient-1"}, {"name": "Polity Mock 1"}]`

const sampleExam = `{
  "examName": "Ancient India Paper 2",
  "questions": [
    {
      "questionNo": 1,
      "questionText": "Which site is associated with the **Great Bath**?",
      "optionA": "Harappa",
      "optionB": "Mohenjo-daro",
      "optionC": "Lothal",
      "optionD": "Kalibangan",
      "correctAnswer": "B",
      "explanation": "The Great Bath was excavated at $Mohenjo-daro$."
    },
    {
      "questionNo": 2,
      "questionText": "Who founded the ~Maurya~ empire?",
      "optionA": "Ashoka",
      "optionB": "Bindusara",
      "optionC": "Chandragupta Maurya",
      "optionD": "Bimbisara",
      "correctAnswer": "C",
      "explanation": "Chandragupta Maurya, advised by Chanakya.\\nHe ruled from Pataliputra."
    }
  ]
}`

// SampleFixture returns a small UPSC/SSC hierarchy with two completed tests
// and one exam, keyed by both its name and id.
func SampleFixture() *Fixture {
	exam := json.RawMessage(sampleExam)
	return &Fixture{
		Entities:       json.RawMessage(sampleEntities),
		CompletedTests: json.RawMessage(sampleCompleted),
		Exams: map[string]json.RawMessage{
			"Ancient India Paper 2": exam,
			"paper-ancient-2":       exam,
		},
	}
}
