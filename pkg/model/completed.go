package model

import (
	"bytes"
	"sort"

	json "github.com/goccy/go-json"
)

// CompletedSet holds the identifiers of tests the current user has finished.
// The zero value is an empty set and is safe to use.
type CompletedSet struct {
	ids map[string]struct{}
}

// NewCompletedSet builds a set from identifiers. Empty strings are ignored.
func NewCompletedSet(ids ...string) CompletedSet {
	s := CompletedSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id == "" {
			continue
		}
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. The empty identifier never is.
func (s CompletedSet) Has(id string) bool {
	if id == "" || s.ids == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of identifiers in the set.
func (s CompletedSet) Len() int {
	return len(s.ids)
}

// IDs returns the identifiers in sorted order.
func (s CompletedSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// With returns a copy of s that also contains ids.
func (s CompletedSet) With(ids ...string) CompletedSet {
	all := append(s.IDs(), ids...)
	return NewCompletedSet(all...)
}

// DecodeCompleted decodes the completed-tests payload:
//
//	{ "completedTests": [ {"examId": "..."} | {"name": "..."} | "..." ] }
//
// Each object contributes its examId, falling back to its name. Elements
// carrying neither are skipped. A missing or non-array completedTests field
// yields an empty set.
func DecodeCompleted(data []byte) (CompletedSet, error) {
	var body struct {
		CompletedTests json.RawMessage `json:"completedTests"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return CompletedSet{}, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body.CompletedTests, &items); err != nil {
		return NewCompletedSet(), nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			var rec struct {
				ExamID json.RawMessage `json:"examId"`
				Name   json.RawMessage `json:"name"`
			}
			if err := json.Unmarshal(trimmed, &rec); err != nil {
				continue
			}
			if id, _ := firstString(rec.ExamID, rec.Name); id != "" {
				ids = append(ids, id)
			}
			continue
		}
		if id, ok := scalarString(item); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return NewCompletedSet(ids...), nil
}

// ProgressStats is derived per displayed entity on every render pass.
type ProgressStats struct {
	TotalLeaves     int `json:"total"`
	CompletedLeaves int `json:"completed"`
	Touched         int `json:"touched"`
	Children        int `json:"children"`
	Percent         int `json:"percent"`
}
