// Package model defines the content hierarchy served by the FREEPARE backend:
// entities (exam → subject → topic → paper), the completed-test set, derived
// progress statistics, and the exams behind leaf tests.
package model

import (
	"bytes"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Kind tags an entity with its place in the hierarchy.
type Kind string

const (
	KindExam    Kind = "exam"
	KindSubject Kind = "subject"
	KindTopic   Kind = "topic"
	KindPaper   Kind = "paper"
	KindContent Kind = "content"
)

// ParseKind maps a backend type tag onto a Kind. Anything unrecognised
// (including the backend's "default") becomes KindContent.
func ParseKind(raw string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindExam:
		return KindExam
	case KindSubject:
		return KindSubject
	case KindTopic:
		return KindTopic
	case KindPaper:
		return KindPaper
	default:
		return KindContent
	}
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindExam, KindSubject, KindTopic, KindPaper, KindContent:
		return true
	}
	return false
}

// Label returns the display label for the kind.
func (k Kind) Label() string {
	switch k {
	case KindExam:
		return "Exam"
	case KindSubject:
		return "Subject"
	case KindTopic:
		return "Topic"
	case KindPaper:
		return "Paper"
	default:
		return "Content"
	}
}

// Entity is one node of the content tree. An entity without children is a
// leaf: a directly launchable test.
type Entity struct {
	ID          string    `json:"_id,omitempty" validate:"max=256"`
	Name        string    `json:"name" validate:"notblank"`
	Kind        Kind      `json:"type" validate:"kind"`
	Description string    `json:"description,omitempty"`
	Children    []*Entity `json:"children,omitempty" validate:"dive"`
	VideoLink   string    `json:"youtubeLink,omitempty" validate:"omitempty,url"`

	// Malformed is set while decoding when the record did not have the
	// expected shape (non-object record, non-array children, non-string name).
	Malformed bool `json:"-"`
}

// IsLeaf reports whether e has no children. An explicit empty children array
// and an absent one are the same thing.
func (e *Entity) IsLeaf() bool {
	return e == nil || len(e.Children) == 0
}

// Key is the identity used for completed-test lookups: the id, falling back
// to the name.
func (e *Entity) Key() string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}

// Label is the display name, falling back to the id for nameless records.
func (e *Entity) Label() string {
	if e == nil {
		return ""
	}
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// HasVideo reports whether the entity links to an external video.
func (e *Entity) HasVideo() bool {
	return e != nil && strings.TrimSpace(e.VideoLink) != ""
}

type rawEntity struct {
	ID          json.RawMessage `json:"_id"`
	AltID       json.RawMessage `json:"id"`
	Name        json.RawMessage `json:"name"`
	Type        json.RawMessage `json:"type"`
	AltKind     json.RawMessage `json:"kind"`
	Description json.RawMessage `json:"description"`
	Children    json.RawMessage `json:"children"`
	YoutubeLink json.RawMessage `json:"youtubeLink"`
	VideoLink   json.RawMessage `json:"videoLink"`
}

// UnmarshalJSON decodes an entity defensively: shape problems mark the entity
// Malformed instead of failing the whole document.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw rawEntity
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Entity{}
	var ok bool

	e.ID, ok = firstString(raw.ID, raw.AltID)
	e.Malformed = e.Malformed || !ok
	e.Name, ok = scalarString(raw.Name)
	e.Malformed = e.Malformed || !ok
	kind, _ := firstString(raw.Type, raw.AltKind)
	e.Kind = ParseKind(kind)
	e.Description, _ = scalarString(raw.Description)
	e.VideoLink, _ = firstString(raw.YoutubeLink, raw.VideoLink)

	if strings.TrimSpace(e.Name) == "" {
		e.Malformed = true
	}

	children, ok := decodeEntityList(raw.Children)
	e.Children = children
	e.Malformed = e.Malformed || !ok
	return nil
}

// DecodeForest decodes the backend listing (a JSON array of root entities).
// A document that is not an array is an error; bad elements inside it are not.
func DecodeForest(data []byte) ([]*Entity, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	forest := make([]*Entity, 0, len(items))
	for _, item := range items {
		if child := decodeElement(item); child != nil {
			forest = append(forest, child)
		}
	}
	return forest, nil
}

// decodeEntityList decodes a children field. ok is false when the field holds
// something other than an array or null, or when any element was unusable.
func decodeEntityList(data json.RawMessage) ([]*Entity, bool) {
	if isNull(data) {
		return nil, true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	if len(items) == 0 {
		return nil, true
	}
	out := make([]*Entity, 0, len(items))
	ok := true
	for _, item := range items {
		child := decodeElement(item)
		if child == nil {
			ok = false
			continue
		}
		if child.Malformed && !bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
			ok = false
		}
		out = append(out, child)
	}
	return out, ok
}

// decodeElement turns one array element into an entity. null is dropped; a
// non-object becomes a malformed leaf so it still counts as one test.
func decodeElement(item json.RawMessage) *Entity {
	if isNull(item) {
		return nil
	}
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var child Entity
		if err := json.Unmarshal(trimmed, &child); err == nil {
			return &child
		}
	}
	name, _ := scalarString(item)
	return &Entity{Name: name, Kind: KindContent, Malformed: true}
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// scalarString reads a JSON string or number as text. Absent/null is an
// empty string and still ok; any other shape is not ok.
func scalarString(data json.RawMessage) (string, bool) {
	if isNull(data) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String(), true
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return strconv.FormatBool(b), false
	}
	return "", false
}

func firstString(fields ...json.RawMessage) (string, bool) {
	allOK := true
	for _, f := range fields {
		s, ok := scalarString(f)
		allOK = allOK && ok
		if s != "" {
			return s, ok
		}
	}
	return "", allOK
}
