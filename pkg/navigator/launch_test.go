package navigator

import (
	"testing"

	"github.com/freepare/freepare/pkg/model"
)

func TestFilter(t *testing.T) {
	level := []*model.Entity{
		{ID: "1", Name: "Indian Polity"},
		{ID: "2", Name: "World History"},
		{ID: "3", Name: "Modern India"},
		nil,
	}
	tests := []struct {
		query string
		want  []string
	}{
		{"india", []string{"1", "3"}},
		{"  INDIA  ", []string{"1", "3"}},
		{"history", []string{"2"}},
		{"xyz", []string{}},
	}
	for _, tt := range tests {
		got := Filter(level, tt.query)
		if len(got) != len(tt.want) {
			t.Errorf("Filter(%q) returned %d entities, want %d", tt.query, len(got), len(tt.want))
			continue
		}
		for i, e := range got {
			if e.ID != tt.want[i] {
				t.Errorf("Filter(%q)[%d] = %s, want %s", tt.query, i, e.ID, tt.want[i])
			}
		}
	}
}

func TestFilter_NameOnly(t *testing.T) {
	level := []*model.Entity{
		{ID: "geo", Name: "Geography", Description: "rivers and mountains", Children: []*model.Entity{{Name: "Rivers"}}},
	}
	if got := Filter(level, "rivers"); len(got) != 0 {
		t.Errorf("filter should match names only and not descend, got %v", got)
	}
}

func TestLaunchFor(t *testing.T) {
	tests := []struct {
		name   string
		e      *model.Entity
		want   Launch
		wantOK bool
	}{
		{"named leaf", &model.Entity{ID: "p1", Name: "Paper 1"}, Launch{"Paper 1", "Paper 1"}, true},
		{"id only", &model.Entity{ID: "p2"}, Launch{"p2", DefaultTestName}, true},
		{"parent", &model.Entity{ID: "t", Name: "T", Children: []*model.Entity{{Name: "c"}}}, Launch{}, false},
		{"nil", nil, Launch{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LaunchFor(tt.e)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("LaunchFor = %+v, %v; want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLaunchRoute(t *testing.T) {
	l := Launch{ExamID: "GS Paper 1 (2023)", TestName: "A&B/C?'*!~"}
	want := "/test?examId=GS%20Paper%201%20(2023)&testName=A%26B%2FC%3F'*!~"
	if got := l.Route(); got != want {
		t.Errorf("Route() = %q, want %q", got, want)
	}

	back, ok := ParseRoute(l.Route())
	if !ok || back != l {
		t.Errorf("ParseRoute(Route()) = %+v, %v", back, ok)
	}
}

func TestParseRoute(t *testing.T) {
	if _, ok := ParseRoute("/test?testName=x"); ok {
		t.Error("route without examId should not parse")
	}
	l, ok := ParseRoute("/test?examId=abc")
	if !ok || l.TestName != DefaultTestName {
		t.Errorf("missing testName should default, got %+v", l)
	}
	if _, ok := ParseRoute("%zz"); ok {
		t.Error("invalid URL should not parse")
	}
}
