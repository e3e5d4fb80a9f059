package testutil

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/freepare/freepare/pkg/model"
)

// AssertLeafCount checks the number of tests reachable from forest.
func AssertLeafCount(t *testing.T, forest []*model.Entity, expected int) {
	t.Helper()
	if got := len(Leaves(forest)); got != expected {
		t.Errorf("expected %d tests, got %d", expected, got)
	}
}

// AssertNoDuplicateKeys checks that no two entities share a Key. Cycles are
// cut and shared subtrees are visited once.
func AssertNoDuplicateKeys(t *testing.T, forest []*model.Entity) {
	t.Helper()
	seen := make(map[string]bool)
	visited := make(map[*model.Entity]bool)
	var walk func(e *model.Entity)
	walk = func(e *model.Entity) {
		if e == nil || visited[e] {
			return
		}
		visited[e] = true
		if seen[e.Key()] {
			t.Errorf("duplicate entity key: %s", e.Key())
		}
		seen[e.Key()] = true
		for _, c := range e.Children {
			walk(c)
		}
	}
	for _, r := range forest {
		walk(r)
	}
}

// AssertStats compares progress stats field by field.
func AssertStats(t *testing.T, label string, got, want model.ProgressStats) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %+v, want %+v", label, got, want)
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
// Useful for comparing structs that may have different Go representations
// but equivalent JSON forms.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteFixture writes f as a backend document under dir and returns the path.
func WriteFixture(t *testing.T, dir string, f Fixture) string {
	t.Helper()
	data, err := ToJSON(f)
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	path := filepath.Join(dir, "fixture.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// FindEntity returns the first entity with the given key, or nil.
func FindEntity(forest []*model.Entity, key string) *model.Entity {
	visited := make(map[*model.Entity]bool)
	var find func(level []*model.Entity) *model.Entity
	find = func(level []*model.Entity) *model.Entity {
		for _, e := range level {
			if e == nil || visited[e] {
				continue
			}
			visited[e] = true
			if e.Key() == key {
				return e
			}
			if found := find(e.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return find(forest)
}

// Keys lists the keys of one level.
func Keys(level []*model.Entity) []string {
	out := make([]string, len(level))
	for i, e := range level {
		out[i] = e.Key()
	}
	return out
}
