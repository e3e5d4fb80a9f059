package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/progress"
)

// ForestDiff represents differences between two loads of the forest.
// Entities are matched by Key, so renaming an entity without an id shows up
// as one removal plus one addition.
type ForestDiff struct {
	// Added contains keys present in the new forest only
	Added []string
	// Removed contains keys present in the old forest only
	Removed []string
	// Renamed lists entities whose id is stable but whose name changed
	Renamed []Rename
	// Reshaped lists keys whose kind or child count changed
	Reshaped []string
	// CountA is the number of entities in the old forest
	CountA int
	// CountB is the number of entities in the new forest
	CountB int
}

// Rename is a name change of one entity.
type Rename struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// HasChanges returns true if the forests differ.
func (d ForestDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Renamed) > 0 || len(d.Reshaped) > 0
}

// Summary returns a one-line description used as the reload status.
func (d ForestDiff) Summary() string {
	if !d.HasChanges() {
		return fmt.Sprintf("No changes (%d entities)", d.CountB)
	}

	var parts []string
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	if n := len(d.Renamed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d renamed", n))
	}
	if n := len(d.Reshaped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", n))
	}
	return strings.Join(parts, ", ")
}

type shape struct {
	id       string
	name     string
	kind     model.Kind
	children int
}

// index records the first occurrence of every key in the forest.
func index(forest []*model.Entity) map[string]shape {
	out := make(map[string]shape)
	onPath := make(map[*model.Entity]bool)

	var walk func(level []*model.Entity, depth int)
	walk = func(level []*model.Entity, depth int) {
		for _, e := range level {
			if e == nil {
				continue
			}
			key := e.Key()
			if _, seen := out[key]; !seen {
				out[key] = shape{id: e.ID, name: e.Name, kind: e.Kind, children: len(e.Children)}
			}
			if e.IsLeaf() || depth >= progress.MaxDepth || onPath[e] {
				continue
			}
			onPath[e] = true
			walk(e.Children, depth+1)
			delete(onPath, e)
		}
	}
	walk(forest, 0)
	return out
}

// Diff compares two forests.
func Diff(prev, next []*model.Entity) ForestDiff {
	a, b := index(prev), index(next)
	d := ForestDiff{CountA: len(a), CountB: len(b)}

	for key, sa := range a {
		sb, ok := b[key]
		if !ok {
			d.Removed = append(d.Removed, key)
			continue
		}
		if sa.id != "" && sa.name != sb.name {
			d.Renamed = append(d.Renamed, Rename{ID: sa.id, From: sa.name, To: sb.name})
		}
		if sa.kind != sb.kind || sa.children != sb.children {
			d.Reshaped = append(d.Reshaped, key)
		}
	}
	for key := range b {
		if _, ok := a[key]; !ok {
			d.Added = append(d.Added, key)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Reshaped)
	sort.Slice(d.Renamed, func(i, j int) bool { return d.Renamed[i].ID < d.Renamed[j].ID })
	return d
}
