// Package progress computes completion statistics over a content subtree.
//
// All functions are pure: they read the tree and the completed set and never
// modify either. Input from the backend is not trusted, so every walk carries
// a depth cap and an on-path guard. A node reached again along its own
// ancestor chain, or below MaxDepth, is counted as a single leaf.
package progress

import (
	"github.com/freepare/freepare/pkg/model"
)

// MaxDepth bounds recursion into a subtree. Real hierarchies are four or
// five levels deep.
const MaxDepth = 64

type counts struct {
	total     int
	completed int
}

type walker struct {
	done   model.CompletedSet
	onPath map[*model.Entity]bool
}

func newWalker(done model.CompletedSet) *walker {
	return &walker{done: done, onPath: make(map[*model.Entity]bool)}
}

func (w *walker) leaf(e *model.Entity) counts {
	c := counts{total: 1}
	if w.done.Has(e.Key()) {
		c.completed = 1
	}
	return c
}

func (w *walker) count(e *model.Entity, depth int) counts {
	if e == nil {
		return counts{}
	}
	if e.IsLeaf() || depth >= MaxDepth || w.onPath[e] {
		return w.leaf(e)
	}

	w.onPath[e] = true
	defer delete(w.onPath, e)

	var sum counts
	for _, child := range e.Children {
		c := w.count(child, depth+1)
		sum.total += c.total
		sum.completed += c.completed
	}
	return sum
}

// TotalLeaves returns the number of tests reachable from e. A leaf counts as
// one test.
func TotalLeaves(e *model.Entity) int {
	return newWalker(model.CompletedSet{}).count(e, 0).total
}

// CompletedLeaves returns how many of the tests reachable from e are in done.
// Leaves are matched by id, falling back to name.
func CompletedLeaves(e *model.Entity, done model.CompletedSet) int {
	return newWalker(done).count(e, 0).completed
}

// TouchedChildren counts the direct children of e with at least one
// completed test beneath them.
func TouchedChildren(e *model.Entity, done model.CompletedSet) int {
	return Compute(e, done).Touched
}

// Percent returns round(100 * completed / total) for e, or 0 when e has no
// tests.
func Percent(e *model.Entity, done model.CompletedSet) int {
	return Compute(e, done).Percent
}

// Ratio rounds 100*completed/total half up. A zero or negative total yields 0.
func Ratio(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return (200*completed + total) / (2 * total)
}

// Compute returns every statistic for e in one walk.
func Compute(e *model.Entity, done model.CompletedSet) model.ProgressStats {
	if e == nil {
		return model.ProgressStats{}
	}
	w := newWalker(done)
	if e.IsLeaf() {
		c := w.leaf(e)
		return model.ProgressStats{
			TotalLeaves:     c.total,
			CompletedLeaves: c.completed,
			Percent:         Ratio(c.completed, c.total),
		}
	}

	stats := model.ProgressStats{Children: len(e.Children)}
	w.onPath[e] = true
	for _, child := range e.Children {
		c := w.count(child, 1)
		stats.TotalLeaves += c.total
		stats.CompletedLeaves += c.completed
		if c.completed > 0 {
			stats.Touched++
		}
	}
	stats.Percent = Ratio(stats.CompletedLeaves, stats.TotalLeaves)
	return stats
}

// ComputeAll annotates each entity of a level, in order.
func ComputeAll(level []*model.Entity, done model.CompletedSet) []model.ProgressStats {
	out := make([]model.ProgressStats, len(level))
	for i, e := range level {
		out[i] = Compute(e, done)
	}
	return out
}

// Forest sums the statistics of every root, as shown for the root level.
func Forest(roots []*model.Entity, done model.CompletedSet) model.ProgressStats {
	stats := model.ProgressStats{Children: len(roots)}
	for _, r := range roots {
		s := Compute(r, done)
		stats.TotalLeaves += s.TotalLeaves
		stats.CompletedLeaves += s.CompletedLeaves
		if s.CompletedLeaves > 0 {
			stats.Touched++
		}
	}
	stats.Percent = Ratio(stats.CompletedLeaves, stats.TotalLeaves)
	return stats
}
