// Package hierarchy wires the tree store, the completed store and the
// navigation cursor into the browsing flow: load, annotate the current
// level, open an entity, go back.
package hierarchy

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/freepare/freepare/pkg/debug"
	"github.com/freepare/freepare/pkg/metrics"
	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/navigator"
	"github.com/freepare/freepare/pkg/progress"
	"github.com/freepare/freepare/pkg/store"
)

// Hierarchy is the navigator state for one browsing session.
type Hierarchy struct {
	Tree      *store.TreeStore
	Completed *store.CompletedStore
	Cursor    *navigator.Cursor
}

// New builds a hierarchy over the two stores. The cursor starts at the
// tree's current forest.
func New(tree *store.TreeStore, completed *store.CompletedStore) *Hierarchy {
	return &Hierarchy{
		Tree:      tree,
		Completed: completed,
		Cursor:    navigator.NewCursor(tree.Forest()),
	}
}

// ApplyTree installs a tree result and resets the cursor when the forest was
// replaced.
func (h *Hierarchy) ApplyTree(res store.TreeResult) bool {
	if !h.Tree.Apply(res) {
		return false
	}
	h.Cursor.Reset(h.Tree.Forest())
	return true
}

// ApplyCompleted installs a completed-set result. Cards pick it up on the
// next render.
func (h *Hierarchy) ApplyCompleted(res store.CompletedResult) bool {
	return h.Completed.Apply(res)
}

// Load fetches the tree and the completed set concurrently and applies both.
// A completed-set failure never fails Load; a tree failure is returned after
// the completed result has been applied.
func (h *Hierarchy) Load(ctx context.Context) error {
	defer debug.LogEnterExit("hierarchy.Load")()
	treeGen := h.Tree.Begin()
	doneGen := h.Completed.Begin()

	var treeRes store.TreeResult
	var doneRes store.CompletedResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		treeRes = h.Tree.Fetch(gctx, treeGen)
		return nil
	})
	g.Go(func() error {
		doneRes = h.Completed.Fetch(gctx, doneGen)
		return nil
	})
	_ = g.Wait()

	h.ApplyCompleted(doneRes)
	h.ApplyTree(treeRes)
	return h.Tree.Err()
}

// Cards annotates the filtered entities of the current level.
func (h *Hierarchy) Cards() []Card {
	defer metrics.Timer(metrics.ProgressCompute)()
	level := h.Cursor.Filtered()
	done := h.Completed.Set()
	cards := make([]Card, 0, len(level))
	for _, e := range level {
		if e == nil {
			continue
		}
		cards = append(cards, NewCard(e, done))
	}
	return cards
}

// LeafLevel reports whether every entity at the current level is a leaf.
// Such levels are laid out as a single column of tests.
func (h *Hierarchy) LeafLevel() bool {
	level := h.Cursor.Visible()
	if len(level) == 0 {
		return false
	}
	for _, e := range level {
		if !e.IsLeaf() {
			return false
		}
	}
	return true
}

// Open routes a selected entity: leaves return their launch target, parents
// are descended into.
func (h *Hierarchy) Open(e *model.Entity) (navigator.Launch, bool) {
	if l, ok := navigator.LaunchFor(e); ok {
		return l, true
	}
	h.Cursor.Descend(e)
	return navigator.Launch{}, false
}

// Back goes up one level.
func (h *Hierarchy) Back() bool {
	return h.Cursor.Ascend()
}

// Navigate resets to root and descends through segments, each matching a
// child by id or, case-insensitively, by name. It stops with an error at the
// first segment that does not resolve to a non-leaf; the cursor is left at
// the deepest level reached.
func (h *Hierarchy) Navigate(segments []string) error {
	h.Cursor.AscendTo(0)
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		e := findChild(h.Cursor.Visible(), seg)
		if e == nil {
			return fmt.Errorf("no entity %q under %s", seg, h.where())
		}
		if e.IsLeaf() {
			return fmt.Errorf("%q is a test, not a level", e.Label())
		}
		h.Cursor.Descend(e)
	}
	return nil
}

// Level returns the stats for the current level as a whole: the current
// entity, or every root summed.
func (h *Hierarchy) Level() model.ProgressStats {
	if cur := h.Cursor.Current(); cur != nil {
		return progress.Compute(cur, h.Completed.Set())
	}
	return progress.Forest(h.Cursor.Roots(), h.Completed.Set())
}

func (h *Hierarchy) where() string {
	crumbs := h.Cursor.Breadcrumb()
	if len(crumbs) == 0 {
		return "root"
	}
	return strings.Join(crumbs, "/")
}

func findChild(level []*model.Entity, seg string) *model.Entity {
	for _, e := range level {
		if e != nil && e.ID == seg {
			return e
		}
	}
	for _, e := range level {
		if e != nil && strings.EqualFold(e.Name, seg) {
			return e
		}
	}
	return nil
}
