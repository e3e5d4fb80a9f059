// Package navigator tracks where the user is inside the content tree, narrows
// the current level by a search query, and decides what selecting an entity
// does.
package navigator

import (
	"github.com/freepare/freepare/pkg/debug"
	"github.com/freepare/freepare/pkg/model"
)

// Cursor is the navigation position: the path of entities from the root to
// the level being shown, plus the live search query for that level.
//
// The cursor holds references into a forest owned by the tree store and
// never modifies entities. Every transition replaces the path slice instead
// of editing it, so a slice returned by Path stays valid.
type Cursor struct {
	roots []*model.Entity
	path  []*model.Entity
	query string
}

// NewCursor returns a cursor at the root level of roots.
func NewCursor(roots []*model.Entity) *Cursor {
	return &Cursor{roots: roots}
}

// Reset drops the path and query and points the cursor at a new forest.
// Call it whenever the tree store replaces its forest.
func (c *Cursor) Reset(roots []*model.Entity) {
	c.roots = roots
	c.path = nil
	c.query = ""
}

// Roots returns the forest the cursor walks.
func (c *Cursor) Roots() []*model.Entity {
	return c.roots
}

// Path returns a copy of the breadcrumb path, root first. Empty at root.
func (c *Cursor) Path() []*model.Entity {
	out := make([]*model.Entity, len(c.path))
	copy(out, c.path)
	return out
}

// Depth is the number of entities on the path.
func (c *Cursor) Depth() int {
	return len(c.path)
}

// AtRoot reports whether the cursor shows the root forest.
func (c *Cursor) AtRoot() bool {
	return len(c.path) == 0
}

// Current returns the entity whose children are shown, or nil at root.
func (c *Cursor) Current() *model.Entity {
	if len(c.path) == 0 {
		return nil
	}
	return c.path[len(c.path)-1]
}

// Visible returns the unfiltered entities of the current level: the children
// of the last path entry, or the root forest. The slice belongs to the tree
// and must not be modified.
func (c *Cursor) Visible() []*model.Entity {
	if cur := c.Current(); cur != nil {
		return cur.Children
	}
	return c.roots
}

// Descend pushes e onto the path and clears the query.
//
// e must be a non-leaf entity from Visible. Leaves are launched, not entered
// (see LaunchFor); passing one is a no-op that returns false, and trips an
// assertion when debug logging is on.
func (c *Cursor) Descend(e *model.Entity) bool {
	debug.Assert(e != nil && !e.IsLeaf(), "Descend called with a leaf entity")
	if e == nil || e.IsLeaf() {
		return false
	}
	debug.Assert(contains(c.Visible(), e), "Descend called with an entity outside the current level")

	next := make([]*model.Entity, len(c.path)+1)
	copy(next, c.path)
	next[len(c.path)] = e
	c.path = next
	c.query = ""
	debug.Log("navigator: descend %q depth=%d", e.Label(), len(next))
	return true
}

// Ascend pops the last path entry and clears the query. At root it does
// nothing and returns false.
func (c *Cursor) Ascend() bool {
	if len(c.path) == 0 {
		return false
	}
	c.path = c.path[:len(c.path)-1:len(c.path)-1]
	c.query = ""
	debug.Log("navigator: ascend depth=%d", len(c.path))
	return true
}

// AscendTo truncates the path to depth entries, as when a breadcrumb segment
// is chosen. AscendTo(0) returns to root. Depths at or beyond the current
// one are a no-op.
func (c *Cursor) AscendTo(depth int) bool {
	if depth < 0 {
		depth = 0
	}
	if depth >= len(c.path) {
		return false
	}
	c.path = c.path[:depth:depth]
	c.query = ""
	return true
}

// Query returns the active search text.
func (c *Cursor) Query() string {
	return c.query
}

// SetQuery replaces the search text. It never changes Visible.
func (c *Cursor) SetQuery(q string) {
	c.query = q
}

// Filtered returns Visible narrowed by the active query.
func (c *Cursor) Filtered() []*model.Entity {
	return Filter(c.Visible(), c.query)
}

// Breadcrumb returns the labels along the path, root first.
func (c *Cursor) Breadcrumb() []string {
	out := make([]string, len(c.path))
	for i, e := range c.path {
		out[i] = e.Label()
	}
	return out
}

func contains(level []*model.Entity, e *model.Entity) bool {
	for _, x := range level {
		if x == e {
			return true
		}
	}
	return false
}
