package navigator

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/freepare/freepare/pkg/model"
	"pgregory.net/rapid"
)

type fixture struct {
	exam, subject, topic, p1, p2, other *model.Entity
	roots                               []*model.Entity
}

func newFixture() fixture {
	var f fixture
	f.p1 = &model.Entity{ID: "p1", Name: "Paper 1", Kind: model.KindPaper}
	f.p2 = &model.Entity{ID: "p2", Name: "Paper 2", Kind: model.KindPaper}
	f.topic = &model.Entity{ID: "t", Name: "Ancient India", Kind: model.KindTopic, Children: []*model.Entity{f.p1, f.p2}}
	f.subject = &model.Entity{ID: "s", Name: "History", Kind: model.KindSubject, Children: []*model.Entity{f.topic}}
	f.exam = &model.Entity{ID: "e", Name: "UPSC Prelims", Kind: model.KindExam, Children: []*model.Entity{f.subject}}
	f.other = &model.Entity{ID: "o", Name: "SSC CGL", Kind: model.KindExam}
	f.roots = []*model.Entity{f.exam, f.other}
	return f
}

func TestCursor_InitialState(t *testing.T) {
	f := newFixture()
	c := NewCursor(f.roots)

	if !c.AtRoot() || c.Depth() != 0 || c.Current() != nil {
		t.Error("new cursor should be at root")
	}
	if !reflect.DeepEqual(c.Visible(), f.roots) {
		t.Error("root level should show the whole forest")
	}
	if len(c.Path()) != 0 {
		t.Errorf("expected empty path, got %d entries", len(c.Path()))
	}
}

func TestCursor_DescendToPapers(t *testing.T) {
	f := newFixture()
	c := NewCursor(f.roots)

	for _, e := range []*model.Entity{f.exam, f.subject, f.topic} {
		if !c.Descend(e) {
			t.Fatalf("Descend(%s) returned false", e.Name)
		}
	}

	visible := c.Visible()
	if len(visible) != 2 || visible[0] != f.p1 || visible[1] != f.p2 {
		t.Errorf("expected [Paper 1, Paper 2], got %v", visible)
	}
	if !IsLeaf(f.p1) {
		t.Error("Paper 1 should be a leaf")
	}
	if got := c.Breadcrumb(); !reflect.DeepEqual(got, []string{"UPSC Prelims", "History", "Ancient India"}) {
		t.Errorf("unexpected breadcrumb %v", got)
	}
	if c.Current() != f.topic {
		t.Errorf("expected current to be the topic, got %v", c.Current())
	}
}

func TestCursor_DescendLeafIsNoop(t *testing.T) {
	f := newFixture()
	c := NewCursor(f.roots)

	if c.Descend(f.other) {
		t.Error("descending into a leaf should return false")
	}
	if c.Descend(nil) {
		t.Error("descending into nil should return false")
	}
	if !c.AtRoot() {
		t.Error("cursor should still be at root")
	}
}

func TestCursor_DescendClearsQuery(t *testing.T) {
	f := newFixture()
	c := NewCursor(f.roots)
	c.SetQuery("upsc")
	c.Descend(f.exam)
	if c.Query() != "" {
		t.Errorf("descend should clear the query, got %q", c.Query())
	}
	c.SetQuery("hist")
	c.Ascend()
	if c.Query() != "" {
		t.Errorf("ascend should clear the query, got %q", c.Query())
	}
}

func TestCursor_AscendAtRoot(t *testing.T) {
	f := newFixture()
	c := NewCursor(f.roots)
	c.SetQuery("ssc")

	if c.Ascend() {
		t.Error("ascend at root should report no-op")
	}
	if !c.AtRoot() || c.Query() != "ssc" {
		t.Error("ascend at root should leave state unchanged")
	}
}

func TestCursor_DescendAscendRestores(t *testing.T) {
	f := newFixture()
	c := NewCursor(f.roots)
	c.Descend(f.exam)

	beforePath := c.Path()
	beforeVisible := c.Visible()

	c.Descend(f.subject)
	c.Ascend()

	if !reflect.DeepEqual(c.Path(), beforePath) {
		t.Errorf("path not restored: %v vs %v", c.Path(), beforePath)
	}
	if !reflect.DeepEqual(c.Visible(), beforeVisible) {
		t.Error("visible not restored")
	}
}

func TestCursor_PathIsSnapshot(t *testing.T) {
	f := newFixture()
	c := NewCursor(f.roots)
	c.Descend(f.exam)
	c.Descend(f.subject)

	snapshot := c.Path()
	c.Ascend()
	c.Descend(f.subject)
	c.Descend(f.topic)

	if len(snapshot) != 2 || snapshot[1] != f.subject {
		t.Errorf("earlier Path() result changed: %v", snapshot)
	}
}

func TestCursor_AscendTo(t *testing.T) {
	f := newFixture()
	c := NewCursor(f.roots)
	c.Descend(f.exam)
	c.Descend(f.subject)
	c.Descend(f.topic)

	if !c.AscendTo(1) {
		t.Fatal("AscendTo(1) should succeed")
	}
	if c.Current() != f.exam {
		t.Errorf("expected exam level, got %v", c.Current())
	}
	if c.AscendTo(1) || c.AscendTo(5) {
		t.Error("AscendTo at or below the current depth should be a no-op")
	}
	if !c.AscendTo(-3) || !c.AtRoot() {
		t.Error("negative depth should return to root")
	}
}

func TestCursor_Reset(t *testing.T) {
	f := newFixture()
	c := NewCursor(f.roots)
	c.Descend(f.exam)
	c.SetQuery("x")

	fresh := []*model.Entity{{ID: "n", Name: "New"}}
	c.Reset(fresh)

	if !c.AtRoot() || c.Query() != "" {
		t.Error("Reset should clear path and query")
	}
	if len(c.Visible()) != 1 || c.Visible()[0] != fresh[0] {
		t.Error("Reset should show the new forest")
	}
}

func TestCursor_FilterDoesNotChangeVisible(t *testing.T) {
	f := newFixture()
	c := NewCursor(f.roots)

	c.SetQuery("xyz")
	if got := c.Filtered(); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
	if !reflect.DeepEqual(c.Visible(), f.roots) {
		t.Error("filtering must not change the underlying level")
	}

	c.SetQuery("")
	if !reflect.DeepEqual(c.Filtered(), f.roots) {
		t.Error("clearing the query should restore the level exactly")
	}
}

func genForest(t *rapid.T, depth int, prefix string) []*model.Entity {
	n := rapid.IntRange(1, 4).Draw(t, "width")
	out := make([]*model.Entity, n)
	for i := range out {
		id := fmt.Sprintf("%s%d", prefix, i)
		e := &model.Entity{ID: id, Name: "Item " + id}
		if depth > 0 && rapid.Bool().Draw(t, "branch") {
			e.Children = genForest(t, depth-1, id+".")
		}
		out[i] = e
	}
	return out
}

func TestProperty_DescendAscendIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		roots := genForest(t, 4, "r")
		c := NewCursor(roots)

		steps := rapid.IntRange(0, 6).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			level := c.Visible()
			pick := level[rapid.IntRange(0, len(level)-1).Draw(t, "pick")]
			if pick.IsLeaf() {
				break
			}
			c.Descend(pick)
		}

		path, visible := c.Path(), c.Visible()
		for _, e := range visible {
			if e.IsLeaf() {
				continue
			}
			c.Descend(e)
			c.Ascend()
			if !reflect.DeepEqual(c.Path(), path) || !reflect.DeepEqual(c.Visible(), visible) {
				t.Fatalf("descend/ascend through %s did not restore the state", e.ID)
			}
		}
	})
}

func TestProperty_FilterSubsetInOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := genForest(t, 0, "x")
		query := rapid.StringMatching(`[a-zA-Z0-9 ]{0,3}`).Draw(t, "query")

		got := Filter(level, query)
		j := 0
		for _, e := range got {
			for j < len(level) && level[j] != e {
				j++
			}
			if j == len(level) {
				t.Fatalf("filter result is not an ordered subset of the level")
			}
			j++
		}
		if reflect.DeepEqual(Filter(level, ""), level) == false {
			t.Fatalf("empty query must return the level unchanged")
		}
	})
}
