package store

import (
	"context"
	"errors"
	"testing"

	"github.com/freepare/freepare/pkg/model"
)

type fakeCompleted struct {
	set model.CompletedSet
	err error
}

func (f *fakeCompleted) CompletedTests(ctx context.Context) (model.CompletedSet, error) {
	return f.set, f.err
}

func TestCompletedStore_Load(t *testing.T) {
	s := NewCompletedStore(&fakeCompleted{set: model.NewCompletedSet("p1", "p2")})
	if s.Set().Len() != 0 {
		t.Error("set should be empty before the first load")
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !s.Set().Has("p1") || s.Set().Len() != 2 {
		t.Errorf("unexpected set %v", s.Set().IDs())
	}
}

func TestCompletedStore_FailureDegradesToEmpty(t *testing.T) {
	src := &fakeCompleted{set: model.NewCompletedSet("p1")}
	s := NewCompletedStore(src)
	_ = s.Load(context.Background())

	src.err = httpErr{401}
	err := s.Load(context.Background())

	var pf *ProgressFetchFailure
	if !errors.As(err, &pf) || pf.Status != 401 {
		t.Fatalf("expected ProgressFetchFailure(401), got %v", err)
	}
	if s.Set().Len() != 0 {
		t.Errorf("failure should degrade to an empty set, got %v", s.Set().IDs())
	}
}

func TestCompletedStore_NilSource(t *testing.T) {
	s := NewCompletedStore(nil)
	if err := s.Load(context.Background()); err != nil {
		t.Errorf("nil source should not fail, got %v", err)
	}
	if s.Set().Len() != 0 {
		t.Error("nil source should give an empty set")
	}
}

func TestCompletedStore_StaleResultDropped(t *testing.T) {
	s := NewCompletedStore(&fakeCompleted{})
	old := s.Begin()
	cur := s.Begin()

	s.Apply(CompletedResult{Generation: cur, Set: model.NewCompletedSet("new")})
	if s.Apply(CompletedResult{Generation: old, Set: model.NewCompletedSet("old")}) {
		t.Error("stale result should be dropped")
	}
	if !s.Set().Has("new") || s.Set().Has("old") {
		t.Errorf("unexpected set %v", s.Set().IDs())
	}
}

func TestCompletedStore_Mark(t *testing.T) {
	s := NewCompletedStore(&fakeCompleted{set: model.NewCompletedSet("p1")})
	_ = s.Load(context.Background())

	before := s.Set()
	s.Mark("p2")
	if !s.Set().Has("p1") || !s.Set().Has("p2") {
		t.Errorf("Mark should keep existing ids, got %v", s.Set().IDs())
	}
	if before.Has("p2") {
		t.Error("Mark must not mutate a previously returned set")
	}

	_ = s.Load(context.Background())
	if s.Set().Has("p2") {
		t.Error("a fresh load replaces locally marked ids")
	}
}
