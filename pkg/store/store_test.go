package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/freepare/freepare/pkg/model"
)

type fakeSource struct {
	forest []*model.Entity
	err    error
	calls  int
}

func (f *fakeSource) LoadEntities(ctx context.Context) ([]*model.Entity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.forest, nil
}

type httpErr struct{ code int }

func (e httpErr) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e httpErr) StatusCode() int { return e.code }

func sampleForest() []*model.Entity {
	return []*model.Entity{
		{ID: "e", Name: "Exam", Kind: model.KindExam, Children: []*model.Entity{
			{ID: "p", Name: "Paper", Kind: model.KindPaper},
		}},
	}
}

func TestTreeStore_LoadSuccess(t *testing.T) {
	src := &fakeSource{forest: sampleForest()}
	s := NewTreeStore(src)

	replaced, err := s.Load(context.Background())
	if err != nil || !replaced {
		t.Fatalf("Load = %v, %v; want true, nil", replaced, err)
	}
	if len(s.Forest()) != 1 || s.Forest()[0].Name != "Exam" {
		t.Errorf("unexpected forest %v", s.Forest())
	}
	if s.Loading() || !s.Loaded() || s.Err() != nil {
		t.Error("store should be loaded without error")
	}
}

func TestTreeStore_FailurePreservesForest(t *testing.T) {
	src := &fakeSource{forest: sampleForest()}
	s := NewTreeStore(src)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}
	prior := s.Forest()

	src.err = errors.New("connection refused")
	replaced, err := s.Load(context.Background())
	if replaced {
		t.Error("a failed load must not replace the forest")
	}
	if err == nil || s.Err() == nil {
		t.Fatal("expected error to be recorded")
	}
	if len(s.Forest()) != len(prior) || s.Forest()[0] != prior[0] {
		t.Error("prior forest should be preserved")
	}

	var lf *LoadFailure
	if !errors.As(err, &lf) || lf.Status != 0 {
		t.Errorf("expected LoadFailure without status, got %#v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error should carry the cause, got %q", err.Error())
	}

	src.err = nil
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if s.Err() != nil {
		t.Error("successful retry should clear the error")
	}
}

func TestTreeStore_FailureStatus(t *testing.T) {
	s := NewTreeStore(&fakeSource{err: fmt.Errorf("get entities: %w", httpErr{503})})
	_, err := s.Load(context.Background())

	var lf *LoadFailure
	if !errors.As(err, &lf) {
		t.Fatalf("expected LoadFailure, got %v", err)
	}
	if lf.Status != 503 {
		t.Errorf("expected status 503, got %d", lf.Status)
	}
	if !strings.HasPrefix(err.Error(), "unable to load content (503)") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if s.Loaded() || len(s.Forest()) != 0 {
		t.Error("a store that never loaded should stay empty")
	}
}

func TestTreeStore_StaleResultDropped(t *testing.T) {
	first := sampleForest()
	second := []*model.Entity{{ID: "n", Name: "Newer", Kind: model.KindExam}}

	s := NewTreeStore(&fakeSource{})
	oldGen := s.Begin()
	newGen := s.Begin()

	if !s.Apply(TreeResult{Generation: newGen, Forest: second}) {
		t.Fatal("current result should apply")
	}
	if s.Apply(TreeResult{Generation: oldGen, Forest: first}) {
		t.Error("stale result should be dropped")
	}
	if s.Forest()[0].Name != "Newer" {
		t.Errorf("stale result overwrote newer state: %v", s.Forest()[0].Name)
	}

	// A stale failure must not set the error either.
	s.Apply(TreeResult{Generation: oldGen, Err: errors.New("late")})
	if s.Err() != nil {
		t.Errorf("stale failure recorded: %v", s.Err())
	}
}

func TestTreeStore_LoadingFlag(t *testing.T) {
	s := NewTreeStore(&fakeSource{forest: sampleForest()})
	gen := s.Begin()
	if !s.Loading() {
		t.Error("Begin should mark the store loading")
	}
	res := s.Fetch(context.Background(), gen)
	if !s.Loading() {
		t.Error("Fetch must not change store state")
	}
	s.Apply(res)
	if s.Loading() {
		t.Error("Apply should clear loading")
	}
}

func TestTreeStore_ValidationIssuesKept(t *testing.T) {
	forest := []*model.Entity{
		{ID: "x", Name: "", Kind: model.KindExam, Malformed: true},
		{ID: "y", Name: "Fine", Kind: model.KindPaper},
	}
	s := NewTreeStore(&fakeSource{forest: forest})
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Forest()) != 2 {
		t.Errorf("invalid entities must be kept, got %d roots", len(s.Forest()))
	}
	if len(s.Issues()) == 0 {
		t.Error("expected validation issues to be recorded")
	}
}
