package datasource

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/freepare/freepare/internal/mockapi"
	"github.com/freepare/freepare/pkg/api"
	"github.com/freepare/freepare/pkg/export"
	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/progress"
	"github.com/freepare/freepare/pkg/testutil"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetect(t *testing.T) {
	jsonPath := writeFile(t, "entities.json", "[]")
	dbPath := writeFile(t, "progress.SQLite3", "")

	tests := []struct {
		location string
		want     SourceType
	}{
		{"https://api.freepare.com/", SourceTypeAPI},
		{"HTTP://localhost:8080", SourceTypeAPI},
		{jsonPath, SourceTypeJSON},
		{dbPath, SourceTypeSQLite},
	}
	for _, tt := range tests {
		ds, err := Detect(tt.location)
		if err != nil {
			t.Fatalf("Detect(%q) failed: %v", tt.location, err)
		}
		if ds.Type != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.location, ds.Type, tt.want)
		}
	}

	remote, _ := Detect("https://api.freepare.com/")
	if remote.Location != "https://api.freepare.com" || remote.IsLocal() {
		t.Errorf("unexpected API source %+v", remote)
	}
	local, _ := Detect(jsonPath)
	if !local.IsLocal() || local.Size != 2 || !strings.Contains(local.String(), "json") {
		t.Errorf("unexpected local source %+v", local)
	}
}

func TestDetect_Errors(t *testing.T) {
	if _, err := Detect("  "); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
	if _, err := Detect(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := Detect(t.TempDir()); err == nil {
		t.Error("directory should fail")
	}
}

func TestFileSource_Array(t *testing.T) {
	path := writeFile(t, "entities.json", `[{"_id": "x", "name": "X", "type": "exam", "children": [{"name": "Leaf"}]}]`)
	src := FileSource{Path: path}

	forest, err := src.LoadEntities(context.Background())
	if err != nil {
		t.Fatalf("LoadEntities failed: %v", err)
	}
	if len(forest) != 1 || len(forest[0].Children) != 1 {
		t.Fatalf("unexpected forest %+v", forest)
	}

	set, err := src.CompletedTests(context.Background())
	if err != nil || set.Len() != 0 {
		t.Errorf("array file should have no completed tests, got %v, %v", set.IDs(), err)
	}
}

func TestFileSource_Fixture(t *testing.T) {
	path := writeFile(t, "fixture.json", `{
		"entities": [{"name": "Only", "type": "paper"}],
		"completedTests": [{"name": "Only"}]
	}`)
	src := FileSource{Path: path}

	forest, err := src.LoadEntities(context.Background())
	if err != nil || len(forest) != 1 {
		t.Fatalf("LoadEntities = %v, %v", forest, err)
	}
	set, err := src.CompletedTests(context.Background())
	if err != nil || !set.Has("Only") {
		t.Errorf("expected completed Only, got %v, %v", set.IDs(), err)
	}
}

func TestFileSource_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := (FileSource{Path: writeFile(t, "a.json", `{"name": "not an array"}`)}).LoadEntities(ctx); err == nil {
		t.Error("object without entities should fail")
	}
	if _, err := (FileSource{Path: writeFile(t, "b.json", `{"entities": {}}`)}).LoadEntities(ctx); err == nil {
		t.Error("non-array entities should fail")
	}
	if _, err := (FileSource{Path: writeFile(t, "c.json", `{broken`)}).LoadEntities(ctx); err == nil {
		t.Error("corrupt file should fail")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := (FileSource{Path: "unused"}).LoadEntities(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	original, err := model.DecodeForest([]byte(`[
		{"_id": "e", "name": "Exam", "type": "exam", "children": [
			{"_id": "s", "name": "Subject", "type": "subject", "children": [
				{"_id": "p1", "name": "Paper 1", "type": "paper", "youtubeLink": "https://youtu.be/v"},
				{"_id": "p2", "name": "Paper 2", "type": "paper"}
			]}
		]},
		{"name": "Notes", "type": "default", "description": "read me"}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	done := model.NewCompletedSet("p2")

	path := filepath.Join(t.TempDir(), "progress.db")
	if err := export.NewSQLiteExporter(original, done).Export(path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	ds, err := Detect(path)
	if err != nil {
		t.Fatal(err)
	}
	src, err := LoadFromSource(ds, nil)
	if err != nil {
		t.Fatal(err)
	}

	forest, err := src.LoadEntities(context.Background())
	if err != nil {
		t.Fatalf("LoadEntities failed: %v", err)
	}
	if d := Diff(original, forest); d.HasChanges() {
		t.Errorf("round trip changed the forest: %s", d.Summary())
	}
	if forest[0].Children[0].Children[0].VideoLink != "https://youtu.be/v" || forest[1].Description != "read me" {
		t.Errorf("optional fields lost: %+v", forest)
	}
	if forest[1].Kind != model.KindContent {
		t.Errorf("expected content kind, got %s", forest[1].Kind)
	}

	set, err := src.CompletedTests(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := progress.Forest(forest, set); got.CompletedLeaves != 1 || got.TotalLeaves != 3 {
		t.Errorf("unexpected progress after round trip %+v", got)
	}

	reader, err := NewSQLiteReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	meta, err := reader.Meta(context.Background())
	if err != nil || meta["entity_count"] != "5" {
		t.Errorf("unexpected meta %v, %v", meta, err)
	}
}

func TestSQLiteSource_NotAnExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	if _, err := (SQLiteSource{Path: path}).LoadEntities(context.Background()); err == nil {
		t.Error("expected error for a database without an entities table")
	}
}

func TestLoadFromSource_API(t *testing.T) {
	srv := httptest.NewServer(mockapi.NewServer(mockapi.SampleFixture()).Router())
	defer srv.Close()

	ds, err := Detect(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromSource(ds, nil); err == nil {
		t.Error("API source without a client should fail")
	}

	src, err := LoadFromSource(ds, api.New(ds.Location, api.WithToken("t"), api.WithRetry(0, time.Millisecond)))
	if err != nil {
		t.Fatal(err)
	}
	forest, err := src.LoadEntities(context.Background())
	if err != nil || len(forest) != 3 {
		t.Fatalf("LoadEntities = %d roots, %v", len(forest), err)
	}
	set, err := src.CompletedTests(context.Background())
	if err != nil || set.Len() != 2 {
		t.Errorf("CompletedTests = %v, %v", set.IDs(), err)
	}

	if _, err := LoadFromSource(DataSource{Type: "ftp"}, nil); err == nil {
		t.Error("unknown type should fail")
	}
}

func TestDiff(t *testing.T) {
	before := []*model.Entity{
		{ID: "a", Name: "Alpha", Kind: model.KindExam, Children: []*model.Entity{
			{ID: "a1", Name: "Paper A1", Kind: model.KindPaper},
			{ID: "a2", Name: "Paper A2", Kind: model.KindPaper},
		}},
		{Name: "Loose", Kind: model.KindContent},
	}
	after := []*model.Entity{
		{ID: "a", Name: "Alpha Prime", Kind: model.KindExam, Children: []*model.Entity{
			{ID: "a1", Name: "Paper A1", Kind: model.KindPaper},
			{ID: "a3", Name: "Paper A3", Kind: model.KindPaper},
			{ID: "a4", Name: "Paper A4", Kind: model.KindPaper},
		}},
		{Name: "Loose Renamed", Kind: model.KindContent},
	}

	d := Diff(before, after)
	if strings.Join(d.Added, ",") != "Loose Renamed,a3,a4" {
		t.Errorf("Added = %v", d.Added)
	}
	if strings.Join(d.Removed, ",") != "Loose,a2" {
		t.Errorf("Removed = %v", d.Removed)
	}
	if len(d.Renamed) != 1 || d.Renamed[0] != (Rename{ID: "a", From: "Alpha", To: "Alpha Prime"}) {
		t.Errorf("Renamed = %v", d.Renamed)
	}
	if len(d.Reshaped) != 1 || d.Reshaped[0] != "a" {
		t.Errorf("Reshaped = %v", d.Reshaped)
	}
	if d.Summary() != "3 added, 2 removed, 1 renamed, 1 changed" {
		t.Errorf("Summary = %q", d.Summary())
	}
}

func TestDiff_NoChangesAndCycles(t *testing.T) {
	a := &model.Entity{ID: "a", Name: "A", Kind: model.KindTopic}
	a.Children = []*model.Entity{a}

	d := Diff([]*model.Entity{a}, []*model.Entity{a})
	if d.HasChanges() {
		t.Errorf("identical forests should not differ: %+v", d)
	}
	if d.Summary() != "No changes (1 entities)" {
		t.Errorf("Summary = %q", d.Summary())
	}
}

func TestFileSource_GeneratedFixture(t *testing.T) {
	gen := testutil.New(testutil.GeneratorConfig{Seed: 21, CompletedPct: 0.5, VideoPct: 0.3})
	fixture := gen.Fixture("generated", gen.Tree(3, 4, 3))
	path := testutil.WriteFixture(t, t.TempDir(), fixture)

	src := FileSource{Path: path}
	forest, err := src.LoadEntities(context.Background())
	if err != nil {
		t.Fatalf("LoadEntities: %v", err)
	}
	testutil.AssertLeafCount(t, forest, 81)
	testutil.AssertNoDuplicateKeys(t, forest)

	done, err := src.CompletedTests(context.Background())
	if err != nil {
		t.Fatalf("CompletedTests: %v", err)
	}
	testutil.AssertStats(t, "forest",
		progress.Forest(forest, done),
		progress.Forest(fixture.Entities, testutil.CompletedSet(fixture.Completed)))

	if d := Diff(fixture.Entities, forest); d.HasChanges() {
		t.Errorf("decoded forest should match the generated one: %s", d.Summary())
	}
}
