//go:build ignore

// generate_testdata.go creates entity fixtures for benchmarking and demos.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/fixtures/small.json   (~100 tests)
//	testdata/fixtures/medium.json  (~1000 tests)
//	testdata/fixtures/large.json   (~10000 tests)
//
// Each file can be browsed with --entities-file or served with
// freepare-mock --fixture.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/freepare/freepare/pkg/testutil"
)

type datasetSpec struct {
	name    string
	roots   int
	depth   int
	breadth int
	desc    string
}

var datasets = []datasetSpec{
	{"small", 4, 4, 3, "4 exams, 3 subjects each, 3 topics per subject, 3 papers per topic"},
	{"medium", 8, 5, 5, "8 exams with a five-level ladder, ragged"},
	{"large", 20, 6, 6, "20 exams with a six-level ladder, ragged"},
}

func main() {
	outputDir := "testdata/fixtures"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset...\n", ds.name)

		gen := testutil.New(testutil.GeneratorConfig{
			Seed:         int64(ds.roots*100 + ds.depth), // Reproducible per-size
			IDPrefix:     ds.name,
			CompletedPct: 0.35,
			ContentPct:   0.05,
			VideoPct:     0.2,
			NameOnlyPct:  0.1,
			Descriptions: true,
		})

		forest := gen.Tree(ds.roots, ds.depth, ds.breadth)
		if ds.name != "small" {
			forest = gen.Ragged(ds.roots, ds.depth, ds.breadth)
		}
		fixture := gen.Fixture(ds.desc, forest)

		data, err := testutil.ToJSON(fixture)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", ds.name, err)
			os.Exit(1)
		}

		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes, %d tests, %d completed)\n",
			outputPath, len(data), len(testutil.Leaves(forest)), len(fixture.Completed))
	}

	fmt.Println("\nDone! Fixtures created in", outputDir)
}
