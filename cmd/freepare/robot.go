package main

import (
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/freepare/freepare/pkg/hierarchy"
	"github.com/freepare/freepare/pkg/metrics"
	"github.com/freepare/freepare/pkg/model"
)

type robotEntity struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name"`
	Kind      model.Kind `json:"kind"`
	Leaf      bool       `json:"leaf"`
	Total     int        `json:"total"`
	Completed int        `json:"completed"`
	Percent   int        `json:"percent"`
	Touched   int        `json:"touched"`
	Children  int        `json:"children"`
	Route     string     `json:"route,omitempty"`
}

type robotProgressOutput struct {
	GeneratedAt string                  `json:"generated_at"`
	Path        []string                `json:"path"`
	Level       model.ProgressStats     `json:"level"`
	Entities    []robotEntity           `json:"entities"`
	Issues      []model.ValidationIssue `json:"issues,omitempty"`
	Completed   int                     `json:"completed_tests"`
}

type robotMetricsOutput struct {
	Timings []metrics.TimingStats `json:"timings"`
}

// writeRobotProgress prints the cursor's level with per-entity progress.
func writeRobotProgress(w io.Writer, h *hierarchy.Hierarchy, now time.Time) error {
	out := robotProgressOutput{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Path:        h.Cursor.Breadcrumb(),
		Level:       h.Level(),
		Entities:    []robotEntity{},
		Issues:      h.Tree.Issues(),
		Completed:   h.Completed.Set().Len(),
	}

	for _, c := range h.Cards() {
		e := robotEntity{
			ID:        c.Entity.ID,
			Name:      c.Entity.Label(),
			Kind:      c.Entity.Kind,
			Leaf:      c.Leaf,
			Total:     c.Stats.TotalLeaves,
			Completed: c.Stats.CompletedLeaves,
			Percent:   c.Stats.Percent,
			Touched:   c.Stats.Touched,
			Children:  c.Stats.Children,
		}
		if c.Leaf {
			e.Route = c.Launch.Route()
		}
		out.Entities = append(out.Entities, e)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func writeRobotMetrics(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(robotMetricsOutput{Timings: metrics.AllTimingStats()})
}
