package export

import (
	"time"

	"github.com/freepare/freepare/pkg/model"
)

// ExportEntity is one flattened node of the report.
type ExportEntity struct {
	NodeID     int64      `json:"node_id"`
	ParentNode int64      `json:"parent_node,omitempty"` // 0 for roots
	Position   int        `json:"position"`
	Depth      int        `json:"depth"`
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name"`
	Kind       model.Kind `json:"kind"`
	Desc       string     `json:"description,omitempty"`
	VideoLink  string     `json:"video_link,omitempty"`
	Path       string     `json:"path"`
	Leaf       bool       `json:"is_leaf"`

	model.ProgressStats
}

// ExportMeta contains metadata about the export.
type ExportMeta struct {
	Version        string    `json:"version"`
	GeneratedAt    time.Time `json:"generated_at"`
	EntityCount    int       `json:"entity_count"`
	LeafCount      int       `json:"leaf_count"`
	CompletedCount int       `json:"completed_count"`
	Title          string    `json:"title,omitempty"`
}

// PathSeparator joins breadcrumb segments in the path column.
const PathSeparator = " › "

// Config configures the export process.
type Config struct {
	// Title is stored in the meta table and heads the markdown report
	Title string

	// Optimize runs ANALYZE and VACUUM after writing
	Optimize bool

	// Now stamps generated_at; defaults to time.Now
	Now func() time.Time
}

// DefaultConfig returns sensible defaults for export configuration.
func DefaultConfig() Config {
	return Config{
		Title:    "Freepare Progress",
		Optimize: true,
		Now:      time.Now,
	}
}
