package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/progress"
	"github.com/freepare/freepare/pkg/version"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes a forest and its progress to a SQLite database.
type SQLiteExporter struct {
	Forest    []*model.Entity
	Completed model.CompletedSet
	Config    Config
}

// NewSQLiteExporter creates a new exporter with the given data.
func NewSQLiteExporter(forest []*model.Entity, done model.CompletedSet) *SQLiteExporter {
	return &SQLiteExporter{
		Forest:    forest,
		Completed: done,
		Config:    DefaultConfig(),
	}
}

// Flatten returns every node occurrence in depth-first order with its stats.
// A node already on its own ancestor chain is emitted once more as a leaf and
// not expanded, and nothing below progress.MaxDepth is expanded.
func (e *SQLiteExporter) Flatten() []ExportEntity {
	var out []ExportEntity
	onPath := make(map[*model.Entity]bool)

	var walk func(level []*model.Entity, parent int64, depth int, prefix []string)
	walk = func(level []*model.Entity, parent int64, depth int, prefix []string) {
		for i, ent := range level {
			if ent == nil {
				continue
			}
			segs := append(prefix[:len(prefix):len(prefix)], ent.Label())
			expand := !ent.IsLeaf() && depth < progress.MaxDepth && !onPath[ent]
			row := ExportEntity{
				NodeID:        int64(len(out) + 1),
				ParentNode:    parent,
				Position:      i,
				Depth:         depth,
				ID:            ent.ID,
				Name:          ent.Label(),
				Kind:          ent.Kind,
				Desc:          ent.Description,
				VideoLink:     ent.VideoLink,
				Path:          strings.Join(segs, PathSeparator),
				Leaf:          !expand,
				ProgressStats: progress.Compute(ent, e.Completed),
			}
			out = append(out, row)
			if expand {
				onPath[ent] = true
				walk(ent.Children, row.NodeID, depth+1, segs)
				delete(onPath, ent)
			}
		}
	}
	walk(e.Forest, 0, 0, nil)
	return out
}

// Export writes the SQLite database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	// Remove existing database if present
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	rows := e.Flatten()
	if err := e.insertEntities(db, rows); err != nil {
		return fmt.Errorf("insert entities: %w", err)
	}

	if err := e.insertCompleted(db); err != nil {
		return fmt.Errorf("insert completed tests: %w", err)
	}

	if err := e.insertMeta(db, e.Meta(rows)); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if e.Config.Optimize {
		if err := OptimizeDatabase(db); err != nil {
			return fmt.Errorf("optimize database: %w", err)
		}
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true

	return nil
}

// Meta summarises the flattened rows.
func (e *SQLiteExporter) Meta(rows []ExportEntity) ExportMeta {
	now := time.Now
	if e.Config.Now != nil {
		now = e.Config.Now
	}
	meta := ExportMeta{
		Version:        version.Version,
		GeneratedAt:    now().UTC(),
		EntityCount:    len(rows),
		CompletedCount: e.Completed.Len(),
		Title:          e.Config.Title,
	}
	for _, r := range rows {
		if r.Leaf {
			meta.LeafCount++
		}
	}
	return meta
}

// insertEntities inserts all flattened rows into the database.
func (e *SQLiteExporter) insertEntities(db *sql.DB, rows []ExportEntity) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO entities (node_id, parent_node, position, depth, entity_id, name, kind,
			description, video_link, path, is_leaf, total, completed, percent, touched)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		var parent *int64
		if r.ParentNode != 0 {
			p := r.ParentNode
			parent = &p
		}
		_, err := stmt.Exec(
			r.NodeID,
			parent,
			r.Position,
			r.Depth,
			nullIfEmpty(r.ID),
			r.Name,
			string(r.Kind),
			nullIfEmpty(r.Desc),
			nullIfEmpty(r.VideoLink),
			r.Path,
			r.Leaf,
			r.TotalLeaves,
			r.CompletedLeaves,
			r.Percent,
			r.Touched,
		)
		if err != nil {
			return fmt.Errorf("insert entity %q: %w", r.Path, err)
		}
	}

	return tx.Commit()
}

// insertCompleted stores the completed-test identifiers.
func (e *SQLiteExporter) insertCompleted(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO completed_tests (test_id) VALUES (?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range e.Completed.IDs() {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("insert completed %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// insertMeta inserts export metadata.
func (e *SQLiteExporter) insertMeta(db *sql.DB, m ExportMeta) error {
	meta := map[string]string{
		"version":         m.Version,
		"generated_at":    m.GeneratedAt.Format(time.RFC3339),
		"entity_count":    strconv.Itoa(m.EntityCount),
		"leaf_count":      strconv.Itoa(m.LeafCount),
		"completed_count": strconv.Itoa(m.CompletedCount),
		"schema_version":  strconv.Itoa(SchemaVersion),
	}
	if m.Title != "" {
		meta["title"] = m.Title
	}

	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}

	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
