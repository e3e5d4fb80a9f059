package datasource

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/freepare/freepare/pkg/model"
)

// SQLiteReader provides read access to a progress export database.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens an export database for reading.
func NewSQLiteReader(path string) (*SQLiteReader, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Set pragmas for read performance
	pragmas := []string{
		"PRAGMA cache_size = -16000", // 16MB cache
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		// Non-fatal
		_, _ = db.Exec(pragma)
	}

	return &SQLiteReader{db: db, path: path}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadForest rebuilds the entity forest. Rows are read in node order, which
// the export writes depth first, so parents precede their children. A row
// whose parent is missing becomes a root.
func (r *SQLiteReader) LoadForest(ctx context.Context) ([]*model.Entity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT node_id, parent_node, entity_id, name, kind, description, video_link
		FROM entities
		ORDER BY node_id
	`)
	if err != nil {
		return nil, fmt.Errorf("%s is not a progress export: %w", r.path, err)
	}
	defer rows.Close()

	nodes := make(map[int64]*model.Entity)
	var roots []*model.Entity
	for rows.Next() {
		var nodeID int64
		var parent sql.NullInt64
		var id, desc, video sql.NullString
		var name, kind string
		if err := rows.Scan(&nodeID, &parent, &id, &name, &kind, &desc, &video); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}

		e := &model.Entity{
			ID:          id.String,
			Name:        name,
			Kind:        model.ParseKind(kind),
			Description: desc.String,
			VideoLink:   video.String,
		}
		nodes[nodeID] = e

		if p, ok := nodes[parent.Int64]; parent.Valid && ok {
			p.Children = append(p.Children, e)
			continue
		}
		roots = append(roots, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entities: %w", err)
	}

	return roots, nil
}

// CompletedTests reads the completed-test identifiers stored with the export.
func (r *SQLiteReader) CompletedTests(ctx context.Context) (model.CompletedSet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT test_id FROM completed_tests ORDER BY test_id`)
	if err != nil {
		return model.CompletedSet{}, fmt.Errorf("%s is not a progress export: %w", r.path, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return model.CompletedSet{}, fmt.Errorf("scanning completed test: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return model.CompletedSet{}, fmt.Errorf("reading completed tests: %w", err)
	}
	return model.NewCompletedSet(ids...), nil
}

// Meta returns the export metadata table.
func (r *SQLiteReader) Meta(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning meta: %w", err)
		}
		meta[k] = v.String
	}
	return meta, rows.Err()
}
