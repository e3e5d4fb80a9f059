// Package export writes progress reports for the content hierarchy.
//
// This file implements SQLite schema creation. The same schema is read back
// by internal/datasource, so a report can be browsed offline.
package export

import (
	"database/sql"
	"fmt"
)

// Schema version for tracking migrations
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createCoreTables creates the entities and completed_tests tables.
func createCoreTables(db *sql.DB) error {
	// One row per node occurrence. node_id is the row identity because the
	// same entity id may appear under several parents.
	entitiesSQL := `
		CREATE TABLE IF NOT EXISTS entities (
			node_id INTEGER PRIMARY KEY,
			parent_node INTEGER,
			position INTEGER NOT NULL,
			depth INTEGER NOT NULL,
			entity_id TEXT,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			description TEXT,
			video_link TEXT,
			path TEXT NOT NULL,
			is_leaf INTEGER NOT NULL,
			total INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			percent INTEGER NOT NULL,
			touched INTEGER NOT NULL,
			FOREIGN KEY (parent_node) REFERENCES entities(node_id)
		)
	`
	if _, err := db.Exec(entitiesSQL); err != nil {
		return fmt.Errorf("create entities table: %w", err)
	}

	completedSQL := `
		CREATE TABLE IF NOT EXISTS completed_tests (
			test_id TEXT PRIMARY KEY
		)
	`
	if _, err := db.Exec(completedSQL); err != nil {
		return fmt.Errorf("create completed_tests table: %w", err)
	}

	return nil
}

// createIndexes creates indexes for the report queries.
func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_entities_parent ON entities(parent_node, position)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_entity ON entities(entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_percent ON entities(percent DESC)`,
	}

	for _, sql := range indexes {
		if _, err := db.Exec(sql); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// createMetaTable creates the export metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// OptimizeDatabase compacts the finished file.
// Call this as the final step before closing the database.
func OptimizeDatabase(db *sql.DB) error {
	optimizations := []string{
		`PRAGMA journal_mode=DELETE`,
		`ANALYZE`,
		`PRAGMA optimize`,
	}

	for _, sql := range optimizations {
		if _, err := db.Exec(sql); err != nil {
			// Some pragmas may fail depending on state, continue
			continue
		}
	}

	// VACUUM must be last and outside transaction
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
