// Package datasource decides where the entity forest comes from: the REST
// backend, a local JSON file, or a SQLite progress export.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeAPI is the REST backend (GET /api/entities)
	SourceTypeAPI SourceType = "api"
	// SourceTypeJSON is a local JSON file: an entity array or a fixture object
	SourceTypeJSON SourceType = "json"
	// SourceTypeSQLite is a database written by the progress export
	SourceTypeSQLite SourceType = "sqlite"
)

// ErrNoSource is returned by Detect for an empty location.
var ErrNoSource = errors.New("no data source configured")

// DataSource describes a resolved source of entities.
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Location is the base URL for API sources and the absolute path otherwise
	Location string `json:"location"`
	// ModTime is the last modification time of a local source
	ModTime time.Time `json:"mod_time,omitempty"`
	// Size is the file size in bytes for local sources
	Size int64 `json:"size,omitempty"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	if !s.IsLocal() {
		return fmt.Sprintf("%s (%s)", s.Location, s.Type)
	}
	return fmt.Sprintf("%s (%s, mod=%s, %d bytes)",
		s.Location, s.Type, s.ModTime.Format(time.RFC3339), s.Size)
}

// IsLocal reports whether the source is a file that can be watched.
func (s DataSource) IsLocal() bool {
	return s.Type == SourceTypeJSON || s.Type == SourceTypeSQLite
}

// Detect resolves a location to a DataSource. http(s) URLs are API sources;
// .db, .sqlite and .sqlite3 files are exports; any other path is JSON. Local
// paths must exist.
func Detect(location string) (DataSource, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return DataSource{}, ErrNoSource
	}

	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return DataSource{Type: SourceTypeAPI, Location: strings.TrimRight(location, "/")}, nil
	}

	path, err := filepath.Abs(location)
	if err != nil {
		return DataSource{}, fmt.Errorf("resolving %s: %w", location, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("data source %s: %w", location, err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("data source %s is a directory", location)
	}

	typ := SourceTypeJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		typ = SourceTypeSQLite
	}

	return DataSource{
		Type:     typ,
		Location: path,
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}, nil
}
