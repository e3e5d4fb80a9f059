package datasource

import (
	"bytes"
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/freepare/freepare/pkg/api"
	"github.com/freepare/freepare/pkg/metrics"
	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/store"
)

// APISource loads entities from the REST backend.
type APISource struct {
	Client *api.Client
}

// LoadEntities implements store.Source.
func (s APISource) LoadEntities(ctx context.Context) ([]*model.Entity, error) {
	return s.Client.Entities(ctx)
}

// CompletedTests implements store.CompletedSource.
func (s APISource) CompletedTests(ctx context.Context) (model.CompletedSet, error) {
	return s.Client.CompletedTests(ctx)
}

// FileSource loads entities from a local JSON file. The file holds either an
// entity array or a fixture object with "entities" and "completedTests".
type FileSource struct {
	Path string
}

type fileDocument struct {
	Entities       json.RawMessage `json:"entities"`
	CompletedTests json.RawMessage `json:"completedTests"`
}

func (s FileSource) read() (fileDocument, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return fileDocument{}, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc fileDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return fileDocument{}, fmt.Errorf("parsing %s: %w", s.Path, err)
		}
		return doc, nil
	}
	return fileDocument{Entities: trimmed}, nil
}

// LoadEntities implements store.Source.
func (s FileSource) LoadEntities(ctx context.Context) ([]*model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if len(doc.Entities) == 0 {
		return nil, fmt.Errorf("parsing %s: no entities", s.Path)
	}
	defer metrics.Timer(metrics.JSONParsing)()
	forest, err := model.DecodeForest(doc.Entities)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path, err)
	}
	return forest, nil
}

// CompletedTests implements store.CompletedSource. A file without a
// completedTests field yields an empty set.
func (s FileSource) CompletedTests(ctx context.Context) (model.CompletedSet, error) {
	if err := ctx.Err(); err != nil {
		return model.CompletedSet{}, err
	}
	doc, err := s.read()
	if err != nil {
		return model.CompletedSet{}, err
	}
	if len(doc.CompletedTests) == 0 {
		return model.CompletedSet{}, nil
	}
	wrapped, err := json.Marshal(map[string]json.RawMessage{"completedTests": doc.CompletedTests})
	if err != nil {
		return model.CompletedSet{}, err
	}
	return model.DecodeCompleted(wrapped)
}

// SQLiteSource loads a forest back from a progress export.
type SQLiteSource struct {
	Path string
}

// LoadEntities implements store.Source.
func (s SQLiteSource) LoadEntities(ctx context.Context) ([]*model.Entity, error) {
	reader, err := NewSQLiteReader(s.Path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return reader.LoadForest(ctx)
}

// CompletedTests implements store.CompletedSource.
func (s SQLiteSource) CompletedTests(ctx context.Context) (model.CompletedSet, error) {
	reader, err := NewSQLiteReader(s.Path)
	if err != nil {
		return model.CompletedSet{}, err
	}
	defer reader.Close()
	return reader.CompletedTests(ctx)
}

// Source is what LoadFromSource returns: both halves of the backend.
type Source interface {
	store.Source
	store.CompletedSource
}

// LoadFromSource returns the loader for source. API sources use client,
// which must be configured with the same base URL.
func LoadFromSource(source DataSource, client *api.Client) (Source, error) {
	switch source.Type {
	case SourceTypeAPI:
		if client == nil {
			return nil, fmt.Errorf("api source %s needs a client", source.Location)
		}
		return APISource{Client: client}, nil
	case SourceTypeJSON:
		return FileSource{Path: source.Location}, nil
	case SourceTypeSQLite:
		return SQLiteSource{Path: source.Location}, nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
