// Package store holds the content forest and the completed-test set fetched
// from the backend.
//
// Loads are split into three steps so the UI can run the network part off
// its event loop:
//
//	gen := s.Begin()        // on the UI goroutine
//	res := s.Fetch(ctx, gen) // anywhere; touches no store state
//	s.Apply(res)            // back on the UI goroutine
//
// Every Begin bumps a generation counter. Apply drops results from an older
// generation, so a slow response never overwrites a newer one. State is only
// changed by Begin and Apply, and always by whole-value replacement.
package store

import (
	"context"
	"time"

	"github.com/freepare/freepare/pkg/debug"
	"github.com/freepare/freepare/pkg/logging"
	"github.com/freepare/freepare/pkg/metrics"
	"github.com/freepare/freepare/pkg/model"
)

// Source provides the entity forest.
type Source interface {
	LoadEntities(ctx context.Context) ([]*model.Entity, error)
}

// CompletedSource provides the completed-test set of the current user.
type CompletedSource interface {
	CompletedTests(ctx context.Context) (model.CompletedSet, error)
}

// Option configures a store.
type Option func(*options)

type options struct {
	log *logging.Logger
	now func() time.Time
}

// WithLogger sets the event logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{log: logging.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TreeResult is the outcome of one tree fetch.
type TreeResult struct {
	Generation uint64
	Forest     []*model.Entity
	Issues     []model.ValidationIssue
	Err        error
	Duration   time.Duration
}

// TreeStore owns the entity forest for one session.
type TreeStore struct {
	src  Source
	opts options

	gen      uint64
	loading  bool
	forest   []*model.Entity
	issues   []model.ValidationIssue
	err      error
	loadedAt time.Time
}

// NewTreeStore returns an empty store reading from src.
func NewTreeStore(src Source, opts ...Option) *TreeStore {
	return &TreeStore{src: src, opts: buildOptions(opts)}
}

// Begin starts a load and returns its generation. Any result from an
// earlier Begin is stale from now on.
func (s *TreeStore) Begin() uint64 {
	s.gen++
	s.loading = true
	return s.gen
}

// Fetch reads the forest from the source and validates it. It does not
// modify the store and may run on any goroutine.
func (s *TreeStore) Fetch(ctx context.Context, gen uint64) TreeResult {
	defer metrics.Timer(metrics.TreeLoad)()
	start := s.opts.now()
	res := TreeResult{Generation: gen}

	forest, err := s.src.LoadEntities(ctx)
	res.Duration = s.opts.now().Sub(start)
	debug.LogTiming("tree fetch", res.Duration)
	if err != nil {
		res.Err = &LoadFailure{Status: statusOf(err), Cause: err}
		s.opts.log.Warn("tree_load_failed", "generation", gen, "error", err.Error(), "duration_ms", res.Duration.Milliseconds())
		return res
	}

	res.Forest = forest
	res.Issues = model.Validate(forest)
	if len(res.Issues) > 0 {
		s.opts.log.Warn("tree_validation_issues", "generation", gen, "count", len(res.Issues), "first", res.Issues[0].String())
	}
	s.opts.log.Info("tree_loaded", "generation", gen, "roots", len(forest), "duration_ms", res.Duration.Milliseconds())
	return res
}

// Apply installs a fetch result. It returns true when the forest was
// replaced, in which case the caller must reset its navigation cursor.
// Stale results are dropped. A failed result keeps the previous forest and
// records the error.
func (s *TreeStore) Apply(res TreeResult) bool {
	if res.Generation != s.gen {
		debug.Log("store: dropping stale tree result gen=%d current=%d", res.Generation, s.gen)
		s.opts.log.Debug("tree_result_stale", "generation", res.Generation, "current", s.gen)
		return false
	}
	s.loading = false
	if res.Err != nil {
		s.err = res.Err
		return false
	}
	s.forest = res.Forest
	s.issues = res.Issues
	s.err = nil
	s.loadedAt = s.opts.now()
	return true
}

// Load runs Begin, Fetch and Apply in sequence.
func (s *TreeStore) Load(ctx context.Context) (bool, error) {
	replaced := s.Apply(s.Fetch(ctx, s.Begin()))
	return replaced, s.err
}

// Forest returns the current root entities.
func (s *TreeStore) Forest() []*model.Entity { return s.forest }

// Issues returns validation issues found in the current forest.
func (s *TreeStore) Issues() []model.ValidationIssue { return s.issues }

// Err returns the last load error, cleared by the next successful load.
func (s *TreeStore) Err() error { return s.err }

// Loading reports whether a load has begun and not yet been applied.
func (s *TreeStore) Loading() bool { return s.loading }

// Loaded reports whether any load has succeeded.
func (s *TreeStore) Loaded() bool { return !s.loadedAt.IsZero() }

// LoadedAt returns when the current forest was installed.
func (s *TreeStore) LoadedAt() time.Time { return s.loadedAt }

// Generation returns the generation of the latest Begin.
func (s *TreeStore) Generation() uint64 { return s.gen }
