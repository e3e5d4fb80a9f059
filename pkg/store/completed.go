package store

import (
	"context"
	"time"

	"github.com/freepare/freepare/pkg/debug"
	"github.com/freepare/freepare/pkg/metrics"
	"github.com/freepare/freepare/pkg/model"
)

// CompletedResult is the outcome of one completed-set fetch.
type CompletedResult struct {
	Generation uint64
	Set        model.CompletedSet
	Err        error
}

// CompletedStore holds the completed-test set. It is refreshed
// independently of the tree; until the first result arrives the set is
// empty.
type CompletedStore struct {
	src  CompletedSource
	opts options

	gen     uint64
	loading bool
	set     model.CompletedSet
	err     error
}

// NewCompletedStore returns a store with an empty set. src may be nil, in
// which case every load yields an empty set.
func NewCompletedStore(src CompletedSource, opts ...Option) *CompletedStore {
	return &CompletedStore{src: src, opts: buildOptions(opts)}
}

// Begin starts a load and returns its generation.
func (s *CompletedStore) Begin() uint64 {
	s.gen++
	s.loading = true
	return s.gen
}

// Fetch reads the set. Failures produce an empty set plus a
// ProgressFetchFailure.
func (s *CompletedStore) Fetch(ctx context.Context, gen uint64) CompletedResult {
	defer metrics.TimerWithCallback(metrics.CompletedLoad, func(d time.Duration) {
		debug.LogTiming("completed fetch", d)
	})()
	res := CompletedResult{Generation: gen}
	if s.src == nil {
		return res
	}
	set, err := s.src.CompletedTests(ctx)
	if err != nil {
		res.Err = &ProgressFetchFailure{Status: statusOf(err), Cause: err}
		s.opts.log.Warn("completed_load_failed", "generation", gen, "error", err.Error())
		return res
	}
	res.Set = set
	s.opts.log.Info("completed_loaded", "generation", gen, "count", set.Len())
	return res
}

// Apply installs a fetch result; stale results are dropped. It returns true
// when the set was replaced, which is also the case for failures (the set
// becomes empty).
func (s *CompletedStore) Apply(res CompletedResult) bool {
	if res.Generation != s.gen {
		debug.Log("store: dropping stale completed result gen=%d current=%d", res.Generation, s.gen)
		return false
	}
	s.loading = false
	s.set = res.Set
	s.err = res.Err
	return true
}

// Load runs Begin, Fetch and Apply in sequence.
func (s *CompletedStore) Load(ctx context.Context) error {
	s.Apply(s.Fetch(ctx, s.Begin()))
	return s.err
}

// Mark adds ids to the current set locally, for tests finished in this
// session. An in-flight fetch still replaces the set when it is applied.
func (s *CompletedStore) Mark(ids ...string) {
	s.set = s.set.With(ids...)
}

// Set returns the current completed set, empty until a load succeeds.
func (s *CompletedStore) Set() model.CompletedSet { return s.set }

// Err returns the last fetch failure, if any.
func (s *CompletedStore) Err() error { return s.err }

// Loading reports whether a load is in flight.
func (s *CompletedStore) Loading() bool { return s.loading }

// Generation returns the generation of the latest Begin.
func (s *CompletedStore) Generation() uint64 { return s.gen }
