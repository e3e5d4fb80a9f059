// Package testutil provides fixture generators for entity forests of various
// shapes. All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/freepare/freepare/pkg/model"
)

// Fixture is a generated backend document: the entity forest plus the
// completed-test records for it. It marshals to the same shape the
// file data source and the mock backend read.
type Fixture struct {
	Description string          `json:"description,omitempty"`
	Entities    []*model.Entity `json:"entities"`
	Completed   []Completion    `json:"completedTests"`
}

// Completion is one completed-test record.
type Completion struct {
	ExamID string `json:"examId,omitempty"`
	Name   string `json:"name,omitempty"`
}

// GeneratorConfig controls forest generation.
type GeneratorConfig struct {
	Seed         int64   // Random seed for determinism (0 = fixed default)
	IDPrefix     string  // Prefix for entity ids (default: "gen")
	CompletedPct float64 // Share of tests marked completed, 0..1
	ContentPct   float64 // Share of leaves that are content rather than papers, 0..1
	VideoPct     float64 // Share of leaves with a video link, 0..1
	NameOnlyPct  float64 // Share of completions recorded by name instead of id, 0..1
	Descriptions bool    // Give topics a description
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:         42,
		IDPrefix:     "gen",
		CompletedPct: 0.3,
		Descriptions: true,
	}
}

// Generator creates entity forests with various shapes.
type Generator struct {
	cfg  GeneratorConfig
	rng  *rand.Rand
	next int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "gen"
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// kindAt maps a depth onto the usual exam › subject › topic ladder. Deeper
// levels stay topics.
func kindAt(depth int) model.Kind {
	switch depth {
	case 0:
		return model.KindExam
	case 1:
		return model.KindSubject
	default:
		return model.KindTopic
	}
}

func (g *Generator) id() string {
	g.next++
	return fmt.Sprintf("%s-%d", g.cfg.IDPrefix, g.next)
}

func (g *Generator) chance(p float64) bool {
	return p > 0 && g.rng.Float64() < p
}

func (g *Generator) leaf() *model.Entity {
	e := &model.Entity{ID: g.id(), Kind: model.KindPaper}
	e.Name = fmt.Sprintf("Mock Test %s", strings.TrimPrefix(e.ID, g.cfg.IDPrefix+"-"))
	if g.chance(g.cfg.ContentPct) {
		e.Kind = model.KindContent
		e.Name = fmt.Sprintf("Notes %s", strings.TrimPrefix(e.ID, g.cfg.IDPrefix+"-"))
	}
	if g.chance(g.cfg.VideoPct) {
		e.VideoLink = "https://www.youtube.com/watch?v=" + e.ID
	}
	return e
}

func (g *Generator) parent(depth int) *model.Entity {
	e := &model.Entity{ID: g.id(), Kind: kindAt(depth)}
	e.Name = fmt.Sprintf("%s %s", e.Kind.Label(), strings.TrimPrefix(e.ID, g.cfg.IDPrefix+"-"))
	if e.Kind == model.KindTopic && g.cfg.Descriptions {
		e.Description = fmt.Sprintf("Practice set for **%s**.", e.Name)
	}
	return e
}

// ============================================================================
// Shapes
// ============================================================================

// Tree creates `roots` complete trees of the given depth where every parent
// has `breadth` children. Depth 1 is a forest of tests; total tests are
// roots * breadth^(depth-1).
func (g *Generator) Tree(roots, depth, breadth int) []*model.Entity {
	out := make([]*model.Entity, 0, roots)
	for i := 0; i < roots; i++ {
		out = append(out, g.subtree(0, depth, breadth))
	}
	return out
}

func (g *Generator) subtree(level, depth, breadth int) *model.Entity {
	if level >= depth-1 {
		return g.leaf()
	}
	e := g.parent(level)
	for i := 0; i < breadth; i++ {
		e.Children = append(e.Children, g.subtree(level+1, depth, breadth))
	}
	return e
}

// Ragged creates a forest whose parents have between 1 and maxBreadth
// children and whose branches stop anywhere between depth 2 and maxDepth.
func (g *Generator) Ragged(roots, maxDepth, maxBreadth int) []*model.Entity {
	if maxDepth < 2 {
		maxDepth = 2
	}
	if maxBreadth < 1 {
		maxBreadth = 1
	}
	out := make([]*model.Entity, 0, roots)
	for i := 0; i < roots; i++ {
		out = append(out, g.ragged(0, maxDepth, maxBreadth))
	}
	return out
}

func (g *Generator) ragged(level, maxDepth, maxBreadth int) *model.Entity {
	if level > 0 && (level >= maxDepth-1 || g.rng.Intn(maxDepth) < level) {
		return g.leaf()
	}
	e := g.parent(level)
	n := 1 + g.rng.Intn(maxBreadth)
	for i := 0; i < n; i++ {
		e.Children = append(e.Children, g.ragged(level+1, maxDepth, maxBreadth))
	}
	return e
}

// Chain creates a single branch `depth` parents deep ending in one test.
func (g *Generator) Chain(depth int) []*model.Entity {
	root := g.parent(0)
	cur := root
	for i := 1; i < depth; i++ {
		child := g.parent(i)
		cur.Children = []*model.Entity{child}
		cur = child
	}
	cur.Children = []*model.Entity{g.leaf()}
	return []*model.Entity{root}
}

// Cycle creates a chain of `size` parents whose last node points back at the
// first. JSON cannot carry it; it exists for the in-memory cycle guards.
func (g *Generator) Cycle(size int) []*model.Entity {
	if size < 1 {
		size = 1
	}
	forest := g.Chain(size)
	cur := forest[0]
	for i := 1; i < size; i++ {
		cur = cur.Children[0]
	}
	cur.Children = append(cur.Children, forest[0])
	return forest
}

// Shared creates two exams that both contain the same subject subtree.
func (g *Generator) Shared(breadth int) []*model.Entity {
	shared := g.parent(1)
	for i := 0; i < breadth; i++ {
		shared.Children = append(shared.Children, g.leaf())
	}
	a, b := g.parent(0), g.parent(0)
	a.Children = []*model.Entity{shared}
	b.Children = []*model.Entity{shared}
	return []*model.Entity{a, b}
}

// ============================================================================
// Completion
// ============================================================================

// Complete picks completed tests among the forest's leaves using the
// configured CompletedPct and NameOnlyPct.
func (g *Generator) Complete(forest []*model.Entity) []Completion {
	var out []Completion
	for _, leaf := range Leaves(forest) {
		if !g.chance(g.cfg.CompletedPct) {
			continue
		}
		if g.chance(g.cfg.NameOnlyPct) {
			out = append(out, Completion{Name: leaf.Name})
		} else {
			out = append(out, Completion{ExamID: leaf.Key()})
		}
	}
	return out
}

// Fixture bundles a forest with generated completions.
func (g *Generator) Fixture(desc string, forest []*model.Entity) Fixture {
	return Fixture{Description: desc, Entities: forest, Completed: g.Complete(forest)}
}

// CompletedSet converts completion records to the set the stores produce.
func CompletedSet(records []Completion) model.CompletedSet {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if r.ExamID != "" {
			ids = append(ids, r.ExamID)
		} else if r.Name != "" {
			ids = append(ids, r.Name)
		}
	}
	return model.NewCompletedSet(ids...)
}

// Leaves lists every leaf reachable from forest in depth-first order. Shared
// subtrees are listed once per path; cycles are cut.
func Leaves(forest []*model.Entity) []*model.Entity {
	var out []*model.Entity
	onPath := make(map[*model.Entity]bool)
	var walk func(e *model.Entity)
	walk = func(e *model.Entity) {
		if e == nil || onPath[e] {
			return
		}
		if e.IsLeaf() {
			out = append(out, e)
			return
		}
		onPath[e] = true
		for _, c := range e.Children {
			walk(c)
		}
		delete(onPath, e)
	}
	for _, r := range forest {
		walk(r)
	}
	return out
}

// ToJSON renders a fixture in the backend document format.
func ToJSON(f Fixture) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// ============================================================================
// Quick helpers
// ============================================================================

// QuickTree returns a default-config Tree.
func QuickTree(roots, depth, breadth int) []*model.Entity {
	return NewDefault().Tree(roots, depth, breadth)
}

// QuickChain returns a default-config Chain.
func QuickChain(depth int) []*model.Entity {
	return NewDefault().Chain(depth)
}

// QuickRagged returns a default-config Ragged forest.
func QuickRagged(roots, maxDepth, maxBreadth int) []*model.Entity {
	return NewDefault().Ragged(roots, maxDepth, maxBreadth)
}
