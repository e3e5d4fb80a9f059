package navigator

import (
	"strings"

	"github.com/freepare/freepare/pkg/model"
)

// Filter returns the entities of one level whose name contains query,
// ignoring case and surrounding whitespace. It does not look at children.
//
// An empty query returns level itself. A query that matches nothing returns
// an empty, non-nil slice. level is never modified.
func Filter(level []*model.Entity, query string) []*model.Entity {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return level
	}
	out := make([]*model.Entity, 0, len(level))
	for _, e := range level {
		if e == nil {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
