package hierarchy

import (
	"fmt"

	"github.com/freepare/freepare/pkg/model"
	"github.com/freepare/freepare/pkg/navigator"
	"github.com/freepare/freepare/pkg/progress"
)

// Action is a button shown on a card.
type Action string

const (
	ActionOpen      Action = "Open"
	ActionStartTest Action = "Start Test"
	ActionWatch     Action = "Watch Video"
	ActionViewMore  Action = "View more"
)

const (
	subjectPreview = 4
	parentPreview  = 5
)

// Card is one visible entity annotated for display.
type Card struct {
	Entity *model.Entity
	Stats  model.ProgressStats
	Leaf   bool

	// Launch is set for leaves.
	Launch navigator.Launch

	// Preview lists the first child names for non-topic parents. More is the
	// label for the remainder ("View more" or "+N more"), empty when none.
	Preview []string
	More    string

	ShowProgress bool
	Actions      []Action
}

// NewCard annotates e against done.
func NewCard(e *model.Entity, done model.CompletedSet) Card {
	c := Card{
		Entity:       e,
		Stats:        progress.Compute(e, done),
		Leaf:         navigator.IsLeaf(e),
		ShowProgress: e.Kind != model.KindContent,
	}
	if l, ok := navigator.LaunchFor(e); ok {
		c.Launch = l
	}

	if !c.Leaf && e.Kind != model.KindTopic {
		limit := parentPreview
		if e.Kind == model.KindSubject {
			limit = subjectPreview
		}
		for i, child := range e.Children {
			if i == limit {
				break
			}
			if child != nil {
				c.Preview = append(c.Preview, child.Label())
			}
		}
		switch {
		case e.Kind == model.KindSubject:
			c.More = string(ActionViewMore)
		case len(e.Children) > limit:
			c.More = fmt.Sprintf("+%d more", len(e.Children)-limit)
		}
	}

	switch {
	case e.Kind == model.KindContent:
		c.Actions = append(c.Actions, ActionOpen)
	case c.Leaf:
		c.Actions = append(c.Actions, ActionStartTest)
	}
	if e.HasVideo() {
		c.Actions = append(c.Actions, ActionWatch)
	}
	return c
}

// HasAction reports whether the card offers a.
func (c Card) HasAction(a Action) bool {
	for _, x := range c.Actions {
		if x == a {
			return true
		}
	}
	return false
}
