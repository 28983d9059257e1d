package oracle

import (
	"context"

	"github.com/tatianab/blueprince/internal/house"
)

// Context carries everything the oracle is allowed to see when deciding:
// the current game summary plus the cross-run memory.
type Context struct {
	Summary string
	Terms   map[string]string
	Notes   []string
	Planned string // the plan recorded by the previous move, if any
}

// Oracle decides what to do next. Implementations must return only decisions
// that survive Action.Validate / DraftChoice.Validate; anything else comes
// back wrapped in ErrMalformedDecision for the caller to retry.
type Oracle interface {
	// Decide picks the next action given the current view of the game.
	Decide(ctx context.Context, oc Context) (Action, error)
	// ChooseDraft picks among up to three drafted rooms, or requests a
	// redraw when resources allow one.
	ChooseDraft(ctx context.Context, oc Context, options []*house.Room) (DraftChoice, error)
	// TitleNote produces a short title for a newly captured note.
	TitleNote(ctx context.Context, content string) (string, error)
	// SolveParlor answers a parlor puzzle: three boxes, exactly one
	// true statement set, pick the box with the gems.
	SolveParlor(ctx context.Context, puzzle string) (string, string, error)
}
