package oracle

import (
	"errors"
	"fmt"

	"github.com/tatianab/blueprince/internal/house"
)

// ErrMalformedDecision is returned when the oracle's response does not name a
// recognized action or omits required parameters. The cycle reports it and
// asks again; it never silently defaults.
var ErrMalformedDecision = errors.New("malformed decision")

// Kind enumerates every action the oracle may request. The set is closed;
// dispatch switches over it exhaustively.
type Kind string

const (
	KindMove           Kind = "move"
	KindOpenDoor       Kind = "open_door"
	KindPeruseShop     Kind = "peruse_shop"
	KindPurchaseItem   Kind = "purchase_item"
	KindSolvePuzzle    Kind = "solve_puzzle"
	KindSecretPassage  Kind = "open_secret_passage"
	KindDig            Kind = "dig"
	KindOpenTrunk      Kind = "open_trunk"
	KindUseTerminal    Kind = "use_terminal"
	KindStoreItem      Kind = "store_item_in_coat_check"
	KindRetrieveItem   Kind = "retrieve_item_from_coat_check"
	KindToggleSwitch   Kind = "toggle_switch"
	KindEndDay         Kind = "call_it_a_day"
)

// Kinds lists every recognized action kind.
var Kinds = []Kind{
	KindMove, KindOpenDoor, KindPeruseShop, KindPurchaseItem, KindSolvePuzzle,
	KindSecretPassage, KindDig, KindOpenTrunk, KindUseTerminal, KindStoreItem,
	KindRetrieveItem, KindToggleSwitch, KindEndDay,
}

// Action is a typed action request from the oracle. Only the parameters for
// the given kind are meaningful.
type Action struct {
	Kind Kind

	// open_door
	Door        house.Direction
	SpecialItem string

	// move
	TargetRoom string
	Path       []house.Direction
	Planned    string

	// purchase_item / coat check
	Item     string
	Quantity int

	// toggle_switch
	Switch string

	// use_terminal
	Command string

	Explanation string
}

// Validate checks the per-kind parameter requirements before the action is
// allowed anywhere near the game state.
func (a Action) Validate() error {
	switch a.Kind {
	case KindMove:
		if a.TargetRoom == "" {
			return fmt.Errorf("move without target room: %w", ErrMalformedDecision)
		}
	case KindOpenDoor:
		if a.Door == "" {
			return fmt.Errorf("open_door without direction: %w", ErrMalformedDecision)
		}
		if _, err := house.ParseDirection(string(a.Door)); err != nil {
			return fmt.Errorf("open_door: %v: %w", err, ErrMalformedDecision)
		}
	case KindPurchaseItem:
		if a.Item == "" {
			return fmt.Errorf("purchase_item without item: %w", ErrMalformedDecision)
		}
		if a.Quantity < 0 {
			return fmt.Errorf("purchase_item with negative quantity: %w", ErrMalformedDecision)
		}
	case KindStoreItem, KindRetrieveItem:
		if a.Item == "" {
			return fmt.Errorf("%s without item: %w", a.Kind, ErrMalformedDecision)
		}
	case KindToggleSwitch:
		if a.Switch == "" {
			return fmt.Errorf("toggle_switch without switch name: %w", ErrMalformedDecision)
		}
	case KindUseTerminal:
		if a.Command == "" {
			return fmt.Errorf("use_terminal without command: %w", ErrMalformedDecision)
		}
	case KindPeruseShop, KindSolvePuzzle, KindSecretPassage, KindDig, KindOpenTrunk, KindEndDay:
		// no parameters
	default:
		return fmt.Errorf("unrecognized action %q: %w", a.Kind, ErrMalformedDecision)
	}
	return nil
}

// Redraw sources available when the draft comes up short.
const (
	RedrawDice  = "DICE"
	RedrawRoom  = "ROOM"
	RedrawStudy = "STUDY"
)

// DraftChoice is the oracle's pick among drafting options: either a redraw
// from one of the named sources, or a room to draft and whether to walk in.
type DraftChoice struct {
	Redraw      string // empty unless a redraw is requested
	Room        string
	Enter       bool
	Explanation string
}

// Validate checks a draft choice against the presented options.
func (c DraftChoice) Validate(options []*house.Room) error {
	if c.Redraw != "" {
		switch c.Redraw {
		case RedrawDice, RedrawRoom, RedrawStudy:
			return nil
		}
		return fmt.Errorf("unknown redraw source %q: %w", c.Redraw, ErrMalformedDecision)
	}
	if c.Room == "" {
		return fmt.Errorf("draft choice names no room: %w", ErrMalformedDecision)
	}
	name := house.NormalizeName(c.Room)
	for _, opt := range options {
		if opt.Name == name {
			return nil
		}
	}
	return fmt.Errorf("room %s is not among the drafting options: %w", name, ErrMalformedDecision)
}
