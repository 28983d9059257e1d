package cycle

import (
	"context"
	"fmt"

	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/house"
	"github.com/tatianab/blueprince/internal/oracle"
)

const maxDraftOptions = 3

const maxRedraws = 3

// draft reads the rooms on offer behind the opened door and asks the oracle
// to pick one, honoring redraw requests while resources allow them. The
// chosen room's gem cost is checked and spent here; placement happens in
// DiscoveringRoom.
func (c *Cycle) draft(ctx context.Context) error {
	var choice oracle.DraftChoice
	var options []*house.Room
	for attempt := 0; ; attempt++ {
		var err error
		options, err = c.observer.ReadRoomChoices(ctx)
		if err != nil {
			return fmt.Errorf("read room choices: %w", err)
		}
		if len(options) > maxDraftOptions {
			options = options[:maxDraftOptions]
		}
		if len(options) == 0 {
			return preconditionf("no rooms on offer behind the %s door", c.draftDoor)
		}

		oc, err := c.decisionContext()
		if err != nil {
			return err
		}
		choice, err = c.oracle.ChooseDraft(ctx, oc, options)
		if err != nil {
			return err
		}
		if choice.Redraw == "" {
			break
		}
		if attempt >= maxRedraws {
			return preconditionf("too many redraws")
		}
		if err := c.spendRedraw(choice.Redraw); err != nil {
			return err
		}
	}

	var picked *house.Room
	for _, opt := range options {
		if opt.Name == house.NormalizeName(choice.Room) {
			picked = opt
			break
		}
	}
	if picked == nil {
		return fmt.Errorf("drafted room %s not among options: %w", choice.Room, oracle.ErrMalformedDecision)
	}
	if picked.Cost > c.state.Resources[game.Gems] {
		return preconditionf("%s costs %d gems, %d held", picked.Name, picked.Cost, c.state.Resources[game.Gems])
	}
	c.state.Adjust(game.Gems, -picked.Cost)
	c.draftRoom = picked
	c.draftEnter = choice.Enter
	return nil
}

func (c *Cycle) spendRedraw(source string) error {
	switch source {
	case oracle.RedrawDice:
		if c.state.Resources[game.Dice] < 1 {
			return preconditionf("no dice left to redraw")
		}
		c.state.Adjust(game.Dice, -1)
	case oracle.RedrawRoom, oracle.RedrawStudy:
		// Room effects and the study perk are free; the physical game
		// enforces their availability.
	default:
		return fmt.Errorf("unknown redraw source %q: %w", source, oracle.ErrMalformedDecision)
	}
	return nil
}

// discoverRoom places the drafted room at the position implied by the
// opened door and reconciles its doors with the neighbors. Conflicts are
// reported, not fatal.
func (c *Cycle) discoverRoom() error {
	current := c.state.House.FindRoom(c.actionRoom)
	if current == nil {
		return game.ErrRoomNotPlaced
	}
	c.draftRoom.Pos = current.Pos.Step(c.draftDoor)

	// The way back is the one door we already know about.
	back := c.draftDoor.Opposite()
	if _, ok := c.draftRoom.DoorAt(back); !ok {
		if err := c.draftRoom.AddDoor(house.NewDoor(back)); err != nil {
			return err
		}
	}

	conflicts, err := c.state.House.PlaceRoom(c.draftRoom)
	if err != nil {
		return err
	}
	c.conflicts = append(c.conflicts, conflicts...)

	if c.draftEnter {
		c.state.Adjust(game.Footprints, -1)
		if err := c.state.EnterRoom(c.draftRoom); err != nil {
			return err
		}
	}
	return nil
}
