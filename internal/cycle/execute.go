package cycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/house"
	"github.com/tatianab/blueprince/internal/memory"
	"github.com/tatianab/blueprince/internal/oracle"
)

func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrActionPrecondition)
}

// execute dispatches on the action kind. Every kind checks its preconditions
// before touching game state, so a failure leaves the state untouched.
// open_door hands off to the drafting sub-flow by switching the phase.
func (c *Cycle) execute(ctx context.Context) error {
	current := c.state.Current
	if current == nil {
		return preconditionf("no current room")
	}
	c.actionRoom = current.Name

	switch c.action.Kind {
	case oracle.KindMove:
		return c.executeMove()
	case oracle.KindOpenDoor:
		return c.executeOpenDoor()
	case oracle.KindPeruseShop:
		return c.executePeruseShop(ctx)
	case oracle.KindPurchaseItem:
		return c.executePurchase()
	case oracle.KindSolvePuzzle:
		return c.executeSolvePuzzle(ctx)
	case oracle.KindSecretPassage:
		if current.Kind != house.KindSecretPassage {
			return preconditionf("%s has no secret passage", current.Name)
		}
		if current.PassageUsed {
			return preconditionf("secret passage in %s already used", current.Name)
		}
		return current.MarkPassageUsed()
	case oracle.KindDig:
		if current.DigSpots <= 0 {
			return preconditionf("no dig spots in %s", current.Name)
		}
		current.DigSpots--
		return nil
	case oracle.KindOpenTrunk:
		if current.Trunks <= 0 {
			return preconditionf("no trunks in %s", current.Name)
		}
		current.Trunks--
		return nil
	case oracle.KindUseTerminal:
		return c.executeUseTerminal()
	case oracle.KindStoreItem:
		return c.executeStoreItem()
	case oracle.KindRetrieveItem:
		return c.executeRetrieveItem()
	case oracle.KindToggleSwitch:
		return c.executeToggleSwitch()
	case oracle.KindEndDay:
		c.dayEnded = true
		return nil
	default:
		return preconditionf("unrecognized action %q", c.action.Kind)
	}
}

// executeMove walks to an already-drafted, already-entered room. A planned
// follow-up action, if given, is carried into the next decision context.
func (c *Cycle) executeMove() error {
	target := c.state.House.FindRoom(c.action.TargetRoom)
	if target == nil {
		return preconditionf("room %s is not on the map", c.action.TargetRoom)
	}
	if !target.Entered {
		return preconditionf("room %s has never been entered", target.Name)
	}
	if err := c.state.EnterRoom(target); err != nil {
		return err
	}
	steps := len(c.action.Path)
	if steps == 0 {
		steps = 1
	}
	c.state.Adjust(game.Footprints, -steps)
	c.planned = c.action.Planned
	return nil
}

// executeOpenDoor opens a door in the current room. A locked door needs a
// key (or the named special item); a known destination is just walked
// through; an unknown one starts the drafting sub-flow.
func (c *Cycle) executeOpenDoor() error {
	current := c.state.Current
	door, ok := current.DoorAt(c.action.Door)
	if !ok {
		return preconditionf("%s has no %s door", current.Name, c.action.Door)
	}
	if door.Blocked() {
		return preconditionf("%s door of %s is blocked", c.action.Door, current.Name)
	}
	usingItem := c.action.SpecialItem != "" && c.state.HasItem(c.action.SpecialItem)
	if door.Locked == house.Yes && !usingItem && c.state.Resources[game.Keys] < 1 {
		return preconditionf("%s door of %s is locked and no key is held", c.action.Door, current.Name)
	}

	if door.Locked == house.Yes {
		if usingItem {
			c.state.RemoveItem(c.action.SpecialItem)
		} else {
			c.state.Adjust(game.Keys, -1)
		}
		door.ForceLocked(false)
	}

	if door.DestinationKnown() {
		if next := c.state.House.NeighborOf(current, c.action.Door); next != nil {
			c.state.Adjust(game.Footprints, -1)
			return c.state.EnterRoom(next)
		}
	}

	// Journal the door decision now rather than at cycle completion, so a
	// restart while the new room awaits annotation can find its way back.
	if c.journal != nil {
		_ = c.journal.AddDecision(memory.Decision{
			Action:      string(oracle.KindOpenDoor),
			Room:        current.Name,
			Door:        string(c.action.Door),
			Explanation: c.action.Explanation,
		})
	}
	c.draftDoor = c.action.Door
	c.phase = AwaitingDraftChoice
	return nil
}

func (c *Cycle) executePeruseShop(ctx context.Context) error {
	current := c.state.Current
	if current.Kind != house.KindShop {
		return preconditionf("%s is not a shop", current.Name)
	}
	stock, err := c.observer.ReadShopItems(ctx)
	if err != nil {
		return fmt.Errorf("read shop items: %w", err)
	}
	current.Stock = stock
	return nil
}

func (c *Cycle) executePurchase() error {
	current := c.state.Current
	if current.Kind != house.KindShop {
		return preconditionf("%s is not a shop", current.Name)
	}
	name := house.NormalizeName(c.action.Item)
	var price int
	found := false
	for _, it := range current.Stock {
		if house.NormalizeName(it.Name) == name {
			price = it.Price
			found = true
			break
		}
	}
	if !found {
		return preconditionf("%s does not stock %s", current.Name, c.action.Item)
	}
	qty := c.action.Quantity
	if qty == 0 {
		qty = 1
	}
	total := price * qty
	if c.state.Resources[game.Coins] < total {
		return preconditionf("%d coins held, %d needed for %d x %s", c.state.Resources[game.Coins], total, qty, c.action.Item)
	}
	c.state.Adjust(game.Coins, -total)
	c.state.AddItem(c.action.Item, fmt.Sprintf("bought at %s", current.Name))
	return current.RemoveStock(c.action.Item)
}

// executeSolvePuzzle reads the parlor boxes off the screen and asks the
// oracle which one holds the gems.
func (c *Cycle) executeSolvePuzzle(ctx context.Context) error {
	current := c.state.Current
	if current.Kind != house.KindPuzzle {
		return preconditionf("%s has no puzzle", current.Name)
	}
	if current.PuzzleSolved {
		return preconditionf("puzzle in %s already solved", current.Name)
	}
	puzzle, err := c.observer.ReadNote(ctx)
	if err != nil {
		return fmt.Errorf("read puzzle: %w", err)
	}
	box, reasoning, err := c.oracle.SolveParlor(ctx, puzzle)
	if err != nil {
		return err
	}
	if err := current.MarkSolved(); err != nil {
		return err
	}
	if c.journal != nil {
		_ = c.journal.AddNote(memory.Note{
			Title:   fmt.Sprintf("Parlor answer, day %d", c.state.Day),
			Content: fmt.Sprintf("Picked the %s box. %s", box, reasoning),
		})
	}
	return nil
}

func (c *Cycle) executeUseTerminal() error {
	current := c.state.Current
	if !current.HasTerminal {
		return preconditionf("%s has no terminal", current.Name)
	}
	// The lock-all / unlock-all terminal commands drive the estate's
	// security doors.
	cmd := strings.ToLower(c.action.Command)
	if strings.Contains(cmd, "unlock") {
		c.state.House.UpdateSecurityDoors(true)
	} else if strings.Contains(cmd, "lock") {
		c.state.House.UpdateSecurityDoors(false)
	}
	return nil
}

func (c *Cycle) executeStoreItem() error {
	current := c.state.Current
	if current.Kind != house.KindCoatCheck {
		return preconditionf("%s is not the coat check", current.Name)
	}
	if current.StoredItem != "" {
		return preconditionf("coat check already holds %s", current.StoredItem)
	}
	if !c.state.HasItem(c.action.Item) {
		return preconditionf("not holding %s", c.action.Item)
	}
	c.state.RemoveItem(c.action.Item)
	current.StoredItem = c.action.Item
	return nil
}

func (c *Cycle) executeRetrieveItem() error {
	current := c.state.Current
	if current.Kind != house.KindCoatCheck {
		return preconditionf("%s is not the coat check", current.Name)
	}
	if !strings.EqualFold(current.StoredItem, c.action.Item) {
		return preconditionf("coat check does not hold %s", c.action.Item)
	}
	c.state.AddItem(current.StoredItem, "retrieved from the coat check")
	current.StoredItem = ""
	return nil
}

// executeToggleSwitch flips a utility closet lever. The keycard entry lever
// drives the security doors across the whole map.
func (c *Cycle) executeToggleSwitch() error {
	current := c.state.Current
	if current.Kind != house.KindUtilityCloset {
		return preconditionf("%s is not the utility closet", current.Name)
	}
	on, err := current.ToggleSwitch(c.action.Switch)
	if err != nil {
		return preconditionf("%v", err)
	}
	if strings.Contains(strings.ToLower(c.action.Switch), "keycard") {
		c.state.House.UpdateSecurityDoors(on)
	}
	return nil
}
