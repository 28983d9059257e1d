// Offline simulation: drives the turn cycle through a scripted first day
// with no API key and no live game, printing the map as it grows. Useful for
// eyeballing the drafting flow end to end.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/tatianab/blueprince/internal/cycle"
	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/house"
	"github.com/tatianab/blueprince/internal/memory"
	"github.com/tatianab/blueprince/internal/oracle"
	"github.com/tatianab/blueprince/internal/perception"
)

// scriptedOracle replays a fixed queue of actions and drafts the first
// affordable option.
type scriptedOracle struct {
	actions []oracle.Action
}

func (o *scriptedOracle) Decide(_ context.Context, _ oracle.Context) (oracle.Action, error) {
	if len(o.actions) == 0 {
		return oracle.Action{Kind: oracle.KindEndDay, Explanation: "out of script"}, nil
	}
	a := o.actions[0]
	o.actions = o.actions[1:]
	return a, nil
}

func (o *scriptedOracle) ChooseDraft(_ context.Context, _ oracle.Context, options []*house.Room) (oracle.DraftChoice, error) {
	return oracle.DraftChoice{Room: options[0].Name, Enter: true, Explanation: "scripted"}, nil
}

func (o *scriptedOracle) TitleNote(_ context.Context, content string) (string, error) {
	return "Scripted note", nil
}

func (o *scriptedOracle) SolveParlor(_ context.Context, _ string) (string, string, error) {
	return "blue", "scripted", nil
}

func main() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "blueprince-sim")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	journal, err := memory.Open(filepath.Join(dir, "memory.db"))
	if err != nil {
		log.Fatalf("Failed to open journal: %v", err)
	}
	defer journal.Close()

	state := game.NewState(1)
	state.SetMemory(journal)
	store := game.NewFileStore(filepath.Join(dir, "saves"))

	confident := func(values map[game.Resource]int) perception.Resources {
		out := perception.Resources{}
		for r, v := range values {
			out[r] = perception.Reading{Value: v, Confidence: 1}
		}
		return out
	}
	observer := &perception.Script{
		ResourceReadings: []perception.Resources{
			confident(map[game.Resource]int{game.Footprints: 50, game.Gems: 3, game.Keys: 1, game.Dice: 1, game.Coins: 10}),
			confident(map[game.Resource]int{game.Footprints: 49, game.Gems: 1, game.Keys: 1, game.Dice: 1, game.Coins: 10}),
			confident(map[game.Resource]int{game.Footprints: 48, game.Gems: 1, game.Keys: 1, game.Dice: 1, game.Coins: 10}),
		},
		RoomChoices: [][]*house.Room{{
			draftable("STOREROOM", house.ShapeStraight, 2, "shelves of supplies"),
			draftable("HALLWAY", house.ShapeStraight, 0, "a connecting corridor"),
			draftable("DEN", house.ShapeDeadEnd, 1, "a cozy dead end"),
		}},
	}

	orc := &scriptedOracle{actions: []oracle.Action{
		{Kind: oracle.KindOpenDoor, Door: house.East, Explanation: "explore east"},
		{Kind: oracle.KindMove, TargetRoom: "ENTRANCE HALL", Explanation: "head back"},
		{Kind: oracle.KindEndDay, Explanation: "wrap up"},
	}}

	c := cycle.New(state, store, observer, orc, journal, "sim")

	for i := 0; ; i++ {
		prompt, err := c.Step(ctx)
		if err != nil {
			log.Fatalf("Cycle %d failed: %v", i, err)
		}
		if ann, ok := prompt.(cycle.AnnotationPrompt); ok {
			fmt.Printf("Annotating %s\n", ann.Room)
			no := false
			if _, err := c.ResumeAnnotation(ctx, []cycle.DoorAnnotation{
				{Door: house.East, LeadsTo: "DRAWING ROOM", Locked: &no, Security: &no},
			}); err != nil {
				log.Fatalf("Annotation failed: %v", err)
			}
		}
		if c.DayEnded() {
			fmt.Println("Day over.")
			break
		}
	}

	fmt.Println(state.Summarize())
	for line := range state.House.Render() {
		fmt.Println(line)
	}
}

func draftable(name string, shape house.Shape, cost int, desc string) *house.Room {
	r := house.NewRoom(name, shape, house.Position{})
	r.Cost = cost
	r.Description = desc
	return r
}
