// Package cycle drives one decision cycle at a time: sync resources from
// perception, ask the oracle for an action, execute it against game state,
// persist. Phases that need a human in the loop suspend with a typed prompt
// and resume later, surviving a process restart via the snapshot's pending
// phase marker.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/house"
	"github.com/tatianab/blueprince/internal/memory"
	"github.com/tatianab/blueprince/internal/oracle"
	"github.com/tatianab/blueprince/internal/perception"
)

// Phase is where the cycle currently stands.
type Phase string

const (
	Idle                   Phase = "idle"
	SyncingResources       Phase = "syncing_resources"
	AwaitingDecision       Phase = "awaiting_decision"
	ExecutingAction        Phase = "executing_action"
	AwaitingDraftChoice    Phase = "awaiting_draft_choice"
	DiscoveringRoom        Phase = "discovering_room"
	AwaitingDoorAnnotation Phase = "awaiting_door_annotation"
	Persisting             Phase = "persisting"
)

var (
	// ErrActionPrecondition means the requested action cannot run against
	// the current game state. The cycle aborts to Idle without mutating
	// anything.
	ErrActionPrecondition = errors.New("action precondition failed")
	// ErrPersistFailed means a snapshot could not be written. In-memory
	// state is kept and flagged stale until the next successful persist.
	ErrPersistFailed = errors.New("persist failed")
)

// Prompt is a suspension point: the cycle needs something from the operator
// before it can continue.
type Prompt interface{ isPrompt() }

// ResourcePrompt asks the operator to confirm low-confidence resource
// readings. Resume with ResumeResources.
type ResourcePrompt struct {
	Readings map[game.Resource]perception.Reading
}

func (ResourcePrompt) isPrompt() {}

// AnnotationPrompt asks the operator to finish documenting a newly placed
// room's doors. Resume with ResumeAnnotation.
type AnnotationPrompt struct {
	Room       string
	DoorsShort int               // doors the shape calls for that are not recorded yet
	Unresolved []house.Direction // recorded doors still missing a resolution
}

func (AnnotationPrompt) isPrompt() {}

// DoorAnnotation is one operator-supplied door fact for the room being
// annotated.
type DoorAnnotation struct {
	Door     house.Direction
	LeadsTo  string
	Locked   *bool
	Security *bool
}

// DefaultConfidence is the reading-confidence threshold below which the
// cycle asks the operator instead of trusting perception.
const DefaultConfidence = 0.9

const maxDecisionAttempts = 3

// Cycle is the turn-cycle state machine. One Cycle owns one game.State; all
// mutation of the state goes through it while a cycle is running.
type Cycle struct {
	mu sync.Mutex

	state    *game.State
	store    game.Store
	observer perception.Observer
	oracle   oracle.Oracle
	journal  *memory.Journal

	saveID    string
	threshold float64

	phase Phase

	// planned carries a follow-up plan from the last move action;
	// uncertain holds the readings a suspended ResourcePrompt waits on.
	planned   string
	uncertain map[game.Resource]perception.Reading

	action     oracle.Action
	actionRoom string // where the action was issued from
	draftDoor  house.Direction
	draftRoom  *house.Room
	draftEnter bool
	conflicts  []house.AdjacencyConflict
	dayEnded   bool
}

// New wires a cycle over its collaborators. saveID names the snapshot slot
// in the store.
func New(state *game.State, store game.Store, obs perception.Observer, orc oracle.Oracle, journal *memory.Journal, saveID string) *Cycle {
	return &Cycle{
		state:     state,
		store:     store,
		observer:  obs,
		oracle:    orc,
		journal:   journal,
		saveID:    saveID,
		threshold: DefaultConfidence,
		phase:     Idle,
	}
}

// SetConfidence overrides the perception trust threshold.
func (c *Cycle) SetConfidence(t float64) { c.threshold = t }

// Phase reports the current phase.
func (c *Cycle) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Conflicts reports adjacency conflicts found by the last room placement.
func (c *Cycle) Conflicts() []house.AdjacencyConflict {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conflicts
}

// DayEnded reports whether the last completed cycle ended the day.
func (c *Cycle) DayEnded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dayEnded
}

// Step advances the cycle until it completes (nil, nil), suspends on a
// prompt, or fails. A failed decision leaves the phase at AwaitingDecision
// so the next Step re-requests one; a failed precondition aborts to Idle.
func (c *Cycle) Step(ctx context.Context) (Prompt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run(ctx)
}

// ResumeResources continues a cycle suspended on a ResourcePrompt with
// operator-confirmed values.
func (c *Cycle) ResumeResources(ctx context.Context, confirmed map[game.Resource]int) (Prompt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != SyncingResources {
		return nil, fmt.Errorf("no resource confirmation pending in phase %s", c.phase)
	}
	// Every prompted reading needs an explicit value; the cycle never
	// advances on an unconfirmed counter.
	for r := range c.uncertain {
		if _, ok := confirmed[r]; !ok {
			return nil, fmt.Errorf("resource %s still awaits confirmation", r)
		}
	}
	for r, v := range confirmed {
		c.state.SetResource(r, v)
	}
	c.uncertain = nil
	c.phase = AwaitingDecision
	return c.run(ctx)
}

// ResumeAnnotation applies operator-supplied door annotations to the room
// awaiting them and re-checks the gate.
func (c *Cycle) ResumeAnnotation(ctx context.Context, annotations []DoorAnnotation) (Prompt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != AwaitingDoorAnnotation || c.draftRoom == nil {
		return nil, fmt.Errorf("no door annotation pending in phase %s", c.phase)
	}
	for _, ann := range annotations {
		if err := c.annotateDoor(ann); err != nil {
			return nil, err
		}
	}
	// Re-place to reconcile any doors added by the annotations. Same-name
	// re-placement is allowed.
	conflicts, err := c.state.House.PlaceRoom(c.draftRoom)
	if err != nil {
		return nil, err
	}
	c.conflicts = append(c.conflicts, conflicts...)
	return c.run(ctx)
}

func (c *Cycle) annotateDoor(ann DoorAnnotation) error {
	d, ok := c.draftRoom.DoorAt(ann.Door)
	if !ok {
		d = house.NewDoor(ann.Door)
		if err := c.draftRoom.AddDoor(d); err != nil {
			return err
		}
	}
	if ann.LeadsTo != "" {
		if err := d.ResolveDestination(ann.LeadsTo); err != nil {
			return err
		}
	}
	if ann.Locked != nil {
		if err := d.ResolveLocked(*ann.Locked); err != nil {
			return err
		}
	}
	if ann.Security != nil {
		if err := d.ResolveSecurity(*ann.Security); err != nil {
			return err
		}
	}
	return nil
}

// CaptureNote reads a note off the screen, asks the oracle to title it, and
// journals it for future decision contexts. Independent of the phase loop;
// notes can be captured between cycles.
func (c *Cycle) CaptureNote(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	content, err := c.observer.ReadNote(ctx)
	if err != nil {
		return "", fmt.Errorf("read note: %w", err)
	}
	title, err := c.oracle.TitleNote(ctx, content)
	if err != nil {
		return "", err
	}
	room := ""
	if c.state.Current != nil {
		room = c.state.Current.Name
	}
	if c.journal != nil {
		if err := c.journal.AddNote(memory.Note{Title: title, Content: content, FoundIn: room}); err != nil {
			return "", err
		}
	}
	return title, nil
}

// Recover reconstructs a suspended cycle after a restart, from the restored
// state's pending phase marker. Phases whose working set cannot be rebuilt
// fall back to Idle; the map is never corrupted, only the cycle's partial
// progress is lost.
func (c *Cycle) Recover(ctx context.Context, pendingPhase string) (Prompt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch Phase(pendingPhase) {
	case SyncingResources:
		c.phase = SyncingResources
		return c.run(ctx)
	case AwaitingDoorAnnotation:
		dec, ok, err := c.journal.LastDoorDecision()
		if err != nil {
			return nil, err
		}
		if ok {
			if from := c.state.House.FindRoom(dec.Room); from != nil {
				if dir, derr := house.ParseDirection(dec.Door); derr == nil {
					if room := c.state.House.NeighborOf(from, dir); room != nil {
						c.draftRoom = room
						c.draftDoor = dir
						c.phase = AwaitingDoorAnnotation
						return c.run(ctx)
					}
				}
			}
		}
		c.phase = Idle
		return nil, nil
	default:
		c.phase = Idle
		return nil, nil
	}
}

// run advances phases until completion, suspension or error. Caller holds
// the mutex.
func (c *Cycle) run(ctx context.Context) (Prompt, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch c.phase {
		case Idle:
			c.dayEnded = false
			c.conflicts = nil
			c.phase = SyncingResources

		case SyncingResources:
			prompt, err := c.syncResources(ctx)
			if err != nil || prompt != nil {
				return prompt, err
			}
			c.phase = AwaitingDecision

		case AwaitingDecision:
			action, err := c.decide(ctx)
			if err != nil {
				return nil, err
			}
			c.action = action
			c.phase = ExecutingAction

		case ExecutingAction:
			if err := c.execute(ctx); err != nil {
				if errors.Is(err, ErrActionPrecondition) {
					c.phase = Idle
				}
				return nil, err
			}
			if c.phase == ExecutingAction {
				c.phase = Persisting
			}

		case AwaitingDraftChoice:
			if err := c.draft(ctx); err != nil {
				if errors.Is(err, ErrActionPrecondition) {
					c.phase = Idle
				}
				return nil, err
			}
			c.phase = DiscoveringRoom

		case DiscoveringRoom:
			if err := c.discoverRoom(); err != nil {
				return nil, err
			}
			c.phase = AwaitingDoorAnnotation

		case AwaitingDoorAnnotation:
			prompt, err := c.annotationGate(ctx)
			if err != nil || prompt != nil {
				return prompt, err
			}
			c.phase = Persisting

		case Persisting:
			if err := c.persist(ctx, ""); err != nil {
				c.phase = Idle
				return nil, err
			}
			c.recordDecision()
			c.phase = Idle
			return nil, nil

		default:
			return nil, fmt.Errorf("cycle in unknown phase %q", c.phase)
		}
	}
}

// syncResources observes the counters and applies confident readings.
// Uncertain readings suspend the cycle after persisting the pending phase.
func (c *Cycle) syncResources(ctx context.Context) (Prompt, error) {
	readings, err := c.observer.ReadResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("read resources: %w", err)
	}
	uncertain := make(map[game.Resource]perception.Reading)
	for _, r := range game.AllResources {
		reading, ok := readings[r]
		if !ok {
			continue
		}
		if reading.Confidence >= c.threshold {
			c.state.SetResource(r, reading.Value)
		} else {
			uncertain[r] = reading
		}
	}
	if len(uncertain) == 0 {
		return nil, nil
	}
	c.uncertain = uncertain
	err = c.persist(ctx, string(SyncingResources))
	return ResourcePrompt{Readings: uncertain}, err
}

// decide builds the decision context and asks the oracle, retrying malformed
// responses a few times before giving up. The phase stays at
// AwaitingDecision on failure so the next Step re-requests a decision.
func (c *Cycle) decide(ctx context.Context) (oracle.Action, error) {
	oc, err := c.decisionContext()
	if err != nil {
		return oracle.Action{}, err
	}
	var lastErr error
	for attempt := 0; attempt < maxDecisionAttempts; attempt++ {
		action, err := c.oracle.Decide(ctx, oc)
		if err == nil {
			c.planned = ""
			return action, nil
		}
		if !errors.Is(err, oracle.ErrMalformedDecision) {
			return oracle.Action{}, err
		}
		lastErr = err
	}
	return oracle.Action{}, lastErr
}

func (c *Cycle) decisionContext() (oracle.Context, error) {
	oc := oracle.Context{
		Summary: c.state.Summarize(),
		Planned: c.planned,
	}
	if c.journal != nil {
		terms, err := c.journal.Terms()
		if err != nil {
			return oracle.Context{}, err
		}
		oc.Terms = make(map[string]string, len(terms))
		for _, t := range terms {
			oc.Terms[t.Key] = t.Definition
		}
		notes, err := c.journal.Notes()
		if err != nil {
			return oracle.Context{}, err
		}
		for _, n := range notes {
			oc.Notes = append(oc.Notes, fmt.Sprintf("%s\n%s", n.Title, n.Content))
		}
	}
	return oc, nil
}

// annotationGate refuses to persist until the new room's doors are complete:
// as many doors as its shape calls for, each fully resolved.
func (c *Cycle) annotationGate(ctx context.Context) (Prompt, error) {
	room := c.draftRoom
	short := room.Shape.DoorCount() - len(room.Doors)
	var unresolved []house.Direction
	for _, d := range room.Doors {
		if !d.Resolved() {
			unresolved = append(unresolved, d.Orientation)
		}
	}
	if short <= 0 && len(unresolved) == 0 {
		return nil, nil
	}
	err := c.persist(ctx, string(AwaitingDoorAnnotation))
	return AnnotationPrompt{
		Room:       room.Name,
		DoorsShort: short,
		Unresolved: unresolved,
	}, err
}

// persist snapshots the state and writes it to the store. On failure the
// in-memory state is kept and flagged stale; the next success clears the
// flag.
func (c *Cycle) persist(ctx context.Context, pendingPhase string) error {
	snap, err := c.state.Snapshot(pendingPhase)
	if err != nil {
		c.state.MarkStale()
		return fmt.Errorf("%v: %w", err, ErrPersistFailed)
	}
	if err := c.store.Save(ctx, c.saveID, snap); err != nil {
		c.state.MarkStale()
		return fmt.Errorf("%v: %w", err, ErrPersistFailed)
	}
	c.state.ClearStale()
	return nil
}

// recordDecision journals the completed action for long-term memory. Door
// openings are journaled earlier, when the draft flow starts, so a restart
// mid-annotation can locate the room.
func (c *Cycle) recordDecision() {
	if c.journal == nil || c.action.Kind == oracle.KindOpenDoor {
		return
	}
	// Journal write failure must not fail the cycle; the decision log is
	// advisory.
	_ = c.journal.AddDecision(memory.Decision{
		Action:      string(c.action.Kind),
		Room:        c.actionRoom,
		Explanation: c.action.Explanation,
	})
}
