package house

import (
	"fmt"
	"strings"
)

// Shape classifies a floorplan by its door layout.
type Shape string

const (
	ShapeDeadEnd  Shape = "DEAD END"
	ShapeStraight Shape = "STRAIGHT"
	ShapeL        Shape = "L"
	ShapeT        Shape = "T"
	ShapeCross    Shape = "CROSS"
)

// DoorCount returns how many doors a floorplan of this shape carries.
func (s Shape) DoorCount() int {
	switch s {
	case ShapeDeadEnd:
		return 1
	case ShapeStraight, ShapeL:
		return 2
	case ShapeT:
		return 3
	case ShapeCross:
		return 4
	}
	return 0
}

// Kind marks rooms with special behavior beyond the base floorplan.
type Kind string

const (
	KindStandard      Kind = "STANDARD"
	KindShop          Kind = "SHOP"
	KindPuzzle        Kind = "PUZZLE"
	KindUtilityCloset Kind = "UTILITY CLOSET"
	KindCoatCheck     Kind = "COAT CHECK"
	KindSecretPassage Kind = "SECRET PASSAGE"
)

// KindOf maps a room name to its specialized kind the way drafted floorplans
// are specialized after capture.
func KindOf(name string) Kind {
	switch NormalizeName(name) {
	case "KITCHEN", "COMMISSARY", "LOCKSMITH", "SHOWROOM":
		return KindShop
	case "PARLOR":
		return KindPuzzle
	case "UTILITY CLOSET":
		return KindUtilityCloset
	case "COAT CHECK":
		return KindCoatCheck
	case "SECRET PASSAGE":
		return KindSecretPassage
	}
	return KindStandard
}

// CountUnknown marks a trunk or dig-spot counter that has not been observed.
const CountUnknown = -1

// Position is a grid coordinate. (0,0) is the north-west corner.
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Step returns the position one cell away in the given direction.
func (p Position) Step(dir Direction) Position {
	dx, dy := dir.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// StockItem is one shop shelf entry. Stock keeps shelf order.
type StockItem struct {
	Name  string `yaml:"name"`
	Price int    `yaml:"price"`
}

// Switches are the utility closet levers. Defaults match the house's morning
// reset: keycard entry and gymnasium power on, darkroom and garage off.
type Switches struct {
	KeycardEntry bool `yaml:"keycard_entry_system_switch"`
	Gymnasium    bool `yaml:"gymnasium_switch"`
	Darkroom     bool `yaml:"darkroom_switch"`
	Garage       bool `yaml:"garage_switch"`
}

// DefaultSwitches is the utility closet state at the start of a day.
func DefaultSwitches() Switches {
	return Switches{KeycardEntry: true, Gymnasium: true}
}

// Room is one cell of the house: a fixed identity plus attributes discovered
// incrementally as the day unfolds. Mutate discovered attributes only through
// the resolve/set methods so the transition rules hold.
type Room struct {
	Name        string   `yaml:"name"`
	Cost        int      `yaml:"cost"`
	Tags        []string `yaml:"type"`
	Description string   `yaml:"description"`
	Note        string   `yaml:"additional_info"`
	Shape       Shape    `yaml:"shape"`
	Doors       []*Door  `yaml:"doors"`
	Pos         Position `yaml:"position"`
	Trunks      int      `yaml:"trunks"`
	DigSpots    int      `yaml:"dig_spots"`
	Rarity      string   `yaml:"rarity"`
	Entered     bool     `yaml:"has_been_entered"`
	HasTerminal bool     `yaml:"has_terminal,omitempty"`

	Kind Kind `yaml:"kind"`

	// Kind-specific state. Zero values for kinds that do not use them.
	Stock        []StockItem `yaml:"items_for_sale,omitempty"`
	PuzzleSolved bool        `yaml:"has_been_solved,omitempty"`
	Switches     Switches    `yaml:"switches,omitempty"`
	StoredItem   string      `yaml:"stored_item,omitempty"`
	PassageUsed  bool        `yaml:"has_been_used,omitempty"`
}

// NormalizeName upper-cases and trims a room name for identity comparisons.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NewRoom constructs a room with its identity fields. Counters start unknown
// until the operator walks the room.
func NewRoom(name string, shape Shape, pos Position) *Room {
	r := &Room{
		Name:     NormalizeName(name),
		Shape:    shape,
		Pos:      pos,
		Trunks:   CountUnknown,
		DigSpots: CountUnknown,
		Kind:     KindOf(name),
	}
	if r.Kind == KindUtilityCloset {
		r.Switches = DefaultSwitches()
	}
	return r
}

// AddDoor attaches a door. A room holds at most one door per orientation.
func (r *Room) AddDoor(d *Door) error {
	if _, ok := r.DoorAt(d.Orientation); ok {
		return fmt.Errorf("room %s already has a %s door: %w", r.Name, d.Orientation, ErrInvalidTransition)
	}
	if len(r.Doors) >= len(Directions) {
		return fmt.Errorf("room %s already has four doors: %w", r.Name, ErrInvalidTransition)
	}
	r.Doors = append(r.Doors, d)
	return nil
}

// DoorAt returns the door with the given orientation, if any.
func (r *Room) DoorAt(dir Direction) (*Door, bool) {
	for _, d := range r.Doors {
		if d.Orientation == dir {
			return d, true
		}
	}
	return nil, false
}

// Rank is the row tier counted from the south edge of the blueprint; the
// entrance sits on rank 1, the antechamber on rank 9.
func (r *Room) Rank() int {
	return DefaultHeight - r.Pos.Y
}

// FullyDocumented reports whether every door on the room has been resolved.
// The orchestration layer refuses to persist a freshly drafted room until
// this holds, since an unresolved door degrades later adjacency merging.
func (r *Room) FullyDocumented() bool {
	for _, d := range r.Doors {
		if !d.Resolved() {
			return false
		}
	}
	return true
}

// MarkEntered records that the player has walked into the room. Idempotent.
func (r *Room) MarkEntered() { r.Entered = true }

// SetTrunks records the observed trunk count. Counting again with a different
// number is a contradiction and is rejected.
func (r *Room) SetTrunks(n int) error {
	return setCount(&r.Trunks, n, r.Name, "trunks")
}

// SetDigSpots records the observed dig spot count.
func (r *Room) SetDigSpots(n int) error {
	return setCount(&r.DigSpots, n, r.Name, "dig spots")
}

func setCount(field *int, n int, room, what string) error {
	if n < 0 {
		return fmt.Errorf("%s count cannot be negative: %w", what, ErrInvalidTransition)
	}
	if *field != CountUnknown && *field != n {
		return fmt.Errorf("%s in %s already counted as %d, not %d: %w", what, room, *field, n, ErrInvalidTransition)
	}
	*field = n
	return nil
}

// MarkSolved records the parlor puzzle as solved for the day.
func (r *Room) MarkSolved() error {
	if r.Kind != KindPuzzle {
		return fmt.Errorf("%s is not a puzzle room: %w", r.Name, ErrInvalidTransition)
	}
	r.PuzzleSolved = true
	return nil
}

// MarkPassageUsed records the secret passage as spent.
func (r *Room) MarkPassageUsed() error {
	if r.Kind != KindSecretPassage {
		return fmt.Errorf("%s is not a secret passage: %w", r.Name, ErrInvalidTransition)
	}
	r.PassageUsed = true
	return nil
}

// ToggleSwitch flips a utility closet lever by name and returns its new state.
func (r *Room) ToggleSwitch(name string) (bool, error) {
	if r.Kind != KindUtilityCloset {
		return false, fmt.Errorf("%s is not the utility closet: %w", r.Name, ErrInvalidTransition)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "keycard_entry_system_switch", "keycard":
		r.Switches.KeycardEntry = !r.Switches.KeycardEntry
		return r.Switches.KeycardEntry, nil
	case "gymnasium_switch", "gymnasium":
		r.Switches.Gymnasium = !r.Switches.Gymnasium
		return r.Switches.Gymnasium, nil
	case "darkroom_switch", "darkroom":
		r.Switches.Darkroom = !r.Switches.Darkroom
		return r.Switches.Darkroom, nil
	case "garage_switch", "garage":
		r.Switches.Garage = !r.Switches.Garage
		return r.Switches.Garage, nil
	}
	return false, fmt.Errorf("unknown switch %q", name)
}

// RemoveStock deletes one shelf entry by item name, preserving shelf order.
func (r *Room) RemoveStock(item string) error {
	item = NormalizeName(item)
	for i, s := range r.Stock {
		if NormalizeName(s.Name) == item {
			r.Stock = append(r.Stock[:i], r.Stock[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %s not on the shelves of %s", item, r.Name)
}

func (r *Room) String() string {
	return fmt.Sprintf("Room(%s %s at %s, shape=%s, doors=%d, rank=%d)",
		r.Name, r.Kind, r.Pos, r.Shape, len(r.Doors), r.Rank())
}
