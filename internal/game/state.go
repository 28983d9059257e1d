package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tatianab/blueprince/internal/house"
)

// Resource is a named counter in the ledger.
type Resource string

const (
	Footprints Resource = "footprints"
	Dice       Resource = "dice"
	Keys       Resource = "keys"
	Gems       Resource = "gems"
	Coins      Resource = "coins"
)

// AllResources lists the ledger counters in display order.
var AllResources = []Resource{Footprints, Dice, Keys, Gems, Coins}

// ErrRoomNotPlaced is returned when entering a room the house map does not
// hold.
var ErrRoomNotPlaced = errors.New("room not placed in house")

// Item is one inventory entry. The inventory keeps pickup order.
type Item struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Memory is the cross-run journal the state appends terms to. It outlives any
// single day's map and is persisted independently.
type Memory interface {
	PutTerm(term, definition string) error
}

// State aggregates everything one day of exploration mutates: the resource
// ledger, the house map, the player's position, the inventory and the day
// counter. It is mutated exclusively by the turn cycle and the operator
// surface; a fresh state holds only the permanent rooms.
type State struct {
	Resources    map[Resource]int
	House        *house.Map
	Current      *house.Room
	Inventory    []Item
	Day          int
	SpecialOrder string

	memory Memory
	stale  bool
}

// NewState creates a day-one state with the permanent rooms placed and the
// player in the entrance hall.
func NewState(day int) *State {
	s := &State{
		Resources: make(map[Resource]int, len(AllResources)),
		House:     house.NewMap(house.DefaultWidth, house.DefaultHeight),
		Day:       day,
	}
	for _, r := range AllResources {
		s.Resources[r] = 0
	}
	entrance := entranceHall()
	antechamber := antechamber()
	if _, err := s.House.PlaceRoom(entrance); err != nil {
		panic(fmt.Sprintf("place entrance hall: %v", err))
	}
	if _, err := s.House.PlaceRoom(antechamber); err != nil {
		panic(fmt.Sprintf("place antechamber: %v", err))
	}
	s.Current = entrance
	return s
}

// The two permanent rooms every day starts with. The entrance hall is the
// root of the map; the antechamber is the sealed objective on rank 9, known
// by position but undocumented.
func entranceHall() *house.Room {
	r := house.NewRoom("ENTRANCE HALL", house.ShapeT, house.EntrancePos)
	r.Tags = []string{"PERMANENT", "BLUEPRINT"}
	r.Rarity = "N/A"
	r.Description = "Past the steps and beyond the grand doors, admission to Mount Holly is granted by way of a dark and garish lobby. From here, each day's exploration begins; the three doors onward do not always lead to the same adjoining rooms."
	r.MarkEntered()
	for _, dir := range []house.Direction{house.West, house.North, house.East} {
		d := house.NewDoor(dir)
		_ = d.ResolveLocked(false)
		_ = d.ResolveSecurity(false)
		_ = r.AddDoor(d)
	}
	return r
}

func antechamber() *house.Room {
	r := house.NewRoom("ANTECHAMBER", house.ShapeCross, house.Position{X: 2, Y: 0})
	r.Tags = []string{"BLUEPRINT", "OBJECTIVE"}
	r.Rarity = "N/A"
	r.Description = "From its root meaning \"The Room Before\", all signs and paths point toward the Antechamber. This sealed chamber rests on the 9th rank."
	for _, dir := range house.Directions {
		_ = r.AddDoor(house.NewDoor(dir))
	}
	return r
}

// SetMemory attaches the cross-run journal. Passed in explicitly rather than
// reached for globally so tests can substitute their own.
func (s *State) SetMemory(m Memory) { s.memory = m }

// Adjust applies a delta to a resource counter, clamping at zero. Overdrafts
// never error; the ledger simply bottoms out, matching the game's behavior.
func (s *State) Adjust(r Resource, delta int) int {
	v := s.Resources[r] + delta
	if v < 0 {
		v = 0
	}
	s.Resources[r] = v
	return v
}

// SetResource overwrites a counter with a confirmed observation, clamping at
// zero.
func (s *State) SetResource(r Resource, value int) {
	if value < 0 {
		value = 0
	}
	s.Resources[r] = value
}

// EnterRoom moves the player into a room, which must be placed in the house.
func (s *State) EnterRoom(r *house.Room) error {
	if r == nil || s.House.RoomAt(r.Pos) == nil || s.House.RoomAt(r.Pos).Name != r.Name {
		name := "<nil>"
		if r != nil {
			name = r.Name
		}
		return fmt.Errorf("enter %s: %w", name, ErrRoomNotPlaced)
	}
	s.Current = s.House.RoomAt(r.Pos)
	s.Current.MarkEntered()
	return nil
}

// AddItem appends an inventory entry, keeping the name exactly as given.
// Matching is case-insensitive; re-adding a held item updates its
// description in place.
func (s *State) AddItem(name, description string) {
	for i := range s.Inventory {
		if strings.EqualFold(s.Inventory[i].Name, name) {
			s.Inventory[i].Description = description
			return
		}
	}
	s.Inventory = append(s.Inventory, Item{Name: name, Description: description})
}

// RemoveItem drops an inventory entry by name, case-insensitively.
func (s *State) RemoveItem(name string) bool {
	for i := range s.Inventory {
		if strings.EqualFold(s.Inventory[i].Name, name) {
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// HasItem reports whether the inventory holds the item.
func (s *State) HasItem(name string) bool {
	for i := range s.Inventory {
		if strings.EqualFold(s.Inventory[i].Name, name) {
			return true
		}
	}
	return false
}

// AppendMemory records a term in the cross-run journal. Re-adding an existing
// term updates its definition rather than duplicating.
func (s *State) AppendMemory(term, definition string) error {
	if s.memory == nil {
		return nil
	}
	return s.memory.PutTerm(term, definition)
}

// MarkStale flags that the last on-disk snapshot no longer matches memory,
// after a failed persist. The next successful persist clears it.
func (s *State) MarkStale() { s.stale = true }

// ClearStale records a successful persist.
func (s *State) ClearStale() { s.stale = false }

// Stale reports whether the on-disk snapshot lags the in-memory state.
func (s *State) Stale() bool { return s.stale }
