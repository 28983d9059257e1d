package game

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tatianab/blueprince/internal/house"
)

// ErrCorruptSnapshot is returned when a snapshot fails referential-integrity
// validation. Restoration is rejected wholesale and the prior in-memory state
// is retained.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Snapshot is the serializable shape of a day's state. It is produced and
// consumed by the core; the store decides the on-disk encoding. PendingPhase
// carries the turn cycle's suspension point so an interrupted cycle can be
// resumed after a process restart.
type Snapshot struct {
	Resources    map[Resource]int `yaml:"resources"`
	House        *house.Map       `yaml:"house"`
	Current      house.Position   `yaml:"current_position"`
	Inventory    []Item           `yaml:"items"`
	Day          int              `yaml:"day"`
	SpecialOrder string           `yaml:"special_order,omitempty"`
	PendingPhase string           `yaml:"pending_phase,omitempty"`
}

// Snapshot produces a deep, detached copy of the state suitable for the
// persistence contract. Later mutations of the live state do not leak into
// an already-taken snapshot.
func (s *State) Snapshot(pendingPhase string) (Snapshot, error) {
	snap := Snapshot{
		Resources:    s.Resources,
		House:        s.House,
		Inventory:    s.Inventory,
		Day:          s.Day,
		SpecialOrder: s.SpecialOrder,
		PendingPhase: pendingPhase,
	}
	if s.Current != nil {
		snap.Current = s.Current.Pos
	}
	return cloneSnapshot(snap)
}

// cloneSnapshot detaches a snapshot from live pointers via a yaml round trip,
// the same encoding the store uses.
func cloneSnapshot(snap Snapshot) (Snapshot, error) {
	raw, err := yaml.Marshal(snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("clone snapshot: %w", err)
	}
	var out Snapshot
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return Snapshot{}, fmt.Errorf("clone snapshot: %w", err)
	}
	return out, nil
}

// RestoreSnapshot replaces the state's aggregates atomically. A snapshot that
// fails validation leaves the state untouched.
func (s *State) RestoreSnapshot(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	restored, err := cloneSnapshot(snap)
	if err != nil {
		return err
	}
	s.Resources = restored.Resources
	if s.Resources == nil {
		s.Resources = make(map[Resource]int)
	}
	s.House = restored.House
	s.Inventory = restored.Inventory
	s.Day = restored.Day
	s.SpecialOrder = restored.SpecialOrder
	s.Current = s.House.RoomAt(restored.Current)
	s.stale = false
	return nil
}

// Validate checks the referential integrity rules: grid/position agreement,
// a placed current room, and geometric consistency of every resolved door.
func (snap Snapshot) Validate() error {
	m := snap.House
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("missing house grid: %w", ErrCorruptSnapshot)
	}
	if len(m.Grid) != m.Height {
		return fmt.Errorf("grid has %d rows, want %d: %w", len(m.Grid), m.Height, ErrCorruptSnapshot)
	}
	for y, row := range m.Grid {
		if len(row) != m.Width {
			return fmt.Errorf("grid row %d has %d cells, want %d: %w", y, len(row), m.Width, ErrCorruptSnapshot)
		}
		for x, room := range row {
			if room == nil {
				continue
			}
			if house.NormalizeName(room.Name) == "" {
				return fmt.Errorf("room at cell (%d,%d) has no name: %w", x, y, ErrCorruptSnapshot)
			}
			if room.Pos.X != x || room.Pos.Y != y {
				return fmt.Errorf("room %s at cell (%d,%d) claims position %s: %w", room.Name, x, y, room.Pos, ErrCorruptSnapshot)
			}
			if err := validateDoors(m, room); err != nil {
				return err
			}
		}
	}
	current := m.RoomAt(snap.Current)
	if current == nil {
		return fmt.Errorf("current position %s holds no room: %w", snap.Current, ErrCorruptSnapshot)
	}
	for r, v := range snap.Resources {
		if v < 0 {
			return fmt.Errorf("resource %s is negative: %w", r, ErrCorruptSnapshot)
		}
	}
	return nil
}

// validateDoors checks that every resolved door agrees with the grid: an
// eastern door resolved to a placed room must find that room at x+1, and the
// matching door must point back.
func validateDoors(m *house.Map, room *house.Room) error {
	seen := map[house.Direction]bool{}
	for _, door := range room.Doors {
		if seen[door.Orientation] {
			return fmt.Errorf("room %s has duplicate %s doors: %w", room.Name, door.Orientation, ErrCorruptSnapshot)
		}
		seen[door.Orientation] = true
		if !door.DestinationKnown() || door.Blocked() {
			continue
		}
		neighbor := m.RoomAt(room.Pos.Step(door.Orientation))
		if neighbor == nil {
			// Known by name, not yet located: allowed as long as no placed
			// room contradicts it elsewhere on the grid.
			continue
		}
		if neighbor.Name != door.LeadsTo {
			return fmt.Errorf("%s door of %s leads to %s but %s is adjacent: %w",
				door.Orientation, room.Name, door.LeadsTo, neighbor.Name, ErrCorruptSnapshot)
		}
		if back, ok := neighbor.DoorAt(door.Orientation.Opposite()); ok {
			if back.DestinationKnown() && !back.Blocked() && back.LeadsTo != room.Name {
				return fmt.Errorf("door pair %s/%s disagree: %s vs %s: %w",
					room.Name, neighbor.Name, door.LeadsTo, back.LeadsTo, ErrCorruptSnapshot)
			}
		}
	}
	return nil
}
