package house

import (
	"errors"
	"fmt"
)

// Blueprint dimensions of the Mount Holly house and its fixed entry cell.
const (
	DefaultWidth  = 5
	DefaultHeight = 9
)

// EntrancePos is the permanent root cell: the entrance hall on rank 1.
var EntrancePos = Position{X: 2, Y: 8}

// Placement violations. A failed placement leaves the map unchanged.
var (
	ErrOutOfBounds      = errors.New("position out of bounds")
	ErrPositionOccupied = errors.New("position occupied")
)

// AdjacencyConflict reports two doors that disagree about a shared
// connection. Conflicts are surfaced to the operator for manual
// reconciliation, never auto-resolved; the involved doors keep their
// pre-reconciliation state.
type AdjacencyConflict struct {
	Room        string
	Orientation Direction
	Want        string // destination the reconciliation tried to record
	Have        string // destination the door already claims
	Err         error
}

func (c AdjacencyConflict) String() string {
	return fmt.Sprintf("%s door of %s: wanted %s, door claims %s", c.Orientation, c.Room, c.Want, c.Have)
}

// Map is the fixed-size grid of drafted rooms. Every placed room's position
// equals its grid coordinates, and matching doors of adjacent rooms reference
// each other; both invariants are re-established by every successful mutator.
type Map struct {
	Width  int       `yaml:"width"`
	Height int       `yaml:"height"`
	Grid   [][]*Room `yaml:"rooms"` // indexed [y][x]
}

// NewMap returns an empty grid of the given dimensions.
func NewMap(width, height int) *Map {
	grid := make([][]*Room, height)
	for y := range grid {
		grid[y] = make([]*Room, width)
	}
	return &Map{Width: width, Height: height, Grid: grid}
}

// InBounds reports whether the position is on the grid.
func (m *Map) InBounds(p Position) bool {
	return p.X >= 0 && p.X < m.Width && p.Y >= 0 && p.Y < m.Height
}

// RoomAt returns the room occupying the cell, or nil.
func (m *Map) RoomAt(p Position) *Room {
	if !m.InBounds(p) {
		return nil
	}
	return m.Grid[p.Y][p.X]
}

// NeighborOf returns the room one cell away in the given direction, or nil
// if that cell is off the grid or empty.
func (m *Map) NeighborOf(r *Room, dir Direction) *Room {
	return m.RoomAt(r.Pos.Step(dir))
}

// FindRoom returns the first placed room with the given name, normalized for
// case and whitespace, or nil.
func (m *Map) FindRoom(name string) *Room {
	name = NormalizeName(name)
	for _, row := range m.Grid {
		for _, room := range row {
			if room != nil && room.Name == name {
				return room
			}
		}
	}
	return nil
}

// Count returns the number of occupied cells.
func (m *Map) Count() int {
	n := 0
	for _, row := range m.Grid {
		for _, room := range row {
			if room != nil {
				n++
			}
		}
	}
	return n
}

// Rooms visits every placed room in row-major order.
func (m *Map) Rooms(visit func(*Room) bool) {
	for _, row := range m.Grid {
		for _, room := range row {
			if room != nil && !visit(room) {
				return
			}
		}
	}
}

// PlaceRoom stores the room at its position and reconciles its doors with all
// four neighbors. Placement is atomic: on error the map is unchanged.
// Reconciliation disagreements are returned as conflicts, not errors, and the
// disagreeing door pair keeps its prior state.
func (m *Map) PlaceRoom(r *Room) ([]AdjacencyConflict, error) {
	if NormalizeName(r.Name) == "" {
		return nil, fmt.Errorf("place room at %s: empty name", r.Pos)
	}
	if !m.InBounds(r.Pos) {
		return nil, fmt.Errorf("place %s at %s: %w", r.Name, r.Pos, ErrOutOfBounds)
	}
	if occ := m.Grid[r.Pos.Y][r.Pos.X]; occ != nil && occ != r && occ.Name != r.Name {
		return nil, fmt.Errorf("place %s at %s: cell holds %s: %w", r.Name, r.Pos, occ.Name, ErrPositionOccupied)
	}
	m.Grid[r.Pos.Y][r.Pos.X] = r
	return m.reconcileDoors(r), nil
}

// reconcileDoors cross-resolves the new room's doors against its neighbors,
// mirroring how the house reveals connections: a matching pair of doors
// references each other by name, a door facing a wall or a doorless neighbor
// is blocked, and a neighbor's door facing a doorless side of the new room is
// blocked too.
func (m *Map) reconcileDoors(r *Room) []AdjacencyConflict {
	var conflicts []AdjacencyConflict

	record := func(room *Room, d *Door, want string, err error) {
		conflicts = append(conflicts, AdjacencyConflict{
			Room:        room.Name,
			Orientation: d.Orientation,
			Want:        want,
			Have:        d.LeadsTo,
			Err:         err,
		})
	}

	for _, door := range r.Doors {
		np := r.Pos.Step(door.Orientation)
		if !m.InBounds(np) {
			if err := door.MarkBlocked(); err != nil {
				record(r, door, DestBlocked, err)
			}
			continue
		}
		neighbor := m.RoomAt(np)
		if neighbor == nil {
			continue // destination room not drafted yet
		}
		back, ok := neighbor.DoorAt(door.Orientation.Opposite())
		if !ok {
			if err := door.MarkBlocked(); err != nil {
				record(r, door, DestBlocked, err)
			}
			continue
		}
		// A found pair means the passage is open from both sides.
		if err := door.ResolveDestination(neighbor.Name); err != nil {
			record(r, door, neighbor.Name, err)
			continue
		}
		if err := back.ResolveDestination(r.Name); err != nil {
			record(neighbor, back, r.Name, err)
			continue
		}
		_ = door.ResolveLocked(false)
		_ = back.ResolveLocked(false)
		syncSecurity(door, back)
	}

	// Neighbors with a door facing a doorless side of the new room hit a wall.
	for _, dir := range Directions {
		neighbor := m.RoomAt(r.Pos.Step(dir))
		if neighbor == nil {
			continue
		}
		back, ok := neighbor.DoorAt(dir.Opposite())
		if !ok {
			continue
		}
		if _, hasFacing := r.DoorAt(dir); !hasFacing {
			if err := back.MarkBlocked(); err != nil {
				record(neighbor, back, DestBlocked, err)
			}
		}
	}
	return conflicts
}

// syncSecurity propagates a resolved security flag across a door pair; both
// sides describe the same physical door.
func syncSecurity(a, b *Door) {
	switch {
	case a.Security != Unresolved && b.Security == Unresolved:
		_ = b.ResolveSecurity(a.Security == Yes)
	case b.Security != Unresolved && a.Security == Unresolved:
		_ = a.ResolveSecurity(b.Security == Yes)
	}
}

// UpdateSecurityDoors applies the estate-wide keycard policy: with the master
// unlock active every security door opens; otherwise unopened security doors
// stay locked.
func (m *Map) UpdateSecurityDoors(unlockAll bool) {
	m.Rooms(func(room *Room) bool {
		for _, door := range room.Doors {
			if door.Security != Yes {
				continue
			}
			if unlockAll {
				door.ForceLocked(false)
			} else if !door.DestinationKnown() {
				door.ForceLocked(true)
			}
		}
		return true
	})
}

// CheckRanks verifies the soft layout invariant: every placed room should be
// reachable from the entrance along open connections without ever stepping
// down more than one rank. Returns the names of rooms that are not, for the
// operator to review; violations indicate a mapping mistake, not a fatal
// state.
func (m *Map) CheckRanks() []string {
	root := m.RoomAt(EntrancePos)
	if root == nil {
		return nil
	}
	reached := map[string]bool{root.Name: true}
	queue := []*Room{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, door := range cur.Doors {
			if door.Blocked() || !door.DestinationKnown() {
				continue
			}
			next := m.NeighborOf(cur, door.Orientation)
			if next == nil || reached[next.Name] {
				continue
			}
			if next.Rank() < cur.Rank()-1 {
				continue
			}
			reached[next.Name] = true
			queue = append(queue, next)
		}
	}
	var violations []string
	m.Rooms(func(room *Room) bool {
		if !reached[room.Name] && room.FullyDocumented() {
			violations = append(violations, room.Name)
		}
		return true
	})
	return violations
}
