package house

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func placeEntrance(t *testing.T, m *Map) *Room {
	t.Helper()
	entrance := NewRoom("ENTRANCE HALL", ShapeT, EntrancePos)
	for _, dir := range []Direction{West, North, East} {
		require.NoError(t, entrance.AddDoor(NewDoor(dir)))
	}
	conflicts, err := m.PlaceRoom(entrance)
	require.NoError(t, err)
	require.Empty(t, conflicts)
	return entrance
}

// Placing a room next to one with a matching door must leave both doors
// resolved and mutually consistent.
func TestPlaceRoomResolvesDoorPair(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	entrance := placeEntrance(t, m)

	storeroom := NewRoom("STOREROOM", ShapeDeadEnd, Position{X: 3, Y: 8})
	require.NoError(t, storeroom.AddDoor(NewDoor(West)))
	conflicts, err := m.PlaceRoom(storeroom)
	require.NoError(t, err)
	require.Empty(t, conflicts)

	east, ok := entrance.DoorAt(East)
	require.True(t, ok)
	require.Equal(t, "STOREROOM", east.LeadsTo)
	require.Equal(t, No, east.Locked)

	west, ok := storeroom.DoorAt(West)
	require.True(t, ok)
	require.Equal(t, "ENTRANCE HALL", west.LeadsTo)
	require.Equal(t, No, west.Locked)
}

// A placement at an occupied cell fails and changes nothing: room count and
// every existing door keep their prior state.
func TestPlaceRoomOccupiedIsAtomic(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	entrance := placeEntrance(t, m)
	before := *mustDoor(t, entrance, East)

	intruder := NewRoom("DEN", ShapeDeadEnd, EntrancePos)
	require.NoError(t, intruder.AddDoor(NewDoor(East)))
	_, err := m.PlaceRoom(intruder)
	require.ErrorIs(t, err, ErrPositionOccupied)

	require.Equal(t, 1, m.Count())
	require.Equal(t, before, *mustDoor(t, entrance, East))
}

func TestPlaceRoomSameNameReplaces(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	entrance := placeEntrance(t, m)
	_, err := m.PlaceRoom(entrance)
	require.NoError(t, err)
	require.Equal(t, 1, m.Count())
}

// A nameless room never reaches the grid; the renderer and name lookups
// both key off the first character.
func TestPlaceRoomRejectsEmptyName(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	r := NewRoom("   ", ShapeDeadEnd, Position{X: 1, Y: 1})
	_, err := m.PlaceRoom(r)
	require.Error(t, err)
	require.Equal(t, 0, m.Count())
}

func TestPlaceRoomOutOfBounds(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	r := NewRoom("DEN", ShapeDeadEnd, Position{X: 5, Y: 0})
	_, err := m.PlaceRoom(r)
	require.ErrorIs(t, err, ErrOutOfBounds)
	require.Equal(t, 0, m.Count())
}

// A door facing the edge of the grid is a wall.
func TestPlaceRoomBlocksEdgeDoors(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	corner := NewRoom("DEN", ShapeCross, Position{X: 0, Y: 0})
	for _, dir := range Directions {
		require.NoError(t, corner.AddDoor(NewDoor(dir)))
	}
	conflicts, err := m.PlaceRoom(corner)
	require.NoError(t, err)
	require.Empty(t, conflicts)

	require.True(t, mustDoor(t, corner, North).Blocked())
	require.True(t, mustDoor(t, corner, West).Blocked())
	require.False(t, mustDoor(t, corner, South).Blocked())
	require.False(t, mustDoor(t, corner, East).Blocked())
}

// A neighbor's door facing a doorless side of the new room hits a wall, and
// so does the new room's door facing a doorless neighbor.
func TestPlaceRoomBlocksMismatchedSides(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	entrance := placeEntrance(t, m)

	// A dead end north of the entrance whose only door faces away.
	aloof := NewRoom("CLOSET", ShapeDeadEnd, EntrancePos.Step(North))
	require.NoError(t, aloof.AddDoor(NewDoor(North)))
	_, err := m.PlaceRoom(aloof)
	require.NoError(t, err)

	require.True(t, mustDoor(t, entrance, North).Blocked())
}

func TestPlaceRoomConflictReported(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	entrance := placeEntrance(t, m)
	require.NoError(t, mustDoor(t, entrance, East).ResolveDestination("DEN"))

	storeroom := NewRoom("STOREROOM", ShapeDeadEnd, Position{X: 3, Y: 8})
	require.NoError(t, storeroom.AddDoor(NewDoor(West)))
	conflicts, err := m.PlaceRoom(storeroom)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	require.Equal(t, "ENTRANCE HALL", conflicts[0].Room)
	require.Equal(t, East, conflicts[0].Orientation)
	// The disagreeing door keeps its prior claim.
	require.Equal(t, "DEN", mustDoor(t, entrance, East).LeadsTo)
}

func TestSecurityPropagatesAcrossPair(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	entrance := placeEntrance(t, m)
	require.NoError(t, mustDoor(t, entrance, East).ResolveSecurity(true))

	storeroom := NewRoom("STOREROOM", ShapeDeadEnd, Position{X: 3, Y: 8})
	require.NoError(t, storeroom.AddDoor(NewDoor(West)))
	_, err := m.PlaceRoom(storeroom)
	require.NoError(t, err)

	require.Equal(t, Yes, mustDoor(t, storeroom, West).Security)
}

func TestUpdateSecurityDoors(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	entrance := placeEntrance(t, m)
	east := mustDoor(t, entrance, East)
	require.NoError(t, east.ResolveSecurity(true))

	m.UpdateSecurityDoors(false)
	require.Equal(t, Yes, east.Locked, "unopened security doors lock under the default policy")

	m.UpdateSecurityDoors(true)
	require.Equal(t, No, east.Locked, "the master unlock opens every security door")
}

func TestFindRoomNormalizes(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	placeEntrance(t, m)
	require.NotNil(t, m.FindRoom(" entrance hall "))
	require.Nil(t, m.FindRoom("BOILER ROOM"))
}

func TestRank(t *testing.T) {
	r := NewRoom("DEN", ShapeDeadEnd, EntrancePos)
	require.Equal(t, 1, r.Rank())
	r2 := NewRoom("ANTECHAMBER", ShapeCross, Position{X: 2, Y: 0})
	require.Equal(t, 9, r2.Rank())
}

func TestRender(t *testing.T) {
	m := NewMap(DefaultWidth, DefaultHeight)
	placeEntrance(t, m)
	storeroom := NewRoom("STOREROOM", ShapeDeadEnd, Position{X: 3, Y: 8})
	require.NoError(t, storeroom.AddDoor(NewDoor(West)))
	_, err := m.PlaceRoom(storeroom)
	require.NoError(t, err)

	var lines []string
	for line := range m.Render() {
		lines = append(lines, line)
	}
	// One row per grid row plus a connector row between each pair.
	require.Len(t, lines, DefaultHeight*2-1)

	bottom := lines[len(lines)-1]
	require.Contains(t, bottom, "[E]")
	require.Contains(t, bottom, "[E]=[S]", "the open passage renders as =")

	require.NotContains(t, strings.Join(lines, "\n"), "nil")
}

func mustDoor(t *testing.T, r *Room, dir Direction) *Door {
	t.Helper()
	d, ok := r.DoorAt(dir)
	require.True(t, ok, "%s has no %s door", r.Name, dir)
	return d
}
