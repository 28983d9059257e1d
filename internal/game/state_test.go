package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tatianab/blueprince/internal/house"
)

func TestNewStateSeedsPermanentRooms(t *testing.T) {
	s := NewState(1)

	entrance := s.House.RoomAt(house.EntrancePos)
	require.NotNil(t, entrance)
	require.Equal(t, "ENTRANCE HALL", entrance.Name)
	require.True(t, entrance.Entered)
	require.Same(t, entrance, s.Current)

	// Three doors, no south door; lock and security known, destinations not.
	require.Len(t, entrance.Doors, 3)
	_, ok := entrance.DoorAt(house.South)
	require.False(t, ok)
	for _, d := range entrance.Doors {
		require.Equal(t, house.No, d.Locked)
		require.False(t, d.DestinationKnown())
	}

	ante := s.House.RoomAt(house.Position{X: 2, Y: 0})
	require.NotNil(t, ante)
	require.Equal(t, "ANTECHAMBER", ante.Name)
	require.Equal(t, 9, ante.Rank())
	require.False(t, ante.Entered)
}

// adjust never drives a counter below zero, whatever the delta sequence.
func TestAdjustClampsAtZero(t *testing.T) {
	s := NewState(1)
	require.Equal(t, 5, s.Adjust(Coins, 5))
	require.Equal(t, 0, s.Adjust(Coins, -10))
	require.Equal(t, 3, s.Adjust(Coins, 3))
	require.Equal(t, 0, s.Adjust(Coins, -3))
}

func TestEnterRoomRequiresPlacement(t *testing.T) {
	s := NewState(1)
	stray := house.NewRoom("DEN", house.ShapeDeadEnd, house.Position{X: 0, Y: 0})
	require.ErrorIs(t, s.EnterRoom(stray), ErrRoomNotPlaced)
	require.Equal(t, "ENTRANCE HALL", s.Current.Name)

	_, err := s.House.PlaceRoom(stray)
	require.NoError(t, err)
	require.NoError(t, s.EnterRoom(stray))
	require.True(t, stray.Entered)
	require.Same(t, stray, s.Current)
}

func TestInventoryOrderAndUpdate(t *testing.T) {
	s := NewState(1)
	s.AddItem("Shovel", "digs")
	s.AddItem("Magnifying Glass", "reads small print")
	s.AddItem("Shovel", "digs holes")

	require.Len(t, s.Inventory, 2)
	require.Equal(t, "Shovel", s.Inventory[0].Name)
	require.Equal(t, "digs holes", s.Inventory[0].Description)

	require.True(t, s.HasItem("shovel"))
	require.True(t, s.RemoveItem("SHOVEL"))
	require.False(t, s.HasItem("shovel"))
	require.False(t, s.RemoveItem("shovel"))
}

type recordingMemory struct {
	terms map[string]string
}

func (m *recordingMemory) PutTerm(term, definition string) error {
	if m.terms == nil {
		m.terms = map[string]string{}
	}
	m.terms[term] = definition
	return nil
}

func TestAppendMemoryDelegates(t *testing.T) {
	s := NewState(1)
	// Nil memory is a no-op, not a panic.
	require.NoError(t, s.AppendMemory("rank", "row tier counted from the south edge"))

	mem := &recordingMemory{}
	s.SetMemory(mem)
	require.NoError(t, s.AppendMemory("rank", "row tier counted from the south edge"))
	require.Len(t, mem.terms, 1)
}

func TestStaleFlag(t *testing.T) {
	s := NewState(1)
	require.False(t, s.Stale())
	s.MarkStale()
	require.True(t, s.Stale())
	s.ClearStale()
	require.False(t, s.Stale())
}

func TestSummarizeMentionsEverything(t *testing.T) {
	s := NewState(3)
	s.SetResource(Coins, 7)
	s.AddItem("Shovel", "digs")

	text := s.Summarize()
	require.Contains(t, text, "ENTRANCE HALL")
	require.Contains(t, text, "ANTECHAMBER")
	require.Contains(t, text, "Shovel")
	require.Contains(t, text, "coins")
	require.Contains(t, text, "Day: 3")
}
