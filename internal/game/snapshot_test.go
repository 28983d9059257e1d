package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tatianab/blueprince/internal/house"
)

func draftedState(t *testing.T) *State {
	t.Helper()
	s := NewState(2)
	s.SetResource(Gems, 4)
	s.SetResource(Coins, 9)
	s.AddItem("Shovel", "digs")

	storeroom := house.NewRoom("STOREROOM", house.ShapeDeadEnd, house.Position{X: 3, Y: 8})
	d := house.NewDoor(house.West)
	require.NoError(t, storeroom.AddDoor(d))
	require.NoError(t, d.ResolveSecurity(false))
	conflicts, err := s.House.PlaceRoom(storeroom)
	require.NoError(t, err)
	require.Empty(t, conflicts)
	require.NoError(t, s.EnterRoom(storeroom))
	return s
}

// A snapshot restored into a fresh state must reproduce resources, layout,
// position and inventory exactly.
func TestSnapshotRoundTrip(t *testing.T) {
	s := draftedState(t)
	snap, err := s.Snapshot("")
	require.NoError(t, err)

	restored := NewState(1)
	require.NoError(t, restored.RestoreSnapshot(snap))

	require.Equal(t, 2, restored.Day)
	require.Equal(t, 4, restored.Resources[Gems])
	require.Equal(t, "STOREROOM", restored.Current.Name)
	require.Len(t, restored.Inventory, 1)

	entrance := restored.House.RoomAt(house.EntrancePos)
	require.NotNil(t, entrance)
	east, ok := entrance.DoorAt(house.East)
	require.True(t, ok)
	require.Equal(t, "STOREROOM", east.LeadsTo)
}

// The snapshot is a deep clone: mutating the live state afterwards must not
// bleed into it.
func TestSnapshotIsDetached(t *testing.T) {
	s := draftedState(t)
	snap, err := s.Snapshot("")
	require.NoError(t, err)

	s.SetResource(Gems, 0)
	s.Current.MarkEntered()
	s.House.RoomAt(house.EntrancePos).Description = "scribbled over"

	require.Equal(t, 4, snap.Resources[Gems])
	require.NotEqual(t, "scribbled over", snap.House.RoomAt(house.EntrancePos).Description)
}

func TestSnapshotCarriesPendingPhase(t *testing.T) {
	s := draftedState(t)
	snap, err := s.Snapshot("awaiting_door_annotation")
	require.NoError(t, err)
	require.Equal(t, "awaiting_door_annotation", snap.PendingPhase)
}

func TestRestoreRejectsCorruptSnapshots(t *testing.T) {
	s := draftedState(t)

	t.Run("current room not placed", func(t *testing.T) {
		snap, err := s.Snapshot("")
		require.NoError(t, err)
		snap.Current = house.Position{X: 0, Y: 0}
		requireCorrupt(t, snap)
	})

	t.Run("negative resource", func(t *testing.T) {
		snap, err := s.Snapshot("")
		require.NoError(t, err)
		snap.Resources[Keys] = -1
		requireCorrupt(t, snap)
	})

	t.Run("cell position disagreement", func(t *testing.T) {
		snap, err := s.Snapshot("")
		require.NoError(t, err)
		snap.House.RoomAt(house.EntrancePos).Pos = house.Position{X: 0, Y: 0}
		requireCorrupt(t, snap)
	})

	t.Run("nameless room", func(t *testing.T) {
		snap, err := s.Snapshot("")
		require.NoError(t, err)
		snap.House.RoomAt(house.Position{X: 3, Y: 8}).Name = ""
		requireCorrupt(t, snap)
	})

	t.Run("door contradicts neighbor", func(t *testing.T) {
		snap, err := s.Snapshot("")
		require.NoError(t, err)
		room := snap.House.RoomAt(house.Position{X: 3, Y: 8})
		d, ok := room.DoorAt(house.West)
		require.True(t, ok)
		d.LeadsTo = "BOILER ROOM"
		requireCorrupt(t, snap)
	})
}

func requireCorrupt(t *testing.T, snap Snapshot) {
	t.Helper()
	restored := NewState(1)
	err := restored.RestoreSnapshot(snap)
	require.ErrorIs(t, err, ErrCorruptSnapshot)
	// The failed restore must leave the prior state intact.
	require.Equal(t, "ENTRANCE HALL", restored.Current.Name)
	require.Equal(t, 2, restored.House.Count())
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	s := draftedState(t)
	snap, err := s.Snapshot("")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "day-2", snap))

	loaded, err := store.Load(ctx, "day-2")
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Day)
	require.Equal(t, "STOREROOM", loaded.House.RoomAt(house.Position{X: 3, Y: 8}).Name)

	names, err := store.List()
	require.NoError(t, err)
	require.Equal(t, []string{"day-2"}, names)

	_, err = store.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
