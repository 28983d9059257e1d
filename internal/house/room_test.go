package house

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cases := map[string]Kind{
		"KITCHEN":        KindShop,
		"Commissary":     KindShop,
		"LOCKSMITH":      KindShop,
		"SHOWROOM":       KindShop,
		"PARLOR":         KindPuzzle,
		"UTILITY CLOSET": KindUtilityCloset,
		"COAT CHECK":     KindCoatCheck,
		"SECRET PASSAGE": KindSecretPassage,
		"HALLWAY":        KindStandard,
	}
	for name, want := range cases {
		require.Equal(t, want, KindOf(name), "KindOf(%q)", name)
	}
}

func TestAddDoorLimits(t *testing.T) {
	r := NewRoom("DEN", ShapeCross, Position{})
	for _, dir := range Directions {
		require.NoError(t, r.AddDoor(NewDoor(dir)))
	}
	require.ErrorIs(t, r.AddDoor(NewDoor(North)), ErrInvalidTransition)
}

func TestSetCounts(t *testing.T) {
	r := NewRoom("DEN", ShapeDeadEnd, Position{})
	require.Equal(t, CountUnknown, r.Trunks)

	require.NoError(t, r.SetTrunks(2))
	require.NoError(t, r.SetTrunks(2))
	require.ErrorIs(t, r.SetTrunks(3), ErrInvalidTransition)
	require.ErrorIs(t, r.SetDigSpots(-1), ErrInvalidTransition)
}

func TestMarkSolvedOnlyForPuzzles(t *testing.T) {
	parlor := NewRoom("PARLOR", ShapeDeadEnd, Position{})
	require.NoError(t, parlor.MarkSolved())
	require.True(t, parlor.PuzzleSolved)

	den := NewRoom("DEN", ShapeDeadEnd, Position{})
	require.ErrorIs(t, den.MarkSolved(), ErrInvalidTransition)
}

func TestToggleSwitch(t *testing.T) {
	closet := NewRoom("UTILITY CLOSET", ShapeDeadEnd, Position{})
	// Keycard entry starts on in a fresh closet.
	require.True(t, closet.Switches.KeycardEntry)

	on, err := closet.ToggleSwitch("keycard")
	require.NoError(t, err)
	require.False(t, on)

	on, err = closet.ToggleSwitch("KEYCARD_ENTRY_SYSTEM_SWITCH")
	require.NoError(t, err)
	require.True(t, on)

	_, err = closet.ToggleSwitch("basement")
	require.Error(t, err)

	den := NewRoom("DEN", ShapeDeadEnd, Position{})
	_, err = den.ToggleSwitch("keycard")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRemoveStock(t *testing.T) {
	shop := NewRoom("COMMISSARY", ShapeDeadEnd, Position{})
	shop.Stock = []StockItem{{Name: "Apple", Price: 2}, {Name: "Shovel", Price: 10}}

	require.NoError(t, shop.RemoveStock("apple"))
	require.Len(t, shop.Stock, 1)
	require.Equal(t, "Shovel", shop.Stock[0].Name)
	require.Error(t, shop.RemoveStock("apple"))
}

func TestFullyDocumented(t *testing.T) {
	r := NewRoom("DEN", ShapeStraight, Position{})
	d := NewDoor(North)
	require.NoError(t, r.AddDoor(d))
	require.False(t, r.FullyDocumented())

	require.NoError(t, d.ResolveDestination("HALLWAY"))
	require.NoError(t, d.ResolveLocked(false))
	require.NoError(t, d.ResolveSecurity(false))
	require.True(t, r.FullyDocumented())
}
