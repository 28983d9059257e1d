package house

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResolveDestination(t *testing.T) {
	d := NewDoor(North)
	require.False(t, d.DestinationKnown())

	require.NoError(t, d.ResolveDestination("hallway"))
	require.Equal(t, "HALLWAY", d.LeadsTo)

	// Re-resolving to the same destination is a no-op.
	require.NoError(t, d.ResolveDestination("Hallway "))

	// A conflicting destination is rejected and the field keeps its value.
	err := d.ResolveDestination("DEN")
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, "HALLWAY", d.LeadsTo)
}

func TestResolveDestinationEmpty(t *testing.T) {
	d := NewDoor(East)
	require.ErrorIs(t, d.ResolveDestination(""), ErrInvalidTransition)
	require.ErrorIs(t, d.ResolveDestination("?"), ErrInvalidTransition)
}

func TestResolveMarks(t *testing.T) {
	d := NewDoor(South)
	require.NoError(t, d.ResolveLocked(true))
	require.NoError(t, d.ResolveLocked(true))
	require.ErrorIs(t, d.ResolveLocked(false), ErrInvalidTransition)
	require.Equal(t, Yes, d.Locked)

	require.NoError(t, d.ResolveSecurity(false))
	require.ErrorIs(t, d.ResolveSecurity(true), ErrInvalidTransition)
	require.Equal(t, No, d.Security)
}

func TestForceLockedBypassesTransitions(t *testing.T) {
	d := NewDoor(West)
	require.NoError(t, d.ResolveLocked(true))
	d.ForceLocked(false)
	require.Equal(t, No, d.Locked)
}

func TestMarkBlocked(t *testing.T) {
	d := NewDoor(North)
	require.NoError(t, d.MarkBlocked())
	require.True(t, d.Blocked())
	require.True(t, d.Resolved(), "a blocked door is fully resolved")

	// Blocking a door that already leads somewhere is a conflict.
	d2 := NewDoor(North)
	require.NoError(t, d2.ResolveDestination("DEN"))
	require.ErrorIs(t, d2.MarkBlocked(), ErrInvalidTransition)
}

func TestResolvedRequiresAllFields(t *testing.T) {
	d := NewDoor(East)
	require.False(t, d.Resolved())
	require.NoError(t, d.ResolveDestination("DEN"))
	require.False(t, d.Resolved())
	require.NoError(t, d.ResolveLocked(false))
	require.False(t, d.Resolved())
	require.NoError(t, d.ResolveSecurity(false))
	require.True(t, d.Resolved())
}

// Captured save files encode door flags as booleans, cased strings, or the
// unknown sentinels. All of them must load into the same three-valued mark.
func TestMarkYAMLDecoding(t *testing.T) {
	cases := []struct {
		in   string
		want Mark
	}{
		{"true", Yes},
		{"True", Yes},
		{"false", No},
		{"FALSE", No},
		{`"?"`, Unresolved},
		{`"N/A"`, Unresolved},
		{`""`, Unresolved},
		{"unknown", Unresolved},
	}
	for _, tc := range cases {
		var m Mark
		err := yaml.Unmarshal([]byte(tc.in), &m)
		if err != nil {
			t.Errorf("unmarshal %q: %v", tc.in, err)
			continue
		}
		if m != tc.want {
			t.Errorf("unmarshal %q = %v, want %v", tc.in, m, tc.want)
		}
	}

	var m Mark
	if err := yaml.Unmarshal([]byte("maybe"), &m); err == nil {
		t.Error("unmarshal \"maybe\" should fail")
	}
}

func TestMarkYAMLRoundTrip(t *testing.T) {
	for _, m := range []Mark{Unresolved, Yes, No} {
		data, err := yaml.Marshal(m)
		require.NoError(t, err)
		var got Mark
		require.NoError(t, yaml.Unmarshal(data, &got))
		require.Equal(t, m, got)
	}
}

func TestDirectionHelpers(t *testing.T) {
	for _, dir := range Directions {
		require.Equal(t, dir, dir.Opposite().Opposite())
	}

	dir, err := ParseDirection("north")
	require.NoError(t, err)
	require.Equal(t, North, dir)
	_, err = ParseDirection("up")
	require.Error(t, err)

	dx, dy := North.Delta()
	require.Equal(t, 0, dx)
	require.Equal(t, -1, dy)
}
